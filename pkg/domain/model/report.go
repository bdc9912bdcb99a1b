package model

// RunReport summarizes one sync or sweep run
type RunReport struct {
	Fetched      int
	Created      int
	Skipped      int
	Acknowledged int
	Malformed    int
	Failed       int
	Closed       []string // Identity keys of items closed by the sweep
}

// Merge adds the counters of other into r
func (r *RunReport) Merge(other *RunReport) {
	if other == nil {
		return
	}
	r.Fetched += other.Fetched
	r.Created += other.Created
	r.Skipped += other.Skipped
	r.Acknowledged += other.Acknowledged
	r.Malformed += other.Malformed
	r.Failed += other.Failed
	r.Closed = append(r.Closed, other.Closed...)
}

// LogAttrs flattens the report for structured logging
func (r *RunReport) LogAttrs() []any {
	return []any{
		"fetched", r.Fetched,
		"created", r.Created,
		"skipped", r.Skipped,
		"acknowledged", r.Acknowledged,
		"malformed", r.Malformed,
		"failed", r.Failed,
		"closed", len(r.Closed),
	}
}
