package model

// ActionType is the outcome of reconciling one event
type ActionType string

const (
	ActionSkip            ActionType = "skip"
	ActionAcknowledgeOnly ActionType = "acknowledge_only"
	ActionCreate          ActionType = "create"
)

// SkipCause explains why an event was skipped
type SkipCause string

const (
	SkipCauseNone      SkipCause = ""
	SkipCauseIgnored   SkipCause = "ignored"
	SkipCauseDuplicate SkipCause = "duplicate"
)

// Action is the decision of the reconciliation policy for one event
type Action struct {
	Type     ActionType
	Priority Priority  // Set only for ActionCreate
	Cause    SkipCause // Set only for ActionSkip
}

// ShouldAcknowledge reports whether the upstream notification is marked read.
// Ignored reasons stay unread on GitHub; everything that was handled is acknowledged.
func (a Action) ShouldAcknowledge() bool {
	switch a.Type {
	case ActionCreate, ActionAcknowledgeOnly:
		return true
	case ActionSkip:
		return a.Cause == SkipCauseDuplicate
	default:
		return false
	}
}
