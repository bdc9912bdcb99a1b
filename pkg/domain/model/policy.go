package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Policy holds the validated reconciliation configuration
type Policy struct {
	Ignore       ReasonSet // Reasons dropped without acknowledgement
	Create       ReasonSet // Reasons that create a tracked item
	HighPriority ReasonSet // Reasons whose items are created with high priority
	Notify       ReasonSet // Reasons that trigger a notifier message
	SweepTag     string    // Tag marking items awaiting upstream closure
	CallTimeout  time.Duration
}

const DefaultCallTimeout = 30 * time.Second

// DefaultPolicy creates tasks for every reason except ci_activity, which only notifies
func DefaultPolicy() *Policy {
	var create []Reason
	for _, r := range AllReasons() {
		if r != ReasonCIActivity {
			create = append(create, r)
		}
	}

	return &Policy{
		Ignore:       NewReasonSet(),
		Create:       NewReasonSet(create...),
		HighPriority: NewReasonSet(ReasonReviewRequested, ReasonSecurityAlert),
		Notify:       NewReasonSet(ReasonCIActivity),
		SweepTag:     string(ReasonReviewRequested),
		CallTimeout:  DefaultCallTimeout,
	}
}

// Validate checks the policy is usable before any record is processed
func (p *Policy) Validate() error {
	if p.SweepTag == "" {
		return goerr.New("sweep tag is required", goerr.T(ErrTagConfig))
	}
	if p.CallTimeout <= 0 {
		return goerr.New("call timeout must be positive",
			goerr.V("call_timeout", p.CallTimeout),
			goerr.T(ErrTagConfig),
		)
	}
	for _, set := range []ReasonSet{p.Ignore, p.Create, p.HighPriority, p.Notify} {
		for r := range set {
			if !r.IsKnown() {
				return goerr.New("unknown notification reason in policy",
					goerr.V("reason", r),
					goerr.T(ErrTagConfig),
				)
			}
		}
	}
	return nil
}
