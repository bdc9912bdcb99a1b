package model

import (
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Reason is the cause GitHub attaches to a notification thread
type Reason string

const (
	ReasonAssign          Reason = "assign"
	ReasonAuthor          Reason = "author"
	ReasonComment         Reason = "comment"
	ReasonInvitation      Reason = "invitation"
	ReasonManual          Reason = "manual"
	ReasonMention         Reason = "mention"
	ReasonReviewRequested Reason = "review_requested"
	ReasonSecurityAlert   Reason = "security_alert"
	ReasonStateChange     Reason = "state_change"
	ReasonSubscribed      Reason = "subscribed"
	ReasonTeamMention     Reason = "team_mention"
	ReasonCIActivity      Reason = "ci_activity"
)

// AllReasons returns every reason known to GitHub notifications
func AllReasons() []Reason {
	return []Reason{
		ReasonAssign,
		ReasonAuthor,
		ReasonComment,
		ReasonInvitation,
		ReasonManual,
		ReasonMention,
		ReasonReviewRequested,
		ReasonSecurityAlert,
		ReasonStateChange,
		ReasonSubscribed,
		ReasonTeamMention,
		ReasonCIActivity,
	}
}

// IsKnown reports whether r is one of AllReasons
func (r Reason) IsKnown() bool {
	return slices.Contains(AllReasons(), r)
}

func (r Reason) String() string {
	return string(r)
}

// ReasonSet is a set of reasons used by the reconciliation policy
type ReasonSet map[Reason]struct{}

// NewReasonSet builds a set from the given reasons
func NewReasonSet(reasons ...Reason) ReasonSet {
	set := make(ReasonSet, len(reasons))
	for _, r := range reasons {
		set[r] = struct{}{}
	}
	return set
}

// ParseReasonSet converts configuration strings into a ReasonSet. Unknown
// reasons are rejected so a typo in the configuration fails at startup.
func ParseReasonSet(values []string) (ReasonSet, error) {
	set := make(ReasonSet, len(values))
	for _, v := range values {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "" {
			continue
		}
		r := Reason(v)
		if !r.IsKnown() {
			return nil, goerr.New("unknown notification reason",
				goerr.V("reason", v),
				goerr.T(ErrTagConfig),
			)
		}
		set[r] = struct{}{}
	}
	return set, nil
}

// Has reports whether r is in the set. A nil set contains nothing.
func (s ReasonSet) Has(r Reason) bool {
	_, ok := s[r]
	return ok
}

// Sorted returns the members in a stable order, mainly for logging
func (s ReasonSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, string(r))
	}
	slices.Sort(out)
	return out
}
