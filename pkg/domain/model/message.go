package model

// Urgency of a notifier message
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Level maps urgency onto a 0..2 scale used by push services
func (u Urgency) Level() int {
	switch u {
	case UrgencyNormal:
		return 1
	case UrgencyCritical:
		return 2
	default:
		return 0
	}
}

// Message is a desktop or chat notification sent to the user
type Message struct {
	Title   string
	Body    string
	Urgency Urgency
}
