package model

// TagGitHub is carried by every tracked item created from a notification
const TagGitHub = "github"

// TaskStatus is the lifecycle state of a tracked item
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"
)

// Priority of a tracked item
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// TrackedItem is a work record persisted in the task store
type TrackedItem struct {
	ID          string // Store assigned identifier (taskwarrior UUID, document ID, row ID)
	IdentityKey string
	Description string
	Project     string
	Status      TaskStatus
	Priority    Priority
	Tags        []string
	UpstreamRef string // Canonical URL used by the sweep to look up live state
}

// HasTags reports whether the item carries every tag in tags
func (t *TrackedItem) HasTags(tags []string) bool {
	for _, want := range tags {
		found := false
		for _, have := range t.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TaskSpec describes a tracked item to be created
type TaskSpec struct {
	IdentityKey string
	Description string
	Project     string
	Tags        []string
	UpstreamRef string
	Priority    Priority
}

// NewTaskSpec derives the creation request for ev
func NewTaskSpec(ev *Event, priority Priority) *TaskSpec {
	return &TaskSpec{
		IdentityKey: ev.IdentityKey(),
		Description: ev.TaskDescription(),
		Project:     ev.RepositoryName,
		Tags:        ev.Tags(),
		UpstreamRef: ev.CanonicalURL,
		Priority:    priority,
	}
}
