package model

import (
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// RawNotification is one element of the GitHub notifications API response,
// kept as a loose JSON mapping because its shape differs across API revisions.
type RawNotification map[string]any

// IsTestFixture reports whether the record was injected by a test harness.
// Such records are processed normally but never acknowledged upstream.
func (r RawNotification) IsTestFixture() bool {
	_, ok := r["test"]
	return ok
}

// ThreadID returns the notification thread ID, accepting string or number forms
func (r RawNotification) ThreadID() (string, bool) {
	switch v := r["id"].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int:
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}

// Reason returns the reason field. It is the only field every record must carry.
func (r RawNotification) Reason() (Reason, bool) {
	s, ok := stringAt(r, "reason")
	if !ok || s == "" {
		return "", false
	}
	return Reason(s), true
}

// SubjectTitle handles both object and bare string subjects
func (r RawNotification) SubjectTitle() (string, bool) {
	if s, ok := r["subject"].(string); ok {
		return s, true
	}
	return stringAt(r, "subject", "title")
}

// URL prefers the subject URL and falls back to the top-level one
func (r RawNotification) URL() (string, bool) {
	if s, ok := stringAt(r, "subject", "url"); ok {
		return s, true
	}
	return stringAt(r, "url")
}

// RepositoryName returns repository.name
func (r RawNotification) RepositoryName() (string, bool) {
	return stringAt(r, "repository", "name")
}

// OwnerLogin returns repository.owner.login
func (r RawNotification) OwnerLogin() (string, bool) {
	return stringAt(r, "repository", "owner", "login")
}

// ParseNotification normalizes a raw record into an Event. Only a missing
// reason is an error; every other absent or mistyped field becomes "".
func ParseNotification(raw RawNotification) (*Event, error) {
	reason, ok := raw.Reason()
	if !ok {
		id, _ := raw.ThreadID()
		return nil, goerr.New("notification has no reason",
			goerr.V("notification_id", id),
			goerr.T(ErrTagMalformedRecord),
		)
	}

	title, _ := raw.SubjectTitle()
	url, _ := raw.URL()
	repo, _ := raw.RepositoryName()
	owner, _ := raw.OwnerLogin()
	id, _ := raw.ThreadID()

	return NewEvent(EventInput{
		Reason:               reason,
		SubjectTitle:         title,
		RepositoryName:       repo,
		OwnerLogin:           owner,
		RawURL:               url,
		SourceNotificationID: id,
	}), nil
}

// stringAt walks nested objects along path and returns the string found there.
// A missing key, a non-object on the way or a non-string leaf yields ("", false).
func stringAt(m map[string]any, path ...string) (string, bool) {
	var cur any = m
	for _, key := range path {
		obj, ok := asObject(cur)
		if !ok {
			return "", false
		}
		cur, ok = obj[key]
		if !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case RawNotification:
		return obj, true
	default:
		return nil, false
	}
}
