package taskwarrior

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// Runner executes the task binary and returns its stdout
type Runner func(ctx context.Context, args ...string) ([]byte, error)

// Store keeps tracked items in Taskwarrior. The identity key is stored as the
// first annotation of the task since Taskwarrior has no field for it.
type Store struct {
	run Runner
}

// Option is a functional option for Store
type Option func(*Store)

// WithRunner replaces the task binary invocation, mainly for tests
func WithRunner(r Runner) Option {
	return func(s *Store) {
		s.run = r
	}
}

// New creates a Taskwarrior backed store using the task binary at bin
func New(bin string, opts ...Option) *Store {
	if bin == "" {
		bin = "task"
	}
	s := &Store{run: execRunner(bin)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func execRunner(bin string) Runner {
	return func(ctx context.Context, args ...string) ([]byte, error) {
		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, bin, args...)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return nil, goerr.Wrap(err, "task command failed",
				goerr.V("args", args),
				goerr.V("stderr", strings.TrimSpace(stderr.String())),
				goerr.T(model.ErrTagExternal),
			)
		}
		return stdout.Bytes(), nil
	}
}

var baseArgs = []string{"rc.confirmation=off", "rc.verbose=nothing"}

type exportedTask struct {
	UUID        string   `json:"uuid"`
	Description string   `json:"description"`
	Project     string   `json:"project"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
	Annotations []struct {
		Description string `json:"description"`
	} `json:"annotations"`
}

func (t *exportedTask) toItem() *model.TrackedItem {
	item := &model.TrackedItem{
		ID:          t.UUID,
		Description: t.Description,
		Project:     t.Project,
		Status:      model.TaskStatus(t.Status),
		Priority:    model.PriorityNormal,
		Tags:        t.Tags,
	}
	if t.Priority == "H" {
		item.Priority = model.PriorityHigh
	}
	if len(t.Annotations) > 0 {
		item.IdentityKey = t.Annotations[0].Description
		if strings.HasPrefix(item.IdentityKey, "http") {
			item.UpstreamRef = item.IdentityKey
		}
	}
	return item
}

func (s *Store) export(ctx context.Context, tags []string) ([]*model.TrackedItem, error) {
	args := append(slices.Clone(baseArgs), "status:pending")
	for _, tag := range tags {
		args = append(args, "+"+tag)
	}
	args = append(args, "export")

	out, err := s.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var tasks []exportedTask
	if err := json.Unmarshal(out, &tasks); err != nil {
		return nil, goerr.Wrap(err, "failed to parse task export", goerr.V("output", string(out)))
	}

	items := make([]*model.TrackedItem, 0, len(tasks))
	for i := range tasks {
		items = append(items, tasks[i].toItem())
	}
	return items, nil
}

func (s *Store) Exists(ctx context.Context, identityKey string, tags []string) (bool, error) {
	items, err := s.export(ctx, tags)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.IdentityKey == identityKey {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListPending(ctx context.Context, tags []string) ([]*model.TrackedItem, error) {
	return s.export(ctx, tags)
}

var createdPattern = regexp.MustCompile(`Created task ([0-9a-fA-F-]{36})`)

// Create adds the task with rc.verbose=new-uuid so the UUID can be captured,
// then annotates it with the identity key
func (s *Store) Create(ctx context.Context, spec *model.TaskSpec) (string, error) {
	args := []string{"rc.confirmation=off", "rc.verbose=new-uuid", "add", spec.Description}
	if spec.Project != "" {
		args = append(args, "project:"+spec.Project)
	}
	for _, tag := range spec.Tags {
		args = append(args, "+"+tag)
	}
	if spec.Priority == model.PriorityHigh {
		args = append(args, "priority:H")
	}

	out, err := s.run(ctx, args...)
	if err != nil {
		return "", err
	}

	m := createdPattern.FindSubmatch(out)
	if m == nil {
		return "", goerr.New("task add did not report a UUID", goerr.V("output", string(out)))
	}
	id, err := uuid.ParseBytes(m[1])
	if err != nil {
		return "", goerr.Wrap(err, "task add reported an invalid UUID", goerr.V("uuid", string(m[1])))
	}

	annotateArgs := append(slices.Clone(baseArgs), id.String(), "annotate", spec.IdentityKey)
	if _, err := s.run(ctx, annotateArgs...); err != nil {
		return id.String(), goerr.Wrap(err, "failed to annotate task", goerr.V("task_id", id.String()))
	}

	return id.String(), nil
}

func (s *Store) Close(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return goerr.Wrap(err, "invalid task UUID", goerr.V("task_id", id))
	}
	args := append(slices.Clone(baseArgs), id, "done")
	if _, err := s.run(ctx, args...); err != nil {
		return err
	}
	return nil
}
