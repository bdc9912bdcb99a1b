package usecase_test

import (
	"context"
	"errors"

	"github.com/m-mizutani/ghtask/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// callLog records the order of external calls across mocks
type callLog struct {
	calls []string
}

func (l *callLog) add(call string) {
	if l != nil {
		l.calls = append(l.calls, call)
	}
}

type mockSource struct {
	notifications []model.RawNotification
	listErr       error
	markReadFunc  func(ctx context.Context, threadID string) error
	markReadCalls []string
	log           *callLog
}

func (m *mockSource) ListUnread(ctx context.Context) ([]model.RawNotification, error) {
	m.log.add("list")
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.notifications, nil
}

func (m *mockSource) MarkRead(ctx context.Context, threadID string) error {
	m.log.add("mark_read:" + threadID)
	m.markReadCalls = append(m.markReadCalls, threadID)
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, threadID)
	}
	return nil
}

// recordingStore wraps a TaskStore and records the order of writes
type recordingStore struct {
	inner       interfaces.TaskStore
	createErr   error
	existsErr   error
	listErr     error
	closeErr    error
	createCalls []*model.TaskSpec
	closeCalls  []string
	log         *callLog
}

func (s *recordingStore) Exists(ctx context.Context, identityKey string, tags []string) (bool, error) {
	s.log.add("exists:" + identityKey)
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.inner.Exists(ctx, identityKey, tags)
}

func (s *recordingStore) Create(ctx context.Context, spec *model.TaskSpec) (string, error) {
	s.log.add("create:" + spec.IdentityKey)
	s.createCalls = append(s.createCalls, spec)
	if s.createErr != nil {
		return "", s.createErr
	}
	return s.inner.Create(ctx, spec)
}

func (s *recordingStore) ListPending(ctx context.Context, tags []string) ([]*model.TrackedItem, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.inner.ListPending(ctx, tags)
}

func (s *recordingStore) Close(ctx context.Context, id string) error {
	s.log.add("close:" + id)
	s.closeCalls = append(s.closeCalls, id)
	if s.closeErr != nil {
		return s.closeErr
	}
	return s.inner.Close(ctx, id)
}

type mockNotifier struct {
	messages []*model.Message
}

func (m *mockNotifier) Send(ctx context.Context, msg *model.Message) {
	m.messages = append(m.messages, msg)
}

type mockPRReader struct {
	states map[int]model.PullRequestState
	errs   map[int]error
	calls  []int
}

func (m *mockPRReader) GetPullRequestState(ctx context.Context, owner, repo string, number int) (model.PullRequestState, error) {
	m.calls = append(m.calls, number)
	if err, ok := m.errs[number]; ok {
		return "", err
	}
	if state, ok := m.states[number]; ok {
		return state, nil
	}
	return "", errors.New("unexpected pull request")
}
