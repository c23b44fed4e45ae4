package service_test

import (
	"context"

	"instaforce.app/engine/internal/model"
	"instaforce.app/engine/internal/queue"
)

type mockRunStore struct {
	createFn     func(ctx context.Context, run *model.Run) error
	getFn        func(ctx context.Context, id int64) (*model.Run, error)
	listRecentFn func(ctx context.Context, limit int32) ([]model.Run, error)
	created      []*model.Run
	finished     map[int64]model.RunStatus
	finishErrs   map[int64]string
}

func (m *mockRunStore) Create(ctx context.Context, run *model.Run) error {
	m.created = append(m.created, run)
	if m.createFn != nil {
		return m.createFn(ctx, run)
	}
	return nil
}

func (m *mockRunStore) Get(ctx context.Context, id int64) (*model.Run, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRunStore) MarkRunning(context.Context, int64) error {
	return nil
}

func (m *mockRunStore) Finish(_ context.Context, id int64, status model.RunStatus, _ *model.State, errMsg *string) error {
	if m.finished == nil {
		m.finished = map[int64]model.RunStatus{}
		m.finishErrs = map[int64]string{}
	}
	m.finished[id] = status
	if errMsg != nil {
		m.finishErrs[id] = *errMsg
	}
	return nil
}

func (m *mockRunStore) ListRecent(ctx context.Context, limit int32) ([]model.Run, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return nil, nil
}

type mockProducer struct {
	enqueueFn func(ctx context.Context, msg queue.RunMessage) error
	messages  []queue.RunMessage
}

func (m *mockProducer) Enqueue(ctx context.Context, msg queue.RunMessage) error {
	m.messages = append(m.messages, msg)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error { return nil }
