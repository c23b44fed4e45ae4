package handler_test

import (
	"context"

	"instaforce.app/engine/internal/model"
)

type mockRunService struct {
	submitFn     func(ctx context.Context, requirement string) (*model.Run, error)
	getFn        func(ctx context.Context, id int64) (*model.Run, error)
	listRecentFn func(ctx context.Context, limit int32) ([]model.Run, error)
}

func (m *mockRunService) Submit(ctx context.Context, requirement string) (*model.Run, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, requirement)
	}
	return &model.Run{}, nil
}

func (m *mockRunService) Get(ctx context.Context, id int64) (*model.Run, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.Run{ID: id}, nil
}

func (m *mockRunService) ListRecent(ctx context.Context, limit int32) ([]model.Run, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return nil, nil
}
