package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"instaforce.app/engine/common/id"
	"instaforce.app/engine/internal/model"
	"instaforce.app/engine/internal/pipeline"
	"instaforce.app/engine/internal/queue"
	"instaforce.app/engine/internal/store"
)

const defaultListLimit = 20

type RunService interface {
	Submit(ctx context.Context, requirement string) (*model.Run, error)
	Get(ctx context.Context, id int64) (*model.Run, error)
	ListRecent(ctx context.Context, limit int32) ([]model.Run, error)
}

type runService struct {
	runs   store.RunStore
	queue  queue.Producer
	logger *slog.Logger
}

func NewRunService(runs store.RunStore, producer queue.Producer, logger *slog.Logger) RunService {
	if logger == nil {
		logger = slog.Default()
	}
	return &runService{
		runs:   runs,
		queue:  producer,
		logger: logger,
	}
}

// Submit records a pending run and hands it to the worker pool.
func (s *runService) Submit(ctx context.Context, requirement string) (*model.Run, error) {
	requirement = strings.TrimSpace(requirement)
	if requirement == "" {
		return nil, pipeline.ErrEmptyRequirement
	}

	run := &model.Run{
		ID:          id.New(),
		Requirement: requirement,
		Status:      model.RunStatusPending,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	msg := queue.RunMessage{RunID: run.ID, Attempt: 1}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID := sc.TraceID().String()
		msg.TraceID = &traceID
	}

	if err := s.queue.Enqueue(ctx, msg); err != nil {
		errMsg := fmt.Sprintf("enqueue failed: %v", err)
		if finishErr := s.runs.Finish(ctx, run.ID, model.RunStatusFailed, nil, &errMsg); finishErr != nil {
			s.logger.ErrorContext(ctx, "failed to mark unqueued run failed", "run_id", run.ID, "error", finishErr)
		}
		return nil, fmt.Errorf("enqueueing run: %w", err)
	}

	s.logger.InfoContext(ctx, "run submitted", "run_id", run.ID)
	return run, nil
}

func (s *runService) Get(ctx context.Context, id int64) (*model.Run, error) {
	return s.runs.Get(ctx, id)
}

func (s *runService) ListRecent(ctx context.Context, limit int32) ([]model.Run, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultListLimit
	}
	return s.runs.ListRecent(ctx, limit)
}
