package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"instaforce.app/engine/common/logger"
	"instaforce.app/engine/internal/model"
	"instaforce.app/engine/internal/pipeline"
	"instaforce.app/engine/internal/queue"
	"instaforce.app/engine/internal/store"
)

const errorBackoff = time.Second

type Worker struct {
	consumer Consumer
	runs     RunStore
	runner   Runner

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, runs RunStore, runner Runner) *Worker {
	return &Worker{
		consumer:  consumer,
		runs:      runs,
		runner:    runner,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				time.Sleep(errorBackoff)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"run_id", msg.RunID)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID,
				"run_id", msg.RunID)
			err = fmt.Errorf("panic: %v", r)
			w.finish(ctx, msg.RunID, model.RunStatusFailed, nil, err)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage executes the run a message points at and persists its outcome.
// A returned error means the message still needs to be parked on the DLQ.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	runID := strconv.FormatInt(msg.RunID, 10)
	sc := logger.StartRunSpan(ctx, msg.TraceID, runID)
	defer sc.End()

	ctx = logger.WithLogFields(sc.Context(), logger.LogFields{
		MessageID: logger.Ptr(msg.ID),
		Component: "instaforce.worker",
	})

	slog.InfoContext(ctx, "processing message", "attempt", msg.Attempt)

	run, err := w.runs.Get(ctx, msg.RunID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "run not found, dropping message")
			w.ack(ctx, msg)
			return nil
		}
		sc.RecordError(err)
		return fmt.Errorf("loading run: %w", err)
	}

	if run.Status != model.RunStatusPending {
		slog.InfoContext(ctx, "run already claimed, skipping", "status", run.Status)
		w.ack(ctx, msg)
		return nil
	}

	if err := w.runs.MarkRunning(ctx, run.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "run claimed elsewhere, skipping")
			w.ack(ctx, msg)
			return nil
		}
		sc.RecordError(err)
		return fmt.Errorf("marking run running: %w", err)
	}

	start := time.Now()
	state, runErr := w.runner.Run(ctx, pipeline.Request{RunID: runID, Requirement: run.Requirement})
	if runErr != nil {
		sc.Fail(runErr)
		w.finish(ctx, run.ID, model.RunStatusFailed, state, runErr)
		return runErr
	}

	status := model.StatusFor(state)
	var statusErr error
	if status == model.RunStatusDeployFailed {
		statusErr = errors.New(state.DeployStatus.Message)
	}
	if err := w.runs.Finish(ctx, run.ID, status, state, errMessage(statusErr)); err != nil {
		sc.RecordError(err)
		return fmt.Errorf("finishing run: %w", err)
	}

	w.ack(ctx, msg)

	slog.InfoContext(ctx, "run finished",
		"status", status,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// handleFailedMessage parks the message on the DLQ. Runs are never requeued.
func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
		slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr, "message_id", msg.ID)
	}
}

func (w *Worker) finish(ctx context.Context, id int64, status model.RunStatus, state *model.State, cause error) {
	if err := w.runs.Finish(ctx, id, status, state, errMessage(cause)); err != nil {
		slog.ErrorContext(ctx, "failed to persist run outcome", "error", err, "status", status)
	}
}

func (w *Worker) ack(ctx context.Context, msg queue.Message) {
	if err := w.consumer.Ack(ctx, msg); err != nil {
		slog.WarnContext(ctx, "failed to ACK message", "error", err, "message_id", msg.ID)
	}
}

func errMessage(err error) *string {
	if err == nil {
		return nil
	}
	return logger.Ptr(err.Error())
}
