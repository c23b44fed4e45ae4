package worker

import (
	"context"

	"instaforce.app/engine/internal/model"
	"instaforce.app/engine/internal/pipeline"
	"instaforce.app/engine/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// RunStore is the subset of store.RunStore the worker needs.
type RunStore interface {
	Get(ctx context.Context, id int64) (*model.Run, error)
	MarkRunning(ctx context.Context, id int64) error
	Finish(ctx context.Context, id int64, status model.RunStatus, state *model.State, errMsg *string) error
}

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*model.State, error)
}
