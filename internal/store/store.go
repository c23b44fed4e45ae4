package store

import (
	"context"
	"errors"

	"instaforce.app/engine/core/db"
	"instaforce.app/engine/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// RunStore defines the contract for pipeline run history.
type RunStore interface {
	Create(ctx context.Context, run *model.Run) error
	Get(ctx context.Context, id int64) (*model.Run, error)
	MarkRunning(ctx context.Context, id int64) error
	Finish(ctx context.Context, id int64, status model.RunStatus, state *model.State, errMsg *string) error
	ListRecent(ctx context.Context, limit int32) ([]model.Run, error)
}

// Stores groups the stores over one querier, either the pool or a transaction.
type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Runs() RunStore {
	return newRunStore(s.q)
}
