package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"instaforce.app/engine/core/db"
	"instaforce.app/engine/internal/model"
)

const runColumns = `id, requirement, status, state, error, created_at, started_at, finished_at`

type runStore struct {
	q db.Querier
}

func newRunStore(q db.Querier) RunStore {
	return &runStore{q: q}
}

func (s *runStore) Create(ctx context.Context, run *model.Run) error {
	if run.Status == "" {
		run.Status = model.RunStatusPending
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO pipeline_runs (id, requirement, status)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		run.ID, run.Requirement, string(run.Status))
	if err := row.Scan(&run.CreatedAt); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

func (s *runStore) Get(ctx context.Context, id int64) (*model.Run, error) {
	row := s.q.QueryRow(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

// MarkRunning claims a pending run. ErrNotFound means no pending run with id exists.
func (s *runStore) MarkRunning(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE pipeline_runs SET status = $2, started_at = now()
		WHERE id = $1 AND status = $3`,
		id, string(model.RunStatusRunning), string(model.RunStatusPending))
	if err != nil {
		return fmt.Errorf("marking run running: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *runStore) Finish(ctx context.Context, id int64, status model.RunStatus, state *model.State, errMsg *string) error {
	var stateJSON []byte
	if state != nil {
		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("encoding run state: %w", err)
		}
		stateJSON = data
	}

	tag, err := s.q.Exec(ctx, `
		UPDATE pipeline_runs SET status = $2, state = $3, error = $4, finished_at = now()
		WHERE id = $1`,
		id, string(status), stateJSON, errMsg)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *runStore) ListRecent(ctx context.Context, limit int32) ([]model.Run, error) {
	rows, err := s.q.Query(ctx, `SELECT `+runColumns+` FROM pipeline_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var (
		run        model.Run
		status     string
		stateJSON  []byte
		startedAt  *time.Time
		finishedAt *time.Time
	)
	if err := row.Scan(&run.ID, &run.Requirement, &status, &stateJSON, &run.Error,
		&run.CreatedAt, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	run.Status = model.RunStatus(status)
	run.StartedAt = startedAt
	run.FinishedAt = finishedAt
	if len(stateJSON) > 0 {
		var state model.State
		if err := json.Unmarshal(stateJSON, &state); err != nil {
			return nil, fmt.Errorf("decoding run state: %w", err)
		}
		run.State = &state
	}
	return &run, nil
}
