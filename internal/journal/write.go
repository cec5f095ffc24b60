package journal

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// Append writes events to a run in one transaction. Seq values must be unique
// within the run; a duplicate fails the whole batch.
func (j *Journal) Append(ctx context.Context, runID string, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, seq, kind, path, payload)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		payload := string(ev.Payload)
		if payload == "" {
			payload = "null"
		}
		if _, err := stmt.ExecContext(ctx, runID, ev.Seq, ev.Kind, ev.Path, payload); err != nil {
			return fmt.Errorf("append event %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a run.
func (j *Journal) FinishRun(ctx context.Context, runID string, pass bool, failures []string) error {
	if failures == nil {
		failures = []string{}
	}
	data, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	res, err := j.db.ExecContext(ctx, `
		UPDATE runs SET pass = ?, finished = 1, errors = ?
		WHERE id = ?
	`, pass, string(data), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}
