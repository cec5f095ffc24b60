package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/slayermass/stateform/internal/value"
)

// Run is one recorded scenario execution.
type Run struct {
	ID       string   `json:"id"`
	Scenario string   `json:"scenario"`
	Pass     bool     `json:"pass"`
	Finished bool     `json:"finished"`
	Errors   []string `json:"errors,omitempty"`
	Events   int      `json:"events"`
}

// Event is one trace entry. Payload holds canonical JSON.
type Event struct {
	Seq     int64  `json:"seq"`
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Payload []byte `json:"-"`
}

// Decode parses the payload into a value tree.
func (e Event) Decode() (value.Value, error) {
	if len(e.Payload) == 0 {
		return value.Empty{}, nil
	}
	v, err := value.FromJSON(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode event %d payload: %w", e.Seq, err)
	}
	return v, nil
}

const runColumns = `
	r.id, r.scenario, r.pass, r.finished, r.errors,
	(SELECT COUNT(*) FROM events e WHERE e.run_id = r.id)
`

// Run returns the run with the given id, or ErrRunNotFound.
func (j *Journal) Run(ctx context.Context, id string) (Run, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return r, err
}

// Latest returns the most recently started run, or ErrRunNotFound when the
// journal is empty.
func (j *Journal) Latest(ctx context.Context) (Run, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r ORDER BY r.rowid DESC LIMIT 1`)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return r, err
}

// Runs returns every run in start order. scenario filters by name when
// non-empty.
func (j *Journal) Runs(ctx context.Context, scenario string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs r`
	var args []any
	if scenario != "" {
		query += ` WHERE r.scenario = ?`
		args = append(args, scenario)
	}
	query += ` ORDER BY r.rowid ASC`

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Events returns a run's events ordered by seq. kinds filters when non-empty.
func (j *Journal) Events(ctx context.Context, runID string, kinds ...string) ([]Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, kind, path, payload
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	keep := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		keep[k] = true
	}

	events := []Event{}
	for rows.Next() {
		var (
			ev      Event
			payload string
		)
		if err := rows.Scan(&ev.Seq, &ev.Kind, &ev.Path, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if len(keep) > 0 && !keep[ev.Kind] {
			continue
		}
		ev.Payload = []byte(payload)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r      Run
		errs   string
		events int64
	)
	if err := row.Scan(&r.ID, &r.Scenario, &r.Pass, &r.Finished, &errs, &events); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(errs), &r.Errors); err != nil {
		return Run{}, fmt.Errorf("decode run %s errors: %w", r.ID, err)
	}
	if len(r.Errors) == 0 {
		r.Errors = nil
	}
	r.Events = int(events)
	return r, nil
}
