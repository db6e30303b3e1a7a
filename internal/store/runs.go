package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/arbor/internal/ir"
)

// Run is one recorded evaluation of a stored snapshot.
type Run struct {
	ID          string
	Fingerprint string
	RunHash     string
	Result      ir.Value
	CreatedAt   string
}

// newRunID generates a time-ordered run identifier.
// UUIDv7 keeps insertion order roughly sortable by id.
func newRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RecordRun stores the result of evaluating a snapshot. The snapshot
// must already be saved (foreign key on fingerprint). The run hash
// binds the result to the exact graph that produced it.
func (s *Store) RecordRun(ctx context.Context, fingerprint string, result ir.Value) (Run, error) {
	runHash, err := ir.RunHash(fingerprint, result)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	resultJSON, err := ir.MarshalCanonical(result)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	run := Run{
		ID:          newRunID(),
		Fingerprint: fingerprint,
		RunHash:     runHash,
		Result:      result,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, fingerprint, run_hash, result)
		VALUES (?, ?, ?, ?)
	`,
		run.ID,
		run.Fingerprint,
		run.RunHash,
		string(resultJSON),
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: insert: %w", err)
	}

	return run, nil
}

// ListRuns returns the runs recorded for a snapshot, oldest first.
func (s *Store) ListRuns(ctx context.Context, fingerprint string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fingerprint, run_hash, result, created_at
		FROM runs
		WHERE fingerprint = ?
		ORDER BY id
	`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var resultJSON string
		if err := rows.Scan(&run.ID, &run.Fingerprint, &run.RunHash, &resultJSON, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		run.Result, err = decodeResult(resultJSON)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func decodeResult(resultJSON string) (ir.Value, error) {
	raw, err := decodeJSONValue(resultJSON)
	if err != nil {
		return nil, err
	}
	return ir.FromJSON(raw)
}
