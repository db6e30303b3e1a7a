package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/arbor/internal/ir"
)

// ErrNotFound is returned when a snapshot or name has no record.
var ErrNotFound = errors.New("store: not found")

// SnapshotInfo describes one stored snapshot without its body.
type SnapshotInfo struct {
	Fingerprint string
	Root        ir.NodeID
	OutType     ir.Type
	EntryCount  int
	CreatedAt   string
}

// SaveSnapshot writes a validated graph under its content fingerprint.
// Saving the same graph twice is a no-op; the fingerprint is returned
// either way. If name is non-empty, the name is pointed at the
// fingerprint, displacing any previous binding.
func (s *Store) SaveSnapshot(ctx context.Context, name string, x ir.IR) (string, error) {
	fingerprint, err := ir.Fingerprint(x)
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}

	body, err := ir.MarshalCanonical(x.CanonicalDump())
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (fingerprint, root, out_type, entry_count, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`,
		fingerprint,
		string(x.Root),
		string(x.Out),
		len(x.Entries),
		string(body),
	)
	if err != nil {
		return "", fmt.Errorf("save snapshot: insert: %w", err)
	}

	if name != "" {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO names (name, fingerprint)
			VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET
				fingerprint = excluded.fingerprint,
				updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		`, name, fingerprint)
		if err != nil {
			return "", fmt.Errorf("save snapshot: bind name: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save snapshot: commit: %w", err)
	}

	return fingerprint, nil
}

// LoadSnapshot reads a graph back by its fingerprint.
func (s *Store) LoadSnapshot(ctx context.Context, fingerprint string) (ir.IR, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM snapshots WHERE fingerprint = ?
	`, fingerprint).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.IR{}, fmt.Errorf("load snapshot %s: %w", fingerprint, ErrNotFound)
	}
	if err != nil {
		return ir.IR{}, fmt.Errorf("load snapshot: %w", err)
	}
	return decodeBody(body)
}

// LoadByName resolves a name to its current fingerprint and loads it.
func (s *Store) LoadByName(ctx context.Context, name string) (ir.IR, string, error) {
	fingerprint, err := s.ResolveName(ctx, name)
	if err != nil {
		return ir.IR{}, "", err
	}
	x, err := s.LoadSnapshot(ctx, fingerprint)
	if err != nil {
		return ir.IR{}, "", err
	}
	return x, fingerprint, nil
}

// ResolveName returns the fingerprint a name currently points at.
func (s *Store) ResolveName(ctx context.Context, name string) (string, error) {
	var fingerprint string
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint FROM names WHERE name = ?
	`, name).Scan(&fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("resolve name %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("resolve name: %w", err)
	}
	return fingerprint, nil
}

// ListSnapshots returns stored snapshots in insertion order.
func (s *Store) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, root, out_type, entry_count, created_at
		FROM snapshots
		ORDER BY created_at, fingerprint
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var root, outType string
		if err := rows.Scan(&info.Fingerprint, &root, &outType, &info.EntryCount, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("list snapshots: scan: %w", err)
		}
		info.Root = ir.NodeID(root)
		info.OutType = ir.Type(outType)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return infos, nil
}

// decodeBody parses a stored canonical dump back into a graph.
func decodeBody(body string) (ir.IR, error) {
	raw, err := decodeJSONValue(body)
	if err != nil {
		return ir.IR{}, fmt.Errorf("decode snapshot body: %w", err)
	}
	dump, ok := raw.(map[string]any)
	if !ok {
		return ir.IR{}, fmt.Errorf("decode snapshot body: not a JSON object")
	}
	x, err := ir.ParseDump(dump)
	if err != nil {
		return ir.IR{}, fmt.Errorf("decode snapshot body: %w", err)
	}
	return x, nil
}

// decodeJSONValue parses JSON keeping numbers as json.Number so integer
// values survive the round trip without float conversion.
func decodeJSONValue(src string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
