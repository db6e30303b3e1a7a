package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/ir"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "arbor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// sumIR is add(3, 4), enough graph to exercise persistence.
func sumIR() ir.IR {
	return ir.IR{
		Root: "c",
		Entries: map[ir.NodeID]ir.Entry{
			"a": {Kind: "num/lit", Out: ir.Int(3)},
			"b": {Kind: "num/lit", Out: ir.Int(4)},
			"c": {Kind: "num/add", Children: []ir.Ref{ir.IDRef("a"), ir.IDRef("b")}},
		},
		Counter: ir.NewCounter(3),
		Out:     "num",
	}
}

func prodIR() ir.IR {
	x := sumIR()
	entry := x.Entries["c"]
	entry.Kind = "num/mul"
	x.Entries["c"] = entry
	return x
}

func TestOpenAppliesPragmas(t *testing.T) {
	s := openStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	assert.NoError(t, s2.verifyPragma("user_version", "1"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	fingerprint, err := s.SaveSnapshot(ctx, "", sumIR())
	require.NoError(t, err)
	assert.Len(t, fingerprint, 64)

	loaded, err := s.LoadSnapshot(ctx, fingerprint)
	require.NoError(t, err)

	assert.Equal(t, ir.NodeID("c"), loaded.Root)
	assert.Equal(t, ir.Type("num"), loaded.Out)
	assert.Equal(t, fingerprint, ir.MustFingerprint(loaded))
}

func TestSaveIdempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	fp1, err := s.SaveSnapshot(ctx, "", sumIR())
	require.NoError(t, err)
	fp2, err := s.SaveSnapshot(ctx, "", sumIR())
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)

	infos, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, fp1, infos[0].Fingerprint)
	assert.Equal(t, 3, infos[0].EntryCount)
	assert.NotEmpty(t, infos[0].CreatedAt)
}

func TestNameRebinding(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	fpSum, err := s.SaveSnapshot(ctx, "latest", sumIR())
	require.NoError(t, err)
	fpProd, err := s.SaveSnapshot(ctx, "latest", prodIR())
	require.NoError(t, err)
	require.NotEqual(t, fpSum, fpProd)

	// Latest save wins; the earlier snapshot is still loadable by
	// fingerprint.
	resolved, err := s.ResolveName(ctx, "latest")
	require.NoError(t, err)
	assert.Equal(t, fpProd, resolved)

	loaded, fp, err := s.LoadByName(ctx, "latest")
	require.NoError(t, err)
	assert.Equal(t, fpProd, fp)
	assert.Equal(t, "num/mul", loaded.Entries["c"].Kind)

	_, err = s.LoadSnapshot(ctx, fpSum)
	assert.NoError(t, err)
}

func TestLoadNotFound(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.LoadSnapshot(ctx, "0000000000000000000000000000000000000000000000000000000000000000")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.ResolveName(ctx, "absent")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, _, err = s.LoadByName(ctx, "absent")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecordRunAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	fingerprint, err := s.SaveSnapshot(ctx, "", sumIR())
	require.NoError(t, err)

	first, err := s.RecordRun(ctx, fingerprint, ir.Int(7))
	require.NoError(t, err)
	assert.Len(t, first.RunHash, 64)

	second, err := s.RecordRun(ctx, fingerprint, ir.Int(7))
	require.NoError(t, err)

	// Same graph, same result, same hash; distinct run ids.
	assert.Equal(t, first.RunHash, second.RunHash)
	assert.NotEqual(t, first.ID, second.ID)

	runs, err := s.ListRuns(ctx, fingerprint)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID)
	assert.Equal(t, ir.Int(7), runs[0].Result)
	assert.NotEmpty(t, runs[0].CreatedAt)
}

func TestRecordRunStructuredResult(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	fingerprint, err := s.SaveSnapshot(ctx, "", sumIR())
	require.NoError(t, err)

	result := ir.Rec{"x": ir.Int(1), "tags": ir.List{ir.Str("a"), ir.Str("b")}}
	_, err = s.RecordRun(ctx, fingerprint, result)
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, fingerprint)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result, runs[0].Result)
}

func TestRecordRunRequiresSnapshot(t *testing.T) {
	s := openStore(t)

	// Foreign key: runs may only reference saved snapshots.
	_, err := s.RecordRun(context.Background(), "deadbeef", ir.Int(1))
	assert.Error(t, err)
}

func TestListRunsEmpty(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	fingerprint, err := s.SaveSnapshot(ctx, "", sumIR())
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, fingerprint)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
