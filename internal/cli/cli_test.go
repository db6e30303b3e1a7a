package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeTree(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expr.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sumTree(t *testing.T) string {
	return writeTree(t, `
		kind: "num/add"
		args: [3, 4]
	`)
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestCompileCommandJSON(t *testing.T) {
	out, _, err := execute(t, "compile", sumTree(t), "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Len(t, data["fingerprint"], 64)
	assert.Equal(t, "c", data["root"])
	assert.Equal(t, "num", data["out_type"])
	assert.Equal(t, float64(3), data["entry_count"])
}

func TestCompileCommandText(t *testing.T) {
	out, _, err := execute(t, "compile", sumTree(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Compiled 3 entries")
	assert.Contains(t, out, "root c: num")
}

func TestCompileCommandBadTree(t *testing.T) {
	path := writeTree(t, `args: [1]`)

	out, _, err := execute(t, "compile", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "COMPILE_FAILED", resp.Error.Code)
}

func TestCompileWritesOutputFile(t *testing.T) {
	dumpPath := filepath.Join(t.TempDir(), "dump.json")

	_, _, err := execute(t, "compile", sumTree(t), "-o", dumpPath)
	require.NoError(t, err)

	data, err := os.ReadFile(dumpPath)
	require.NoError(t, err)

	var dump map[string]any
	require.NoError(t, json.Unmarshal(data, &dump))
	assert.Equal(t, "c", dump["root"])
}

func TestRunTreeFile(t *testing.T) {
	out, _, err := execute(t, "run", sumTree(t))
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestRunEvalFailure(t *testing.T) {
	// A bare literal with no payload elaborates fine but fails to fold.
	path := writeTree(t, `kind: "num/lit"`)

	_, _, err := execute(t, "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCompileSaveThenRunSnapshot(t *testing.T) {
	db := filepath.Join(t.TempDir(), "arbor.db")

	_, _, err := execute(t, "compile", sumTree(t), "--save", "main", "--db", db)
	require.NoError(t, err)

	// By name, then by fingerprint.
	out, _, err := execute(t, "run", "main", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	out, _, err = execute(t, "compile", sumTree(t), "--format", "json")
	require.NoError(t, err)
	fingerprint := decodeResponse(t, out).Data.(map[string]any)["fingerprint"].(string)

	out, _, err = execute(t, "run", fingerprint, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestRunRecord(t *testing.T) {
	db := filepath.Join(t.TempDir(), "arbor.db")

	out, _, err := execute(t, "run", sumTree(t), "--db", db, "--record", "--format", "json")
	require.NoError(t, err)

	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, "7", data["result"])
	assert.Len(t, data["fingerprint"], 64)
	assert.Len(t, data["run_hash"], 64)
	assert.NotEmpty(t, data["run_id"])
}

func TestShowListAndDump(t *testing.T) {
	db := filepath.Join(t.TempDir(), "arbor.db")

	_, _, err := execute(t, "compile", sumTree(t), "--save", "main", "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "show", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "root c: num, 3 entries")

	out, _, err = execute(t, "show", "main", "--db", db, "--canonical")
	require.NoError(t, err)
	assert.Contains(t, out, `"root":"c"`)
}

func TestRewriteCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "arbor.db")

	_, _, err := execute(t, "compile", sumTree(t), "--save", "main", "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "rewrite", "main",
		"--match-kind", "num/add", "--to", "num/mul",
		"--save", "prod", "--db", db, "--format", "json")
	require.NoError(t, err)

	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, []any{"c"}, data["matched"])
	assert.Equal(t, "prod", data["saved_as"])

	out, _, err = execute(t, "run", "prod", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "12\n", out)

	// The source snapshot still evaluates unchanged.
	out, _, err = execute(t, "run", "main", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestRewriteRequiresOneAction(t *testing.T) {
	db := filepath.Join(t.TempDir(), "arbor.db")

	_, _, err := execute(t, "compile", sumTree(t), "--save", "main", "--db", db)
	require.NoError(t, err)

	_, _, err = execute(t, "rewrite", "main", "--match-kind", "num/add", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "rewrite", "main",
		"--match-kind", "num/add", "--to", "num/mul", "--wrap", "scope/fresh", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRewriteNoMatches(t *testing.T) {
	db := filepath.Join(t.TempDir(), "arbor.db")

	_, _, err := execute(t, "compile", sumTree(t), "--save", "main", "--db", db)
	require.NoError(t, err)

	_, _, err = execute(t, "rewrite", "main",
		"--match-kind", "num/div", "--to", "num/mul", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestGCCommandCleanGraphIsStable(t *testing.T) {
	db := filepath.Join(t.TempDir(), "arbor.db")

	_, _, err := execute(t, "compile", sumTree(t), "--save", "main", "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "gc", "main", "--db", db, "--format", "json")
	require.NoError(t, err)

	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, float64(0), data["removed"])
	assert.Equal(t, data["from"], data["fingerprint"])
}

func TestInvalidFormatRejected(t *testing.T) {
	_, _, err := execute(t, "compile", sumTree(t), "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRunWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "arbor.db")
	cfgPath := filepath.Join(dir, "arbor.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: "+db+"\n"), 0o644))

	_, _, err := execute(t, "compile", sumTree(t), "--save", "main", "--config", cfgPath)
	require.NoError(t, err)

	out, _, err := execute(t, "run", "main", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}
