package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ikvmbuild/internal/engine"
	"github.com/roach88/ikvmbuild/internal/store"
)

func seedHistory(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "builds.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	started := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.RecordBuild(ctx, store.BuildRecord{
		ID: "build-1", StartedAt: started, OutputPath: "/out/lib.dll",
		Status: engine.StatusCompiled, ExitCode: 0,
		Fingerprint: "5be0c1",
		Args:        []string{"mono", "/opt/ikvm/bin/ikvmc.exe"},
	}))
	require.NoError(t, st.RecordBuild(ctx, store.BuildRecord{
		ID: "build-2", StartedAt: started.Add(time.Minute), OutputPath: "/out/lib.dll",
		Status: engine.StatusFailed, ErrorKind: "WARNING_ESCALATION",
		ErrorMessage: "1 warning(s) detected in compiler output: IKVMC0100.",
		Warnings:     []string{"IKVMC0100"},
	}))
	return dbPath
}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestHistory_TextList(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeRoot(t, "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, "build-1")
	assert.Contains(t, out, "build-2")
	assert.Less(t, bytes.Index([]byte(out), []byte("build-2")), bytes.Index([]byte(out), []byte("build-1")),
		"newest build first")
}

func TestHistory_JSONLimit(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeRoot(t, "history", "--db", dbPath, "--limit", "1", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string              `json:"status"`
		Data   []store.BuildRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "build-2", resp.Data[0].ID)
	assert.Equal(t, []string{"IKVMC0100"}, resp.Data[0].Warnings)
}

func TestHistory_SingleBuild(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeRoot(t, "history", "--db", dbPath, "--id", "build-2")
	require.NoError(t, err)
	assert.Contains(t, out, "Build:    build-2")
	assert.Contains(t, out, "[WARNING_ESCALATION]")
	assert.Contains(t, out, "Warnings: IKVMC0100")
}

func TestHistory_SingleBuildShowsCommand(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeRoot(t, "history", "--db", dbPath, "--id", "build-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Exit:     0")
	assert.Contains(t, out, "Command:  5be0c1\n")
	assert.Contains(t, out, "          mono /opt/ikvm/bin/ikvmc.exe\n")
}

func TestHistory_UnknownBuild(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeRoot(t, "history", "--db", dbPath, "--id", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestHistory_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	out, err := executeRoot(t, "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No builds recorded.")
}
