package runner

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ikvmbuild/internal/model"
)

func shell(script string) model.Invocation {
	return model.Invocation{Args: []string{"sh", "-c", script}}
}

func newTestRunner(escalate bool) (*Runner, *bytes.Buffer) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(Options{EscalateWarnings: escalate, Logger: log}), &logs
}

func TestScanWarnings(t *testing.T) {
	out := "Warning CS001: foo\nWarning CS001: bar\nWarning CS002: baz\n"
	assert.Equal(t, []string{"CS001", "CS002"}, ScanWarnings(out))
}

func TestScanWarningsAcrossStreams(t *testing.T) {
	stdout := "Note IKVMC0002: ok\nWarning IKVMC0105: b\n"
	stderr := "Warning IKVMC0100: a\r\nWarning IKVMC0105: again\n"
	assert.Equal(t, []string{"IKVMC0100", "IKVMC0105"}, ScanWarnings(stdout, stderr))
}

func TestScanWarningsIgnoresNonMarkers(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{"empty", ""},
		{"indented", "  Warning CS001: x"},
		{"lowercase", "warning CS001: x"},
		{"mid-line", "see Warning CS001: x"},
		{"no colon", "Warning CS001 x"},
		{"two words", "Warning two words: x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ScanWarnings(tt.out))
		})
	}
}

func TestScanWarningsCaseSensitive(t *testing.T) {
	assert.Equal(t, []string{"CS001", "cs001"}, ScanWarnings("Warning cs001: a\nWarning CS001: b"))
}

func TestRunSuccessForwardsOutput(t *testing.T) {
	r, logs := newTestRunner(false)

	res, codes, err := r.Run(context.Background(), shell("echo built; echo careful >&2"))
	require.NoError(t, err)
	assert.Empty(t, codes)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "built\n", res.Stdout)
	assert.Equal(t, "careful\n", res.Stderr)
	assert.Contains(t, logs.String(), "level=INFO")
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "built")
}

func TestRunNonZeroExit(t *testing.T) {
	r, logs := newTestRunner(false)

	res, _, err := r.Run(context.Background(), shell("echo diag >&2; exit 4"))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrCompilation))
	assert.Equal(t, 4, res.ExitCode)
	assert.Contains(t, err.Error(), "status 4")
	assert.Contains(t, logs.String(), "diag")
}

func TestRunEscalatesWarnings(t *testing.T) {
	r, _ := newTestRunner(true)

	script := "echo 'Warning CS001: foo'; echo 'Warning CS001: bar'; echo 'Warning CS002: baz' >&2"
	_, codes, err := r.Run(context.Background(), shell(script))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrWarningEscalation))
	assert.Equal(t, []string{"CS001", "CS002"}, codes)
	assert.Contains(t, err.Error(), "2 warnings detected in compiler output: CS001, CS002.")
}

func TestRunReportsWarningsWithoutEscalation(t *testing.T) {
	r, _ := newTestRunner(false)

	_, codes, err := r.Run(context.Background(), shell("echo 'Warning CS009: x'"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CS009"}, codes)
}

func TestRunCompilationBeatsWarnings(t *testing.T) {
	r, _ := newTestRunner(true)

	_, _, err := r.Run(context.Background(), shell("echo 'Warning CS001: x'; exit 1"))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrCompilation))
}

func TestExecuteMissingProgram(t *testing.T) {
	r, _ := newTestRunner(false)

	inv := model.Invocation{Args: []string{filepath.Join(t.TempDir(), "no-such-ikvmc")}}
	_, err := r.Execute(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrInvocation))
	assert.False(t, model.IsKind(err, model.ErrCompilation))
}

func TestExecuteEmptyInvocation(t *testing.T) {
	r, _ := newTestRunner(false)

	_, err := r.Execute(context.Background(), model.Invocation{})
	assert.True(t, model.IsKind(err, model.ErrInvocation))
}

func TestExecuteAppliesEnvironment(t *testing.T) {
	r, _ := newTestRunner(false)

	inv := shell(`printf '%s' "$MONO_PATH"`)
	inv.Env = map[string]string{"MONO_PATH": "/sdk/lib"}
	t.Setenv("MONO_PATH", "/inherited")

	res, err := r.Execute(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, "/sdk/lib", res.Stdout)
}

func TestExecuteBoundsOutput(t *testing.T) {
	var logs bytes.Buffer
	r := New(Options{MaxOutputBytes: 4, Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	res, _, err := r.Run(context.Background(), shell("printf abcdefgh; printf xy >&2"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", res.Stdout)
	assert.Equal(t, "xy", res.Stderr)
	assert.True(t, res.Truncated)
	assert.True(t, strings.Contains(logs.String(), "truncated"))
}

func TestExecuteContextDeadline(t *testing.T) {
	r, _ := newTestRunner(false)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Execute(ctx, model.Invocation{Args: []string{"sleep", "5"}})
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrInvocation))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunLogsOutputOfKilledProcess(t *testing.T) {
	r, logs := newTestRunner(false)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	res, codes, err := r.Run(ctx, shell(`echo "Error IKVMC4001: stuck on x"; echo "partial" >&2; exec sleep 5`))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrInvocation))
	assert.Nil(t, codes)
	assert.Equal(t, "Error IKVMC4001: stuck on x\n", res.Stdout)
	assert.Contains(t, logs.String(), "level=INFO msg=\"compiler output\"")
	assert.Contains(t, logs.String(), "stuck on x")
	assert.Contains(t, logs.String(), "level=WARN msg=\"compiler error output\"")
}
