package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"

	"github.com/roach88/ikvmbuild/internal/model"
)

// Options controls how the compiler is run and judged.
type Options struct {
	// MaxOutputBytes bounds how much of each stream is kept. Zero means
	// model.DefaultMaxOutputBytes.
	MaxOutputBytes int

	// EscalateWarnings fails a zero-exit run whose output contains warnings.
	EscalateWarnings bool

	// Logger receives the captured output. Nil means slog.Default().
	Logger *slog.Logger
}

// Runner executes an assembled invocation synchronously.
type Runner struct {
	opts Options
}

// New creates a Runner.
func New(opts Options) *Runner {
	if opts.MaxOutputBytes <= 0 {
		opts.MaxOutputBytes = model.DefaultMaxOutputBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{opts: opts}
}

// Run executes inv, forwards its output to the log and judges the result.
//
// The captured output is always logged before an error is returned:
// stdout at info level and stderr at warn level. A non-zero exit status is a
// COMPILATION error; warnings found while escalation is enabled are a
// WARNING_ESCALATION error. The result is returned in every case where the
// process ran.
func (r *Runner) Run(ctx context.Context, inv model.Invocation) (model.ExecResult, []string, error) {
	res, err := r.Execute(ctx, inv)

	// A killed process may still have written diagnostics.
	r.logOutput(res)
	if err != nil {
		return res, nil, err
	}

	if res.ExitCode != 0 {
		return res, nil, model.NewCompilationError(inv.Program(), res.ExitCode)
	}

	codes := ScanWarnings(res.Stdout, res.Stderr)
	if r.opts.EscalateWarnings && len(codes) > 0 {
		return res, codes, model.NewWarningEscalationError(codes)
	}
	return res, codes, nil
}

func (r *Runner) logOutput(res model.ExecResult) {
	log := r.opts.Logger
	if res.Stdout != "" {
		log.Info("compiler output", "stdout", res.Stdout)
	}
	if res.Stderr != "" {
		log.Warn("compiler error output", "stderr", res.Stderr)
	}
	if res.Truncated {
		log.Warn("compiler output truncated", "limit_bytes", r.opts.MaxOutputBytes)
	}
}

// Execute launches inv and blocks until it exits, capturing both streams.
//
// A non-zero exit code is not an error here; the caller decides. Failing to
// launch the process, or having it killed by ctx, is an INVOCATION error.
func (r *Runner) Execute(ctx context.Context, inv model.Invocation) (model.ExecResult, error) {
	if len(inv.Args) == 0 {
		return model.ExecResult{}, model.NewInvocationError("", errors.New("empty command line"))
	}

	cmd := exec.CommandContext(ctx, inv.Args[0], inv.Args[1:]...)
	// Later entries win, so the overrides replace inherited values.
	cmd.Env = append(os.Environ(), inv.Environ()...)

	stdout := &boundedBuffer{max: r.opts.MaxOutputBytes}
	stderr := &boundedBuffer{max: r.opts.MaxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	r.opts.Logger.Debug("executing compiler", "cmd", inv.String())

	err := cmd.Run()

	res := model.ExecResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.truncated || stderr.truncated,
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, model.NewInvocationError(inv.Program(), ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, model.NewInvocationError(inv.Program(), err)
	}
	return res, nil
}

// boundedBuffer keeps at most max bytes and silently discards the rest.
type boundedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	room := b.max - b.buf.Len()
	if room < len(p) {
		b.truncated = true
		if room > 0 {
			b.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *boundedBuffer) String() string {
	return b.buf.String()
}
