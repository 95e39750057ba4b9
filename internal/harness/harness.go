package harness

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/ikvmbuild/internal/command"
	"github.com/roach88/ikvmbuild/internal/descriptor"
	"github.com/roach88/ikvmbuild/internal/engine"
	"github.com/roach88/ikvmbuild/internal/fixture"
	"github.com/roach88/ikvmbuild/internal/store"
)

// WorkPlaceholder stands for the workspace root in assertion values and
// golden snapshots.
const WorkPlaceholder = "$WORK"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool

	// Errors contains assertion failure messages.
	Errors []string

	// Workspace is the scenario's root directory.
	Workspace string

	Report  engine.Report
	Err     error
	History store.BuildRecord
	Logs    string
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

var scripts = map[string]string{
	CompilerOK:       fixture.CompilerOK,
	CompilerWarnings: fixture.CompilerWarnings,
	CompilerFail:     fixture.CompilerFail,
}

// Run executes a scenario in a fresh workspace and evaluates its assertions.
//
// Each scenario gets its own temporary directory and in-memory history
// database. A build failure is not a harness error: it is captured in
// Result.Err for the assertions to inspect. Run only returns an error when
// the scenario itself cannot be set up.
//
// The workspace is left in place so the caller can inspect it; call
// Result.Cleanup to remove it.
func Run(s *Scenario) (*Result, error) {
	work, err := os.MkdirTemp("", "ikvmbuild-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	result, err := run(s, work)
	if err != nil {
		os.RemoveAll(work)
		return nil, err
	}
	return result, nil
}

func run(s *Scenario, work string) (*Result, error) {
	if err := layout(s, work); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	env, err := descriptor.LoadEnv("", func(string) string { return "" })
	if err != nil {
		return nil, err
	}
	d, err := descriptor.Parse([]byte(s.Descriptor), work, env)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	cfg := d.Config
	cfg.RuntimeLauncher = "sh"

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	var logs bytes.Buffer
	eng := engine.New(
		engine.WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		engine.WithPlatform(command.Platform{GOOS: "linux"}),
		engine.WithIDGenerator(engine.NewFixedGenerator(s.Name)),
		engine.WithRecorder(st),
	)

	ctx := context.Background()
	rep, buildErr := eng.Build(ctx, cfg, d.Source())

	result := &Result{
		Pass:      true,
		Errors:    []string{},
		Workspace: work,
		Report:    rep,
		Err:       buildErr,
		Logs:      logs.String(),
	}
	if result.History, err = st.GetBuild(ctx, rep.BuildID); err != nil {
		return nil, fmt.Errorf("failed to read build history: %w", err)
	}

	for _, a := range s.Assertions {
		if err := evaluate(a, result); err != nil {
			result.AddError(err.Error())
		}
	}
	return result, nil
}

// layout writes the scenario's compiler, files and jars into work.
func layout(s *Scenario, work string) error {
	if script, ok := scripts[s.Compiler]; ok {
		if err := fixture.InstallCompiler(filepath.Join(work, "ikvm"), script); err != nil {
			return err
		}
	}
	for rel, content := range s.Files {
		if err := fixture.WriteFile(filepath.Join(work, rel), content); err != nil {
			return err
		}
	}
	for rel, entries := range s.Jars {
		if err := fixture.WriteJar(filepath.Join(work, rel), entries); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup removes the scenario workspace.
func (r *Result) Cleanup() error {
	if r.Workspace == "" {
		return nil
	}
	return os.RemoveAll(r.Workspace)
}

// exists reports whether a workspace-relative path exists.
func (r *Result) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(r.Workspace, rel))
	return err == nil
}
