package engine

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/roach88/ikvmbuild/internal/classify"
	"github.com/roach88/ikvmbuild/internal/command"
	"github.com/roach88/ikvmbuild/internal/extract"
	"github.com/roach88/ikvmbuild/internal/model"
	"github.com/roach88/ikvmbuild/internal/publish"
	"github.com/roach88/ikvmbuild/internal/runner"
	"github.com/roach88/ikvmbuild/internal/store"
)

// Status values reported for a build.
const (
	StatusCompiled = "compiled"
	StatusStubbed  = "stubbed"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// Recorder persists build history. Implemented by *store.Store.
type Recorder interface {
	RecordBuild(ctx context.Context, rec store.BuildRecord) error
}

// Report describes the outcome of one build.
type Report struct {
	BuildID    string            `json:"build_id"`
	Status     string            `json:"status"`
	OutputPath string            `json:"output_path"`
	Invocation model.Invocation  `json:"invocation"`
	Result     *model.ExecResult `json:"result,omitempty"` // nil when the compiler never ran
	Warnings   []string          `json:"warnings"`
	Copied     []string          `json:"copied"`
}

// Engine runs build steps. An Engine holds no per-build state and may be
// reused for any number of sequential builds.
type Engine struct {
	log      *slog.Logger
	platform command.Platform
	recorder Recorder
	uploader publish.Uploader
	ids      IDGenerator
	now      func() time.Time

	// Base library directories are checked once per Engine.
	resolvers *command.Resolvers
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Nil means slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithPlatform overrides the host platform used for the launch policy.
func WithPlatform(p command.Platform) Option {
	return func(e *Engine) { e.platform = p }
}

// WithRecorder records every build in history.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithUploader overrides the uploader used when publishing is configured.
// Without one, an S3 uploader is created from the build's publish settings.
func WithUploader(u publish.Uploader) Option {
	return func(e *Engine) { e.uploader = u }
}

// WithIDGenerator sets the build ID source.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithClock sets the wall clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		platform:  command.HostPlatform(),
		ids:       UUIDv7Generator{},
		now:       time.Now,
		resolvers: command.NewResolvers(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// Build runs the build step described by cfg over the dependencies in src.
//
// The returned Report is populated as far as the build got: BuildID and
// OutputPath are always set, Invocation once the command was assembled,
// Result once the compiler ran. A stubbed or skipped build is not an error.
func (e *Engine) Build(ctx context.Context, cfg model.Config, src classify.Source) (Report, error) {
	started := e.now()
	rep := Report{
		BuildID:    e.ids.Generate(),
		OutputPath: cfg.OutputPath(),
		Warnings:   []string{},
		Copied:     []string{},
	}
	log := e.log.With("build", rep.BuildID)

	err := e.build(ctx, log, cfg, src, &rep)
	if err != nil {
		rep.Status = StatusFailed
	}

	e.record(ctx, log, rep, err, started)
	return rep, err
}

func (e *Engine) build(ctx context.Context, log *slog.Logger, cfg model.Config, src classify.Source, rep *Report) error {
	pub := publish.New(cfg, nil, log)

	outputPath, err := pub.Prepare()
	if err != nil {
		return err
	}
	rep.OutputPath = outputPath

	if !cfg.ToolAvailable() {
		if cfg.CreateStubOnMissingTool {
			if err := pub.Stub(); err != nil {
				return err
			}
			log.Info("IKVM install path not set; created stub artifact", "output", outputPath)
			rep.Status = StatusStubbed
			return nil
		}
		log.Warn("IKVM install path not set; skipping build step", "output", outputPath)
		rep.Status = StatusSkipped
		return nil
	}

	if cfg.Publish.Enabled() {
		uploader, err := e.uploaderFor(cfg.Publish)
		if err != nil {
			return err
		}
		pub = pub.WithUploader(uploader)
	}

	resolver := e.resolvers.For(cfg.BaseLibraryPath)
	if err := e.preflight(log, cfg, resolver); err != nil {
		return err
	}

	deps, err := classify.Classify(src, log)
	if err != nil {
		return err
	}

	if cfg.CompileCodeOnly {
		x := extract.New(extract.ClassFiles, log)
		if err := x.ExtractAll(deps.CompileUnitFiles(), cfg.ScratchDir()); err != nil {
			return err
		}
	}

	asm := &command.Assembler{Platform: e.platform, Logger: log, Resolvers: e.resolvers}
	inv := asm.Assemble(cfg, deps)
	rep.Invocation = inv
	log.Debug("assembled compiler command", "cmd", inv.String())

	run := runner.New(runner.Options{
		MaxOutputBytes:   cfg.MaxOutputBytes,
		EscalateWarnings: cfg.EscalateWarnings,
		Logger:           log,
	})
	res, codes, err := run.Run(ctx, inv)
	if err == nil || !model.IsKind(err, model.ErrInvocation) {
		rep.Result = &res
	}
	if codes != nil {
		rep.Warnings = codes
	}
	if err != nil {
		return err
	}

	copied, err := pub.CopyAuxiliary()
	rep.Copied = append(rep.Copied, copied...)
	if err != nil {
		return err
	}
	if cfg.CopyReferenceDependencies {
		copied, err := pub.CopyReferences(deps.References)
		rep.Copied = append(rep.Copied, copied...)
		if err != nil {
			return err
		}
	}

	if cfg.Publish.Enabled() {
		files := append([]string{outputPath}, rep.Copied...)
		if err := pub.Upload(ctx, rep.BuildID, files); err != nil {
			return err
		}
	}

	rep.Status = StatusCompiled
	log.Info("build step complete", "output", outputPath, "warnings", len(rep.Warnings))
	return nil
}

// uploaderFor returns the configured uploader, or an S3 uploader built from
// the publish settings.
func (e *Engine) uploaderFor(p model.PublishConfig) (publish.Uploader, error) {
	if e.uploader != nil {
		return e.uploader, nil
	}
	s3, err := publish.NewS3Uploader(p)
	if err != nil {
		return nil, model.NewConfigurationError(err.Error(), p.Endpoint)
	}
	return s3, nil
}

// preflight checks the configured paths before any work is done.
func (e *Engine) preflight(log *slog.Logger, cfg model.Config, resolver *command.Resolver) error {
	info, err := os.Stat(cfg.CompilerInstallPath)
	if err != nil || !info.IsDir() {
		return model.NewConfigurationError("IKVM install path is not a directory", cfg.CompilerInstallPath)
	}
	if _, err := os.Stat(cfg.CompilerExecutable); err != nil {
		return model.NewConfigurationError("ikvmc executable does not exist", cfg.CompilerExecutable)
	}
	if !resolver.Valid() {
		log.Warn("base library path is not a directory; references will be passed through unresolved",
			"path", cfg.BaseLibraryPath)
	}
	return nil
}

func (e *Engine) record(ctx context.Context, log *slog.Logger, rep Report, buildErr error, started time.Time) {
	if e.recorder == nil {
		return
	}
	rec := store.BuildRecord{
		ID:          rep.BuildID,
		StartedAt:   started,
		DurationMS:  e.now().Sub(started).Milliseconds(),
		OutputPath:  rep.OutputPath,
		Status:      rep.Status,
		ExitCode:    -1,
		Fingerprint: rep.Invocation.Fingerprint(),
		Args:        rep.Invocation.Args,
		Warnings:    rep.Warnings,
	}
	if rep.Result != nil {
		rec.ExitCode = rep.Result.ExitCode
	}
	if buildErr != nil {
		rec.ErrorKind = string(model.KindOf(buildErr))
		rec.ErrorMessage = buildErr.Error()
	}
	// History is best effort; the build outcome stands either way.
	if err := e.recorder.RecordBuild(context.WithoutCancel(ctx), rec); err != nil {
		log.Warn("failed to record build history", "error", err)
	}
}
