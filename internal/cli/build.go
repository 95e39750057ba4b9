package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ikvmbuild/internal/engine"
	"github.com/roach88/ikvmbuild/internal/model"
	"github.com/roach88/ikvmbuild/internal/store"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	History string
	Timeout time.Duration

	// IDGenerator allows overriding the build ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <descriptor>",
		Short: "Run the IKVM build step",
		Long: `Run the IKVM build step described by a build descriptor.

Compiler output is forwarded to the log on stderr. The command exits 1 when
the build step fails and 2 when the descriptor or history database is unusable.

Example:
  ikvmbuild build ./ikvm.yaml
  ikvmbuild build --history ./builds.db --timeout 10m ./ikvm.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.History, "history", "", "record the build in this SQLite database")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "abort the compiler after this long (0 = no limit)")

	return cmd
}

func runBuild(opts *BuildOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	log := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	d, err := loadDescriptor(opts.RootOptions, path)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDescriptor, "failed to load descriptor", err)
	}
	formatter.VerboseLog("Loaded %s with %d dependencies", d.Path, len(d.Dependencies))

	engineOpts := []engine.Option{engine.WithLogger(log)}
	if opts.IDGenerator != nil {
		engineOpts = append(engineOpts, engine.WithIDGenerator(opts.IDGenerator))
	}

	if opts.History != "" {
		st, err := store.Open(opts.History)
		if err != nil {
			return outputCommandError(formatter, ErrCodeDatabase, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		engineOpts = append(engineOpts, engine.WithRecorder(st))
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	rep, err := engine.New(engineOpts...).Build(ctx, d.Config, d.Source())
	if err != nil {
		return outputBuildError(formatter, log, rep, err)
	}
	return outputBuildSuccess(formatter, rep)
}

func outputBuildSuccess(f *OutputFormatter, rep engine.Report) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: rep, BuildID: rep.BuildID})
	}

	w := f.Writer
	switch rep.Status {
	case engine.StatusCompiled:
		fmt.Fprintf(w, "%s Compiled %s\n", okMark(), rep.OutputPath)
	case engine.StatusStubbed:
		fmt.Fprintf(w, "%s Created stub %s (no IKVM install path)\n", warnMark(), rep.OutputPath)
	case engine.StatusSkipped:
		fmt.Fprintf(w, "%s Skipped %s (no IKVM install path)\n", warnMark(), rep.OutputPath)
	}
	if len(rep.Warnings) > 0 {
		fmt.Fprintf(w, "  %d compiler warning(s): %s\n", len(rep.Warnings), strings.Join(rep.Warnings, ", "))
	}
	for _, c := range rep.Copied {
		fmt.Fprintf(w, "  copied %s\n", c)
	}
	fmt.Fprintf(w, "  build %s\n", rep.BuildID)
	return nil
}

func outputBuildError(f *OutputFormatter, log *slog.Logger, rep engine.Report, err error) error {
	code := string(model.KindOf(err))
	if code == "" {
		code = ErrCodeGeneric
	}
	log.Debug("build failed", "build", rep.BuildID, "error", err)

	if f.Format == "json" {
		_ = f.encode(CLIResponse{
			Status:  "error",
			Data:    rep,
			Error:   &CLIError{Code: code, Message: err.Error(), Details: errorDetails(err)},
			BuildID: rep.BuildID,
		})
	} else {
		_ = f.Error(code, err.Error(), errorDetails(err))
		fmt.Fprintf(f.Writer, "  build %s\n", rep.BuildID)
	}

	return WrapExitError(ExitFailure, "build failed", err)
}
