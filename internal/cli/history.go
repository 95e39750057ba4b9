package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/ikvmbuild/internal/engine"
	"github.com/roach88/ikvmbuild/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	ID       string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded builds",
		Long: `List builds recorded with "build --history".

Builds are listed newest first. Use --id to show a single build in full.

Example:
  ikvmbuild history --db ./builds.db
  ikvmbuild history --db ./builds.db --id 0190c0de-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of builds to list (0 = all)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show a single build")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()

	if opts.ID != "" {
		rec, err := st.GetBuild(ctx, opts.ID)
		if errors.Is(err, store.ErrNotFound) {
			return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("build %s not found", opts.ID), nil)
		}
		if err != nil {
			return outputCommandError(formatter, ErrCodeDatabase, "failed to read build", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(rec)
		}
		outputBuildRecord(formatter, rec)
		return nil
	}

	builds, err := st.ListBuilds(ctx, opts.Limit)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, "failed to list builds", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(builds)
	}
	return outputHistoryText(formatter, builds)
}

func outputHistoryText(f *OutputFormatter, builds []store.BuildRecord) error {
	if len(builds) == 0 {
		fmt.Fprintln(f.Writer, "No builds recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tSTATUS\tWARNINGS\tOUTPUT")
	for _, b := range builds {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", b.Seq, b.ID, b.Status, len(b.Warnings), b.OutputPath)
	}
	return tw.Flush()
}

func outputBuildRecord(f *OutputFormatter, b store.BuildRecord) {
	w := f.Writer
	fmt.Fprintf(w, "Build:    %s\n", b.ID)
	fmt.Fprintf(w, "Status:   %s %s\n", statusMark(b.Status), b.Status)
	fmt.Fprintf(w, "Output:   %s\n", b.OutputPath)
	fmt.Fprintf(w, "Started:  %s (%dms)\n", b.StartedAt.Format("2006-01-02 15:04:05Z07:00"), b.DurationMS)
	if b.ExitCode >= 0 {
		fmt.Fprintf(w, "Exit:     %d\n", b.ExitCode)
	}
	if b.ErrorKind != "" {
		fmt.Fprintf(w, "Error:    [%s] %s\n", b.ErrorKind, b.ErrorMessage)
	}
	if len(b.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings: %s\n", strings.Join(b.Warnings, ", "))
	}
	if b.Fingerprint != "" {
		fmt.Fprintf(w, "Command:  %s\n", b.Fingerprint)
	}
	if len(b.Args) > 0 {
		fmt.Fprintf(w, "          %s\n", strings.Join(b.Args, " "))
	}
}

func statusMark(status string) string {
	switch status {
	case engine.StatusCompiled:
		return okMark()
	case engine.StatusFailed:
		return failMark()
	default:
		return warnMark()
	}
}
