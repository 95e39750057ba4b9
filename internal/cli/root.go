package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/ikvmbuild/internal/descriptor"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	EnvFile string // .env file for fallback values; empty means next to the descriptor
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ikvmbuild CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ikvmbuild",
		Short: "Compile Java dependencies into a .NET assembly with IKVM",
		Long: `ikvmbuild runs the IKVM build step described by a YAML build descriptor.

The descriptor's jar dependencies are compiled by ikvmc into a single
<final-name>.dll; dll dependencies are passed to the compiler as references.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "path to .env file (default: .env next to the descriptor)")

	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// newLogger creates the text logger used by a command run.
// Debug output is enabled by --verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func loadDescriptor(opts *RootOptions, path string) (*descriptor.Descriptor, error) {
	return descriptor.Load(path, descriptor.Options{EnvFile: opts.EnvFile})
}
