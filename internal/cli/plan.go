package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ikvmbuild/internal/classify"
	"github.com/roach88/ikvmbuild/internal/command"
	"github.com/roach88/ikvmbuild/internal/model"
)

// PlanResult is the dry-run view of a build.
type PlanResult struct {
	OutputPath    string            `json:"output_path"`
	ToolAvailable bool              `json:"tool_available"`
	Invocation    *model.Invocation `json:"invocation,omitempty"` // nil when no install path is set
	CompileUnits  int               `json:"compile_units"`
	References    int               `json:"references"`
}

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions

	// Platform overrides the host platform (for testing).
	Platform *command.Platform
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <descriptor>",
		Short: "Print the compiler command without running it",
		Long: `Print the ikvmc command line a build would run.

Nothing is created: no output directory, no class extraction, no copies.
The install path and executable are not checked.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	return cmd
}

func runPlan(opts *PlanOptions, path string, cmd *cobra.Command) error {
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

	deps, err := classify.Classify(d.Source(), log)
	if err != nil {
		return outputCommandError(formatter, string(model.KindOf(err)), "failed to classify dependencies", err)
	}

	result := PlanResult{
		OutputPath:    d.Config.OutputPath(),
		ToolAvailable: d.Config.ToolAvailable(),
		CompileUnits:  len(deps.CompileUnits),
		References:    len(deps.References),
	}

	if result.ToolAvailable {
		asm := command.NewAssembler(log)
		if opts.Platform != nil {
			asm.Platform = *opts.Platform
		}
		inv := asm.Assemble(d.Config, deps)
		result.Invocation = &inv
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputPlanText(formatter, result, d.Config)
}

func outputPlanText(f *OutputFormatter, result PlanResult, cfg model.Config) error {
	w := f.Writer

	fmt.Fprintf(w, "Output: %s\n", result.OutputPath)
	fmt.Fprintf(w, "Dependencies: %d compile unit(s), %d reference(s)\n", result.CompileUnits, result.References)
	if !result.ToolAvailable {
		action := "skip"
		if cfg.CreateStubOnMissingTool {
			action = "create an empty stub"
		}
		fmt.Fprintf(w, "No IKVM install path configured; build would %s.\n", action)
		return nil
	}

	fmt.Fprintln(w, "Command:")
	for _, kv := range result.Invocation.Environ() {
		fmt.Fprintf(w, "  env %s\n", kv)
	}
	for _, arg := range result.Invocation.Args {
		fmt.Fprintf(w, "  %s\n", arg)
	}
	return nil
}
