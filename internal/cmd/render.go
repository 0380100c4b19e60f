package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dreambundler/CloneWorks/internal/adapter"
)

// NewRenderCommand creates and returns the render subcommand
func NewRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <plan-file>",
		Short: "Render a saved plan into a backend workflow",
		Long: `Decode a plan document (as written by "cloneworks plan --emit plan")
and render it through the adapter named by its "adapter" field.

Use "-" to read the plan from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}

	addOutputFlags(cmd)

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runLog, closeLog, err := newRunLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	plan, err := loadPlan(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	runLog.LogPlanBuilt(plan)

	wf, err := adapter.DefaultRegistry().RenderPlan(plan)
	if err != nil {
		return err
	}
	runLog.LogWorkflowRendered(plan.Adapter, wf)

	return writeDocument(cmd, cfg, readOutputOptions(cmd), runLog, wf)
}
