package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dreambundler/CloneWorks/internal/adapter"
	"github.com/dreambundler/CloneWorks/internal/config"
	"github.com/dreambundler/CloneWorks/internal/models"
	"github.com/dreambundler/CloneWorks/internal/planner"
	"github.com/dreambundler/CloneWorks/internal/watch"
)

// newPlanner builds the planner used by the plan command. Tests replace it to
// get fixed plan ids.
var newPlanner = func() *planner.Planner {
	return planner.New()
}

// NewPlanCommand creates and returns the plan subcommand
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <request-file>",
		Short: "Build a plan from a request and emit it or its workflow",
		Long: `Decode a request, build its generation plan and print either the plan
or the backend workflow rendered from it.

The request format follows the file extension: .json, .yaml/.yml, .toml,
or .md/.markdown for a brief whose first json, yaml or toml code block holds
the request. Use "-" to read a JSON request from stdin.

Examples:
  cloneworks plan request.yaml                 # Print the ComfyUI workflow
  cloneworks plan --emit plan request.json     # Print the plan itself
  cloneworks plan brief.md --out wf.json       # Write the workflow to a file
  cloneworks plan request.yaml --watch         # Re-plan on every save
  echo '{"mode":"image"}' | cloneworks plan -`,
		Args: cobra.ExactArgs(1),
		RunE: runPlan,
	}

	cmd.Flags().String("emit", "", "Document to emit: plan or workflow (default: workflow)")
	cmd.Flags().Bool("watch", false, "Rebuild whenever the request file changes")
	addOutputFlags(cmd)

	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runLog, closeLog, err := newRunLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	requestPath := args[0]
	opts := readOutputOptions(cmd)
	p := newPlanner()

	build := func() error {
		return planRequest(cmd, cfg, opts, p, runLog, requestPath)
	}

	watchMode, _ := cmd.Flags().GetBool("watch")
	if !watchMode {
		return build()
	}

	if requestPath == stdinPath {
		return fmt.Errorf("--watch needs a request file, not stdin")
	}

	// A broken request must not end the session; the next save may fix it
	if err := build(); err != nil {
		runLog.LogError(err.Error())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := watch.New(requestPath, cfg.WatchDebounce, func() {
		if err := build(); err != nil {
			runLog.LogError(err.Error())
		}
	})
	watcher.OnError(func(err error) {
		runLog.LogWarn(fmt.Sprintf("watch error: %v", err))
	})

	runLog.LogInfo(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", requestPath))
	return watcher.Run(ctx)
}

// planRequest runs one decode, plan and emit cycle.
func planRequest(cmd *cobra.Command, cfg *config.Config, opts outputOptions, p *planner.Planner, runLog Logger, path string) error {
	req, err := loadRequest(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	runLog.LogRequestLoaded(path, req)
	traceRules(runLog, req)

	plan := p.BuildPlan(req)
	runLog.LogPlanBuilt(plan)

	if cfg.Emit == config.EmitPlan {
		return writeDocument(cmd, cfg, opts, runLog, plan)
	}

	wf, err := adapter.DefaultRegistry().RenderPlan(plan)
	if err != nil {
		return err
	}
	runLog.LogWorkflowRendered(plan.Adapter, wf)

	return writeDocument(cmd, cfg, opts, runLog, wf)
}

// traceRules logs why each planning rule did or did not add its step.
func traceRules(runLog Logger, req *models.Request) {
	if req.HasIdentityLoRA() {
		runLog.LogTrace(fmt.Sprintf("%s: selected (identity.lora=%s)", models.StepLoadIdentityLoRA, req.Identity.LoRA))
	} else {
		runLog.LogTrace(fmt.Sprintf("%s: skipped (no identity.lora)", models.StepLoadIdentityLoRA))
	}

	if req.WantsImage() {
		runLog.LogTrace(fmt.Sprintf("%s: selected (mode=%s)", models.StepRenderImage, req.Mode))
	} else {
		runLog.LogTrace(fmt.Sprintf("%s: skipped (mode=%q)", models.StepRenderImage, req.Mode))
	}
}
