package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dreambundler/CloneWorks/internal/display"
	"github.com/dreambundler/CloneWorks/internal/fileutil"
	"github.com/dreambundler/CloneWorks/internal/models"
	"github.com/dreambundler/CloneWorks/internal/parser"
	"github.com/dreambundler/CloneWorks/internal/planner"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <request-file-or-directory>...",
		Short: "Check that request files decode and show the steps they produce",
		Long: `Decode each request file and report the plan steps it would produce.

Directories are searched recursively for .json, .yaml, .yml, .toml, .md and
.markdown files; hidden directories are skipped. Use "-" for a JSON request
on stdin.

Requests that decode but produce no steps, or that name a mode other than
"image", are reported with a warning but still count as valid.

Exit code: 0 if every file decodes, 1 otherwise`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateRequestsWithOutput(args, cmd.InOrStdin(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	return cmd
}

// validateRequestsWithOutput validates request files, writing a report to output
func validateRequestsWithOutput(args []string, in io.Reader, output io.Writer) error {
	paths, err := fileutil.ExpandPaths(args, fileutil.ScanOptions{
		Match:     isRequestFile,
		Recursive: true,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Validating request files:\n")

	failed := 0
	for _, path := range paths {
		if !validateRequest(path, in, output) {
			failed++
		}
	}

	if failed > 0 {
		fmt.Fprintf(output, "\n✗ Validation failed\n")
		return fmt.Errorf("%d of %d request file(s) failed validation", failed, len(paths))
	}

	fmt.Fprintf(output, "\n✓ All %d request file(s) are valid!\n", len(paths))
	return nil
}

// validateRequest reports on one request file and returns whether it decoded.
func validateRequest(path string, in io.Reader, output io.Writer) bool {
	req, err := loadRequest(in, path)
	if err != nil {
		fmt.Fprintf(output, "✗ Failed to decode request from %s\n", path)
		fmt.Fprintf(output, "  Error: %v\n", err)
		return false
	}

	plan := planner.BuildPlan(req)
	if len(plan.Steps) == 0 {
		fmt.Fprintf(output, "✓ %s: 0 steps\n", path)
		display.Warning{
			Title:      "request selects no steps",
			Message:    fmt.Sprintf("It has no identity LoRA and its mode is not %q.", models.ModeImage),
			Files:      []string{path},
			Suggestion: "Add identity.lora or set mode to \"image\".",
		}.Display(output)
	} else {
		names := make([]string, 0, len(plan.Steps))
		for _, name := range plan.StepNames() {
			names = append(names, string(name))
		}
		fmt.Fprintf(output, "✓ %s: %d step(s) [%s]\n", path, len(plan.Steps), strings.Join(names, ", "))
	}

	if req.Mode != "" && req.Mode != models.ModeImage {
		display.Warning{
			Title:   fmt.Sprintf("mode %q is not supported", req.Mode),
			Message: fmt.Sprintf("Only mode %q adds a render step.", models.ModeImage),
			Files:   []string{path},
		}.Display(output)
	}

	return true
}

func isRequestFile(name string) bool {
	return parser.DetectFormat(name) != parser.FormatUnknown
}
