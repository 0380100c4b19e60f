package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dreambundler/CloneWorks/internal/config"
	"github.com/dreambundler/CloneWorks/internal/planner"
)

const fixedPlanID = "plan_0123456789ab"

// executeCommand runs the root command with args and stdin, isolated from any
// config in the working tree.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.HomeEnvVar, t.TempDir())
	return executeCommandContext(t, context.Background(), stdin, args...)
}

// executeCommandContext is executeCommand without the environment isolation,
// so it can be called from another goroutine.
func executeCommandContext(t *testing.T, ctx context.Context, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// useFixedPlanIDs makes the plan command issue fixedPlanID for every plan.
func useFixedPlanIDs(t *testing.T) {
	t.Helper()
	orig := newPlanner
	newPlanner = func() *planner.Planner {
		return planner.New(planner.WithIDGenerator(planner.IDGeneratorFunc(func() string {
			return fixedPlanID
		})))
	}
	t.Cleanup(func() { newPlanner = orig })
}
