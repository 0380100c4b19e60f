package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreambundler/CloneWorks/internal/config"
	"github.com/dreambundler/CloneWorks/internal/parser"
)

const fullWorkflowJSON = `{
  "meta": {"source": "cloneworks", "planId": "plan_0123456789ab"},
  "steps": [
    {"name": "load_identity_lora", "params": {"lora": "L1", "strength": 0.8, "identity_id": "id1"}},
    {"name": "render_image", "params": {"style": {"s": 1}, "pose": {}, "garments": ["g1"], "output": {}}}
  ]
}`

func TestPlanCommand_EmitsWorkflowByDefault(t *testing.T) {
	useFixedPlanIDs(t)

	stdout, _, err := executeCommand(t, "", "plan", filepath.Join("testdata", "request.json"))
	require.NoError(t, err)
	assert.JSONEq(t, fullWorkflowJSON, stdout)
}

func TestPlanCommand_EmitPlan(t *testing.T) {
	useFixedPlanIDs(t)

	stdout, _, err := executeCommand(t, "", "plan", "--emit", "plan", filepath.Join("testdata", "request.json"))
	require.NoError(t, err)

	expected, err := os.ReadFile(filepath.Join("testdata", "plan.json"))
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), stdout)
}

func TestPlanCommand_RequestFormats(t *testing.T) {
	useFixedPlanIDs(t)

	tests := []struct {
		file      string
		wantSteps []string
	}{
		{"request.json", []string{"load_identity_lora", "render_image"}},
		{"identity-only.yaml", []string{"load_identity_lora"}},
		{"render-only.toml", []string{"render_image"}},
		{"brief.md", []string{"load_identity_lora", "render_image"}},
		{"empty.json", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			stdout, _, err := executeCommand(t, "", "plan", "--emit", "plan", filepath.Join("testdata", tt.file))
			require.NoError(t, err)

			var doc struct {
				PlanID  string `json:"planId"`
				Adapter string `json:"adapter"`
				Steps   []struct {
					Name string `json:"name"`
				} `json:"steps"`
			}
			require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
			assert.Equal(t, fixedPlanID, doc.PlanID)
			assert.Equal(t, "comfyui", doc.Adapter)

			names := []string{}
			for _, s := range doc.Steps {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.wantSteps, names)
		})
	}
}

func TestPlanCommand_MarkdownBrief(t *testing.T) {
	useFixedPlanIDs(t)

	stdout, _, err := executeCommand(t, "", "plan", filepath.Join("testdata", "brief.md"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"meta": {"source": "cloneworks", "planId": "plan_0123456789ab"},
		"steps": [
			{"name": "load_identity_lora", "params": {"lora": "L1", "strength": 1.0, "identity_id": null}},
			{"name": "render_image", "params": {"style": {}, "pose": {"preset": "standing"}, "garments": [], "output": {}}}
		]
	}`, stdout)
}

func TestPlanCommand_Stdin(t *testing.T) {
	useFixedPlanIDs(t)

	stdout, _, err := executeCommand(t, `{"mode":"image"}`, "plan", "-")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"meta": {"source": "cloneworks", "planId": "plan_0123456789ab"},
		"steps": [{"name": "render_image", "params": {"style": {}, "pose": {}, "garments": [], "output": {}}}]
	}`, stdout)
}

func TestPlanCommand_RealPlanIDFormat(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "plan", "--emit", "plan", filepath.Join("testdata", "empty.json"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Regexp(t, `^plan_[0-9a-f]{12}$`, doc["planId"])
	assert.Equal(t, []any{}, doc["steps"])
}

func TestPlanCommand_OutputFormatting(t *testing.T) {
	useFixedPlanIDs(t)
	request := filepath.Join("testdata", "request.json")

	t.Run("compact when not a terminal", func(t *testing.T) {
		stdout, _, err := executeCommand(t, "", "plan", request)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(stdout, "\n"))
	})

	t.Run("pretty flag indents", func(t *testing.T) {
		stdout, _, err := executeCommand(t, "", "plan", "--pretty", request)
		require.NoError(t, err)
		assert.Contains(t, stdout, "\n  \"meta\": {")
	})

	t.Run("compact wins over pretty", func(t *testing.T) {
		stdout, _, err := executeCommand(t, "", "plan", "--pretty", "--compact", request)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(stdout, "\n"))
	})
}

func TestPlanCommand_WritesOutFile(t *testing.T) {
	useFixedPlanIDs(t)
	target := filepath.Join(t.TempDir(), "out", "workflow.json")

	stdout, _, err := executeCommand(t, "", "plan", "--out", target, filepath.Join("testdata", "request.json"))
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.JSONEq(t, fullWorkflowJSON, string(data))
}

func TestPlanCommand_OutputDirResolvesRelativeOut(t *testing.T) {
	useFixedPlanIDs(t)
	outDir := t.TempDir()

	_, _, err := executeCommand(t, "", "plan", "--output-dir", outDir, "--out", "wf.json", filepath.Join("testdata", "request.json"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "wf.json"))
	require.NoError(t, err)
	assert.JSONEq(t, fullWorkflowJSON, string(data))
}

func TestPlanCommand_ConfigFile(t *testing.T) {
	useFixedPlanIDs(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("emit: plan\npretty: true\n"), 0644))

	stdout, _, err := executeCommand(t, "", "plan", "--config", configPath, filepath.Join("testdata", "request.json"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "\n  \"planId\": \"plan_0123456789ab\"")
}

func TestPlanCommand_ConfigFromHome(t *testing.T) {
	useFixedPlanIDs(t)

	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, config.ConfigFileName), []byte("emit: plan\n"), 0644))

	root := NewRootCommand()
	t.Setenv(config.HomeEnvVar, home)
	var stdout strings.Builder
	root.SetOut(&stdout)
	root.SetErr(&strings.Builder{})
	root.SetArgs([]string{"plan", filepath.Join("testdata", "request.json")})

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), `"planId":"plan_0123456789ab"`)
}

func TestPlanCommand_InvalidEmit(t *testing.T) {
	_, _, err := executeCommand(t, "", "plan", "--emit", "graph", filepath.Join("testdata", "request.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestPlanCommand_InvalidRequest(t *testing.T) {
	_, _, err := executeCommand(t, "", "plan", filepath.Join("testdata", "bad-strength.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, parser.ErrInvalidRequest))

	var decodeErr *parser.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, filepath.Join("testdata", "bad-strength.json"), decodeErr.Path)
}

func TestPlanCommand_MissingFile(t *testing.T) {
	_, _, err := executeCommand(t, "", "plan", filepath.Join("testdata", "nonexistent.json"))
	assert.Error(t, err)
}

func TestPlanCommand_LogsToStderr(t *testing.T) {
	useFixedPlanIDs(t)

	stdout, stderr, err := executeCommand(t, "", "plan", "--log-level", "debug", filepath.Join("testdata", "request.json"))
	require.NoError(t, err)

	assert.Contains(t, stderr, "[DEBUG] Loaded request from")
	assert.Contains(t, stderr, "[INFO] Built plan plan_0123456789ab for comfyui: 2 step(s) [load_identity_lora, render_image]")
	assert.Contains(t, stderr, "[INFO] Rendered comfyui workflow for plan plan_0123456789ab")
	assert.NotContains(t, stdout, "Built plan")
}

func TestPlanCommand_LogDir(t *testing.T) {
	useFixedPlanIDs(t)
	logDir := filepath.Join(t.TempDir(), "logs")

	_, _, err := executeCommand(t, "", "plan", "--log-dir", logDir, filepath.Join("testdata", "request.json"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "=== CloneWorks Run Log ===")
	assert.Contains(t, string(data), "Built plan plan_0123456789ab")
}

func TestPlanCommand_WatchRejectsStdin(t *testing.T) {
	_, _, err := executeCommand(t, `{}`, "plan", "--watch", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch")
}

func TestPlanCommand_WatchRebuildsOnChange(t *testing.T) {
	useFixedPlanIDs(t)
	t.Setenv(config.HomeEnvVar, t.TempDir())

	dir := t.TempDir()
	request := filepath.Join(dir, "request.json")
	target := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(request, []byte(`{"mode":"image"}`), 0644))

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("watch_debounce: 10ms\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := executeCommandContext(t, ctx, "", "plan", "--config", configPath, "--emit", "plan", "--out", target, request)
		done <- err
	}()

	readsIdentity := func() bool {
		data, err := os.ReadFile(target)
		return err == nil && strings.Contains(string(data), "load_identity_lora")
	}

	// Keep saving until the watcher has picked up a change
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(request, []byte(`{"identity":{"lora":"L9"},"mode":"image"}`), 0644)
		return readsIdentity()
	}, 10*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestPlanCommand_KeepsWideSeed(t *testing.T) {
	useFixedPlanIDs(t)

	stdout, _, err := executeCommand(t, `{"mode":"image","output":{"seed":9007199254740993}}`, "plan", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"seed":9007199254740993`)
}

func TestPlanCommand_YAMLNonStringKeys(t *testing.T) {
	useFixedPlanIDs(t)
	path := filepath.Join(t.TempDir(), "request.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: image\nstyle:\n  weights:\n    1: 0.5\n"), 0644))

	stdout, _, err := executeCommand(t, "", "plan", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"weights":{"1":0.5}`)
}

func TestPlanCommand_TracesRuleDecisions(t *testing.T) {
	useFixedPlanIDs(t)

	t.Run("both rules fire", func(t *testing.T) {
		_, stderr, err := executeCommand(t, "", "plan", "--log-level", "trace", filepath.Join("testdata", "request.json"))
		require.NoError(t, err)
		assert.Contains(t, stderr, "[TRACE] load_identity_lora: selected (identity.lora=L1)")
		assert.Contains(t, stderr, "[TRACE] render_image: selected (mode=image)")
	})

	t.Run("no rule fires", func(t *testing.T) {
		_, stderr, err := executeCommand(t, `{"mode":"video"}`, "plan", "--log-level", "trace", "-")
		require.NoError(t, err)
		assert.Contains(t, stderr, "[TRACE] load_identity_lora: skipped (no identity.lora)")
		assert.Contains(t, stderr, `[TRACE] render_image: skipped (mode="video")`)
	})

	t.Run("hidden above trace", func(t *testing.T) {
		_, stderr, err := executeCommand(t, "", "plan", "--log-level", "debug", filepath.Join("testdata", "request.json"))
		require.NoError(t, err)
		assert.NotContains(t, stderr, "[TRACE]")
	})
}
