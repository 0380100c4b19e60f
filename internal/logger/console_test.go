package logger

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/dreambundler/CloneWorks/internal/models"
)

// TestNewConsoleLogger verifies the constructor keeps the writer and normalizes the level.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "DEBUG")

		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "debug" {
			t.Errorf("expected log level %q, got %q", "debug", logger.logLevel)
		}
		if logger.colorOutput {
			t.Error("buffers must never get color output")
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		logger.LogInfo("dropped")
		logger.LogPlanBuilt(&models.Plan{})
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger := NewConsoleLogger(&bytes.Buffer{}, "loud")
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
	})
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		wantLines int
	}{
		{"trace", 5},
		{"debug", 4},
		{"info", 3},
		{"warn", 2},
		{"error", 1},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, tt.level)

			logger.LogTrace("t")
			logger.LogDebug("d")
			logger.LogInfo("i")
			logger.LogWarn("w")
			logger.LogError("e")

			lines := strings.Count(buf.String(), "\n")
			if lines != tt.wantLines {
				t.Errorf("level %s: got %d lines, want %d\n%s", tt.level, lines, tt.wantLines, buf.String())
			}
		})
	}
}

func TestConsoleLoggerFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogWarn("watch a thing")

	pattern := regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] \[WARN\] watch a thing\n$`)
	if !pattern.MatchString(buf.String()) {
		t.Errorf("unexpected format: %q", buf.String())
	}
}

func TestConsoleLoggerPlanEvents(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "debug")

	plan := &models.Plan{
		ID:      "plan_0123456789ab",
		Adapter: models.AdapterComfyUI,
		Steps: []models.Step{
			models.NewStep(models.LoadIdentityLoRAParams{LoRA: "L1", Strength: 1}),
			models.NewStep(models.RenderImageParams{}),
		},
	}

	logger.LogRequestLoaded("req.json", &models.Request{Mode: "image", Identity: &models.Identity{LoRA: "L1"}})
	logger.LogPlanBuilt(plan)
	logger.LogWorkflowRendered("comfyui", &models.Workflow{Meta: models.WorkflowMeta{PlanID: plan.ID}, Steps: plan.Steps})
	logger.LogOutputWritten("out/wf.json", 42)

	output := buf.String()
	expected := []string{
		"[DEBUG] Loaded request from req.json (identity=L1, mode=image)",
		"[INFO] Built plan plan_0123456789ab for comfyui: 2 step(s) [load_identity_lora, render_image]",
		"[INFO] Rendered comfyui workflow for plan plan_0123456789ab: 2 step(s)",
		"[DEBUG] Wrote 42 bytes to out/wf.json",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}
}

func TestConsoleLoggerRequestWithoutIdentity(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "debug").LogRequestLoaded("-", &models.Request{})

	if !strings.Contains(buf.String(), "(identity=none, mode=none)") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestConsoleLoggerConcurrentWrites(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.LogInfo("concurrent")
		}()
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "[INFO] concurrent\n"); got != 20 {
		t.Errorf("got %d complete lines, want 20", got)
	}
}

func TestNoOpLogger(t *testing.T) {
	n := NewNoOpLogger()
	n.LogInfo("x")
	n.LogPlanBuilt(nil)
	n.LogWorkflowRendered("comfyui", nil)
}
