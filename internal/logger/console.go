// Package logger provides logging implementations for cloneworks runs.
//
// Loggers report request decoding, plan construction and workflow rendering
// at leveled verbosity. Implementations are thread-safe and never write the
// plan or workflow documents themselves; those go to the command's output.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/dreambundler/CloneWorks/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is enabled when the writer is a terminal and NO_COLOR is unset.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive); anything
// else falls back to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a terminal that should receive colors.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	default:
		return "info"
	}
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog checks if a message at the given level passes the configured level.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// LogRequestLoaded logs a decoded request at DEBUG level.
// Format: "[HH:MM:SS] [DEBUG] Loaded request from <path> (identity=<lora>, mode=<mode>)"
func (cl *ConsoleLogger) LogRequestLoaded(path string, req *models.Request) {
	cl.logWithLevel("DEBUG", describeRequest(path, req))
}

// LogPlanBuilt logs a built plan at INFO level.
// Format: "[HH:MM:SS] [INFO] Built plan <id> for <adapter>: <n> step(s) [a, b]"
func (cl *ConsoleLogger) LogPlanBuilt(plan *models.Plan) {
	cl.logWithLevel("INFO", describePlan(plan))
}

// LogWorkflowRendered logs a rendered workflow at INFO level.
func (cl *ConsoleLogger) LogWorkflowRendered(adapter string, wf *models.Workflow) {
	cl.logWithLevel("INFO", describeWorkflow(adapter, wf))
}

// LogOutputWritten logs where a document was written at DEBUG level.
func (cl *ConsoleLogger) LogOutputWritten(path string, size int) {
	cl.logWithLevel("DEBUG", fmt.Sprintf("Wrote %d bytes to %s", size, path))
}

// logWithLevel logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, colorizeLevel(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// colorizeLevel wraps a level label in its ANSI color.
func colorizeLevel(level string) string {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func describeRequest(path string, req *models.Request) string {
	lora := "none"
	if req.HasIdentityLoRA() {
		lora = req.Identity.LoRA
	}
	mode := "none"
	if req != nil && req.Mode != "" {
		mode = req.Mode
	}
	return fmt.Sprintf("Loaded request from %s (identity=%s, mode=%s)", path, lora, mode)
}

func describePlan(plan *models.Plan) string {
	if plan == nil {
		return "Built empty plan"
	}
	names := make([]string, 0, len(plan.Steps))
	for _, name := range plan.StepNames() {
		names = append(names, string(name))
	}
	return fmt.Sprintf("Built plan %s for %s: %d step(s) [%s]", plan.ID, plan.Adapter, len(plan.Steps), strings.Join(names, ", "))
}

func describeWorkflow(adapter string, wf *models.Workflow) string {
	if wf == nil {
		return fmt.Sprintf("Rendered empty %s workflow", adapter)
	}
	return fmt.Sprintf("Rendered %s workflow for plan %s: %d step(s)", adapter, wf.Meta.PlanID, len(wf.Steps))
}

// NoOpLogger discards every message. Useful in tests.
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that discards everything.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogRequestLoaded(string, *models.Request) {}
func (n *NoOpLogger) LogPlanBuilt(*models.Plan) {}
func (n *NoOpLogger) LogWorkflowRendered(string, *models.Workflow) {}
func (n *NoOpLogger) LogOutputWritten(string, int) {}
