package cmd

import (
	"fmt"
	"io"

	"github.com/dreambundler/CloneWorks/internal/config"
	"github.com/dreambundler/CloneWorks/internal/logger"
	"github.com/dreambundler/CloneWorks/internal/models"
)

// Logger is the logging surface the commands report through.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogRequestLoaded(path string, req *models.Request)
	LogPlanBuilt(plan *models.Plan)
	LogWorkflowRendered(adapter string, wf *models.Workflow)
	LogOutputWritten(path string, size int)
}

// newRunLogger builds the console logger on errOut plus, when cfg.LogDir is
// set, a file logger. The returned close function must be called when the
// command finishes.
func newRunLogger(cfg *config.Config, errOut io.Writer) (Logger, func(), error) {
	console := logger.NewConsoleLogger(errOut, cfg.LogLevel)
	if cfg.LogDir == "" {
		return console, func() {}, nil
	}

	fileLog, err := logger.NewFileLoggerWithLevel(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	console.LogDebug(fmt.Sprintf("Writing run log to %s", fileLog.RunFile()))

	closeFn := func() {
		if err := fileLog.Close(); err != nil {
			console.LogWarn(err.Error())
		}
	}
	return &multiLogger{loggers: []Logger{console, fileLog}}, closeFn, nil
}

// multiLogger fans each event out to several loggers.
type multiLogger struct {
	loggers []Logger
}

func (ml *multiLogger) LogTrace(message string) {
	for _, l := range ml.loggers {
		l.LogTrace(message)
	}
}

func (ml *multiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

func (ml *multiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

func (ml *multiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

func (ml *multiLogger) LogRequestLoaded(path string, req *models.Request) {
	for _, l := range ml.loggers {
		l.LogRequestLoaded(path, req)
	}
}

func (ml *multiLogger) LogPlanBuilt(plan *models.Plan) {
	for _, l := range ml.loggers {
		l.LogPlanBuilt(plan)
	}
}

func (ml *multiLogger) LogWorkflowRendered(adapter string, wf *models.Workflow) {
	for _, l := range ml.loggers {
		l.LogWorkflowRendered(adapter, wf)
	}
}

func (ml *multiLogger) LogOutputWritten(path string, size int) {
	for _, l := range ml.loggers {
		l.LogOutputWritten(path, size)
	}
}
