package logger

import corelogger "github.com/shipmind-ai/shipmind/core/logger"

// Logger mirrors the core logger interface so callers wiring infrastructure
// do not need a second import.
type Logger = corelogger.Logger

// NopLogger re-exports the core no-op implementation.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component. The output format is detected
// via the APP_ENV variable: "dev" selects the console writer, anything else
// structured JSON.
func New(component string) Logger {
	return NewZerologLogger(component)
}
