package logger

// Logger exposes leveled logging to the core packages without binding them to
// a concrete logging backend.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message together with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
