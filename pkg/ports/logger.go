// Package ports defines the interfaces and value types shared by the
// container readers, decoders, converters and the driver loop.
package ports

import "fmt"

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for component-level processing details.
	LevelDebug LogLevel = iota
	// LevelInfo is for run-level progress and results.
	LevelInfo
	// LevelWarn is for recoverable problems such as a failed inference.
	LevelWarn
	// LevelError is for failures that end a run.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	l, err := LookupLogLevel(s)
	if err != nil {
		return LevelInfo
	}
	return l
}

// LookupLogLevel parses a string into a LogLevel and rejects unknown names.
func LookupLogLevel(s string) (LogLevel, error) {
	switch s {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "quiet":
		return LevelQuiet, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger abstracts logging operations with multi-language support.
// The msg parameter is a translatable format string.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
