package forward

import (
	"fmt"

	"github.com/simult/proxyd/pkg/logger"
)

// Level is the severity of a log record emitted by this package, matching
// the three levels the engine's external log contract distinguishes.
type Level int

// Severities a Logger may be called with.
const (
	Debug Level = iota
	Info
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger receives log records keyed by severity and the opaque client
// identifier the caller associated with a connection. Implementations must
// be safe for concurrent use; one worker per client calls into it.
type Logger interface {
	Log(level Level, clientID, msg string)
}

// NullLogger discards everything.
type NullLogger struct{}

// Log implements Logger.
func (NullLogger) Log(Level, string, string) {}

// StdLogger dispatches to one of three underlying logger.Logger values by
// level, the same per-level fan-out cmd/simult-server wires up with
// log.New(os.Stdout, "ERROR ", ...) etc.
type StdLogger struct {
	ErrorLogger logger.Logger
	InfoLogger  logger.Logger
	DebugLogger logger.Logger
}

// Log implements Logger.
func (s StdLogger) Log(level Level, clientID, msg string) {
	var l logger.Logger
	switch level {
	case Error:
		l = s.ErrorLogger
	case Info:
		l = s.InfoLogger
	default:
		l = s.DebugLogger
	}
	if l == nil {
		return
	}
	l.Printf("client %s: %s", clientID, msg)
}

func logf(log Logger, level Level, clientID, format string, args ...interface{}) {
	if log == nil {
		return
	}
	log.Log(level, clientID, fmt.Sprintf(format, args...))
}
