package core

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Severity of a log message, ordered from least to most severe.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	default:
		return "INVALID"
	}
}

// LoggingCallback receives every formatted log message. When set it replaces
// the default logger as the sink.
type LoggingCallback func(severity Severity, message string)

// PanicHandler is invoked on any message at error severity. It is expected
// not to return normally; if it does, the logging layer panics afterwards.
type PanicHandler func(message string)

var once sync.Once

type logger struct {
	*log.Logger

	mu           sync.Mutex
	callback     LoggingCallback
	panicHandler PanicHandler
}

var singleton *logger

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "Vetro 🔮 ",
			})
			l.SetLevel(log.DebugLevel)
			singleton = &logger{Logger: l}
		})
	return singleton
}

// SetLoggingCallback routes all messages to cb instead of the default
// logger. Pass nil to restore the default sink.
func SetLoggingCallback(cb LoggingCallback) {
	l := getLogger()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callback = cb
}

// SetPanicHandler installs the handler invoked on error-severity messages.
// With a handler installed the library effectively runs in a panic-on-first-
// error mode; without one errors are logged and callers check returned
// handles. Pass nil to remove the handler.
func SetPanicHandler(h PanicHandler) {
	l := getLogger()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.panicHandler = h
}

func (l *logger) emit(severity Severity, msg string, args ...interface{}) {
	formatted := msg
	if len(args) > 0 {
		formatted = fmt.Sprintf(msg, args...)
	}

	l.mu.Lock()
	cb := l.callback
	handler := l.panicHandler
	l.mu.Unlock()

	if severity >= SeverityError && handler != nil {
		handler(formatted)
		panic(formatted)
	}

	if cb != nil {
		cb(severity, formatted)
		return
	}

	switch severity {
	case SeverityDebug:
		l.Debug(formatted)
	case SeverityInfo:
		l.Info(formatted)
	case SeverityWarn:
		l.Warn(formatted)
	case SeverityError:
		l.Error(formatted)
	}
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().emit(SeverityDebug, msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().emit(SeverityInfo, msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().emit(SeverityWarn, msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().emit(SeverityError, msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
