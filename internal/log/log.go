// Package log provides structured, colored logging for the wallet core.
//
// Packages under pkg/ do not log. Callers in internal/ log through the
// component loggers below, tagged with currency and network where one
// applies. Key material is never logged; addresses and hashes are.
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers for different parts of the system.
var (
	Wallet      zerolog.Logger
	Account     zerolog.Logger
	Transaction zerolog.Logger
	Consensus   zerolog.Logger
	Storage     zerolog.Logger
	Manager     zerolog.Logger
)

var (
	fileMu sync.Mutex
	file   *os.File
)

func init() {
	// Default to colored console output
	Logger = NewConsoleLogger(os.Stderr, "info")
	initComponentLoggers()
}

// Init initializes the logger with the given configuration.
// When path is non-empty, logs are written to both the console (colored or
// JSON depending on jsonOutput) and the file (always JSON for machine parsing).
// A file opened by an earlier Init is closed.
func Init(level string, jsonOutput bool, path string) error {
	console := consoleWriter(os.Stderr, jsonOutput)

	var f *os.File
	if path != "" {
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		Logger = newLogger(zerolog.MultiLevelWriter(console, f), level)
	} else {
		Logger = newLogger(console, level)
	}
	initComponentLoggers()

	fileMu.Lock()
	old := file
	file = f
	fileMu.Unlock()
	if old != nil {
		return old.Close()
	}
	return nil
}

// Close closes the log file opened by Init, if any. Logging continues on
// the console.
func Close() error {
	fileMu.Lock()
	f := file
	file = nil
	fileMu.Unlock()
	if f == nil {
		return nil
	}
	Logger = newLogger(consoleWriter(os.Stderr, false), Logger.GetLevel().String())
	initComponentLoggers()
	return f.Close()
}

func consoleWriter(w io.Writer, jsonOutput bool) io.Writer {
	if jsonOutput {
		return w
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    false,
	}
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// NewConsoleLogger creates a colored console logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	return newLogger(consoleWriter(w, false), level)
}

// NewJSONLogger creates a structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	return newLogger(w, level)
}

// parseLevel converts a string level to zerolog.Level. Unknown levels
// fall back to info.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// initComponentLoggers initializes loggers for each component.
func initComponentLoggers() {
	Wallet = WithComponent("wallet")
	Account = WithComponent("account")
	Transaction = WithComponent("transaction")
	Consensus = WithComponent("consensus")
	Storage = WithComponent("storage")
	Manager = WithComponent("manager")
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// WithNetwork returns a logger tagged with a currency and network,
// e.g. ("eth", "sepolia").
func WithNetwork(base zerolog.Logger, currency, network string) zerolog.Logger {
	return base.With().Str("currency", currency).Str("network", network).Logger()
}

// Timed logs the duration of an operation at debug level on l when the
// returned func is called.
//
//	defer log.Timed(logger, "restore")()
func Timed(l zerolog.Logger, op string) func() {
	start := time.Now()
	return func() {
		l.Debug().
			Str("operation", op).
			Dur("duration", time.Since(start)).
			Msg("Timed")
	}
}
