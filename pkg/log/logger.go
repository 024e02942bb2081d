package log

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	adapter "github.com/monetlab/monet/internal/adapters/log"
	"github.com/monetlab/monet/internal/ports"
)

// Logger provides structured logging capabilities.
// Implementations can wrap zerolog, zap, logrus, or any other logging library.
type Logger = ports.Logger

// Field represents a key-value pair for structured logging.
type Field = ports.Field

// ZerologAdapter implements Logger using zerolog.
type ZerologAdapter = adapter.ZerologAdapter

// NoopLogger implements Logger by discarding all log messages.
type NoopLogger = adapter.NoopLogger

// NewZerologAdapter creates a zerolog adapter with console output on stderr.
func NewZerologAdapter() *ZerologAdapter {
	return adapter.NewZerologAdapter()
}

// NewConsoleAdapter creates a zerolog adapter with console output to w.
func NewConsoleAdapter(w io.Writer) *ZerologAdapter {
	return adapter.NewConsoleAdapter(w)
}

// NewZerologAdapterWithLogger creates an adapter wrapping an existing zerolog.Logger.
func NewZerologAdapterWithLogger(logger zerolog.Logger) *ZerologAdapter {
	return adapter.NewZerologAdapterWithLogger(logger)
}

// NewNoopLogger creates a new no-op logger.
func NewNoopLogger() *NoopLogger {
	return adapter.NewNoopLogger()
}

// String creates a string field.
func String(key, value string) Field { return ports.String(key, value) }

// Int creates an int field.
func Int(key string, value int) Field { return ports.Int(key, value) }

// Float64 creates a float64 field.
func Float64(key string, value float64) Field { return ports.Float64(key, value) }

// Bool creates a bool field.
func Bool(key string, value bool) Field { return ports.Bool(key, value) }

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field { return ports.Duration(key, value) }

// Err creates an error field with key "error".
func Err(err error) Field { return ports.Err(err) }

// Any creates a field with any value.
func Any(key string, value interface{}) Field { return ports.Any(key, value) }
