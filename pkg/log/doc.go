// Package log provides the logging abstraction used by monet.
//
// The Logger interface can be implemented by any logging library. A zerolog
// adapter and a no-op logger are provided:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	logger := log.NewNoopLogger()
//
// Implement Logger to route engine logs into existing infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
