// Package logging provides concrete implementations of the tptload.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted, optionally coloured messages to stderr
//   - FileLogger: Writes leveled slog records to the run log file
//   - MultiLogger: Fans every message out to several loggers
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
