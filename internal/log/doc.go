// Package log constructs the application's slog loggers.
//
// All loggers built here wrap their handler in a RedactingHandler so
// that cookies and authorization headers from site configurations
// never appear in log output.
package log
