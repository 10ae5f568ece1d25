// Package logger builds the application's slog.Logger and a few attribute
// helpers shared by the proxy: error attributes carrying stack traces and
// per-request correlation ids.
package logger
