package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func New(lvl string, addSource bool, enviroment string) *slog.Logger {
	return NewWithWriter(os.Stdout, lvl, addSource, enviroment)
}

// NewWithWriter is like New but writes records to w.
func NewWithWriter(w io.Writer, lvl string, addSource bool, enviroment string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(lvl),
		AddSource: addSource,
	}

	var handler slog.Handler
	if strings.ToLower(enviroment) == "prod" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		slog.String("environment", enviroment),
	)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Err returns an "err" attribute. Errors created or wrapped with
// github.com/pkg/errors also carry their stack trace under "stack".
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "<nil>")
	}

	var st stackTracer
	if !errors.As(err, &st) {
		return slog.String("err", err.Error())
	}

	return slog.Group("err",
		slog.String("msg", err.Error()),
		slog.String("stack", fmt.Sprintf("%+v", st.StackTrace())),
	)
}

// RequestID returns a fresh id used to correlate the log records of a
// single proxied request.
func RequestID() string {
	return uuid.NewString()
}
