package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var levelVar = new(slog.LevelVar)

// L is the process-wide logger. It writes JSON to stderr so it never mixes
// with the conversation printed on stdout.
var L = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))

// Init replaces L with a handler writing to w. format is "json" or "text".
func Init(w io.Writer, format string) {
	opts := &slog.HandlerOptions{Level: levelVar}
	switch strings.ToLower(format) {
	case "text":
		L = slog.New(slog.NewTextHandler(w, opts))
	default:
		L = slog.New(slog.NewJSONHandler(w, opts))
	}
}

// SetLevel configures the global log level (debug, info, warn, error).
func SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
}

// Level reports the currently configured level.
func Level() slog.Level {
	return levelVar.Level()
}
