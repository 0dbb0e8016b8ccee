package console

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// WriterService is the service name a Sink takes its writer from when one
// is registered.
const WriterService = "console_writer"

// Sink is where a Logger writes.
type Sink struct {
	// Level overrides the logger's level when set.
	Level string
	// Output is stdout, stderr or discard. Defaults to stderr.
	Output string
	Writer io.Writer `inject:"console_writer,optional"`
}

func (s *Sink) writer() io.Writer {
	if s.Writer != nil {
		return s.Writer
	}
	switch strings.ToLower(s.Output) {
	case "stdout":
		return os.Stdout
	case "discard":
		return io.Discard
	}
	return os.Stderr
}

// Logger is a console logger assembled from constructs.
type Logger struct {
	Prefix string
	Level  string
	// Format is text or json.
	Format string
	Sink   *Sink

	once   sync.Once
	logger *slog.Logger
}

// NewLogger creates a logger with a message prefix.
func NewLogger(prefix string) *Logger {
	return &Logger{Prefix: prefix}
}

// Slog returns the structured logger configured by the construct. It is
// created on first use.
func (l *Logger) Slog() *slog.Logger {
	l.once.Do(func() {
		sink := l.Sink
		if sink == nil {
			sink = &Sink{}
		}
		level := l.Level
		if sink.Level != "" {
			level = sink.Level
		}

		opts := &slog.HandlerOptions{Level: parseLevel(level)}
		var handler slog.Handler
		if strings.EqualFold(l.Format, "json") {
			handler = slog.NewJSONHandler(sink.writer(), opts)
		} else {
			handler = slog.NewTextHandler(sink.writer(), opts)
		}
		l.logger = slog.New(handler)
		if l.Prefix != "" {
			l.logger = l.logger.With("prefix", l.Prefix)
		}
	})
	return l.logger
}

func (l *Logger) String() string {
	level := l.Level
	if l.Sink != nil && l.Sink.Level != "" {
		level = l.Sink.Level
	}
	return fmt.Sprintf("ConsoleLogger(prefix=%q level=%s)", l.Prefix, level)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
