package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/quewww/blog/internal/domain"
	context_ "github.com/quewww/blog/internal/infra/context"
	"github.com/quewww/blog/internal/infra/logging"
)

func newConsole(buf *bytes.Buffer, level slog.Level, pkgLevels map[string]slog.Level) logging.Handler {
	return logging.NewTracingHandler(&logging.ConsoleHandler{
		Output:    buf,
		Level:     level,
		PkgLevels: pkgLevels,
		NoColor:   true,
	})
}

func TestConsoleHandler_PkgLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		logger  string
		level   slog.Level
		pkg     map[string]slog.Level
		wantOut bool
	}{
		{name: "below global level", logger: "svc.blogsvc", level: slog.LevelDebug, wantOut: false},
		{name: "at global level", logger: "svc.blogsvc", level: slog.LevelInfo, wantOut: true},
		{
			name:    "parent package lowers level",
			logger:  "svc.blogsvc.post_service",
			level:   slog.LevelDebug,
			pkg:     map[string]slog.Level{"svc": slog.LevelDebug},
			wantOut: true,
		},
		{
			name:    "exact package raises level",
			logger:  "infra.transport.http",
			level:   slog.LevelWarn,
			pkg:     map[string]slog.Level{"infra.transport.http": slog.LevelError},
			wantOut: false,
		},
		{
			name:    "unrelated package keeps global level",
			logger:  "repo.post",
			level:   slog.LevelDebug,
			pkg:     map[string]slog.Level{"svc": slog.LevelDebug},
			wantOut: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			log := slog.New(newConsole(&buf, slog.LevelInfo, tt.pkg)).With("logger", tt.logger)
			log.Log(context.Background(), tt.level, "hello")

			if got := buf.Len() > 0; got != tt.wantOut {
				t.Errorf("output = %q, want output %v", buf.String(), tt.wantOut)
			}
		})
	}
}

func TestTracingHandler_AddsContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := context_.WithTraceID(context.Background(), "trace-1")
	ctx = context_.WithUser(ctx, &domain.User{ID: 42, Username: "alice"})

	slog.New(newConsole(&buf, slog.LevelDebug, nil)).
		With(logging.Group("post", "id", 7)).
		InfoContext(ctx, "post created")

	out := buf.String()
	for _, want := range []string{"post created", "post.id=7", "trace.id=trace-1", "session.user_id=42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestGetLogger_Discard(t *testing.T) {
	t.Parallel()

	// unconfigured loggers discard everything
	log := logging.GetLogger("test")
	if log.Enabled(context.Background(), slog.LevelError) {
		t.Error("unconfigured logger is enabled")
	}
}
