package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

const (
	ansiReset     = "\033[0m"
	ansiRed       = "\033[31m"
	ansiGreen     = "\033[32m"
	ansiYellow    = "\033[33m"
	ansiCyan      = "\033[36m"
	ansiGray      = "\033[90m"
	ansiUnderline = "\033[4m"
)

//nolint:gochecknoglobals
var levelColors = map[slog.Level]string{
	slog.LevelDebug: ansiCyan,
	slog.LevelInfo:  ansiGreen,
	slog.LevelWarn:  ansiYellow,
	slog.LevelError: ansiRed,
}

// ConsoleHandler is a human-readable slog.Handler for development.
// Records are filtered per logger name using PkgLevels, where a key
// matches the logger name itself or any dotted parent of it, and the
// empty key applies to every logger.
type ConsoleHandler struct {
	Output    io.Writer
	Level     slog.Leveler
	PkgLevels map[string]slog.Level
	// NoColor disables ANSI escape sequences.
	NoColor bool

	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	floor, ok := h.pkgLevel(loggerName(attrs))
	if !ok {
		floor = h.Level.Level()
	}

	if r.Level < floor {
		return nil
	}

	var b strings.Builder

	b.WriteString(h.color(ansiGray, r.Time.Format("15:04:05.000000")))
	b.WriteString(" " + h.color(levelColors[r.Level], "["+r.Level.String()+"]"))
	b.WriteString(" " + r.Message)

	if len(attrs) > 0 {
		var prefix string
		if len(h.groups) > 0 {
			prefix = strings.Join(h.groups, ".") + "."
		}

		b.WriteString(" " + h.color(ansiGray, "|"))
		h.writeAttrs(&b, prefix, attrs)
	}

	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fn := frame.Function[strings.LastIndexByte(frame.Function, '/')+1:]

		b.WriteString("\n-> " + h.color(ansiGray, fn+"()"))
		b.WriteString(" in " + h.color(ansiUnderline, frame.File+":"+strconv.Itoa(frame.Line)))
	}

	if h.mu != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
	}

	if _, err := fmt.Fprintln(h.Output, b.String()); err != nil {
		return fmt.Errorf("write log record: %w", err)
	}

	return nil
}

func (h *ConsoleHandler) writeAttrs(b *strings.Builder, prefix string, attrs []slog.Attr) {
	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			h.writeAttrs(b, prefix+attr.Key+".", attr.Value.Group())

			continue
		}

		b.WriteString(" " + prefix + attr.Key + "=" + h.color(ansiGray, attr.Value.String()))
	}
}

func (h *ConsoleHandler) color(code, s string) string {
	if h.NoColor || code == "" {
		return s
	}

	return code + s + ansiReset
}

func (h *ConsoleHandler) pkgLevel(name string) (slog.Level, bool) {
	for {
		if level, ok := h.PkgLevels[name]; ok {
			return level, true
		}

		if name == "" {
			return 0, false
		}

		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[:i]
		} else {
			name = ""
		}
	}
}

func loggerName(attrs []slog.Attr) string {
	for _, attr := range attrs {
		if attr.Key == loggerKey {
			return attr.Value.String()
		}
	}

	return ""
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)

	return &clone
}

// WithGroup implements slog.Handler.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)

	return &clone
}

// Enabled implements slog.Handler. Package levels may lower the threshold
// below Level, so the final decision happens in Handle.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := h.Level.Level()

	for _, pkgLevel := range h.PkgLevels {
		threshold = min(threshold, pkgLevel)
	}

	return threshold <= level
}
