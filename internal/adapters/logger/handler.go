package logger

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

// levelStyle is the prefix and color of one console level.
type levelStyle struct {
	prefix string
	color  lipgloss.Color
}

func styleFor(level slog.Level) levelStyle {
	switch {
	case level >= slog.LevelError:
		return levelStyle{prefix: style.Cross + " ", color: style.Red}
	case level >= slog.LevelWarn:
		return levelStyle{prefix: style.Warning + " ", color: style.Yellow}
	case level >= slog.LevelInfo:
		return levelStyle{}
	default:
		return levelStyle{prefix: style.Dot + " ", color: style.Ash}
	}
}

// consoleHandler writes one line per record, colored by level, with the
// attributes appended as key=value pairs.
type consoleHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	attrs  []string
	groups []string
}

func newConsoleHandler(w io.Writer, level slog.Leveler) *consoleHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &consoleHandler{out: output.New(w), level: level}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

//nolint:gocritic // slog.Handler passes records by value
func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	ls := styleFor(r.Level)

	var line strings.Builder
	line.WriteString(ls.prefix)
	line.WriteString(r.Message)
	for _, a := range h.attrs {
		line.WriteString(" " + a)
	}
	r.Attrs(func(a slog.Attr) bool {
		line.WriteString(" " + h.pair(a))
		return true
	})

	text := h.out.String(line.String())
	if ls.color != "" {
		text = text.Foreground(h.out.Color(string(ls.color)))
	}
	_, err := io.WriteString(h.out, text.String()+"\n")
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.pair(a))
	}
	return next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *consoleHandler) clone() *consoleHandler {
	return &consoleHandler{
		out:    h.out,
		level:  h.level,
		attrs:  slices.Clone(h.attrs),
		groups: slices.Clone(h.groups),
	}
}

// pair renders a as key=value, prefixing the key with the open groups.
func (h *consoleHandler) pair(a slog.Attr) string {
	key := strings.Join(append(slices.Clone(h.groups), a.Key), ".")
	return key + "=" + a.Value.String()
}
