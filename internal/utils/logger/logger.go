package logger

import (
	"context"
	"encoding/json"
	stdlog "log"
	"os"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// New returns the logger for the given environment: pretty debug output for
// local runs, JSON debug for dev, JSON info for prod.
func New(env string) *slog.Logger {
	switch env {
	case EnvDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case EnvProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return setupPrettySlog()
	}
}

func setupPrettySlog() *slog.Logger {
	opts := prettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
	}
	return slog.New(opts.newPrettyHandler(os.Stdout))
}

type prettyHandlerOptions struct {
	SlogOpts *slog.HandlerOptions
}

type prettyHandler struct {
	opts  prettyHandlerOptions
	l     *stdlog.Logger
	attrs []slog.Attr
}

func (opts prettyHandlerOptions) newPrettyHandler(out *os.File) *prettyHandler {
	return &prettyHandler{
		opts: opts,
		l:    stdlog.New(out, "", stdlog.Ltime),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.SlogOpts != nil && h.opts.SlogOpts.Level != nil {
		minLevel = h.opts.SlogOpts.Level.Level()
	}
	return level >= minLevel
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.BlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}

	var fieldsStr string
	if len(fields) > 0 {
		b, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
		fieldsStr = string(b)
	}

	h.l.Println(level, color.CyanString(r.Message), color.WhiteString(fieldsStr))
	return nil
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyHandler{
		opts:  h.opts,
		l:     h.l,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *prettyHandler) WithGroup(_ string) slog.Handler {
	return h
}
