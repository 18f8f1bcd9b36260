package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/natefinch/lumberjack"

	"chequeos-rutinas/internal/config"
)

// sink — один получатель записей. Ошибки best-effort получателей
// не возвращаются вызывающему.
type sink struct {
	handler    slog.Handler
	bestEffort bool
}

// teeHandler раздаёт запись всем получателям, каждый со своим уровнем.
type teeHandler struct {
	sinks []sink
}

func newTeeHandler(sinks ...sink) *teeHandler {
	return &teeHandler{sinks: sinks}
}

func (t *teeHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	for _, s := range t.sinks {
		if s.handler.Enabled(ctx, lvl) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range t.sinks {
		if !s.handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.handler.Handle(ctx, r.Clone()); err != nil && !s.bestEffort {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t *teeHandler) derive(fn func(slog.Handler) slog.Handler) *teeHandler {
	next := make([]sink, len(t.sinks))
	for i, s := range t.sinks {
		next[i] = sink{handler: fn(s.handler), bestEffort: s.bestEffort}
	}
	return &teeHandler{sinks: next}
}

// consoleHandler — основной вывод: JSON в dev, текст в остальных окружениях.
func consoleHandler(env string, w io.Writer) slog.Handler {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}
	if env == envDev {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// errorFileHandler пишет только записи уровня Error и выше.
func errorFileHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelError})
}

func setupLogger(env string, errLog config.ErrorLog) (*slog.Logger, func()) {
	console := consoleHandler(env, os.Stdout)
	if errLog.Path == "" {
		return slog.New(console), func() {}
	}

	errorFile := &lumberjack.Logger{
		Filename:   errLog.Path,
		MaxSize:    errLog.MaxSizeMB,
		MaxBackups: errLog.MaxBackups,
		MaxAge:     errLog.MaxAgeDays,
		Compress:   true,
	}

	logger := slog.New(newTeeHandler(
		sink{handler: console},
		sink{handler: errorFileHandler(errorFile), bestEffort: true},
	))
	return logger, func() { errorFile.Close() }
}
