/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log configures the process-wide slog logger: a console sink for
// humans, an optional rotated JSON file, and the editor session id taken
// from the context of each record.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"caseconstructor/internal/version"
)

// Options configures Init. FromEnv reads them from
// CASE_LOG_LEVEL, CASE_LOG_FORMAT, CASE_LOG_SOURCE and CASE_LOG_FILE;
// config.Load maps the same keys from config.yaml.
type Options struct {
	Level     string // debug|info|warn|error
	Format    string // console|json
	AddSource bool
	File      string    // rotated JSON log, off when empty
	Console   io.Writer // stderr if nil
}

// rotation limits for the file sink
const (
	fileMaxSizeMB  = 10
	fileMaxBackups = 3
	fileMaxAgeDays = 28
)

var (
	mu      sync.RWMutex
	current *slog.Logger
)

// L returns the application logger, building it from the environment on
// first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l == nil {
		Init(FromEnv())
		mu.RLock()
		l = current
		mu.RUnlock()
	}
	return l
}

// Init replaces the application logger and slog.Default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	out := opts.Console
	if out == nil {
		out = os.Stderr
	}

	var sinks []slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		sinks = append(sinks, slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	} else {
		sinks = append(sinks, newConsole(out, lvl, opts.AddSource))
	}
	if f := strings.TrimSpace(opts.File); f != "" {
		w := &lj.Logger{Filename: f, MaxSize: fileMaxSizeMB, MaxBackups: fileMaxBackups, MaxAge: fileMaxAgeDays, Compress: true}
		sinks = append(sinks, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}

	var h slog.Handler = fanout(sinks)
	if len(sinks) == 1 {
		h = sinks[0]
	}
	l := slog.New(sessionHandler{h}).With(
		slog.String("app", "caseconstructor"),
		slog.String("ver", version.Version),
	)

	mu.Lock()
	current = l
	mu.Unlock()
	slog.SetDefault(l)
}

// FromEnv builds Options from CASE_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("CASE_LOG_LEVEL", "info"),
		Format:    getenv("CASE_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("CASE_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("CASE_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type sessionKey struct{}

// WithSession stores an editor session id in ctx; records logged with that
// context carry a "session" attribute.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFrom returns the session id stored by WithSession.
func SessionFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok && id != ""
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// sessionHandler adds the context's session id to each record.
type sessionHandler struct{ slog.Handler }

func (s sessionHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := SessionFrom(ctx); ok {
		r = r.Clone()
		r.AddAttrs(slog.String("session", id))
	}
	return s.Handler.Handle(ctx, r)
}

func (s sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return sessionHandler{s.Handler.WithAttrs(attrs)}
}

func (s sessionHandler) WithGroup(name string) slog.Handler {
	return sessionHandler{s.Handler.WithGroup(name)}
}

// fanout sends every record to all sinks that accept its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
