/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// console prints one line per record for a terminal:
//
//	15:04:05.000 INF [editor] image inserted session=… w=400
//
// The component becomes a bracketed prefix; app and ver are left to the
// JSON sinks.
type console struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	source    bool
	component string
	fields    string // preformatted " k=v" pairs from WithAttrs
	group     string // "a.b." prefix for keys
}

func newConsole(w io.Writer, level slog.Leveler, source bool) *console {
	return &console{mu: &sync.Mutex{}, w: w, level: level, source: source}
}

func (c *console) Enabled(_ context.Context, l slog.Level) bool { return l >= c.level.Level() }

func (c *console) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	if c.component != "" {
		b.WriteString(" [")
		b.WriteString(c.component)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(c.fields)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, c.group, a)
		return true
	})
	if c.source && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if f.File != "" {
			b.WriteString(" src=")
			b.WriteString(f.File)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(f.Line))
		}
	}
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.w, b.String())
	return err
}

func (c *console) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *c
	var b strings.Builder
	b.WriteString(c.fields)
	for _, a := range attrs {
		switch {
		case c.group == "" && a.Key == "component":
			n.component = a.Value.String()
		case c.group == "" && (a.Key == "app" || a.Key == "ver"):
		default:
			writeAttr(&b, c.group, a)
		}
	}
	n.fields = b.String()
	return &n
}

func (c *console) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}
	n := *c
	n.group = c.group + name + "."
	return &n
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, p, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(formatValue(a.Value))
}

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	}
	return "ERR"
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Microsecond).String()
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " =\"") {
			return strconv.Quote(s)
		}
		return s
	}
	return v.String()
}
