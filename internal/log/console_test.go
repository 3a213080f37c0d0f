/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleFormatsOneLine(t *testing.T) {
	var buf bytes.Buffer
	h := newConsole(&buf, slog.LevelWarn, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}

	l := slog.New(h).With(slog.String("app", "caseconstructor"), slog.String("component", "render"), slog.String("k", "v"))
	l.WithGroup("grp").Error("boom", slog.Int("n", 42), slog.Float64("pi", 3.14), slog.String("name", "Ваш текст"))

	out := buf.String()
	for _, want := range []string{" ERR [render] boom", " k=v", " grp.n=42", " grp.pi=3.14", ` grp.name="Ваш текст"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "app=") {
		t.Fatalf("static attrs belong to the JSON sinks: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one line, got %q", out)
	}
}

func TestConsoleFlattensGroupAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(newConsole(&buf, slog.LevelDebug, false))
	l.Debug("sized", slog.Group("size", slog.Float64("w", 600), slog.Float64("h", 400)), slog.Duration("took", 1500*time.Microsecond))
	out := buf.String()
	if !strings.Contains(out, "DBG sized size.w=600 size.h=400 took=1.5ms") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConsoleAddsSource(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newConsole(&buf, slog.LevelInfo, true)).Info("here")
	if !strings.Contains(buf.String(), "console_test.go:") {
		t.Fatalf("expected source location, got %q", buf.String())
	}
}

func TestLevelTags(t *testing.T) {
	cases := map[slog.Level]string{
		slog.LevelDebug: "DBG", slog.LevelInfo: "INF", slog.LevelWarn: "WRN", slog.LevelError: "ERR", slog.LevelError + 4: "ERR",
	}
	for l, want := range cases {
		if got := levelTag(l); got != want {
			t.Fatalf("levelTag(%v) = %s, want %s", l, got, want)
		}
	}
}
