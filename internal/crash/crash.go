/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at the process edge into a report file, a last
// frame PNG (when the editor had one) and an optional opt-in upload.
package crash

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "caseconstructor/internal/log"
	"caseconstructor/internal/telemetry"
	"caseconstructor/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Context describes what was running when the process panicked. The zero
// value (or nil) writes a plain report into the temp directory.
type Context struct {
	Dir       string
	SessionID string
	// LastFrame returns the last rendered editor frame. It must not block on
	// the crashed goroutine.
	LastFrame func() (*image.RGBA, error)
}

// Recover captures a panic, logs an error with stacktrace,
// writes an error report file and saves the last editor frame.
//
// Usage: defer crash.Recover(cc)
func Recover(cc *Context) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, _ := writeReport(cc, r, stack)
		if path, err := writeFrame(cc, reportPath); err != nil {
			l.Error("saving last frame failed", slog.Any("err", err))
		} else if path != "" {
			l.Info("last frame saved", slog.String("path", path))
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		exitFn(2)
	}
}

func reportDir(cc *Context) string {
	if cc != nil && cc.Dir != "" {
		_ = os.MkdirAll(cc.Dir, 0o755)
		return cc.Dir
	}
	return os.TempDir()
}

func writeReport(cc *Context, panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(cc), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Case Constructor Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if cc != nil && cc.SessionID != "" {
		_, _ = fmt.Fprintf(&buf, "Session: %s\n", cc.SessionID)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}

	// optionally upload anonymized crash report (opt-in via env)
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

// writeFrame stores the last frame next to the report as <report>.png.
func writeFrame(cc *Context, reportPath string) (string, error) {
	if cc == nil || cc.LastFrame == nil {
		return "", nil
	}
	img, err := cc.LastFrame()
	if err != nil || img == nil {
		return "", err
	}
	path := reportPath[:len(reportPath)-len(filepath.Ext(reportPath))] + ".png"
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}
