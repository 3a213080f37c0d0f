/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	keyring.MockInit()
	return dir
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, cookie, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cookie != "" {
		t.Fatalf("expected no cookie, got %q", cookie)
	}
	if cfg.Backend.BaseURL != "https://api.vyatsu-junior.ru" || cfg.Editor.CaseColor != "#ffffff" || cfg.Editor.TextSize != 14 {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestEnvOverridesBackendURL(t *testing.T) {
	isolate(t)
	t.Setenv(EnvBackendURL, "https://example.test:8443")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Backend.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Backend.BaseURL = %q, want %q", got, want)
	}
	if name, ok := EnvOverrideFor("backend.base_url"); !ok || name != EnvBackendURL {
		t.Fatalf("EnvOverrideFor = %q %v", name, ok)
	}
	if _, ok := EnvOverrideFor("editor.width"); ok {
		t.Fatalf("editor.width has no env override")
	}
}

func TestEnvOverridesTelemetryAndEditor(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTelemetryOptIn, "yes")
	t.Setenv(EnvCaseColor, "#123456")
	t.Setenv(EnvProductID, "42")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn || cfg.Editor.CaseColor != "#123456" || cfg.Editor.ProductID != "42" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := isolate(t)
	cfg := Defaults()
	cfg.Editor.Width = 800
	cfg.Editor.TextFont = "Georgia"
	cfg.Logging.Level = "debug"
	if err := Save(cfg, "session=abc"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, cookie, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Editor.Width != 800 || got.Editor.TextFont != "Georgia" || got.Logging.Level != "debug" {
		t.Fatalf("round trip lost values: %#v", got)
	}
	if cookie != "session=abc" {
		t.Fatalf("cookie = %q", cookie)
	}
	if err := SetSessionCookie(""); err != nil {
		t.Fatalf("delete cookie: %v", err)
	}
	if c, _ := SessionCookie(); c != "" {
		t.Fatalf("cookie not deleted: %q", c)
	}
	if err := SetSessionCookie(""); err != nil {
		t.Fatalf("deleting a missing cookie must succeed: %v", err)
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("editor: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestMergeKeepsDefaultsForZeroValues(t *testing.T) {
	dst := Defaults()
	var src AppConfig
	src.Editor.Height = 300
	src.Storage.ExportLog = "/tmp/x.sqlite"
	mergeInto(&dst, &src)
	if dst.Editor.Height != 300 || dst.Editor.Width != 600 || dst.Editor.CaseColor != "#ffffff" || dst.Storage.ExportLog != "/tmp/x.sqlite" {
		t.Fatalf("unexpected merge: %#v", dst)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = " DEBUG "
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/case.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/case.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/case.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/case.log" {
		t.Fatalf("logging env overrides not applied: %#v", cfg.Logging)
	}
}

func TestTimeout(t *testing.T) {
	if got := (BackendConfig{TimeoutMs: 250}).Timeout(); got != 250*time.Millisecond {
		t.Fatalf("Timeout() = %v", got)
	}
	if got := (BackendConfig{}).Timeout(); got != 15*time.Second {
		t.Fatalf("default Timeout() = %v", got)
	}
}
