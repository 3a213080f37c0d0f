/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Backend       BackendConfig `yaml:"backend"`
	Editor        EditorConfig  `yaml:"editor"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// The session cookie is not stored on disk; it lives in the OS keychain.
}

// EditorConfig seeds new editor sessions.
type EditorConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	CornerRadius float64 `yaml:"corner_radius"`
	CaseColor    string  `yaml:"case_color"`
	ProductID    string  `yaml:"product_id"`
	TextFont     string  `yaml:"text_font"`
	TextSize     float64 `yaml:"text_size"`
	TextColor    string  `yaml:"text_color"`
	FontDir      string  `yaml:"font_dir"` // optional directory of <Family>.ttf overrides
}

type StorageConfig struct {
	ExportLog string `yaml:"export_log"` // empty selects the default path
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system"},
		Backend:       BackendConfig{BaseURL: "https://api.vyatsu-junior.ru", TimeoutMs: 15000},
		Editor: EditorConfig{
			Width: 600, Height: 400, CornerRadius: 40, CaseColor: "#ffffff", ProductID: "1",
			TextFont: "Arial", TextSize: 14, TextColor: "#000000",
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigDir        = "CASE_CONFIG_DIR"
	EnvBackendURL       = "CASE_BACKEND_URL"
	EnvBackendTimeoutMs = "CASE_BACKEND_TIMEOUT_MS"
	EnvBackendTLSInsec  = "CASE_TLS_INSECURE"
	EnvTelemetryOptIn   = "CASE_TELEMETRY_OPT_IN"
	EnvCaseColor        = "CASE_COLOR"
	EnvProductID        = "CASE_PRODUCT_ID"
	EnvExportLog        = "CASE_EXPORT_LOG"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "CASE_LOG_LEVEL"
	EnvLogFormat = "CASE_LOG_FORMAT"
	EnvLogSource = "CASE_LOG_SOURCE"
	EnvLogFile   = "CASE_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "CaseConstructor"
	keyringCookie  = "session_cookie"
)

// TokenStore abstracts the keyring, so we can stub it in tests.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// SessionCookie returns the stored backend session cookie, empty when none is stored.
func SessionCookie() (string, error) {
	v, err := tokenStore.Get(keyringService, keyringCookie)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetSessionCookie stores the cookie; an empty value deletes it.
func SetSessionCookie(v string) error {
	if v == "" {
		err := tokenStore.Delete(keyringService, keyringCookie)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
	return tokenStore.Set(keyringService, keyringCookie, v)
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	base := strings.TrimSpace(os.Getenv(EnvConfigDir))
	if base == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot resolve config directory: %w", err)
		}
		base = filepath.Join(dir, "caseconstructor")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// The session cookie is loaded from the keyring and returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, "", err
	}
	applyEnvOverrides(&cfg)
	cookie, _ := SessionCookie()
	return cfg, cookie, nil
}

// Save writes the user config YAML and persists the cookie into the OS keyring (if non-empty).
func Save(cfg AppConfig, cookie string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if cookie != "" {
		return SetSessionCookie(cookie)
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Backend.TLSInsecure = src.Backend.TLSInsecure

	e, se := &dst.Editor, src.Editor
	if se.Width > 0 {
		e.Width = se.Width
	}
	if se.Height > 0 {
		e.Height = se.Height
	}
	if se.CornerRadius > 0 {
		e.CornerRadius = se.CornerRadius
	}
	if v := strings.TrimSpace(se.CaseColor); v != "" {
		e.CaseColor = v
	}
	if v := strings.TrimSpace(se.ProductID); v != "" {
		e.ProductID = v
	}
	if v := strings.TrimSpace(se.TextFont); v != "" {
		e.TextFont = v
	}
	if se.TextSize > 0 {
		e.TextSize = se.TextSize
	}
	if v := strings.TrimSpace(se.TextColor); v != "" {
		e.TextColor = v
	}
	if v := strings.TrimSpace(se.FontDir); v != "" {
		e.FontDir = v
	}
	if v := strings.TrimSpace(src.Storage.ExportLog); v != "" {
		dst.Storage.ExportLog = v
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTLSInsec)); v != "" {
		cfg.Backend.TLSInsecure = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvCaseColor)); v != "" {
		cfg.Editor.CaseColor = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProductID)); v != "" {
		cfg.Editor.ProductID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportLog)); v != "" {
		cfg.Storage.ExportLog = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envByKey = map[string]string{
	"backend.base_url":         EnvBackendURL,
	"backend.timeout_ms":       EnvBackendTimeoutMs,
	"backend.tls_insecure":     EnvBackendTLSInsec,
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"editor.case_color":        EnvCaseColor,
	"editor.product_id":        EnvProductID,
	"storage.export_log":       EnvExportLog,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envByKey[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Timeout returns the backend timeout, falling back to the default for non-positive values.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutMs <= 0 {
		return time.Duration(Defaults().Backend.TimeoutMs) * time.Millisecond
	}
	return time.Duration(b.TimeoutMs) * time.Millisecond
}
