/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package app assembles the collaborators of an editor session from the user
// configuration: fonts, the backend client, the export pipeline, the export
// log and telemetry. Both the CLI and the desktop UI start from here.
package app

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"caseconstructor/internal/backend"
	"caseconstructor/internal/config"
	"caseconstructor/internal/editor"
	"caseconstructor/internal/export"
	applog "caseconstructor/internal/log"
	"caseconstructor/internal/render"
	"caseconstructor/internal/storage"
	"caseconstructor/internal/telemetry"
	"caseconstructor/internal/textlayout"
	"caseconstructor/internal/viewport"
)

// App holds long-lived collaborators. Close releases them.
type App struct {
	Config    config.AppConfig
	Backend   *backend.Client
	Fonts     *textlayout.FontLibrary
	Telemetry telemetry.Sink
	Log       *slog.Logger

	storeOnce sync.Once
	store     *storage.Store
	storeErr  error
	tel       *telemetry.Client
}

// New builds an App from cfg. cookie is the stored backend session, may be empty.
func New(cfg config.AppConfig, cookie string) (*App, error) {
	l := applog.WithComponent("app")
	fonts, err := loadFonts(cfg.Editor.FontDir, l)
	if err != nil {
		return nil, err
	}
	hc := &http.Client{Timeout: cfg.Backend.Timeout()}
	if cfg.Backend.TLSInsecure {
		l.Warn("TLS verification disabled for backend")
		hc.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}} //nolint:gosec // opt-in dev setting
	}
	a := &App{
		Config:  cfg,
		Backend: backend.NewClient(cfg.Backend.BaseURL, cookie).WithHTTPClient(hc),
		Fonts:   fonts,
		Log:     l,
	}
	tcfg := telemetry.FromEnv().Merge(cfg.General.TelemetryOptIn)
	if tcfg.OptIn {
		a.tel = telemetry.New(tcfg)
		a.Telemetry = a.tel
		telemetry.SetDefault(a.tel)
	} else {
		a.Telemetry = telemetry.Nop{}
	}
	return a, nil
}

// loadFonts starts from the bundled Go fonts and overrides every family that
// has a <Family>.ttf file in dir.
func loadFonts(dir string, l *slog.Logger) (*textlayout.FontLibrary, error) {
	lib := textlayout.DefaultLibrary()
	if dir == "" {
		return lib, nil
	}
	for _, fam := range textlayout.Families {
		p := filepath.Join(dir, fam+".ttf")
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := lib.LoadTTF(fam, p); err != nil {
			return nil, fmt.Errorf("load font %s: %w", p, err)
		}
		l.Debug("font override loaded", slog.String("family", fam), slog.String("path", p))
	}
	return lib, nil
}

// Store opens the export log once. A failure is remembered and returned on
// every call.
func (a *App) Store() (*storage.Store, error) {
	a.storeOnce.Do(func() {
		path := a.Config.Storage.ExportLog
		if path == "" {
			path, a.storeErr = storage.DefaultPath()
			if a.storeErr != nil {
				return
			}
		}
		a.store, a.storeErr = storage.Open(path)
	})
	return a.store, a.storeErr
}

// EditorOptions maps the editor section of the configuration.
func (a *App) EditorOptions() editor.Options {
	e := a.Config.Editor
	return editor.Options{
		CaseColor:    e.CaseColor,
		CornerRadius: e.CornerRadius,
		Text: editor.TextDefaults{
			Text:       editor.DefaultText().Text,
			FontFamily: e.TextFont,
			FontSize:   e.TextSize,
			Fill:       e.TextColor,
		},
	}
}

// Pipeline returns an export pipeline with its own renderer, so exports never
// share font faces with the on-screen viewport. The export log is attached
// when it can be opened.
func (a *App) Pipeline() *export.Pipeline {
	p := export.NewPipeline(render.New(textlayout.NewOTProvider(a.Fonts)), a.Backend, a.Config.Editor.ProductID)
	p.Telemetry = a.Telemetry
	if st, err := a.Store(); err == nil {
		p.Recorder = st
	} else {
		a.Log.Warn("export log unavailable", slog.Any("err", err))
	}
	return p
}

// EditorDeps wires a session to c.
func (a *App) EditorDeps(c viewport.Container, nav editor.Navigator) editor.Deps {
	return editor.Deps{
		Container: c,
		Fonts:     textlayout.NewOTProvider(a.Fonts),
		Exporter:  a.Pipeline(),
		Navigator: nav,
		Telemetry: a.Telemetry,
		Logger:    applog.WithComponent("editor"),
	}
}

// Close flushes telemetry and closes the export log.
func (a *App) Close() error {
	if a.tel != nil {
		a.tel.Close()
	}
	return a.store.Close()
}
