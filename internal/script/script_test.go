/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"caseconstructor/internal/editor"
	"caseconstructor/internal/log"
	"caseconstructor/internal/scene"
	"caseconstructor/internal/textlayout"
	"caseconstructor/internal/viewport"
)

func testEnv(dir string) Env {
	return Env{
		BaseDir: dir,
		Deps:    editor.Deps{Fonts: textlayout.BasicProvider{}, Logger: log.Discard()},
		Log:     log.Discard(),
	}
}

func TestParseRejectsInvalidScripts(t *testing.T) {
	for name, doc := range map[string]string{
		"wrong version": `{"version":2,"steps":[]}`,
		"unknown op":    `{"version":1,"steps":[{"op":"explode"}]}`,
		"bad color":     `{"version":1,"steps":[{"op":"case_color","value":"red"}]}`,
		"missing path":  `{"version":1,"steps":[{"op":"add_image"}]}`,
		"bad tool":      `{"version":1,"steps":[{"op":"tool","value":"brush"}]}`,
		"extra field":   `{"version":1,"steps":[],"colour":"#fff"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			var ve *ValidationError
			if !errors.As(err, &ve) || len(ve.Problems) == 0 {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if _, err := Parse([]byte(`{`)); err == nil {
		t.Fatalf("expected error for broken JSON")
	}
}

func TestRunReplaysSteps(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	f, err := os.Create(filepath.Join(dir, "cat.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	doc, err := Parse([]byte(`{
		"version": 1,
		"name": "Кот",
		"canvas": {"width": 400, "height": 400},
		"steps": [
			{"op": "case_color", "value": "#00ff00"},
			{"op": "tool", "value": "image"},
			{"op": "add_image", "path": "cat.png"},
			{"op": "tool", "value": "text"},
			{"op": "add_text"},
			{"op": "set", "field": "text", "value": "Привет"},
			{"op": "set", "field": "fontSize", "value": 28},
			{"op": "select", "index": 1},
			{"op": "set", "field": "angle", "value": "15"},
			{"op": "select_none"},
			{"op": "resize", "width": 500, "height": 300}
		]
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, err := Run(context.Background(), doc, testEnv(dir))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	defer s.Close()
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.DesignName != "Кот" || snap.CaseColor != "#00ff00" || snap.Selection != "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Scene.Len() != 3 || snap.Scene.At(0).Kind() != scene.KindBackground {
		t.Fatalf("unexpected scene layout")
	}
	im := snap.Scene.At(1)
	if im.Kind() != scene.KindImage || im.Transform().Angle != 15 {
		t.Fatalf("unexpected image: %+v", im.Transform())
	}
	tb := snap.Scene.At(2).(scene.TextBox)
	if tb.Text != "Привет" || tb.FontSize != 28 {
		t.Fatalf("unexpected text: %+v", tb)
	}
	if snap.Size.W != 500 || snap.Size.H != 300 {
		t.Fatalf("unexpected size: %+v", snap.Size)
	}
}

func TestRunStopsAtFailingStep(t *testing.T) {
	doc, err := Parse([]byte(`{"version":1,"steps":[{"op":"add_text"},{"op":"select","index":5}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Run(context.Background(), doc, testEnv(t.TempDir()))
	var se *StepError
	if !errors.As(err, &se) || se.Index != 1 || se.Op != OpSelect {
		t.Fatalf("expected StepError at 1, got %v", err)
	}
	if !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestRunDefaultsCanvas(t *testing.T) {
	doc, err := Parse([]byte(`{"version":1,"steps":[]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, err := Run(context.Background(), doc, testEnv(""))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	defer s.Close()
	snap, _ := s.Snapshot()
	if snap.Size.W != 600 || snap.Size.H != 400 {
		t.Fatalf("unexpected default size %+v", snap.Size)
	}
}

func TestRunRemoveClearsSelection(t *testing.T) {
	doc, err := Parse([]byte(`{"version":1,"steps":[
		{"op":"add_text"},
		{"op":"add_text"},
		{"op":"select","index":2},
		{"op":"remove","index":2}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, err := Run(context.Background(), doc, testEnv(t.TempDir()))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	defer s.Close()
	snap, _ := s.Snapshot()
	if snap.Scene.Len() != 2 || snap.Selection != "" || snap.Panel.Active {
		t.Fatalf("unexpected state after remove: len=%d sel=%q", snap.Scene.Len(), snap.Selection)
	}
}

func TestRemoveBackgroundIsRejectedBySchema(t *testing.T) {
	_, err := Parse([]byte(`{"version":1,"steps":[{"op":"remove","index":0}]}`))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFailedRunReleasesSession(t *testing.T) {
	var c *viewport.FixedContainer
	orig := newContainer
	newContainer = func(w, h float64) *viewport.FixedContainer {
		c = orig(w, h)
		return c
	}
	t.Cleanup(func() { newContainer = orig })

	doc, err := Parse([]byte(`{"version":1,"steps":[{"op":"add_text"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, doc, testEnv(t.TempDir())); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if c == nil || c.Listeners() != 0 {
		t.Fatalf("session left mounted after a failed run")
	}

	doc, _ = Parse([]byte(`{"version":1,"steps":[{"op":"remove","index":3}]}`))
	if _, err := Run(context.Background(), doc, testEnv(t.TempDir())); err == nil || c.Listeners() != 0 {
		t.Fatalf("expected step failure with released session, got %v", err)
	}
}
