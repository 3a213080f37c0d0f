/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"errors"
	"image"
	"math"
	"testing"

	"caseconstructor/internal/vector"
)

func newTestScene() Scene {
	bg := NewBackground(vector.Size{W: 600, H: 400}, vector.Pt{X: 300, Y: 200}, vector.White, DefaultCornerRadius)
	return New(bg)
}

func TestNewSceneIsValid(t *testing.T) {
	s := newTestScene()
	if err := s.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	bg, ok := s.Background()
	if !ok || bg.Selectable() || bg.Evented() {
		t.Fatalf("background must exist and be inert: %+v", bg)
	}
	if r := bg.Rect(); r.X != 0 || r.Y != 0 || r.W != 600 || r.H != 400 {
		t.Fatalf("unexpected background rect: %+v", r)
	}
}

func TestAddKeepsBackgroundAtBottom(t *testing.T) {
	s := newTestScene()
	v0 := s.Version()
	img := NewImage(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	s2, err := s.Add(img)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("original snapshot must not change")
	}
	if s2.Len() != 2 || s2.At(1).ID() != img.ID() || s2.At(0).Kind() != KindBackground {
		t.Fatalf("unexpected order")
	}
	if s2.Version() <= v0 {
		t.Fatalf("version must increase")
	}
	if _, err := s2.Add(img); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	other := NewBackground(vector.Size{W: 1, H: 1}, vector.Pt{}, vector.Black, 0)
	if _, err := s2.Add(other); !errors.Is(err, ErrBackgroundExists) {
		t.Fatalf("expected ErrBackgroundExists, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	s := newTestScene()
	img := NewImage(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	s, _ = s.Add(img)
	bg, _ := s.Background()
	if _, err := s.Remove(bg.ID()); !errors.Is(err, ErrBackgroundRequired) {
		t.Fatalf("expected ErrBackgroundRequired, got %v", err)
	}
	s2, err := s.Remove(img.ID())
	if err != nil || s2.Len() != 1 {
		t.Fatalf("remove: %v len=%d", err, s2.Len())
	}
	if _, err := s2.Remove(img.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSendToBackOnlyForBackground(t *testing.T) {
	s := newTestScene()
	img := NewImage(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	s, _ = s.Add(img)
	if _, err := s.SendToBack(img.ID()); !errors.Is(err, ErrBackgroundRequired) {
		t.Fatalf("expected ErrBackgroundRequired, got %v", err)
	}
	bg, _ := s.Background()
	s2, err := s.SendToBack(bg.ID())
	if err != nil || s2.At(0).ID() != bg.ID() || s2.At(1).ID() != img.ID() {
		t.Fatalf("send to back: %v", err)
	}
}

func TestReplaceBackgroundPreservesOthers(t *testing.T) {
	s := newTestScene()
	tb := NewTextBox("hi", "Arial", 14, vector.Black, vector.Pt{X: 300, Y: 200}, nil)
	img := NewImage(image.NewRGBA(image.Rect(0, 0, 4, 4))).Placed(vector.Pt{X: 10, Y: 20}, 1, 1)
	s, _ = s.Add(tb)
	s, _ = s.Add(img)
	old, _ := s.Background()
	nb := NewBackground(vector.Size{W: 800, H: 300}, vector.Pt{X: 400, Y: 150}, old.Fill, old.CornerRadius)
	s2, err := s.ReplaceBackground(nb)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := s2.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if s2.Len() != 3 || s2.At(0).ID() != nb.ID() || s2.At(1).ID() != tb.ID() || s2.At(2).ID() != img.ID() {
		t.Fatalf("unexpected order after replace")
	}
	if _, _, ok := s2.Find(old.ID()); ok {
		t.Fatalf("old background must be gone")
	}
	if got := s2.At(2).Transform(); got.Left != 10 || got.Top != 20 {
		t.Fatalf("image moved: %+v", got)
	}
}

func TestValidateDetectsBrokenOrder(t *testing.T) {
	bg := NewBackground(vector.Size{W: 10, H: 10}, vector.Pt{X: 5, Y: 5}, vector.White, 0)
	img := NewImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	s := Scene{objects: []Object{img, bg}}
	if err := s.Validate(); !errors.Is(err, ErrInvalidScene) {
		t.Fatalf("expected ErrInvalidScene, got %v", err)
	}
	if err := (Scene{}).Validate(); !errors.Is(err, ErrInvalidScene) {
		t.Fatalf("empty scene must be invalid")
	}
}

func TestHitTestTopmostAndRotation(t *testing.T) {
	s := newTestScene()
	a := NewImage(image.NewRGBA(image.Rect(0, 0, 100, 100))).Placed(vector.Pt{X: 300, Y: 200}, 1, 1)
	b := NewImage(image.NewRGBA(image.Rect(0, 0, 20, 20))).Placed(vector.Pt{X: 300, Y: 200}, 1, 1)
	s, _ = s.Add(a)
	s, _ = s.Add(b)
	if o, ok := s.HitTest(vector.Pt{X: 300, Y: 200}); !ok || o.ID() != b.ID() {
		t.Fatalf("expected topmost image")
	}
	if o, ok := s.HitTest(vector.Pt{X: 340, Y: 200}); !ok || o.ID() != a.ID() {
		t.Fatalf("expected lower image")
	}
	if _, ok := s.HitTest(vector.Pt{X: 5, Y: 5}); ok {
		t.Fatalf("background must not be hit")
	}
	// rotating a 100x20 strip by 90 degrees makes it tall
	c := NewImage(image.NewRGBA(image.Rect(0, 0, 100, 20))).Placed(vector.Pt{X: 100, Y: 100}, 1, 1)
	s, _ = s.Add(c)
	s, _ = Apply(s, Intent{Target: c.ID(), Field: FieldAngle, Value: 90.0})
	if o, ok := s.HitTest(vector.Pt{X: 100, Y: 140}); !ok || o.ID() != c.ID() {
		t.Fatalf("rotated strip should cover (100,140)")
	}
	if _, ok := s.HitTest(vector.Pt{X: 140, Y: 100}); ok {
		t.Fatalf("rotated strip should not cover (140,100)")
	}
}

func TestTransformBounds(t *testing.T) {
	tr := Transform{Left: 50, Top: 40, Width: 20, Height: 10, ScaleX: 2, ScaleY: 3}
	b := tr.Bounds()
	if math.Abs(b.X-30) > 1e-9 || math.Abs(b.Y-25) > 1e-9 || math.Abs(b.W-40) > 1e-9 || math.Abs(b.H-30) > 1e-9 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	if rs := tr.RenderedSize(); rs.W != 40 || rs.H != 30 {
		t.Fatalf("unexpected rendered size: %+v", rs)
	}
}

func TestKindString(t *testing.T) {
	if KindBackground.String() != "background" || KindImage.String() != "image" || KindText.String() != "textbox" {
		t.Fatalf("unexpected kind names")
	}
}
