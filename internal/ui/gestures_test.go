/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"
	"testing"

	"caseconstructor/internal/scene"
	"caseconstructor/internal/vector"
)

func box(left, top, w, h float64) scene.Transform {
	return scene.Transform{Left: left, Top: top, Width: w, Height: h, ScaleX: 1, ScaleY: 1}
}

func TestHandlesModeAt(t *testing.T) {
	tr := box(100, 100, 80, 40) // bounds 60..140 x 80..120
	h := handlesFor(tr)
	body := tr.Contains
	cases := []struct {
		p    vector.Pt
		want dragMode
	}{
		{vector.Pt{X: 60, Y: 80}, dragScaleNW},
		{vector.Pt{X: 140, Y: 80}, dragScaleNE},
		{vector.Pt{X: 60, Y: 120}, dragScaleSW},
		{vector.Pt{X: 141, Y: 121}, dragScaleSE},
		{vector.Pt{X: 100, Y: 80 - rotateOffset}, dragRotate},
		{vector.Pt{X: 100, Y: 100}, dragMove},
		{vector.Pt{X: 10, Y: 10}, dragNone},
	}
	for _, c := range cases {
		if got := h.modeAt(c.p, body); got != c.want {
			t.Fatalf("modeAt(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestDragWritesMove(t *testing.T) {
	w := dragWrites(dragMove, box(100, 100, 80, 40), vector.Pt{X: 100, Y: 100}, vector.Pt{X: 130, Y: 90})
	if len(w) != 2 || w[0] != (propertyWrite{"left", 130}) || w[1] != (propertyWrite{"top", 90}) {
		t.Fatalf("unexpected writes: %v", w)
	}
}

func TestDragWritesScaleIsSymmetric(t *testing.T) {
	start := box(100, 100, 80, 40)
	w := dragWrites(dragScaleSE, start, vector.Pt{X: 140, Y: 120}, vector.Pt{X: 150, Y: 125})
	if w[0] != (propertyWrite{"width", 100}) || w[1] != (propertyWrite{"height", 50}) {
		t.Fatalf("unexpected SE writes: %v", w)
	}
	w = dragWrites(dragScaleNW, start, vector.Pt{X: 60, Y: 80}, vector.Pt{X: 70, Y: 90})
	if w[0] != (propertyWrite{"width", 60}) || w[1] != (propertyWrite{"height", 20}) {
		t.Fatalf("unexpected NW writes: %v", w)
	}
	w = dragWrites(dragScaleSE, start, vector.Pt{X: 140, Y: 120}, vector.Pt{X: 0, Y: 0})
	if w[0].Value != minRenderSide || w[1].Value != minRenderSide {
		t.Fatalf("sizes must be clamped: %v", w)
	}
}

func TestDragWritesRotate(t *testing.T) {
	start := box(100, 100, 80, 40)
	start.Angle = 350
	w := dragWrites(dragRotate, start, vector.Pt{X: 200, Y: 100}, vector.Pt{X: 100, Y: 200})
	if len(w) != 1 || w[0].Field != "angle" || math.Abs(w[0].Value-80) > 1e-9 {
		t.Fatalf("unexpected rotate writes: %v", w)
	}
	if dragWrites(dragNone, start, vector.Pt{}, vector.Pt{X: 1}) != nil {
		t.Fatalf("idle drag must not write")
	}
}
