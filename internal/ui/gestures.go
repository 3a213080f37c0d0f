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

	"caseconstructor/internal/scene"
	"caseconstructor/internal/vector"
)

// dragMode represents current interaction kind
// dragNone: idle; dragMove: moving selection; dragScale*: corner scaling; dragRotate: rotation handle
type dragMode int

const (
	dragNone dragMode = iota
	dragMove
	dragScaleNW
	dragScaleNE
	dragScaleSW
	dragScaleSE
	dragRotate
)

const (
	handleSize    = 10.0
	rotateOffset  = 24.0
	minRenderSide = 1.0
)

// handles is the selection overlay of one object, in canvas coordinates.
type handles struct {
	Box     vector.Rect
	Corners [4]vector.Rect // NW, NE, SW, SE
	Rotate  vector.Rect
}

func square(c vector.Pt, side float64) vector.Rect {
	return vector.Rect{X: c.X - side/2, Y: c.Y - side/2, W: side, H: side}
}

func handlesFor(tr scene.Transform) handles {
	b := tr.Bounds()
	return handles{
		Box: b,
		Corners: [4]vector.Rect{
			square(vector.Pt{X: b.X, Y: b.Y}, handleSize),
			square(vector.Pt{X: b.X + b.W, Y: b.Y}, handleSize),
			square(vector.Pt{X: b.X, Y: b.Y + b.H}, handleSize),
			square(vector.Pt{X: b.X + b.W, Y: b.Y + b.H}, handleSize),
		},
		Rotate: square(vector.Pt{X: b.X + b.W/2, Y: b.Y - rotateOffset}, handleSize+2),
	}
}

// modeAt picks the drag action for a press at p. Handles win over the body.
func (h handles) modeAt(p vector.Pt, body func(vector.Pt) bool) dragMode {
	if h.Rotate.Contains(p) {
		return dragRotate
	}
	for i, c := range h.Corners {
		if c.Contains(p) {
			return dragScaleNW + dragMode(i)
		}
	}
	if body != nil && body(p) {
		return dragMove
	}
	return dragNone
}

// propertyWrite is one SetProperty call produced by a gesture.
type propertyWrite struct {
	Field string
	Value float64
}

// dragWrites converts a drag from -> to, started on an object with transform
// start, into property writes. Scaling is symmetric about the center, which
// is the object's origin.
func dragWrites(mode dragMode, start scene.Transform, from, to vector.Pt) []propertyWrite {
	dx, dy := to.X-from.X, to.Y-from.Y
	switch mode {
	case dragMove:
		return []propertyWrite{
			{string(scene.FieldLeft), start.Left + dx},
			{string(scene.FieldTop), start.Top + dy},
		}
	case dragScaleNW, dragScaleNE, dragScaleSW, dragScaleSE:
		sx, sy := 1.0, 1.0
		if mode == dragScaleNW || mode == dragScaleSW {
			sx = -1
		}
		if mode == dragScaleNW || mode == dragScaleNE {
			sy = -1
		}
		rs := start.RenderedSize()
		w := math.Max(minRenderSide, rs.W+2*dx*sx)
		h := math.Max(minRenderSide, rs.H+2*dy*sy)
		return []propertyWrite{
			{string(scene.FieldWidth), w},
			{string(scene.FieldHeight), h},
		}
	case dragRotate:
		c := vector.Pt{X: start.Left, Y: start.Top}
		a0 := math.Atan2(from.Y-c.Y, from.X-c.X)
		a1 := math.Atan2(to.Y-c.Y, to.X-c.X)
		deg := start.Angle + (a1-a0)*180/math.Pi
		deg = math.Mod(deg, 360)
		if deg < 0 {
			deg += 360
		}
		return []propertyWrite{{string(scene.FieldAngle), deg}}
	}
	return nil
}
