/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render rasterises scene snapshots into RGBA buffers using
// golang.org/x/image/vector for shapes and golang.org/x/image/draw for
// affine-transformed bitmaps.
package render

import (
	"image"

	"caseconstructor/internal/vector"
)

// Surface is the single drawing buffer of an editor session.
// It is not safe for concurrent use; the owner serialises access.
type Surface struct {
	img      *image.RGBA
	released bool
}

// NewSurface allocates a w×h buffer. Non-positive sizes are clamped to 1.
func NewSurface(w, h int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, clampDim(w), clampDim(h)))}
}

func clampDim(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// Resize reallocates the buffer when the size changes. No-op after Release.
func (s *Surface) Resize(w, h int) {
	if s == nil || s.released {
		return
	}
	w, h = clampDim(w), clampDim(h)
	if b := s.img.Bounds(); b.Dx() == w && b.Dy() == h {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Image exposes the backing buffer, nil after Release.
func (s *Surface) Image() *image.RGBA {
	if s == nil || s.released {
		return nil
	}
	return s.img
}

func (s *Surface) Size() vector.Size {
	if s == nil || s.img == nil {
		return vector.Size{}
	}
	b := s.img.Bounds()
	return vector.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// Release drops the buffer. Reports whether this call did the release.
func (s *Surface) Release() bool {
	if s == nil || s.released {
		return false
	}
	s.released = true
	s.img = nil
	return true
}

func (s *Surface) Released() bool { return s == nil || s.released }
