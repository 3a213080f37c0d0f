/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"errors"
	"math"
)

// Sizing helpers shared by the scene, editor and export code.

var ErrZeroDimension = errors.New("zero intrinsic dimension")

// StretchScale returns the per-axis scale that maps src exactly onto dst.
// Aspect ratio is not preserved.
func StretchScale(src, dst Size) (sx, sy float64, err error) {
	if src.W == 0 || src.H == 0 {
		return 0, 0, ErrZeroDimension
	}
	return dst.W / src.W, dst.H / src.H, nil
}

// ContainScale returns the uniform scale that fits src inside dst.
func ContainScale(src, dst Size) float64 {
	if src.W <= 0 || src.H <= 0 {
		return 0
	}
	return math.Min(dst.W/src.W, dst.H/src.H)
}

// CenterIn returns the top-left corner placing inner centered in outer.
func CenterIn(outer Rect, inner Size) Pt {
	c := outer.Center()
	return Pt{X: c.X - inner.W/2, Y: c.Y - inner.H/2}
}

// ScaleForLength converts a requested rendered length into a scale factor
// against the intrinsic length.
func ScaleForLength(requested, intrinsic float64) (float64, error) {
	if intrinsic == 0 {
		return 0, ErrZeroDimension
	}
	return requested / intrinsic, nil
}

// DisplayLength is the rendered length rounded to whole pixels, as shown in settings.
func DisplayLength(intrinsic, scale float64) int {
	return int(math.Round(intrinsic * scale))
}
