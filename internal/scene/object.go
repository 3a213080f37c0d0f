/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"image"

	"github.com/google/uuid"

	"caseconstructor/internal/vector"
)

// ObjectID is the stable identity of a scene object.
type ObjectID string

// NewID returns a fresh random ObjectID.
func NewID() ObjectID { return ObjectID(uuid.NewString()) }

type Kind uint8

const (
	KindBackground Kind = iota
	KindImage
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBackground:
		return "background"
	case KindImage:
		return "image"
	case KindText:
		return "textbox"
	default:
		return "unknown"
	}
}

// Transform places an object on the canvas. Left/Top is the object's center.
// Width/Height are intrinsic and never changed by sizing edits; the rendered
// size is intrinsic times scale.
type Transform struct {
	Left, Top      float64
	Width, Height  float64
	ScaleX, ScaleY float64
	Angle          float64 // degrees, clockwise
}

func (t Transform) RenderedSize() vector.Size {
	return vector.Size{W: t.Width * t.ScaleX, H: t.Height * t.ScaleY}
}

// LocalRect is the intrinsic box in object space, centered on the origin.
func (t Transform) LocalRect() vector.Rect {
	return vector.R(-t.Width/2, -t.Height/2, t.Width, t.Height)
}

// Matrix maps object space into canvas space: translate · rotate · scale.
func (t Transform) Matrix() vector.Affine2D {
	return vector.Translate(t.Left, t.Top).
		Mul(vector.RotateDeg(t.Angle)).
		Mul(vector.Scale(t.ScaleX, t.ScaleY))
}

// Bounds is the axis-aligned canvas box around the transformed object.
func (t Transform) Bounds() vector.Rect { return t.Matrix().BoundsOf(t.LocalRect()) }

// Contains reports whether canvas point p lies on the transformed object.
func (t Transform) Contains(p vector.Pt) bool {
	inv, ok := t.Matrix().Invert()
	if !ok {
		return false
	}
	return t.LocalRect().Contains(inv.Apply(p))
}

// Object is implemented by Background, Image and TextBox.
type Object interface {
	ID() ObjectID
	Kind() Kind
	Transform() Transform
	Selectable() bool
	Evented() bool

	withTransform(Transform) Object
}

type base struct {
	id ObjectID
	tr Transform
}

func (b base) ID() ObjectID         { return b.id }
func (b base) Transform() Transform { return b.tr }
func (b base) Selectable() bool     { return true }
func (b base) Evented() bool        { return true }

// Background is the rounded rectangle standing for the physical case outline.
type Background struct {
	base
	Fill         vector.Color
	CornerRadius float64
}

// DefaultCornerRadius matches the printed case template.
const DefaultCornerRadius = 40

// NewBackground builds a background of exactly size centered at center.
func NewBackground(size vector.Size, center vector.Pt, fill vector.Color, radius float64) Background {
	return Background{
		base: base{id: NewID(), tr: Transform{
			Left: center.X, Top: center.Y,
			Width: size.W, Height: size.H,
			ScaleX: 1, ScaleY: 1,
		}},
		Fill:         fill,
		CornerRadius: radius,
	}
}

func (Background) Kind() Kind       { return KindBackground }
func (Background) Selectable() bool { return false }
func (Background) Evented() bool    { return false }

// Rect returns the canvas rectangle covered by the background.
func (b Background) Rect() vector.Rect { return b.tr.Bounds() }

func (b Background) withTransform(t Transform) Object { b.tr = t; return b }

// Image is a raster picture inserted by the user.
type Image struct {
	base
	Pixels image.Image
}

// NewImage wraps decoded pixels. Intrinsic size is the pixel bounds; scale starts at 1.
func NewImage(px image.Image) Image {
	b := px.Bounds()
	return Image{
		base: base{id: NewID(), tr: Transform{
			Width: float64(b.Dx()), Height: float64(b.Dy()),
			ScaleX: 1, ScaleY: 1,
		}},
		Pixels: px,
	}
}

func (Image) Kind() Kind { return KindImage }

func (i Image) withTransform(t Transform) Object { i.tr = t; return i }

// Placed returns a copy positioned at center with the given scale.
func (i Image) Placed(center vector.Pt, sx, sy float64) Image {
	i.tr.Left, i.tr.Top = center.X, center.Y
	i.tr.ScaleX, i.tr.ScaleY = sx, sy
	return i
}

// TextBox is an editable single-style text object.
type TextBox struct {
	base
	Text       string
	FontFamily string
	FontSize   float64
	Fill       vector.Color
}

// NewTextBox creates a text object centered at center. Intrinsic size comes from m.
func NewTextBox(text, family string, size float64, fill vector.Color, center vector.Pt, m Measurer) TextBox {
	tb := TextBox{
		base:       base{id: NewID()},
		Text:       text,
		FontFamily: family,
		FontSize:   size,
		Fill:       fill,
	}
	ext := measure(m, tb)
	tb.tr = Transform{Left: center.X, Top: center.Y, Width: ext.W, Height: ext.H, ScaleX: 1, ScaleY: 1}
	return tb
}

func (TextBox) Kind() Kind { return KindText }

func (tb TextBox) withTransform(t Transform) Object { tb.tr = t; return tb }

// Measurer reports the intrinsic extent of laid out text.
type Measurer interface {
	MeasureText(text, family string, size float64) vector.Size
}

// approxMeasurer is used when no font library is wired. Averages 0.6em per rune.
type approxMeasurer struct{}

func (approxMeasurer) MeasureText(text, _ string, size float64) vector.Size {
	lines, widest := 1, 0
	cur := 0
	for _, r := range text {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		if cur > widest {
			widest = cur
		}
	}
	return vector.Size{W: float64(widest) * size * 0.6, H: float64(lines) * size * 1.16}
}

func measure(m Measurer, tb TextBox) vector.Size {
	if m == nil {
		m = approxMeasurer{}
	}
	return m.MeasureText(tb.Text, tb.FontFamily, tb.FontSize)
}
