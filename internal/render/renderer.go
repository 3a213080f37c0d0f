/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	xvector "golang.org/x/image/vector"

	"caseconstructor/internal/scene"
	"caseconstructor/internal/textlayout"
	"caseconstructor/internal/vector"
)

var ErrNoTarget = errors.New("render: no target buffer")

// Renderer draws scenes. Font faces are not safe for concurrent use, so each
// Renderer serialises its own draws; give concurrent callers separate Renderers.
type Renderer struct {
	Fonts  textlayout.Provider
	Canvas color.Color // cleared to this before drawing, white if nil

	mu sync.Mutex
}

func New(fonts textlayout.Provider) *Renderer { return &Renderer{Fonts: fonts} }

// Draw paints s onto dst in z-order.
func (r *Renderer) Draw(dst *image.RGBA, s scene.Scene) error {
	if dst == nil {
		return ErrNoTarget
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	bgc := r.Canvas
	if bgc == nil {
		bgc = color.White
	}
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(bgc), image.Point{}, xdraw.Src)

	for i := 0; i < s.Len(); i++ {
		switch o := s.At(i).(type) {
		case scene.Background:
			r.drawBackground(dst, o)
		case scene.Image:
			drawBitmap(dst, o.Pixels, o.Transform())
		case scene.TextBox:
			r.drawText(dst, o)
		default:
			return fmt.Errorf("render: unsupported object %T", o)
		}
	}
	return nil
}

// Rasterize renders s into a fresh buffer of size (rounded to whole pixels).
func (r *Renderer) Rasterize(s scene.Scene, size vector.Size) (*image.RGBA, error) {
	w := int(math.Round(size.W))
	h := int(math.Round(size.H))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: invalid size %dx%d", w, h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := r.Draw(dst, s); err != nil {
		return nil, err
	}
	return dst, nil
}

func (r *Renderer) drawBackground(dst *image.RGBA, bg scene.Background) {
	tr := bg.Transform()
	p := vector.RoundedRect(tr.LocalRect(), bg.CornerRadius).Transform(tr.Matrix())
	fillPath(dst, p, bg.Fill.RGBA())
}

func fillPath(dst *image.RGBA, p vector.Path, c color.Color) {
	b := dst.Bounds()
	z := xvector.NewRasterizer(b.Dx(), b.Dy())
	ox, oy := float32(b.Min.X), float32(b.Min.Y)
	for _, cmd := range p.Cmds {
		d := cmd.Data
		switch cmd.Op {
		case vector.MoveTo:
			z.MoveTo(float32(d[0])-ox, float32(d[1])-oy)
		case vector.LineTo:
			z.LineTo(float32(d[0])-ox, float32(d[1])-oy)
		case vector.CubicTo:
			z.CubeTo(float32(d[0])-ox, float32(d[1])-oy, float32(d[2])-ox, float32(d[3])-oy, float32(d[4])-ox, float32(d[5])-oy)
		case vector.Close:
			z.ClosePath()
		}
	}
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// drawBitmap maps src (intrinsic w×h, centered on the object origin) through tr.
func drawBitmap(dst *image.RGBA, src image.Image, tr scene.Transform) {
	if src == nil {
		return
	}
	sb := src.Bounds()
	if sb.Empty() {
		return
	}
	m := tr.Matrix().Mul(vector.Translate(-float64(sb.Min.X)-tr.Width/2, -float64(sb.Min.Y)-tr.Height/2))
	s2d := f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
	xdraw.BiLinear.Transform(dst, s2d, src, sb, xdraw.Over, nil)
}

func (r *Renderer) drawText(dst *image.RGBA, tb scene.TextBox) {
	tr := tb.Transform()
	spec := textlayout.FontSpec{Family: tb.FontFamily, Size: tb.FontSize}
	block := textlayout.Layout(r.Fonts, tb.Text, spec)
	w := int(math.Ceil(block.Width))
	h := int(math.Ceil(block.Height))
	if w <= 0 || h <= 0 {
		return
	}
	layer := image.NewRGBA(image.Rect(0, 0, w, h))
	fonts := r.Fonts
	if fonts == nil {
		fonts = textlayout.BasicProvider{}
	}
	face, _ := fonts.Resolve(spec)
	d := &font.Drawer{Dst: layer, Src: image.NewUniform(tb.Fill.RGBA()), Face: face}
	for _, ln := range block.Lines {
		d.Dot = fixed.Point26_6{X: 0, Y: fixed.Int26_6(ln.Baseline * 64)}
		d.DrawString(ln.Text)
	}
	// the layer may be a pixel larger than the measured box after rounding up
	tr.Width, tr.Height = block.Width, block.Height
	drawBitmap(dst, layer, tr)
}
