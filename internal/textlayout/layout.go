/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Text measurement for editor text boxes.
// Layout is line-based only: lines split on '\n', no wrapping.

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"caseconstructor/internal/vector"
)

const (
	// FontSizeMult is the glyph box height relative to the font size.
	FontSizeMult = 1.13
	// LineHeight is the spacing factor applied between lines.
	LineHeight = 1.16
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name
	Size   float64
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
		LineGap: fixedToFloat(m.Height - m.Ascent - m.Descent),
	}
}

// Line is a single laid out line.
type Line struct {
	Text  string
	Width float64
	// Baseline is the y offset from the block top.
	Baseline float64
}

// Block is a laid out multi-line text.
type Block struct {
	Lines  []Line
	Width  float64
	Height float64
	Spec   FontSpec
}

// Layout splits text into lines and measures them with the face for spec.
// Height follows the editor convention: every line but the last takes
// Size*FontSizeMult*LineHeight, the last takes Size*FontSizeMult.
func Layout(p Provider, text string, spec FontSpec) Block {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(spec)
	d := &font.Drawer{Face: face}
	boxH := spec.Size * FontSizeMult
	if boxH <= 0 {
		boxH = met.Ascent + met.Descent
	}
	parts := strings.Split(text, "\n")
	b := Block{Spec: spec, Lines: make([]Line, 0, len(parts))}
	y := 0.0
	for i, s := range parts {
		w := advance(d, s)
		// centre the ascent/descent inside the line box
		base := y + (boxH-(met.Ascent+met.Descent))/2 + met.Ascent
		b.Lines = append(b.Lines, Line{Text: s, Width: w, Baseline: base})
		if w > b.Width {
			b.Width = w
		}
		if i == len(parts)-1 {
			y += boxH
		} else {
			y += boxH * LineHeight
		}
	}
	b.Height = y
	return b
}

func advance(d *font.Drawer, s string) float64 {
	return fixedToFloat(d.MeasureString(s))
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Measurer adapts a Provider to the scene's text measurement contract.
type Measurer struct{ Provider Provider }

func (m Measurer) MeasureText(text, family string, size float64) vector.Size {
	b := Layout(m.Provider, text, FontSpec{Family: family, Size: size})
	return vector.Size{W: b.Width, H: b.Height}
}
