/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Path commands and shapes.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

type PathCmd struct {
	Op   PathOp
	Data [6]float64 // enough for cubic; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float64{x, y}})
}
func (p *Path) LineTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float64{x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float64{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Transform returns a copy of the path with every point mapped through m.
func (p Path) Transform(m Affine2D) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		nc := PathCmd{Op: c.Op}
		n := 0
		switch c.Op {
		case MoveTo, LineTo:
			n = 1
		case CubicTo:
			n = 3
		}
		for k := 0; k < n; k++ {
			q := m.Apply(Pt{c.Data[2*k], c.Data[2*k+1]})
			nc.Data[2*k], nc.Data[2*k+1] = q.X, q.Y
		}
		out.Cmds[i] = nc
	}
	return out
}

// Bounds returns an axis-aligned bounding box using control points. Good enough
// for selection rectangles; curves never exceed their control hull.
func (p Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	add := func(x, y float64) {
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo, LineTo:
			add(c.Data[0], c.Data[1])
		case CubicTo:
			add(c.Data[0], c.Data[1])
			add(c.Data[2], c.Data[3])
			add(c.Data[4], c.Data[5])
		}
	}
	if minX > maxX || minY > maxY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// kappa is the cubic control distance for a quarter circle of radius 1.
const kappa = 0.5522847498

// RoundedRect builds a closed outline of r with uniform corner radius.
// The radius is clamped to half the shorter side.
func RoundedRect(r Rect, radius float64) Path {
	radius = math.Max(0, math.Min(radius, math.Min(r.W, r.H)/2))
	var p Path
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.W, r.Y+r.H
	if radius == 0 {
		p.MoveTo(x0, y0)
		p.LineTo(x1, y0)
		p.LineTo(x1, y1)
		p.LineTo(x0, y1)
		p.Close()
		return p
	}
	k := radius * kappa
	p.MoveTo(x0+radius, y0)
	p.LineTo(x1-radius, y0)
	p.CubicTo(x1-radius+k, y0, x1, y0+radius-k, x1, y0+radius)
	p.LineTo(x1, y1-radius)
	p.CubicTo(x1, y1-radius+k, x1-radius+k, y1, x1-radius, y1)
	p.LineTo(x0+radius, y1)
	p.CubicTo(x0+radius-k, y1, x0, y1-radius+k, x0, y1-radius)
	p.LineTo(x0, y0+radius)
	p.CubicTo(x0, y0+radius-k, x0+radius-k, y0, x0+radius, y0)
	p.Close()
	return p
}

// RoundedRectContains tests p against r with corner radius, corner arcs included.
func RoundedRectContains(r Rect, radius float64, p Pt) bool {
	if !r.Contains(p) {
		return false
	}
	radius = math.Max(0, math.Min(radius, math.Min(r.W, r.H)/2))
	core := r.Inset(radius, 0)
	if core.Contains(p) {
		return true
	}
	core = r.Inset(0, radius)
	if core.Contains(p) {
		return true
	}
	cx := []float64{r.X + radius, r.X + r.W - radius}
	cy := []float64{r.Y + radius, r.Y + r.H - radius}
	r2 := radius * radius
	for _, x := range cx {
		for _, y := range cy {
			dx := p.X - x
			dy := p.Y - y
			if dx*dx+dy*dy <= r2 {
				return true
			}
		}
	}
	return false
}
