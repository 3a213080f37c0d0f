//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"caseconstructor/internal/editor"
	"caseconstructor/internal/scene"
	"caseconstructor/internal/vector"
)

// CaseCanvas shows the rendered editor frame with a selection overlay and
// turns taps and drags into session calls. It is also the session's
// viewport container: its widget size is the canvas size.
type CaseCanvas struct {
	widget.BaseWidget

	mu        sync.Mutex
	size      vector.Size
	listeners map[int]func()
	next      int

	session *editor.Session
	frame   image.Image
	sel     *scene.Transform

	dragMode  dragMode
	dragStart vector.Pt
	startTr   scene.Transform
}

func NewCaseCanvas() *CaseCanvas {
	c := &CaseCanvas{listeners: make(map[int]func())}
	c.ExtendBaseWidget(c)
	return c
}

// Attach binds the canvas to a session. Gestures are ignored until then.
func (c *CaseCanvas) Attach(s *editor.Session) { c.session = s }

// ContentSize implements viewport.Container.
func (c *CaseCanvas) ContentSize() vector.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// OnResize implements viewport.Container.
func (c *CaseCanvas) OnResize(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.listeners[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Resize records the new size and notifies the viewport.
func (c *CaseCanvas) Resize(s fyne.Size) {
	c.BaseWidget.Resize(s)
	c.mu.Lock()
	next := vector.Size{W: float64(s.Width), H: float64(s.Height)}
	changed := next != c.size
	c.size = next
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	if !changed {
		return
	}
	for _, fn := range fns {
		fn()
	}
}

// Show installs a new frame and selection. Must run on the fyne thread.
func (c *CaseCanvas) Show(frame image.Image, snap editor.Snapshot) {
	c.frame = frame
	c.sel = nil
	if snap.Selection != "" {
		if o, _, ok := snap.Scene.Find(snap.Selection); ok {
			tr := o.Transform()
			c.sel = &tr
		}
	}
	c.Refresh()
}

func toPt(p fyne.Position) vector.Pt { return vector.Pt{X: float64(p.X), Y: float64(p.Y)} }

// Tapped selects the topmost object under the pointer, or clears the selection.
func (c *CaseCanvas) Tapped(e *fyne.PointEvent) {
	if c.session == nil {
		return
	}
	_, _ = c.session.SelectAt(toPt(e.Position))
}

// Dragged moves, scales or rotates the selected object.
func (c *CaseCanvas) Dragged(e *fyne.DragEvent) {
	if c.session == nil || c.sel == nil {
		return
	}
	pos := toPt(e.Position)
	if c.dragMode == dragNone {
		// the event position is already past the first delta
		start := vector.Pt{X: pos.X - float64(e.Dragged.DX), Y: pos.Y - float64(e.Dragged.DY)}
		c.dragMode = handlesFor(*c.sel).modeAt(start, c.sel.Contains)
		if c.dragMode == dragNone {
			return
		}
		c.dragStart = start
		c.startTr = *c.sel
	}
	pw := dragWrites(c.dragMode, c.startTr, c.dragStart, pos)
	ws := make([]editor.Write, len(pw))
	for i, w := range pw {
		ws[i] = editor.Write{Field: w.Field, Value: w.Value}
	}
	_ = c.session.SetProperties(ws...)
}

func (c *CaseCanvas) DragEnd() { c.dragMode = dragNone }

// CreateRenderer builds the frame image and the selection overlay.
func (c *CaseCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 240, G: 240, B: 240, A: 255})
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleFastest

	accent := color.RGBA{R: 0, G: 170, B: 255, A: 255}
	bbox := canvas.NewRectangle(color.RGBA{})
	bbox.StrokeColor = accent
	bbox.StrokeWidth = 1
	bbox.Hide()
	var hs [4]*canvas.Rectangle
	for i := range hs {
		hs[i] = canvas.NewRectangle(color.White)
		hs[i].StrokeColor = accent
		hs[i].StrokeWidth = 1
		hs[i].Hide()
	}
	rot := canvas.NewCircle(color.White)
	rot.StrokeColor = accent
	rot.StrokeWidth = 1
	rot.Hide()

	objs := []fyne.CanvasObject{bg, img, bbox}
	for _, h := range hs {
		objs = append(objs, h)
	}
	objs = append(objs, rot)
	return &caseCanvasRenderer{c: c, objects: objs, bg: bg, img: img, bbox: bbox, handles: hs, rot: rot}
}

type caseCanvasRenderer struct {
	c       *CaseCanvas
	objects []fyne.CanvasObject
	bg      *canvas.Rectangle
	img     *canvas.Image
	bbox    *canvas.Rectangle
	handles [4]*canvas.Rectangle
	rot     *canvas.Circle
}

func (r *caseCanvasRenderer) Destroy()                     {}
func (r *caseCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *caseCanvasRenderer) MinSize() fyne.Size           { return fyne.NewSize(200, 150) }

func (r *caseCanvasRenderer) Refresh() {
	r.img.Image = r.c.frame
	r.img.Refresh()
	r.Layout(r.c.Size())
	canvas.Refresh(r.c)
}

func place(o fyne.CanvasObject, rc vector.Rect) {
	o.Move(fyne.NewPos(float32(rc.X), float32(rc.Y)))
	o.Resize(fyne.NewSize(float32(rc.W), float32(rc.H)))
}

func (r *caseCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	// the frame has the canvas size, so it maps 1:1
	r.img.Resize(size)
	r.img.Move(fyne.NewPos(0, 0))

	sel := r.c.sel
	if sel == nil {
		r.bbox.Hide()
		for _, h := range r.handles {
			h.Hide()
		}
		r.rot.Hide()
		return
	}
	h := handlesFor(*sel)
	place(r.bbox, h.Box)
	r.bbox.Show()
	for i, rc := range h.Corners {
		place(r.handles[i], rc)
		r.handles[i].Show()
	}
	place(r.rot, h.Rotate)
	r.rot.Show()
}
