/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package viewport

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"caseconstructor/internal/render"
	"caseconstructor/internal/scene"
	"caseconstructor/internal/vector"
)

// FallbackSize is used per dimension when the container reports zero.
var FallbackSize = vector.Size{W: 600, H: 400}

var ErrAlreadyMounted = errors.New("viewport: already mounted")

// Manager owns the rendering surface for one editor session. Its methods are
// meant to be called from a single goroutine (the editor loop); only the
// resize listener passed to Mount may fire from elsewhere.
type Manager struct {
	container Container
	renderer  *render.Renderer
	log       *slog.Logger

	surface     *render.Surface
	unsubscribe func()
	mounted     bool
	released    bool
}

func New(c Container, r *render.Renderer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{container: c, renderer: r, log: logger}
}

// Mount allocates the surface at the container's current size and registers
// onResize as the container listener.
func (m *Manager) Mount(onResize func()) (vector.Size, error) {
	if m.mounted || m.released {
		return vector.Size{}, ErrAlreadyMounted
	}
	sz := m.contentSize()
	m.surface = render.NewSurface(int(sz.W), int(sz.H))
	if onResize != nil {
		m.unsubscribe = m.container.OnResize(onResize)
	}
	m.mounted = true
	m.log.Debug("viewport mounted", slog.Float64("w", sz.W), slog.Float64("h", sz.H))
	return m.surface.Size(), nil
}

func (m *Manager) contentSize() vector.Size {
	sz := m.container.ContentSize()
	if !usable(sz.W) {
		sz.W = FallbackSize.W
	}
	if !usable(sz.H) {
		sz.H = FallbackSize.H
	}
	return vector.Size{W: math.Round(sz.W), H: math.Round(sz.H)}
}

// usable rejects zero, negative and non-finite container dimensions.
func usable(v float64) bool { return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0) }

// Active reports whether the surface is mounted and not yet released.
func (m *Manager) Active() bool { return m.mounted && !m.released }

// Size is the current surface size, zero when inactive.
func (m *Manager) Size() vector.Size {
	if !m.Active() {
		return vector.Size{}
	}
	return m.surface.Size()
}

// Background builds a background covering the whole surface.
func (m *Manager) Background(fill vector.Color, radius float64) scene.Background {
	sz := m.Size()
	return scene.NewBackground(sz, vector.Pt{X: sz.W / 2, Y: sz.H / 2}, fill, radius)
}

// Fit re-reads the container, resizes the surface and swaps in a new
// background of the surface size with the old fill and radius. Other objects
// keep their absolute coordinates. Inactive managers return s unchanged.
func (m *Manager) Fit(s scene.Scene) (scene.Scene, bool, error) {
	if !m.Active() {
		return s, false, nil
	}
	old, ok := s.Background()
	if !ok {
		return s, false, fmt.Errorf("fit: %w", scene.ErrBackgroundRequired)
	}
	sz := m.contentSize()
	m.surface.Resize(int(sz.W), int(sz.H))
	next, err := s.ReplaceBackground(m.Background(old.Fill, old.CornerRadius))
	if err != nil {
		return s, false, fmt.Errorf("fit: %w", err)
	}
	if err := next.Validate(); err != nil {
		return s, false, fmt.Errorf("fit: %w", err)
	}
	return next, true, nil
}

// Render draws s onto the surface. No-op when inactive.
func (m *Manager) Render(s scene.Scene) error {
	if !m.Active() {
		return nil
	}
	return m.renderer.Draw(m.surface.Image(), s)
}

// Frame returns a copy of the last rendered frame, nil when inactive.
func (m *Manager) Frame() *image.RGBA {
	if !m.Active() {
		return nil
	}
	src := m.surface.Image()
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

// Release removes the resize listener and frees the surface. Only the first
// call has an effect; it reports whether it did the work.
func (m *Manager) Release() bool {
	if m.released {
		return false
	}
	m.released = true
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	if m.surface != nil {
		m.surface.Release()
	}
	m.log.Debug("viewport released")
	return true
}
