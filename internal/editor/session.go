/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor runs one case design session: it owns the scene snapshot,
// the selection and the tool mode, and serialises every change on a single
// event loop goroutine.
//
// All public methods are safe to call from any goroutine. Mutations are queued
// to the loop in arrival order; blocking work (image decoding, export) runs
// off the loop and re-enters through the same queue.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	"caseconstructor/internal/domain"
	applog "caseconstructor/internal/log"
	"caseconstructor/internal/render"
	"caseconstructor/internal/scene"
	"caseconstructor/internal/telemetry"
	"caseconstructor/internal/textlayout"
	"caseconstructor/internal/vector"
	"caseconstructor/internal/viewport"
)

var (
	ErrClosed     = errors.New("editor: session closed")
	ErrNoExporter = errors.New("editor: no exporter configured")
)

// Exporter turns a captured scene into a submitted design package.
// *export.Pipeline implements it.
type Exporter interface {
	Export(ctx context.Context, s scene.Scene, size vector.Size, name string) (domain.DesignPackage, domain.SaveOutcome)
}

// Navigator leaves the editor, e.g. back to the storefront.
type Navigator interface {
	Leave(reason error)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(reason error)

func (f NavigatorFunc) Leave(reason error) { f(reason) }

// TextDefaults are applied to every new text box.
type TextDefaults struct {
	Text       string
	FontFamily string
	FontSize   float64
	Fill       string
}

func DefaultText() TextDefaults {
	return TextDefaults{Text: "Ваш текст", FontFamily: "Arial", FontSize: 14, Fill: "#000000"}
}

// Options configure a session. Zero values fall back to the storefront defaults.
type Options struct {
	CaseColor    string
	CornerRadius float64
	Text         TextDefaults
	DesignName   string
	Tool         Tool
}

// Deps are the collaborators of a session. Only Container is required.
type Deps struct {
	Container viewport.Container
	Fonts     textlayout.Provider
	Exporter  Exporter
	Navigator Navigator
	Telemetry telemetry.Sink
	Logger    *slog.Logger
}

// Snapshot is an immutable view of the session state published after every change.
type Snapshot struct {
	Scene      scene.Scene
	Selection  scene.ObjectID // empty when idle
	Tool       Tool
	Panel      Panel
	DesignName string
	CaseColor  string
	Size       vector.Size
}

// Version is the scene version the snapshot was taken at.
func (s Snapshot) Version() uint64 { return s.Scene.Version() }

// Session is one open editor.
type Session struct {
	id   string
	log  *slog.Logger
	deps Deps
	opts Options
	meas scene.Measurer

	// owned by the loop goroutine
	scene     scene.Scene
	selection scene.ObjectID
	tool      Tool
	name      string
	vp        *viewport.Manager

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	ops       chan func()
	closed    chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
}

// Open mounts the viewport on deps.Container, builds the initial scene and
// starts the event loop.
func Open(ctx context.Context, opts Options, deps Deps) (*Session, error) {
	if deps.Container == nil {
		return nil, errors.New("editor: container is required")
	}
	opts = withDefaults(opts)
	fill, err := vector.ParseHex(opts.CaseColor)
	if err != nil {
		return nil, fmt.Errorf("editor: case color: %w", err)
	}
	if _, err := vector.ParseHex(opts.Text.Fill); err != nil {
		return nil, fmt.Errorf("editor: text fill: %w", err)
	}
	if !opts.Tool.valid() {
		return nil, fmt.Errorf("editor: %w", ErrUnknownTool)
	}
	if deps.Fonts == nil {
		deps.Fonts = textlayout.NewOTProvider(textlayout.DefaultLibrary())
	}
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.Nop{}
	}
	id := uuid.NewString()
	base := deps.Logger
	if base == nil {
		base = applog.WithComponent("editor")
	}
	l := base.With(slog.String("session", id))

	s := &Session{
		id:       id,
		log:      l,
		deps:     deps,
		opts:     opts,
		meas:     textlayout.Measurer{Provider: deps.Fonts},
		tool:     opts.Tool,
		name:     opts.DesignName,
		subs:     make(map[int]func(Snapshot)),
		ops:      make(chan func(), 64),
		closed:   make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	s.vp = viewport.New(deps.Container, render.New(deps.Fonts), l)
	size, err := s.vp.Mount(s.onContainerResize)
	if err != nil {
		return nil, fmt.Errorf("editor: mount: %w", err)
	}
	s.scene = scene.New(s.vp.Background(fill, opts.CornerRadius), scene.WithMeasurer(s.meas))
	if err := s.vp.Render(s.scene); err != nil {
		l.WarnContext(ctx, "initial render failed", slog.Any("err", err))
	}
	go s.loop()

	l.InfoContext(applog.WithSession(ctx, id), "editor session opened",
		slog.Float64("w", size.W), slog.Float64("h", size.H))
	deps.Telemetry.Event(telemetry.EventSessionOpened, map[string]any{"w": size.W, "h": size.H})
	return s, nil
}

func withDefaults(o Options) Options {
	if o.CaseColor == "" {
		o.CaseColor = "#ffffff"
	}
	if o.CornerRadius <= 0 {
		o.CornerRadius = scene.DefaultCornerRadius
	}
	def := DefaultText()
	if o.Text.Text == "" {
		o.Text.Text = def.Text
	}
	if o.Text.FontFamily == "" {
		o.Text.FontFamily = def.FontFamily
	}
	if o.Text.FontSize <= 0 {
		o.Text.FontSize = def.FontSize
	}
	if o.Text.Fill == "" {
		o.Text.Fill = def.Fill
	}
	return o
}

// ID is the session id used in logs.
func (s *Session) ID() string { return s.id }

func (s *Session) loop() {
	defer close(s.loopDone)
	for {
		select {
		case fn := <-s.ops:
			s.run(fn)
		case <-s.closed:
			// drain what was queued before close so no caller waits forever
			for {
				select {
				case fn := <-s.ops:
					s.run(fn)
				default:
					return
				}
			}
		}
	}
}

func (s *Session) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("editor operation panicked", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()
	fn()
}

// do runs fn on the loop and waits for it.
func (s *Session) do(fn func()) error {
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}
	done := make(chan struct{})
	op := func() {
		defer close(done)
		fn()
	}
	select {
	case <-s.closed:
		return ErrClosed
	case s.ops <- op:
	}
	select {
	case <-done:
		return nil
	case <-s.loopDone:
		select {
		case <-done:
			return nil
		default:
			return ErrClosed
		}
	}
}

// post queues fn without waiting. Dropped after close.
func (s *Session) post(fn func()) {
	select {
	case <-s.closed:
	case s.ops <- fn:
	}
}

// Sync waits until every operation queued before it has run.
func (s *Session) Sync() error { return s.do(func() {}) }

// Close stops the loop and releases the viewport. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		<-s.loopDone
		s.vp.Release()
		s.subMu.Lock()
		s.subs = map[int]func(Snapshot){}
		s.subMu.Unlock()
		s.log.Info("editor session closed")
	})
	return nil
}

// Subscribe registers fn to receive a Snapshot after every change. fn runs on
// the session loop and must not call blocking Session methods.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.do(func() { snap = s.snapshot() })
	return snap, err
}

// Frame returns a copy of the last rendered frame.
func (s *Session) Frame() (*image.RGBA, error) {
	var img *image.RGBA
	err := s.do(func() { img = s.vp.Frame() })
	return img, err
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Scene:      s.scene,
		Selection:  s.selection,
		Tool:       s.tool,
		DesignName: s.name,
		Size:       s.vp.Size(),
	}
	if bg, ok := s.scene.Background(); ok {
		snap.CaseColor = bg.Fill.Hex()
	}
	obj, _ := s.selected()
	snap.Panel = panelFor(obj)
	return snap
}

// commit installs next as the current scene, then re-renders and publishes.
func (s *Session) commit(next scene.Scene) error {
	if err := next.Validate(); err != nil {
		s.log.Error("refusing invalid scene", slog.Any("err", err))
		return err
	}
	s.scene = next
	s.publish()
	return nil
}

// publish re-renders and notifies subscribers. Selection is resolved lazily:
// an id that no longer resolves becomes idle here.
func (s *Session) publish() {
	if s.selection != "" {
		if _, _, ok := s.scene.Find(s.selection); !ok {
			s.selection = ""
		}
	}
	if err := s.vp.Render(s.scene); err != nil {
		s.log.Warn("render failed", slog.Any("err", err))
	}
	snap := s.snapshot()
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// onContainerResize is the viewport listener; it may fire on any goroutine.
func (s *Session) onContainerResize() {
	s.post(func() {
		next, changed, err := s.vp.Fit(s.scene)
		if err != nil {
			s.log.Warn("resize failed", slog.Any("err", err))
			return
		}
		if !changed {
			return
		}
		sz := s.vp.Size()
		s.log.Debug("viewport resized", slog.Float64("w", sz.W), slog.Float64("h", sz.H))
		_ = s.commit(next)
	})
}

// Apply reduces an arbitrary intent against the current scene.
func (s *Session) Apply(in scene.Intent) error {
	var err error
	if derr := s.do(func() {
		var next scene.Scene
		next, err = scene.Apply(s.scene, in)
		if err != nil {
			return
		}
		err = s.commit(next)
	}); derr != nil {
		return derr
	}
	return err
}
