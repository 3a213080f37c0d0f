/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"caseconstructor/internal/editor"
	"caseconstructor/internal/scene"
	"caseconstructor/internal/vector"
	"caseconstructor/internal/viewport"
)

// StepError reports the step a replay stopped at.
type StepError struct {
	Index int
	Op    Op
	Err   error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// Env configures a replay. Deps.Container is replaced by a headless container
// of the script's canvas size.
type Env struct {
	BaseDir string // resolves relative add_image paths
	Options editor.Options
	Deps    editor.Deps
	Log     *slog.Logger
}

// Run opens a session for doc and replays every step. On success the caller
// owns the returned session and must Close it.
func Run(ctx context.Context, doc Document, env Env) (*editor.Session, error) {
	w, h := doc.Canvas.Width, doc.Canvas.Height
	if w <= 0 {
		w = viewport.FallbackSize.W
	}
	if h <= 0 {
		h = viewport.FallbackSize.H
	}
	c := newContainer(w, h)
	deps := env.Deps
	deps.Container = c
	opts := env.Options
	if doc.Name != "" {
		opts.DesignName = doc.Name
	}
	s, err := editor.Open(ctx, opts, deps)
	if err != nil {
		return nil, err
	}
	done := false
	defer func() {
		if !done {
			_ = s.Close()
		}
	}()
	r := &replayer{s: s, c: c, base: env.BaseDir, log: env.Log}
	if r.log == nil {
		r.log = slog.Default()
	}
	for i, st := range doc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.step(ctx, st); err != nil {
			return nil, &StepError{Index: i, Op: st.Op, Err: err}
		}
	}
	if err := s.Sync(); err != nil {
		return nil, err
	}
	done = true
	return s, nil
}

var newContainer = viewport.NewFixedContainer

type replayer struct {
	s    *editor.Session
	c    *viewport.FixedContainer
	base string
	log  *slog.Logger
}

func (r *replayer) step(ctx context.Context, st Step) error {
	r.log.DebugContext(ctx, "script step", slog.String("op", string(st.Op)))
	switch st.Op {
	case OpTool:
		t, err := editor.ParseTool(stringValue(st.Value))
		if err != nil {
			return err
		}
		return r.s.SetTool(t)
	case OpAddText:
		_, err := r.s.AddText()
		return err
	case OpAddImage:
		return r.addImage(ctx, st.Path)
	case OpSelect:
		id, err := r.objectAt(st.Index)
		if err != nil {
			return err
		}
		return r.s.Select(id)
	case OpRemove:
		id, err := r.objectAt(st.Index)
		if err != nil {
			return err
		}
		return r.s.Remove(id)
	case OpSelectNone:
		return r.s.ClearSelection()
	case OpClick:
		_, err := r.s.SelectAt(vector.Pt{X: st.X, Y: st.Y})
		return err
	case OpSet:
		return r.s.SetProperty(st.Field, st.Value)
	case OpCaseColor:
		return r.s.SetCaseColor(stringValue(st.Value))
	case OpResize:
		r.c.SetSize(st.Width, st.Height)
		return r.s.Sync()
	case OpName:
		return r.s.SetDesignName(stringValue(st.Value))
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
}

// objectAt resolves a z-order index against the current scene.
func (r *replayer) objectAt(i int) (scene.ObjectID, error) {
	snap, err := r.s.Snapshot()
	if err != nil {
		return "", err
	}
	if i < 0 || i >= snap.Scene.Len() {
		return "", fmt.Errorf("index %d out of range [0,%d)", i, snap.Scene.Len())
	}
	return snap.Scene.At(i).ID(), nil
}

func (r *replayer) addImage(ctx context.Context, path string) error {
	if !filepath.IsAbs(path) && r.base != "" {
		path = filepath.Join(r.base, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	select {
	case res := <-r.s.UploadImage(f):
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("image upload interrupted: %w", ctx.Err())
	}
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
