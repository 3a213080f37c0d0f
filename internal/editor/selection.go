/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"caseconstructor/internal/scene"
	"caseconstructor/internal/vector"
)

var (
	ErrNotSelectable = errors.New("editor: object is not selectable")
	ErrNoSelection   = errors.New("editor: nothing selected")
)

// selected resolves the selection against the current scene.
func (s *Session) selected() (scene.Object, bool) {
	if s.selection == "" {
		return nil, false
	}
	o, _, ok := s.scene.Find(s.selection)
	if !ok || !o.Selectable() {
		return nil, false
	}
	return o, true
}

// Select makes id the active object. The background cannot be selected.
func (s *Session) Select(id scene.ObjectID) error {
	var err error
	if derr := s.do(func() {
		o, _, ok := s.scene.Find(id)
		if !ok {
			err = fmt.Errorf("select %s: %w", id, scene.ErrNotFound)
			return
		}
		if !o.Selectable() {
			err = fmt.Errorf("select %s: %w", id, ErrNotSelectable)
			return
		}
		s.selection = id
		s.publish()
	}); derr != nil {
		return derr
	}
	return err
}

// SelectAt selects the topmost selectable object under p, or clears the
// selection when p hits nothing. Returns the selected id, empty when idle.
func (s *Session) SelectAt(p vector.Pt) (scene.ObjectID, error) {
	var id scene.ObjectID
	err := s.do(func() {
		if o, ok := s.scene.HitTest(p); ok {
			id = o.ID()
		}
		s.selection = id
		s.publish()
	})
	return id, err
}

// ClearSelection returns to idle.
func (s *Session) ClearSelection() error {
	return s.do(func() {
		if s.selection == "" {
			return
		}
		s.selection = ""
		s.publish()
	})
}

// Selection returns the active object id, empty when idle.
func (s *Session) Selection() (scene.ObjectID, error) {
	var id scene.ObjectID
	err := s.do(func() {
		if o, ok := s.selected(); ok {
			id = o.ID()
		}
	})
	return id, err
}

// SetProperty writes one field of the active object. Sizes are converted to
// scale factors. On idle it does nothing and returns nil.
func (s *Session) SetProperty(field string, value any) error {
	return s.SetProperties(Write{Field: field, Value: value})
}

// Write is one field assignment for SetProperties.
type Write struct {
	Field string
	Value any
}

// SetProperties applies ws in order to the active object as one change:
// either all writes land with a single re-render, or none does. On idle it
// does nothing and returns nil.
func (s *Session) SetProperties(ws ...Write) error {
	if len(ws) == 0 {
		return nil
	}
	fields := make([]scene.Field, len(ws))
	for i, w := range ws {
		f, err := scene.ParseField(w.Field)
		if err != nil {
			return err
		}
		fields[i] = f
	}
	var err error
	if derr := s.do(func() {
		o, ok := s.selected()
		if !ok {
			s.log.Debug("property write ignored, nothing selected", slog.String("field", ws[0].Field))
			return
		}
		next := s.scene
		for i, w := range ws {
			next, err = scene.Apply(next, scene.Intent{Target: o.ID(), Field: fields[i], Value: w.Value})
			if err != nil {
				return
			}
		}
		err = s.commit(next)
	}); derr != nil {
		return derr
	}
	return err
}

// Remove deletes id from the scene. Removing the active object returns the
// selection to idle. The background cannot be removed.
func (s *Session) Remove(id scene.ObjectID) error {
	var err error
	if derr := s.do(func() {
		var next scene.Scene
		next, err = s.scene.Remove(id)
		if err != nil {
			return
		}
		err = s.commit(next)
	}); derr != nil {
		return derr
	}
	return err
}

// RemoveSelected deletes the active object. On idle it returns ErrNoSelection.
func (s *Session) RemoveSelected() error {
	var err error
	if derr := s.do(func() {
		o, ok := s.selected()
		if !ok {
			err = ErrNoSelection
			return
		}
		var next scene.Scene
		next, err = s.scene.Remove(o.ID())
		if err != nil {
			return
		}
		err = s.commit(next)
	}); derr != nil {
		return derr
	}
	return err
}
