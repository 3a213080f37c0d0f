/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"errors"
	"fmt"

	"caseconstructor/internal/vector"
)

var (
	ErrNotFound           = errors.New("scene: object not found")
	ErrDuplicateID        = errors.New("scene: duplicate object id")
	ErrBackgroundExists   = errors.New("scene: background already present")
	ErrBackgroundRequired = errors.New("scene: background is required at index 0")
	ErrInvalidScene       = errors.New("scene: invalid")
)

// Scene is an immutable ordered snapshot. Index 0 is always the background.
type Scene struct {
	objects []Object
	version uint64
	measure Measurer
}

type Option func(*Scene)

// WithMeasurer sets the text measurer used when text fields change.
func WithMeasurer(m Measurer) Option { return func(s *Scene) { s.measure = m } }

// New creates a scene holding only bg.
func New(bg Background, opts ...Option) Scene {
	s := Scene{objects: []Object{bg}, version: 1}
	for _, o := range opts {
		o(&s)
	}
	return s
}

func (s Scene) Len() int           { return len(s.objects) }
func (s Scene) Version() uint64    { return s.version }
func (s Scene) Measurer() Measurer { return s.measure }

// At returns the object at z-index i (0 is bottom).
func (s Scene) At(i int) Object { return s.objects[i] }

// Objects returns a copy of the objects in z-order.
func (s Scene) Objects() []Object {
	out := make([]Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Background returns the bottom object. The zero Scene has none.
func (s Scene) Background() (Background, bool) {
	if len(s.objects) == 0 {
		return Background{}, false
	}
	bg, ok := s.objects[0].(Background)
	return bg, ok
}

// Find resolves id to its object and z-index.
func (s Scene) Find(id ObjectID) (Object, int, bool) {
	for i, o := range s.objects {
		if o.ID() == id {
			return o, i, true
		}
	}
	return nil, -1, false
}

func (s Scene) next(objs []Object) Scene {
	return Scene{objects: objs, version: s.version + 1, measure: s.measure}
}

// Add appends obj on top of the z-order.
func (s Scene) Add(obj Object) (Scene, error) {
	if obj == nil {
		return s, fmt.Errorf("add: %w", ErrInvalidScene)
	}
	if _, _, dup := s.Find(obj.ID()); dup {
		return s, fmt.Errorf("add %s: %w", obj.ID(), ErrDuplicateID)
	}
	if obj.Kind() == KindBackground {
		return s, fmt.Errorf("add %s: %w", obj.ID(), ErrBackgroundExists)
	}
	objs := make([]Object, 0, len(s.objects)+1)
	objs = append(objs, s.objects...)
	objs = append(objs, obj)
	return s.next(objs), nil
}

// Remove drops the object with id. The background cannot be removed on its own.
func (s Scene) Remove(id ObjectID) (Scene, error) {
	o, idx, ok := s.Find(id)
	if !ok {
		return s, fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	if o.Kind() == KindBackground {
		return s, fmt.Errorf("remove %s: %w", id, ErrBackgroundRequired)
	}
	objs := make([]Object, 0, len(s.objects)-1)
	objs = append(objs, s.objects[:idx]...)
	objs = append(objs, s.objects[idx+1:]...)
	return s.next(objs), nil
}

// SendToBack moves the background with id to index 0. Other objects cannot
// take index 0.
func (s Scene) SendToBack(id ObjectID) (Scene, error) {
	o, idx, ok := s.Find(id)
	if !ok {
		return s, fmt.Errorf("send to back %s: %w", id, ErrNotFound)
	}
	if o.Kind() != KindBackground {
		return s, fmt.Errorf("send to back %s: %w", id, ErrBackgroundRequired)
	}
	objs := make([]Object, 0, len(s.objects))
	objs = append(objs, o)
	objs = append(objs, s.objects[:idx]...)
	objs = append(objs, s.objects[idx+1:]...)
	return s.next(objs), nil
}

// ReplaceBackground swaps the current background for bg in one step.
// All other objects keep their order and absolute coordinates.
func (s Scene) ReplaceBackground(bg Background) (Scene, error) {
	if _, _, dup := s.Find(bg.ID()); dup {
		if cur, ok := s.Background(); !ok || cur.ID() != bg.ID() {
			return s, fmt.Errorf("replace background %s: %w", bg.ID(), ErrDuplicateID)
		}
	}
	objs := make([]Object, 0, len(s.objects)+1)
	objs = append(objs, bg)
	for _, o := range s.objects {
		if o.Kind() == KindBackground {
			continue
		}
		objs = append(objs, o)
	}
	return s.next(objs), nil
}

// replace swaps the object at index i for o (same identity).
func (s Scene) replace(i int, o Object) Scene {
	objs := make([]Object, len(s.objects))
	copy(objs, s.objects)
	objs[i] = o
	return s.next(objs)
}

// Validate checks the structural invariants: exactly one background at index 0
// and unique identities.
func (s Scene) Validate() error {
	if len(s.objects) == 0 {
		return fmt.Errorf("%w: empty scene", ErrInvalidScene)
	}
	if s.objects[0].Kind() != KindBackground {
		return fmt.Errorf("%w: index 0 is %s", ErrInvalidScene, s.objects[0].Kind())
	}
	seen := make(map[ObjectID]struct{}, len(s.objects))
	for i, o := range s.objects {
		if i > 0 && o.Kind() == KindBackground {
			return fmt.Errorf("%w: second background at %d", ErrInvalidScene, i)
		}
		if _, dup := seen[o.ID()]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidScene, o.ID())
		}
		seen[o.ID()] = struct{}{}
	}
	return nil
}

// HitTest returns the topmost selectable object containing p.
func (s Scene) HitTest(p vector.Pt) (Object, bool) {
	for i := len(s.objects) - 1; i >= 0; i-- {
		o := s.objects[i]
		if !o.Selectable() || !o.Evented() {
			continue
		}
		if o.Transform().Contains(p) {
			return o, true
		}
	}
	return nil, false
}
