/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewport keeps the editor's drawing surface and background shape in
// step with the size of the hosting container.
package viewport

import (
	"sync"

	"caseconstructor/internal/vector"
)

// Container is whatever hosts the canvas: a window widget, or a fixed box for
// headless use. OnResize returns a function that removes the listener.
type Container interface {
	ContentSize() vector.Size
	OnResize(fn func()) (unsubscribe func())
}

// FixedContainer is a headless Container whose size changes only via SetSize.
type FixedContainer struct {
	mu        sync.Mutex
	size      vector.Size
	listeners map[int]func()
	next      int
}

func NewFixedContainer(w, h float64) *FixedContainer {
	return &FixedContainer{size: vector.Size{W: w, H: h}, listeners: make(map[int]func())}
}

func (c *FixedContainer) ContentSize() vector.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *FixedContainer) OnResize(fn func()) func() {
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

// SetSize updates the content box and notifies listeners, even when the
// size did not change.
func (c *FixedContainer) SetSize(w, h float64) {
	c.mu.Lock()
	c.size = vector.Size{W: w, H: h}
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Listeners returns the number of registered resize listeners.
func (c *FixedContainer) Listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}
