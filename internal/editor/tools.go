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
	"strings"

	"caseconstructor/internal/scene"
	"caseconstructor/internal/vector"
)

var ErrUnknownTool = errors.New("editor: unknown tool")

// Tool is the active editing context. Exactly one is active; the zero value is ToolText.
type Tool int

const (
	ToolText Tool = iota
	ToolImage
	ToolCase
)

func (t Tool) String() string {
	switch t {
	case ToolText:
		return "text"
	case ToolImage:
		return "image"
	case ToolCase:
		return "case"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

func (t Tool) valid() bool { return t >= ToolText && t <= ToolCase }

func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return ToolText, nil
	case "image":
		return ToolImage, nil
	case "case":
		return ToolCase, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// ToolPanel describes the side panel shown for a tool.
type ToolPanel struct {
	Label  string
	Hint   string
	Action string
}

// Panel returns the side panel contents for t.
func (t Tool) Panel() ToolPanel {
	switch t {
	case ToolImage:
		return ToolPanel{Label: "Загрузить изображение", Action: "Выбрать файл"}
	case ToolCase:
		return ToolPanel{Label: "Цвет чехла"}
	default:
		return ToolPanel{Hint: "Нажмите «Добавить текст», он появится по центру чехла.", Action: "Добавить текст"}
	}
}

// SetTool switches the editing context. The selection is left alone.
func (s *Session) SetTool(t Tool) error {
	if !t.valid() {
		return fmt.Errorf("set tool: %w", ErrUnknownTool)
	}
	return s.do(func() {
		if s.tool == t {
			return
		}
		s.tool = t
		s.publish()
	})
}

// SetCaseColor changes the background fill in place; the background keeps its identity.
func (s *Session) SetCaseColor(hex string) error {
	c, err := vector.ParseHex(hex)
	if err != nil {
		return fmt.Errorf("case color: %w", err)
	}
	if derr := s.do(func() {
		bg, ok := s.scene.Background()
		if !ok {
			err = scene.ErrBackgroundRequired
			return
		}
		var next scene.Scene
		next, err = scene.Apply(s.scene, scene.Intent{Target: bg.ID(), Field: scene.FieldFill, Value: c})
		if err != nil {
			return
		}
		err = s.commit(next)
	}); derr != nil {
		return derr
	}
	return err
}

// SetDesignName stores the free-text design name. Any string is accepted.
func (s *Session) SetDesignName(name string) error {
	return s.do(func() {
		if s.name == name {
			return
		}
		s.name = name
		s.publish()
	})
}
