/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"math"

	"caseconstructor/internal/scene"
	"caseconstructor/internal/vector"
)

// Settings panel titles.
const (
	TitleIdle   = "НАСТРОЙКИ"
	TitleText   = "НАСТРОЙКИ ТЕКСТА"
	TitleImage  = "НАСТРОЙКИ ИЗОБРАЖЕНИЯ"
	TitleObject = "НАСТРОЙКИ ОБЪЕКТА"
)

// Panel is the property form for the active object, values rounded for display.
type Panel struct {
	Title  string
	Active bool
	Kind   scene.Kind
	ID     scene.ObjectID

	X, Y  int // center
	W, H  int // rendered size
	Angle float64

	Text *TextFields // only for text boxes
}

type TextFields struct {
	Content    string
	FontFamily string
	FontSize   float64
	Fill       string
}

func panelFor(o scene.Object) Panel {
	if o == nil {
		return Panel{Title: TitleIdle}
	}
	tr := o.Transform()
	p := Panel{
		Active: true,
		Kind:   o.Kind(),
		ID:     o.ID(),
		X:      int(math.Round(tr.Left)),
		Y:      int(math.Round(tr.Top)),
		W:      vector.DisplayLength(tr.Width, tr.ScaleX),
		H:      vector.DisplayLength(tr.Height, tr.ScaleY),
		Angle:  tr.Angle,
	}
	switch v := o.(type) {
	case scene.TextBox:
		p.Title = TitleText
		p.Text = &TextFields{Content: v.Text, FontFamily: v.FontFamily, FontSize: v.FontSize, Fill: v.Fill.Hex()}
	case scene.Image:
		p.Title = TitleImage
	default:
		p.Title = TitleObject
	}
	return p
}
