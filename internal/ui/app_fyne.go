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
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"caseconstructor/internal/app"
	"caseconstructor/internal/crash"
	"caseconstructor/internal/editor"
	applog "caseconstructor/internal/log"
	"caseconstructor/internal/textlayout"
	"caseconstructor/internal/vector"
	"caseconstructor/internal/version"
)

// Run starts the Fyne-based case editor and blocks until the window closes.
func Run(a *app.App) error {
	if a == nil {
		return errors.New("ui: no application context")
	}
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	fa := fyneapp.NewWithID("caseconstructor")
	w := fa.NewWindow("Конструктор чехлов")
	prefs := fa.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 900 {
		winW = 900
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	cc := NewCaseCanvas()
	status := widget.NewLabel("Готово")

	nav := editor.NavigatorFunc(func(reason error) {
		fyne.Do(func() {
			d := dialog.NewError(fmt.Errorf("Не удалось сохранить дизайн: %w", reason), w)
			d.SetOnClosed(w.Close)
			d.Show()
		})
	})
	ctx := context.Background()
	s, err := editor.Open(ctx, a.EditorOptions(), a.EditorDeps(cc, nav))
	if err != nil {
		return err
	}
	defer s.Close()
	defer crash.Recover(&crash.Context{SessionID: s.ID(), LastFrame: s.Frame})
	cc.Attach(s)

	props := newPropertiesPanel(s, l)
	tools := newToolPanel(s, w, l)

	name := widget.NewEntry()
	name.SetPlaceHolder("Название дизайна")
	name.OnChanged = func(v string) { _ = s.SetDesignName(v) }

	var save *widget.Button
	save = widget.NewButton("Сохранить дизайн", func() {
		save.Disable()
		status.SetText("Сохранение…")
		go func() {
			res, err := s.ExportAndWait(ctx)
			fyne.Do(func() {
				save.Enable()
				switch {
				case err != nil:
					status.SetText("Ошибка: " + err.Error())
				case res.Outcome.Err == nil:
					status.SetText("Дизайн сохранён")
				default:
					status.SetText("Ошибка: " + res.Outcome.Err.Error())
				}
			})
		}()
	})
	save.Importance = widget.HighImportance

	s.Subscribe(func(sn editor.Snapshot) {
		// runs on the session loop: fetch the frame elsewhere
		go func() {
			frame, err := s.Frame()
			if err != nil {
				return
			}
			fyne.Do(func() {
				cc.Show(frame, sn)
				props.show(sn)
				tools.show(sn)
			})
		}()
	})
	if sn, err := s.Snapshot(); err == nil {
		props.show(sn)
		tools.show(sn)
	}

	top := container.NewBorder(nil, nil, nil, container.NewHBox(save), name)
	left := container.NewVBox(tools.bar, widget.NewSeparator(), tools.box)
	body := container.NewBorder(top, status, left, props.box, cc)
	w.SetContent(body)
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		// entries keep Delete for themselves while focused
		if ev.Name != fyne.KeyDelete && ev.Name != fyne.KeyBackspace {
			return
		}
		if err := s.RemoveSelected(); err != nil && !errors.Is(err, editor.ErrNoSelection) {
			l.Warn("remove failed", slog.Any("err", err))
		}
	})
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})
	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

// toolPanel is the left column: tool switch plus the active tool's controls.
type toolPanel struct {
	s       *editor.Session
	bar     *fyne.Container
	box     *fyne.Container
	buttons map[editor.Tool]*widget.Button
	label   *widget.Label
	hint    *widget.Label
	action  *widget.Button
	color   *widget.Entry
	tool    editor.Tool
}

func newToolPanel(s *editor.Session, w fyne.Window, l *slog.Logger) *toolPanel {
	tp := &toolPanel{s: s, buttons: map[editor.Tool]*widget.Button{}}
	tp.bar = container.NewVBox()
	for _, t := range []struct {
		tool  editor.Tool
		title string
	}{{editor.ToolText, "Текст"}, {editor.ToolImage, "Изображение"}, {editor.ToolCase, "Чехол"}} {
		tool := t.tool
		b := widget.NewButton(t.title, func() { _ = s.SetTool(tool) })
		tp.buttons[tool] = b
		tp.bar.Add(b)
	}
	tp.label = widget.NewLabel("")
	tp.label.TextStyle = fyne.TextStyle{Bold: true}
	tp.hint = widget.NewLabel("")
	tp.hint.Wrapping = fyne.TextWrapWord
	tp.action = widget.NewButton("", func() {
		switch tp.tool {
		case editor.ToolText:
			if _, err := s.AddText(); err != nil {
				l.Error("add text failed", slog.Any("err", err))
			}
		case editor.ToolImage:
			dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
				if err != nil || rc == nil {
					return
				}
				go func() {
					defer rc.Close()
					if res := <-s.UploadImage(rc); res.Err != nil {
						fyne.Do(func() { dialog.ShowError(res.Err, w) })
					}
				}()
			}, w)
		}
	})
	tp.color = widget.NewEntry()
	tp.color.OnSubmitted = func(v string) {
		if err := s.SetCaseColor(v); err != nil {
			dialog.ShowError(err, w)
		}
	}
	pick := widget.NewButton("Палитра", func() {
		dialog.ShowColorPicker("Цвет чехла", "", func(c color.Color) {
			r, g, b, _ := c.RGBA()
			hex := vector.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}.Hex()
			_ = s.SetCaseColor(hex)
		}, w)
	})
	tp.box = container.NewVBox(tp.label, tp.hint, tp.action, tp.color, pick)
	return tp
}

func (tp *toolPanel) show(sn editor.Snapshot) {
	tp.tool = sn.Tool
	for t, b := range tp.buttons {
		if t == sn.Tool {
			b.Importance = widget.HighImportance
		} else {
			b.Importance = widget.MediumImportance
		}
		b.Refresh()
	}
	p := sn.Tool.Panel()
	tp.label.SetText(p.Label)
	tp.hint.SetText(p.Hint)
	if p.Action != "" {
		tp.action.SetText(p.Action)
		tp.action.Show()
	} else {
		tp.action.Hide()
	}
	if sn.Tool == editor.ToolCase {
		tp.color.SetText(sn.CaseColor)
		tp.color.Show()
		tp.box.Objects[4].Show()
	} else {
		tp.color.Hide()
		tp.box.Objects[4].Hide()
	}
}

// propertiesPanel is the right column bound to the active object.
type propertiesPanel struct {
	s     *editor.Session
	l     *slog.Logger
	box   *fyne.Container
	title *widget.Label
	geom  *fyne.Container
	text  *fyne.Container

	x, y, wd, ht, angle *widget.Entry
	content             *widget.Entry
	font                *widget.Select
	size, fill          *widget.Entry

	syncing bool
}

func newPropertiesPanel(s *editor.Session, l *slog.Logger) *propertiesPanel {
	p := &propertiesPanel{s: s, l: l}
	p.title = widget.NewLabel("")
	p.title.TextStyle = fyne.TextStyle{Bold: true}
	numeric := func(field string) *widget.Entry {
		e := widget.NewEntry()
		e.OnSubmitted = func(v string) { p.write(field, v) }
		return e
	}
	p.x, p.y = numeric("left"), numeric("top")
	p.wd, p.ht = numeric("width"), numeric("height")
	p.angle = numeric("angle")
	p.geom = container.New(layout.NewFormLayout(),
		widget.NewLabel("X"), p.x, widget.NewLabel("Y"), p.y,
		widget.NewLabel("Ширина"), p.wd, widget.NewLabel("Высота"), p.ht,
		widget.NewLabel("Поворот"), p.angle)

	p.content = widget.NewMultiLineEntry()
	p.content.OnChanged = func(v string) { p.write("text", v) }
	p.font = widget.NewSelect(textlayout.Families, func(v string) { p.write("fontFamily", v) })
	p.size = numeric("fontSize")
	p.fill = widget.NewEntry()
	p.fill.OnSubmitted = func(v string) { p.write("fill", v) }
	p.text = container.New(layout.NewFormLayout(),
		widget.NewLabel("Текст"), p.content, widget.NewLabel("Шрифт"), p.font,
		widget.NewLabel("Размер"), p.size, widget.NewLabel("Цвет"), p.fill)

	p.box = container.NewVBox(p.title, p.geom, p.text)
	return p
}

func (p *propertiesPanel) write(field string, raw string) {
	if p.syncing {
		return
	}
	var v any = raw
	if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64); err == nil {
		v = f
	}
	if field == "text" || field == "fontFamily" || field == "fill" {
		v = raw
	}
	if err := p.s.SetProperty(field, v); err != nil {
		p.l.Warn("property rejected", slog.String("field", field), slog.Any("err", err))
	}
}

func (p *propertiesPanel) show(sn editor.Snapshot) {
	p.syncing = true
	defer func() { p.syncing = false }()
	pn := sn.Panel
	p.title.SetText(pn.Title)
	if !pn.Active {
		p.geom.Hide()
		p.text.Hide()
		return
	}
	p.geom.Show()
	p.x.SetText(strconv.Itoa(pn.X))
	p.y.SetText(strconv.Itoa(pn.Y))
	p.wd.SetText(strconv.Itoa(pn.W))
	p.ht.SetText(strconv.Itoa(pn.H))
	p.angle.SetText(strconv.FormatFloat(pn.Angle, 'f', -1, 64))
	if pn.Text == nil {
		p.text.Hide()
		return
	}
	p.text.Show()
	if p.content.Text != pn.Text.Content {
		p.content.SetText(pn.Text.Content)
	}
	p.font.SetSelected(pn.Text.FontFamily)
	p.size.SetText(strconv.FormatFloat(pn.Text.FontSize, 'f', -1, 64))
	p.fill.SetText(pn.Text.Fill)
}
