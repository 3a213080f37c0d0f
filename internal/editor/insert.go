/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	// decoders for uploads
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"caseconstructor/internal/domain"
	"caseconstructor/internal/scene"
	"caseconstructor/internal/telemetry"
	"caseconstructor/internal/vector"
)

// AddText inserts a text box with the default content, centered on the case,
// on top of the stack and selects it.
func (s *Session) AddText() (scene.ObjectID, error) {
	var (
		id  scene.ObjectID
		err error
	)
	if derr := s.do(func() {
		bg, ok := s.scene.Background()
		if !ok {
			err = scene.ErrBackgroundRequired
			return
		}
		d := s.opts.Text
		fill, perr := vector.ParseHex(d.Fill)
		if perr != nil {
			err = perr
			return
		}
		center := bg.Rect().Center()
		tb := scene.NewTextBox(d.Text, d.FontFamily, d.FontSize, fill, center, s.meas)
		next, aerr := s.scene.Add(tb)
		if aerr != nil {
			err = aerr
			return
		}
		s.selection = tb.ID()
		if err = s.commit(next); err != nil {
			return
		}
		id = tb.ID()
	}); derr != nil {
		return "", derr
	}
	if err == nil {
		s.log.Debug("text added", slog.String("id", string(id)))
		s.deps.Telemetry.Event(telemetry.EventTextAdded, nil)
	}
	return id, err
}

// UploadResult reports the outcome of UploadImage.
type UploadResult struct {
	ID  scene.ObjectID
	Err error
}

// UploadImage decodes r off the loop, then inserts the picture stretched over
// the current case, keeps the case at the bottom and selects the picture.
// r is read on another goroutine. The result channel receives exactly one value.
func (s *Session) UploadImage(r io.Reader) <-chan UploadResult {
	out := make(chan UploadResult, 1)
	select {
	case <-s.closed:
		out <- UploadResult{Err: ErrClosed}
		return out
	default:
	}
	go func() {
		img, err := decodeImage(r)
		if err != nil {
			s.log.Error("image decode failed", slog.Any("err", err))
			out <- UploadResult{Err: err}
			return
		}
		var id scene.ObjectID
		var ierr error
		if derr := s.do(func() { id, ierr = s.insertImage(img) }); derr != nil {
			out <- UploadResult{Err: derr}
			return
		}
		if ierr == nil {
			s.deps.Telemetry.Event(telemetry.EventImageInserted, nil)
		}
		out <- UploadResult{ID: id, Err: ierr}
	}()
	return out
}

// MaxImagePixels caps uploads; larger images are refused before any pixel
// buffer is allocated.
const MaxImagePixels = 50_000_000

func decodeImage(r io.Reader) (image.Image, error) {
	if r == nil {
		return nil, &domain.DecodeError{Err: errors.New("no file")}
	}
	var head bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, &domain.DecodeError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &domain.DecodeError{Err: fmt.Errorf("%s image has no pixels", format)}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, &domain.DecodeError{Err: fmt.Errorf("%s image too large: %dx%d", format, cfg.Width, cfg.Height)}
	}
	img, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, &domain.DecodeError{Err: err}
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, &domain.DecodeError{Err: fmt.Errorf("%s image has no pixels", format)}
	}
	return img, nil
}

// insertImage runs on the loop. The background is read here, not when the
// upload started, so a resize during decoding is honoured.
func (s *Session) insertImage(px image.Image) (scene.ObjectID, error) {
	bg, ok := s.scene.Background()
	if !ok {
		return "", scene.ErrBackgroundRequired
	}
	im := scene.NewImage(px)
	tr := im.Transform()
	sx, sy, err := vector.StretchScale(vector.Size{W: tr.Width, H: tr.Height}, bg.Transform().RenderedSize())
	if err != nil {
		return "", &domain.DecodeError{Err: err}
	}
	im = im.Placed(bg.Rect().Center(), sx, sy)
	next, err := s.scene.Add(im)
	if err != nil {
		return "", err
	}
	if next, err = next.SendToBack(bg.ID()); err != nil {
		return "", err
	}
	s.selection = im.ID()
	if err := s.commit(next); err != nil {
		return "", err
	}
	s.log.Debug("image inserted", slog.String("id", string(im.ID())),
		slog.Float64("scale_x", sx), slog.Float64("scale_y", sy))
	return im.ID(), nil
}
