/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export turns an editor scene into a design package and hands it to
// the design-save collaborator.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"time"

	"caseconstructor/internal/domain"
	applog "caseconstructor/internal/log"
	"caseconstructor/internal/render"
	"caseconstructor/internal/scene"
	"caseconstructor/internal/storage"
	"caseconstructor/internal/telemetry"
	"caseconstructor/internal/vector"
)

// Saver is the design-save collaborator. It returns the HTTP status of the
// response, or an error when no response was received.
type Saver interface {
	SaveDesign(ctx context.Context, pkg domain.DesignPackage) (int, error)
}

// Recorder persists export attempts. *storage.Store implements it.
type Recorder interface {
	RecordExport(ctx context.Context, rec storage.ExportRecord) (storage.ExportRecord, error)
}

// Pipeline rasterises a scene, packages it and submits it.
// Recorder and Telemetry are optional.
type Pipeline struct {
	Renderer  *render.Renderer
	Saver     Saver
	ProductID string
	Recorder  Recorder
	Telemetry telemetry.Sink
	Log       *slog.Logger
}

func NewPipeline(r *render.Renderer, s Saver, productID string) *Pipeline {
	if productID == "" {
		productID = domain.DefaultProductID
	}
	return &Pipeline{Renderer: r, Saver: s, ProductID: productID, Log: applog.WithComponent("export")}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log == nil {
		return applog.WithComponent("export")
	}
	return p.Log
}

// Rasterize renders the whole scene at native canvas resolution and encodes
// it as PNG.
func (p *Pipeline) Rasterize(s scene.Scene, size vector.Size) ([]byte, *image.RGBA, error) {
	r := p.Renderer
	if r == nil {
		r = render.New(nil)
	}
	img, err := r.Rasterize(s, size)
	if err != nil {
		return nil, nil, fmt.Errorf("rasterize: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), img, nil
}

// Package builds the multipart payload. The name is passed through untouched,
// an empty name included.
func (p *Pipeline) Package(s scene.Scene, size vector.Size, name string) (domain.DesignPackage, error) {
	bg, ok := s.Background()
	if !ok {
		return domain.DesignPackage{}, fmt.Errorf("package: %w", scene.ErrBackgroundRequired)
	}
	data, img, err := p.Rasterize(s, size)
	if err != nil {
		return domain.DesignPackage{}, err
	}
	b := img.Bounds()
	return domain.DesignPackage{
		DesignMetadata: domain.DesignMetadata{
			Name:            name,
			BackgroundColor: bg.Fill.Hex(),
			ProductID:       p.ProductID,
		},
		Image:       data,
		FileName:    domain.DesignFileName,
		ContentType: domain.DesignContentType,
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

// Classify maps a save response onto the outcome taxonomy:
// 2xx saved, 401/403 auth challenge, anything else (or no response) failed.
func Classify(status int, err error) domain.SaveOutcome {
	switch {
	case err != nil:
		return domain.SaveOutcome{Status: domain.SaveFailed, Err: &domain.SaveError{Err: err}}
	case status >= 200 && status < 300:
		return domain.SaveOutcome{Status: domain.SaveOK, HTTPStatus: status}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.SaveOutcome{
			Status:     domain.SaveAuthChallenge,
			HTTPStatus: status,
			Err:        fmt.Errorf("save design: status %d: %w", status, domain.ErrAuthChallenge),
		}
	default:
		return domain.SaveOutcome{
			Status:     domain.SaveFailed,
			HTTPStatus: status,
			Err:        &domain.SaveError{HTTPStatus: status, Err: errors.New(statusText(status))},
		}
	}
}

func statusText(status int) string {
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "unexpected status"
}

// Submit hands pkg to the Saver once; there are no retries.
func (p *Pipeline) Submit(ctx context.Context, pkg domain.DesignPackage) domain.SaveOutcome {
	if p.Saver == nil {
		return domain.SaveOutcome{Status: domain.SaveFailed, Err: &domain.SaveError{Err: errors.New("no design-save collaborator configured")}}
	}
	return Classify(p.Saver.SaveDesign(ctx, pkg))
}

// Export runs the whole pipeline for a captured scene snapshot: rasterise,
// package, submit, then record and report the outcome.
func (p *Pipeline) Export(ctx context.Context, s scene.Scene, size vector.Size, name string) (domain.DesignPackage, domain.SaveOutcome) {
	l := applog.WithOperation(p.logger(), "export")
	start := time.Now()
	pkg, err := p.Package(s, size, name)
	if err != nil {
		out := domain.SaveOutcome{Status: domain.SaveFailed, Err: &domain.SaveError{Err: err}}
		l.ErrorContext(ctx, "design package failed", slog.Any("err", err))
		return pkg, out
	}
	out := p.Submit(ctx, pkg)
	attrs := []any{
		slog.String("status", out.Status.String()),
		slog.Int("http_status", out.HTTPStatus),
		slog.Int("bytes", len(pkg.Image)),
		slog.Duration("took", time.Since(start)),
	}
	switch out.Status {
	case domain.SaveOK:
		l.InfoContext(ctx, "design saved", attrs...)
	case domain.SaveAuthChallenge:
		l.WarnContext(ctx, "design save needs authentication", append(attrs, slog.Any("err", out.Err))...)
	default:
		l.ErrorContext(ctx, "design save failed", append(attrs, slog.Any("err", out.Err))...)
	}
	p.record(ctx, pkg, out)
	if p.Telemetry != nil {
		p.Telemetry.Event(telemetry.EventDesignExported, map[string]any{
			"status": out.Status.String(),
			"width":  pkg.Width,
			"height": pkg.Height,
		})
	}
	return pkg, out
}

func (p *Pipeline) record(ctx context.Context, pkg domain.DesignPackage, out domain.SaveOutcome) {
	if p.Recorder == nil {
		return
	}
	rec := storage.ExportRecord{
		Name:            pkg.Name,
		BackgroundColor: pkg.BackgroundColor,
		ProductID:       pkg.ProductID,
		Status:          out.Status.String(),
		HTTPStatus:      out.HTTPStatus,
		Width:           pkg.Width,
		Height:          pkg.Height,
		PNG:             pkg.Image,
	}
	if out.Err != nil {
		rec.Error = out.Err.Error()
	}
	if _, err := p.Recorder.RecordExport(ctx, rec); err != nil {
		p.logger().WarnContext(ctx, "export log write failed", slog.Any("err", err))
	}
}
