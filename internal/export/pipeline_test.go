/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"testing"
	"time"

	"caseconstructor/internal/domain"
	"caseconstructor/internal/log"
	"caseconstructor/internal/render"
	"caseconstructor/internal/scene"
	"caseconstructor/internal/storage"
	"caseconstructor/internal/vector"
)

type fakeSaver struct {
	status int
	err    error
	got    []domain.DesignPackage
}

func (f *fakeSaver) SaveDesign(_ context.Context, pkg domain.DesignPackage) (int, error) {
	f.got = append(f.got, pkg)
	return f.status, f.err
}

type memRecorder struct{ recs []storage.ExportRecord }

func (m *memRecorder) RecordExport(_ context.Context, rec storage.ExportRecord) (storage.ExportRecord, error) {
	m.recs = append(m.recs, rec)
	return rec, nil
}

type events struct{ names []string }

func (e *events) Event(name string, _ map[string]any) { e.names = append(e.names, name) }

func testScene() scene.Scene {
	bg := scene.NewBackground(vector.Size{W: 120, H: 80}, vector.Pt{X: 60, Y: 40}, vector.MustHex("#00ff00"), scene.DefaultCornerRadius)
	return scene.New(bg)
}

func newTestPipeline(s Saver) *Pipeline {
	p := NewPipeline(render.New(nil), s, "")
	p.Log = log.Discard()
	return p
}

func TestClassify(t *testing.T) {
	cases := []struct {
		status int
		err    error
		want   domain.SaveStatus
	}{
		{200, nil, domain.SaveOK},
		{201, nil, domain.SaveOK},
		{401, nil, domain.SaveAuthChallenge},
		{403, nil, domain.SaveAuthChallenge},
		{400, nil, domain.SaveFailed},
		{500, nil, domain.SaveFailed},
		{0, errors.New("dial tcp: refused"), domain.SaveFailed},
	}
	for _, c := range cases {
		out := Classify(c.status, c.err)
		if out.Status != c.want {
			t.Fatalf("status %d err %v: got %s want %s", c.status, c.err, out.Status, c.want)
		}
	}
	if out := Classify(http.StatusForbidden, nil); !errors.Is(out.Err, domain.ErrAuthChallenge) {
		t.Fatalf("auth challenge must wrap ErrAuthChallenge: %v", out.Err)
	}
	var se *domain.SaveError
	if out := Classify(502, nil); !errors.As(out.Err, &se) || se.HTTPStatus != 502 {
		t.Fatalf("expected SaveError with status: %v", out.Err)
	}
}

func TestPackageAtNativeResolution(t *testing.T) {
	p := newTestPipeline(nil)
	pkg, err := p.Package(testScene(), vector.Size{W: 120, H: 80}, "")
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	if pkg.Name != "" || pkg.ProductID != domain.DefaultProductID || pkg.BackgroundColor != "#00ff00" {
		t.Fatalf("unexpected metadata: %+v", pkg.DesignMetadata)
	}
	if pkg.FileName != "design.png" || pkg.ContentType != "image/png" {
		t.Fatalf("unexpected file: %s %s", pkg.FileName, pkg.ContentType)
	}
	img, err := png.Decode(bytes.NewReader(pkg.Image))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 || pkg.Width != 120 || pkg.Height != 80 {
		t.Fatalf("unexpected raster size: %v", b)
	}
}

func TestExportEmptyNameStillSent(t *testing.T) {
	saver := &fakeSaver{status: 200}
	rec := &memRecorder{}
	ev := &events{}
	p := newTestPipeline(saver)
	p.Recorder = rec
	p.Telemetry = ev

	_, out := p.Export(context.Background(), testScene(), vector.Size{W: 120, H: 80}, "")
	if out.Status != domain.SaveOK {
		t.Fatalf("expected saved, got %s (%v)", out.Status, out.Err)
	}
	if len(saver.got) != 1 || saver.got[0].Name != "" {
		t.Fatalf("expected one package with empty name: %+v", saver.got)
	}
	if len(rec.recs) != 1 || rec.recs[0].Status != "saved" || len(rec.recs[0].PNG) == 0 {
		t.Fatalf("expected recorded export: %+v", rec.recs)
	}
	if len(ev.names) != 1 || ev.names[0] != "design_exported" {
		t.Fatalf("expected telemetry event: %v", ev.names)
	}
}

func TestExportFailuresAreRecordedNotRetried(t *testing.T) {
	saver := &fakeSaver{err: errors.New("connection reset")}
	rec := &memRecorder{}
	p := newTestPipeline(saver)
	p.Recorder = rec
	_, out := p.Export(context.Background(), testScene(), vector.Size{W: 120, H: 80}, "x")
	if out.Status != domain.SaveFailed || len(saver.got) != 1 {
		t.Fatalf("expected a single failed attempt, got %s after %d", out.Status, len(saver.got))
	}
	if rec.recs[0].Error == "" {
		t.Fatalf("error text must be recorded")
	}
	if _, out := newTestPipeline(nil).Export(context.Background(), testScene(), vector.Size{W: 10, H: 10}, ""); out.Status != domain.SaveFailed {
		t.Fatalf("missing saver must fail")
	}
}

func TestExportInvalidSizeFails(t *testing.T) {
	saver := &fakeSaver{status: 200}
	_, out := newTestPipeline(saver).Export(context.Background(), testScene(), vector.Size{}, "")
	if out.Status != domain.SaveFailed || len(saver.got) != 0 {
		t.Fatalf("nothing must be submitted for an empty canvas")
	}
}

func TestWriteProofPDF(t *testing.T) {
	pkg, err := newTestPipeline(nil).Package(testScene(), vector.Size{W: 120, H: 80}, "Мой чехол")
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteProofPDF(&buf, pkg, ProofOptions{Generated: time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("proof: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf")
	}
	if err := WriteProofPDF(&buf, domain.DesignPackage{}, ProofOptions{}); err == nil {
		t.Fatalf("expected error without image")
	}
}
