/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"caseconstructor/internal/domain"
	"caseconstructor/internal/export"
	"caseconstructor/internal/log"
	"caseconstructor/internal/render"
	"caseconstructor/internal/textlayout"
)

type fakeSaver struct {
	mu     sync.Mutex
	status int
	err    error
	got    []domain.DesignPackage
}

func (f *fakeSaver) SaveDesign(_ context.Context, pkg domain.DesignPackage) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, pkg)
	return f.status, f.err
}

type navRecorder struct {
	mu      sync.Mutex
	reasons []error
}

func (n *navRecorder) Leave(reason error) {
	n.mu.Lock()
	n.reasons = append(n.reasons, reason)
	n.mu.Unlock()
}

func (n *navRecorder) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reasons)
}

func exportSession(t *testing.T, saver *fakeSaver) (*Session, *navRecorder) {
	t.Helper()
	p := export.NewPipeline(render.New(textlayout.BasicProvider{}), saver, "")
	p.Log = log.Discard()
	nav := &navRecorder{}
	s, _ := openSession(t, 300, 200, Deps{Exporter: p, Navigator: nav})
	return s, nav
}

func TestExportSendsEmptyNameAndCanvasSize(t *testing.T) {
	saver := &fakeSaver{status: 201}
	s, nav := exportSession(t, saver)
	_ = s.SetCaseColor("#336699")
	res, err := s.ExportAndWait(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Outcome.Status != domain.SaveOK || nav.count() != 0 {
		t.Fatalf("unexpected outcome %+v", res.Outcome)
	}
	if len(saver.got) != 1 {
		t.Fatalf("expected one submission, got %d", len(saver.got))
	}
	pkg := saver.got[0]
	if pkg.Name != "" || pkg.BackgroundColor != "#336699" || pkg.ProductID != domain.DefaultProductID {
		t.Fatalf("unexpected metadata: %+v", pkg.DesignMetadata)
	}
	if pkg.Width != 300 || pkg.Height != 200 || len(pkg.Image) == 0 {
		t.Fatalf("unexpected image %dx%d (%d bytes)", pkg.Width, pkg.Height, len(pkg.Image))
	}
}

func TestExportUsesDesignName(t *testing.T) {
	saver := &fakeSaver{status: 200}
	s, _ := exportSession(t, saver)
	if err := s.SetDesignName("Мой чехол"); err != nil {
		t.Fatalf("name: %v", err)
	}
	if _, err := s.ExportAndWait(context.Background()); err != nil {
		t.Fatalf("export: %v", err)
	}
	if saver.got[0].Name != "Мой чехол" {
		t.Fatalf("unexpected name %q", saver.got[0].Name)
	}
}

func TestExportFailureLeavesEditor(t *testing.T) {
	for _, tc := range []struct {
		name   string
		saver  *fakeSaver
		status domain.SaveStatus
		leaves bool
	}{
		{"server error", &fakeSaver{status: 500}, domain.SaveFailed, true},
		{"transport error", &fakeSaver{err: errors.New("connection refused")}, domain.SaveFailed, true},
		{"unauthorized", &fakeSaver{status: 401}, domain.SaveAuthChallenge, false},
		{"forbidden", &fakeSaver{status: 403}, domain.SaveAuthChallenge, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, nav := exportSession(t, tc.saver)
			res, err := s.ExportAndWait(context.Background())
			if err != nil {
				t.Fatalf("export: %v", err)
			}
			if res.Outcome.Status != tc.status {
				t.Fatalf("status = %s, want %s", res.Outcome.Status, tc.status)
			}
			if left := nav.count() == 1; left != tc.leaves {
				t.Fatalf("navigated away = %v, want %v", left, tc.leaves)
			}
			if tc.status == domain.SaveAuthChallenge && !errors.Is(res.Outcome.Err, domain.ErrAuthChallenge) {
				t.Fatalf("expected ErrAuthChallenge, got %v", res.Outcome.Err)
			}
		})
	}
}

func TestExportWithoutExporter(t *testing.T) {
	s, _ := openSession(t, 100, 100, Deps{})
	if _, err := s.Export(context.Background()); !errors.Is(err, ErrNoExporter) {
		t.Fatalf("expected ErrNoExporter, got %v", err)
	}
}
