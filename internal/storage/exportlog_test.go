/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", FileName))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenMigratesToCurrentSchema(t *testing.T) {
	s := openTemp(t)
	v, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if v != schemaVersion {
		t.Fatalf("expected schema %d, got %d", schemaVersion, v)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.RecordExport(context.Background(), ExportRecord{Name: "a", BackgroundColor: "#ffffff", ProductID: "1", Status: "saved", Width: 10, Height: 10}); err != nil {
		t.Fatalf("record: %v", err)
	}
	_ = s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	recs, err := s2.ListExports(context.Background(), 0)
	if err != nil || len(recs) != 1 || recs[0].Name != "a" {
		t.Fatalf("unexpected records: %+v err=%v", recs, err)
	}
}

func TestRecordAndListNewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "", "third"} {
		rec, err := s.RecordExport(ctx, ExportRecord{
			Name: name, BackgroundColor: "#ff0000", ProductID: "1",
			Status: "failed", HTTPStatus: 500, Error: "boom",
			Width: 600, Height: 400, PNG: []byte{byte(i)},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if rec.ID == "" {
			t.Fatalf("expected generated id")
		}
	}
	recs, err := s.ListExports(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 || recs[0].Name != "third" || recs[1].Name != "" {
		t.Fatalf("unexpected order: %+v", recs)
	}
	if recs[0].PNG != nil {
		t.Fatalf("list must not load image bytes")
	}
	if !recs[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("created_at mismatch: %v", recs[0].CreatedAt)
	}
	img, err := s.ExportImage(ctx, recs[0].ID)
	if err != nil || len(img) != 1 || img[0] != 2 {
		t.Fatalf("image mismatch: %v %v", img, err)
	}
	if _, err := s.ExportImage(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
