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
	"log/slog"

	"caseconstructor/internal/domain"
	"caseconstructor/internal/scene"
	"caseconstructor/internal/vector"
)

// ExportResult is delivered once per Export call.
type ExportResult struct {
	Package domain.DesignPackage
	Outcome domain.SaveOutcome
}

// Export captures the current scene, canvas size and design name on the loop,
// then rasterises and submits off the loop. A generic failure leaves the
// editor through the Navigator; an auth challenge only logs.
func (s *Session) Export(ctx context.Context) (<-chan ExportResult, error) {
	if s.deps.Exporter == nil {
		return nil, ErrNoExporter
	}
	var (
		snap scene.Scene
		size vector.Size
		name string
	)
	if err := s.do(func() {
		snap, size, name = s.scene, s.vp.Size(), s.name
	}); err != nil {
		return nil, err
	}
	out := make(chan ExportResult, 1)
	go func() {
		pkg, res := s.deps.Exporter.Export(ctx, snap, size, name)
		switch res.Status {
		case domain.SaveOK:
			s.log.Info("design saved", slog.Int("http_status", res.HTTPStatus))
		case domain.SaveAuthChallenge:
			s.log.Warn("design save rejected, authentication required", slog.Int("http_status", res.HTTPStatus))
		default:
			s.log.Error("design save failed, leaving editor", slog.Any("err", res.Err))
			if s.deps.Navigator != nil {
				s.deps.Navigator.Leave(res.Err)
			}
		}
		out <- ExportResult{Package: pkg, Outcome: res}
	}()
	return out, nil
}

// ExportAndWait is Export for callers that want to block.
func (s *Session) ExportAndWait(ctx context.Context) (ExportResult, error) {
	ch, err := s.Export(ctx)
	if err != nil {
		return ExportResult{}, err
	}
	select {
	case r := <-ch:
		return r, nil
	case <-ctx.Done():
		return ExportResult{}, ctx.Err()
	}
}
