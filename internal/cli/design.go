/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"caseconstructor/internal/domain"
	"caseconstructor/internal/editor"
	"caseconstructor/internal/export"
	"caseconstructor/internal/render"
	"caseconstructor/internal/script"
	"caseconstructor/internal/textlayout"
)

func loadScript(path string) (script.Document, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return script.Document{}, "", err
	}
	doc, err := script.Parse(data)
	if err != nil {
		return script.Document{}, "", fmt.Errorf("%s: %w", path, err)
	}
	return doc, filepath.Dir(path), nil
}

// replay runs a script and returns the open session; the caller closes it.
func (e *env) replay(ctx context.Context, path string, deps editor.Deps) (*editor.Session, error) {
	a, err := e.App()
	if err != nil {
		return nil, err
	}
	doc, dir, err := loadScript(path)
	if err != nil {
		return nil, err
	}
	return script.Run(ctx, doc, script.Env{
		BaseDir: dir,
		Options: a.EditorOptions(),
		Deps:    deps,
		Log:     e.log,
	})
}

type renderOpts struct {
	output string
	proof  string
	title  string
}

func newRenderCmd(e *env) *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render <script.json>",
		Short: "Replay an editor script headlessly and write the design PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			fonts := textlayout.NewOTProvider(a.Fonts)
			s, err := e.replay(cmd.Context(), args[0], editor.Deps{Fonts: fonts, Telemetry: a.Telemetry})
			if err != nil {
				return err
			}
			defer s.Close()
			snap, err := s.Snapshot()
			if err != nil {
				return err
			}
			p := export.NewPipeline(render.New(textlayout.NewOTProvider(a.Fonts)), nil, a.Config.Editor.ProductID)
			pkg, err := p.Package(snap.Scene, snap.Size, snap.DesignName)
			if err != nil {
				return err
			}
			if err := os.WriteFile(opts.output, pkg.Image, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Wrote %s (%dx%d)\n", opts.output, pkg.Width, pkg.Height)
			if opts.proof == "" {
				return nil
			}
			f, err := os.Create(opts.proof)
			if err != nil {
				return err
			}
			if err := export.WriteProofPDF(f, pkg, export.ProofOptions{Title: opts.title}); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Wrote proof %s\n", opts.proof)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", domain.DesignFileName, "output PNG path")
	cmd.Flags().StringVar(&opts.proof, "proof", "", "also write a print proof PDF")
	cmd.Flags().StringVar(&opts.title, "title", "", "proof title")
	return cmd
}

func newSaveCmd(e *env) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "save <script.json>",
		Short: "Replay an editor script and submit the design to the storefront",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			// no screen to leave; the failure is returned instead
			s, err := e.replay(cmd.Context(), args[0], a.EditorDeps(nil, nil))
			if err != nil {
				return err
			}
			defer s.Close()
			if cmd.Flags().Changed("name") {
				if err := s.SetDesignName(name); err != nil {
					return err
				}
			}
			res, err := s.ExportAndWait(cmd.Context())
			if err != nil {
				return err
			}
			out := res.Outcome
			e.log.Info("save finished", slog.String("status", out.Status.String()), slog.Int("http_status", out.HTTPStatus))
			switch out.Status {
			case domain.SaveOK:
				fmt.Fprintf(e.out, "Design %q saved (HTTP %d)\n", res.Package.Name, out.HTTPStatus)
				return nil
			case domain.SaveAuthChallenge:
				return fmt.Errorf("%w: run 'caseconstructor login <email>' first", domain.ErrAuthChallenge)
			default:
				return out.Err
			}
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "design name (overrides the script)")
	return cmd
}
