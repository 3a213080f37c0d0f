/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli implements the caseconstructor command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"caseconstructor/internal/app"
	"caseconstructor/internal/config"
	applog "caseconstructor/internal/log"
	"caseconstructor/internal/ui"
	"caseconstructor/internal/version"
)

// env is shared by all commands. The App is built lazily, so commands like
// "version" and "config path" never touch fonts, keyring or the export log.
type env struct {
	out     io.Writer
	verbose bool

	cfg    config.AppConfig
	cookie string
	app    *app.App
	log    *slog.Logger
}

func (e *env) App() (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	a, err := app.New(e.cfg, e.cookie)
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}

func (e *env) close() {
	if e.app != nil {
		if err := e.app.Close(); err != nil {
			e.log.Warn("shutdown", slog.Any("err", err))
		}
	}
}

// NewRoot builds the command tree writing user output to out.
func NewRoot(out io.Writer) *cobra.Command {
	e := &env{out: out}
	root := &cobra.Command{
		Use:           "caseconstructor",
		Short:         "Design phone cases and submit them to the storefront",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cookie, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg, e.cookie = cfg, cookie
			opts := applog.Options{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				AddSource: cfg.Logging.Source,
				File:      cfg.Logging.File,
			}
			if e.verbose {
				opts.Level = "debug"
			}
			applog.Init(opts)
			e.log = applog.WithComponent("cli")
			e.log.Debug("start", slog.String("cmd", cmd.CommandPath()))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) { e.close() },
	}
	root.SetOut(out)
	root.SetVersionTemplate("caseconstructor {{.Version}}\n")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newVersionCmd(e),
		newUICmd(e),
		newRenderCmd(e),
		newSaveCmd(e),
		newLoginCmd(e),
		newConfirmCmd(e),
		newLogoutCmd(e),
		newMeCmd(e),
		newCatalogCmd(e),
		newCartCmd(e),
		newHistoryCmd(e),
		newConfigCmd(e),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRoot(os.Stdout).ExecuteContext(ctx)
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(e.out, "Case Constructor\n%s\n", version.String())
			return err
		},
	}
}

func newUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Launch the desktop editor (build with -tags fyne)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			return ui.Run(a)
		},
	}
}
