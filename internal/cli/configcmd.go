/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"caseconstructor/internal/config"
)

var overridable = []string{
	"backend.base_url", "backend.timeout_ms", "backend.tls_insecure",
	"general.telemetry_opt_in", "editor.case_color", "editor.product_id",
	"storage.export_log", "logging.level", "logging.format", "logging.source", "logging.file",
}

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the user configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := config.ConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, p)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(e.cfg)
			if err != nil {
				return err
			}
			if _, err := e.out.Write(data); err != nil {
				return err
			}
			for _, k := range overridable {
				if name, ok := config.EnvOverrideFor(k); ok {
					fmt.Fprintf(e.out, "# %s overridden by %s\n", k, name)
				}
			}
			if e.cookie != "" {
				fmt.Fprintln(e.out, "# signed in (session stored in the OS keychain)")
			}
			return nil
		},
	})
	return cmd
}
