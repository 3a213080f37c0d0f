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
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent design exports from the local export log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			st, err := a.Store()
			if err != nil {
				return err
			}
			recs, err := st.ListExports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\tWHEN\tNAME\tCOLOR\tSIZE\tSTATUS\n")
			for _, r := range recs {
				status := r.Status
				if r.HTTPStatus != 0 {
					status = fmt.Sprintf("%s (%d)", r.Status, r.HTTPStatus)
				}
				fmt.Fprintf(tw, "%s\t%s\t%q\t%s\t%dx%d\t%s\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Name, r.BackgroundColor, r.Width, r.Height, status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries")

	var output string
	image := &cobra.Command{
		Use:   "image <id>",
		Short: "Write the PNG of a logged export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			st, err := a.Store()
			if err != nil {
				return err
			}
			data, err := st.ExportImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + ".png"
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Wrote %s\n", output)
			return nil
		},
	}
	image.Flags().StringVarP(&output, "output", "o", "", "output PNG path (default <id>.png)")
	cmd.AddCommand(image)
	return cmd
}
