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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"caseconstructor/internal/config"
)

func newLoginCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Request a confirmation code by e-mail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			if err := a.Backend.Login(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(e.out, "Code sent. Run 'caseconstructor confirm <code>'.")
			return nil
		},
	}
}

func newConfirmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <code>",
		Short: "Confirm the e-mailed code and store the session in the OS keychain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			cookie, err := a.Backend.Confirm(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := config.SetSessionCookie(cookie); err != nil {
				return fmt.Errorf("store session: %w", err)
			}
			fmt.Fprintln(e.out, "Signed in.")
			return nil
		},
	}
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.SetSessionCookie(""); err != nil {
				return err
			}
			fmt.Fprintln(e.out, "Signed out.")
			return nil
		},
	}
}

func newMeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			u, err := a.Backend.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "E-mail: %s\n", u.Email)
			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "\nORDER\tSTATUS\tTOTAL\n")
			for _, o := range u.Orders {
				fmt.Fprintf(tw, "%d\t%s\t%.2f ₽\n", o.ID, o.Status, o.Total)
			}
			fmt.Fprintf(tw, "\nDESIGN\tNAME\tCOLOR\n")
			for _, d := range u.Designs {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", d.ID, d.Name, d.BackgroundColor)
			}
			return tw.Flush()
		},
	}
}
