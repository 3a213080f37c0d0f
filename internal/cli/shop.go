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
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"caseconstructor/internal/backend"
)

func newCatalogCmd(e *env) *cobra.Command {
	var (
		f        backend.CatalogFilter
		minPrice, maxPrice float64
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List published designs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("min-price") {
				f.MinPrice = &minPrice
			}
			if cmd.Flags().Changed("max-price") {
				f.MaxPrice = &maxPrice
			}
			if err := f.Validate(); err != nil {
				return err
			}
			a, err := e.App()
			if err != nil {
				return err
			}
			ds, err := a.Backend.ListDesigns(cmd.Context())
			if err != nil {
				return err
			}
			ls, err := f.Apply(ds)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\tNAME\tCOLOR\tMODEL\tPRICE\n")
			for _, l := range ls {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.0f ₽\n", l.ID, l.Name, l.Color, l.Model, l.Price)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&f.Color, "color", "", "only designs of this case color")
	cmd.Flags().StringVar(&f.Model, "model", "", "only designs for this phone model")
	cmd.Flags().Float64Var(&minPrice, "min-price", 0, "minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "maximum price")
	return cmd
}

func newCartCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			c, err := a.Backend.Cart(cmd.Context())
			if err != nil {
				return err
			}
			if len(c.Items) == 0 {
				fmt.Fprintln(e.out, "Корзина пуста")
				return nil
			}
			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ITEM\tDESIGN\tNAME\tQTY\tPRICE\n")
			for _, it := range c.Items {
				price := 0.0
				if it.Design.Product != nil {
					price = it.Design.Product.BasePrice
				}
				fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%.0f ₽\n", it.ID, it.Design.ID, it.Design.Name, it.Quantity, price)
			}
			fmt.Fprintf(tw, "\t\t\tИтого\t%.0f ₽\n", c.Total())
			return tw.Flush()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <design-id>",
		Short: "Add one piece of a design to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("design id: %w", err)
			}
			a, err := e.App()
			if err != nil {
				return err
			}
			if err := a.Backend.AddToCart(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Design %d added to cart\n", id)
			return nil
		},
	})
	return cmd
}
