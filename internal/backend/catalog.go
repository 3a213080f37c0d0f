/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"errors"
	"fmt"

	"caseconstructor/internal/domain"
)

var ErrPriceRange = errors.New("backend: invalid price range")

// Listing is a catalog design flattened for display and filtering.
type Listing struct {
	ID    int64
	Name  string
	Color string
	Model string
	Price float64
}

// ListingOf flattens d, filling the storefront's placeholders for missing data.
func ListingOf(d domain.Design) Listing {
	l := Listing{ID: d.ID, Name: d.Name, Color: d.BackgroundColor}
	if l.Color == "" {
		l.Color = "Без цвета"
	}
	if d.Product != nil {
		l.Price = d.Product.BasePrice
		l.Model = d.Product.Model.Name
	}
	if l.Model == "" {
		l.Model = fmt.Sprintf("Product %d", d.ProductID)
	}
	return l
}

// CatalogFilter selects listings. Empty strings and nil bounds match everything.
type CatalogFilter struct {
	Color    string
	Model    string
	MinPrice *float64
	MaxPrice *float64
}

// Validate rejects negative bounds and min > max.
func (f CatalogFilter) Validate() error {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return fmt.Errorf("%w: minimum is negative", ErrPriceRange)
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return fmt.Errorf("%w: maximum is negative", ErrPriceRange)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: minimum exceeds maximum", ErrPriceRange)
	}
	return nil
}

// Apply returns the listings of ds that pass f, in catalog order.
func (f CatalogFilter) Apply(ds []domain.Design) ([]Listing, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	out := make([]Listing, 0, len(ds))
	for _, d := range ds {
		l := ListingOf(d)
		switch {
		case f.Color != "" && l.Color != f.Color:
		case f.Model != "" && l.Model != f.Model:
		case f.MinPrice != nil && l.Price < *f.MinPrice:
		case f.MaxPrice != nil && l.Price > *f.MaxPrice:
		default:
			out = append(out, l)
		}
	}
	return out, nil
}
