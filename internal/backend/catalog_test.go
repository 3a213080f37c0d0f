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
	"testing"

	"caseconstructor/internal/domain"
)

func design(id int64, color, model string, price float64) domain.Design {
	d := domain.Design{ID: id, Name: "d", BackgroundColor: color, ProductID: 1}
	if model != "" || price > 0 {
		d.Product = &domain.Product{BasePrice: price}
		d.Product.Model.Name = model
	}
	return d
}

func TestListingPlaceholders(t *testing.T) {
	l := ListingOf(domain.Design{ID: 1, ProductID: 9})
	if l.Color != "Без цвета" || l.Model != "Product 9" || l.Price != 0 {
		t.Fatalf("unexpected placeholders: %+v", l)
	}
}

func TestCatalogFilter(t *testing.T) {
	ds := []domain.Design{
		design(1, "#000000", "iPhone 15", 990),
		design(2, "#ffffff", "iPhone 15", 1490),
		design(3, "#000000", "Galaxy S24", 1200),
	}
	lo, hi := 1000.0, 1300.0
	got, err := CatalogFilter{Color: "#000000", MinPrice: &lo, MaxPrice: &hi}.Apply(ds)
	if err != nil || len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("unexpected result %+v %v", got, err)
	}
	got, _ = CatalogFilter{Model: "iPhone 15"}.Apply(ds)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected model filter result %+v", got)
	}
	if _, err := (CatalogFilter{MinPrice: &hi, MaxPrice: &lo}).Apply(ds); !errors.Is(err, ErrPriceRange) {
		t.Fatalf("expected ErrPriceRange, got %v", err)
	}
	neg := -1.0
	if err := (CatalogFilter{MaxPrice: &neg}).Validate(); !errors.Is(err, ErrPriceRange) {
		t.Fatalf("expected ErrPriceRange for negative bound, got %v", err)
	}
}
