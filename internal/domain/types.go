/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the storefront data model shared by the editor, the export
// pipeline and the backend wrappers. Editor-internal scene types live in package scene.

// DefaultProductID is the only case model the constructor designs for.
const DefaultProductID = "1"

// DesignFileName and DesignContentType describe the raster attached to a design package.
const (
	DesignFileName    = "design.png"
	DesignContentType = "image/png"
)

// DesignMetadata is what the user entered or picked alongside the canvas.
type DesignMetadata struct {
	Name            string `json:"name"`
	BackgroundColor string `json:"background_color"`
	ProductID       string `json:"product_id"`
}

// DesignPackage is the multipart payload handed to the design-save collaborator.
type DesignPackage struct {
	DesignMetadata
	Image       []byte `json:"-"`
	FileName    string `json:"-"`
	ContentType string `json:"-"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// SaveStatus classifies the design-save response.
type SaveStatus int

const (
	SaveFailed SaveStatus = iota
	SaveOK
	SaveAuthChallenge
)

func (s SaveStatus) String() string {
	switch s {
	case SaveOK:
		return "saved"
	case SaveAuthChallenge:
		return "auth_challenge"
	default:
		return "failed"
	}
}

// SaveOutcome is the result of a submitted export.
type SaveOutcome struct {
	Status     SaveStatus
	HTTPStatus int
	Err        error
}

// Product is the printable case model a design is attached to.
type Product struct {
	ID        int64   `json:"product_id"`
	BasePrice float64 `json:"base_price"`
	Model     struct {
		Name     string `json:"name"`
		PhotoURL string `json:"model_photo_url"`
	} `json:"model"`
}

// Design is a saved design as returned by the catalog and profile endpoints.
type Design struct {
	ID              int64    `json:"design_id"`
	Name            string   `json:"name"`
	BackgroundColor string   `json:"background_color"`
	ImageURL        string   `json:"image_url"`
	ProductID       int64    `json:"product_id"`
	Product         *Product `json:"product,omitempty"`
}

// CartItem is one line of the user's cart.
type CartItem struct {
	ID       int64  `json:"cart_item_id"`
	Quantity int    `json:"quantity"`
	Design   Design `json:"design"`
}

// Cart is the current user's cart.
type Cart struct {
	ID        int64      `json:"cart_id"`
	UserID    string     `json:"user_id"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
	Items     []CartItem `json:"items"`
}

// Total sums base price times quantity over all items.
func (c Cart) Total() float64 {
	var sum float64
	for _, it := range c.Items {
		if it.Design.Product == nil {
			continue
		}
		sum += it.Design.Product.BasePrice * float64(it.Quantity)
	}
	return sum
}

// Order is a placed order as listed in the profile.
type Order struct {
	ID     int64   `json:"order_id"`
	Status string  `json:"status"`
	Total  float64 `json:"total"`
}

// User is the authenticated profile.
type User struct {
	Email   string   `json:"email"`
	Orders  []Order  `json:"orders"`
	Designs []Design `json:"designs"`
}
