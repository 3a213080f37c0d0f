package domain

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestCatalogDesignDecodes(t *testing.T) {
	raw := `{"design_id": 7, "name": "Sunset", "background_color": "#ff8800",
		"product_id": 1, "product": {"product_id": 1, "base_price": 990, "model": {"name": "iPhone 15"}}}`
	var d Design
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.ID != 7 || d.Name != "Sunset" || d.Product == nil || d.Product.Model.Name != "iPhone 15" {
		t.Fatalf("unexpected design: %+v", d)
	}
}

func TestCartTotal(t *testing.T) {
	p := &Product{BasePrice: 500}
	c := Cart{Items: []CartItem{
		{Quantity: 2, Design: Design{Product: p}},
		{Quantity: 1, Design: Design{}},
	}}
	if got := c.Total(); got != 1000 {
		t.Fatalf("Total() = %v, want 1000", got)
	}
}

func TestErrorsUnwrap(t *testing.T) {
	de := &DecodeError{Err: io.ErrUnexpectedEOF}
	if !errors.Is(de, io.ErrUnexpectedEOF) {
		t.Fatalf("DecodeError should unwrap to cause")
	}
	se := &SaveError{HTTPStatus: 500, Err: errors.New("boom")}
	if !strings.Contains(se.Error(), "500") {
		t.Fatalf("SaveError message should carry status: %q", se.Error())
	}
	if SaveAuthChallenge.String() != "auth_challenge" || SaveOK.String() != "saved" || SaveFailed.String() != "failed" {
		t.Fatalf("unexpected status strings")
	}
}
