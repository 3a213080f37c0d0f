/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"caseconstructor/internal/domain"
)

func TestSaveDesignMultipart(t *testing.T) {
	var got struct {
		fields map[string]string
		file   []byte
		fname  string
		cookie string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/design/dev-add" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse: %v", err)
		}
		got.fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			got.fields[k] = v[0]
		}
		f, hdr, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("photo: %v", err)
		} else {
			got.file, _ = io.ReadAll(f)
			got.fname = hdr.Filename
			_ = f.Close()
		}
		got.cookie = r.Header.Get("Cookie")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "sid=abc")
	pkg := domain.DesignPackage{
		DesignMetadata: domain.DesignMetadata{Name: "", BackgroundColor: "#ffffff", ProductID: "1"},
		Image:          []byte("\x89PNG fake"),
	}
	status, err := c.SaveDesign(context.Background(), pkg)
	if err != nil || status != http.StatusCreated {
		t.Fatalf("save: %d %v", status, err)
	}
	if got.fields["product_id"] != "1" || got.fields["background_color"] != "#ffffff" {
		t.Fatalf("unexpected fields: %v", got.fields)
	}
	if v, ok := got.fields["name"]; !ok || v != "" {
		t.Fatalf("empty name must still be sent: %v", got.fields)
	}
	if got.fname != "design.png" || string(got.file) != "\x89PNG fake" {
		t.Fatalf("unexpected file %q %q", got.fname, got.file)
	}
	if got.cookie != "sid=abc" {
		t.Fatalf("cookie not forwarded: %q", got.cookie)
	}
}

func TestSaveDesignReportsStatusAndTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	c := NewClient(srv.URL, "")
	status, err := c.SaveDesign(context.Background(), domain.DesignPackage{})
	if err != nil || status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without error, got %d %v", status, err)
	}
	srv.Close()
	if _, err := c.SaveDesign(context.Background(), domain.DesignPackage{}); err == nil {
		t.Fatalf("expected transport error after server shutdown")
	}
}

func TestLoginAndConfirm(t *testing.T) {
	var bodies []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		bodies = append(bodies, in)
		switch r.URL.Path {
		case "/auth/login":
			w.WriteHeader(http.StatusOK)
		case "/auth/confirm":
			if in["code"] != "1234" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"message":"wrong code"}`))
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "xyz"})
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "")
	ctx := context.Background()

	if err := c.Login(ctx, "not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if err := c.Login(ctx, " user@example.com "); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := c.Confirm(ctx, "12"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	_, err := c.Confirm(ctx, "9999")
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusBadRequest || se.Message != "wrong code" {
		t.Fatalf("expected StatusError with message, got %v", err)
	}
	ck, err := c.Confirm(ctx, "1234")
	if err != nil || ck != "session=xyz" || c.Cookie != ck {
		t.Fatalf("confirm: %q %v", ck, err)
	}
	if len(bodies) != 3 || bodies[0]["email"] != "user@example.com" {
		t.Fatalf("unexpected request bodies: %v", bodies)
	}
}

func TestReadEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"email":"a@b.cd","orders":[{"order_id":3,"status":"new","total":990}],"designs":[]}`))
	})
	mux.HandleFunc("/design/all", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"Design":{"design_id":7,"name":"Кот","background_color":"#000000","product_id":1,"product":{"base_price":990,"model":{"name":"iPhone 15"}}}}]`))
	})
	mux.HandleFunc("/cart/my-cart", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cart_id":1,"user_id":"u","items":[{"cart_item_id":5,"quantity":2,"design":{"design_id":7,"product":{"base_price":990}}}]}`))
	})
	var added map[string]any
	mux.HandleFunc("/cart/add-to-cart", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&added)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	ctx := context.Background()

	anon := NewClient(srv.URL, "")
	if _, err := anon.Me(ctx); !errors.Is(err, domain.ErrAuthChallenge) {
		t.Fatalf("expected auth challenge, got %v", err)
	}
	c := NewClient(srv.URL, "session=xyz")
	u, err := c.Me(ctx)
	if err != nil || u.Email != "a@b.cd" || len(u.Orders) != 1 || u.Orders[0].Total != 990 {
		t.Fatalf("me: %+v %v", u, err)
	}
	ds, err := c.ListDesigns(ctx)
	if err != nil || len(ds) != 1 || ds[0].ID != 7 || ds[0].Product.Model.Name != "iPhone 15" {
		t.Fatalf("designs: %+v %v", ds, err)
	}
	cart, err := c.Cart(ctx)
	if err != nil || len(cart.Items) != 1 || cart.Total() != 1980 {
		t.Fatalf("cart: %+v %v", cart, err)
	}
	if err := c.AddToCart(ctx, 7); err != nil {
		t.Fatalf("add: %v", err)
	}
	if added["design_id"] != float64(7) || added["quantity"] != float64(1) {
		t.Fatalf("unexpected add body: %v", added)
	}
}

func TestNewClientDefaults(t *testing.T) {
	if c := NewClient("", ""); c.BaseURL != DefaultBaseURL {
		t.Fatalf("unexpected base url %q", c.BaseURL)
	}
	if c := NewClient("http://x/", ""); c.BaseURL != "http://x" {
		t.Fatalf("trailing slash not trimmed: %q", c.BaseURL)
	}
}
