/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package backend is a thin HTTP client for the storefront API: design save,
// e-mail login, profile, catalog and cart.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"regexp"
	"strings"
	"time"

	"caseconstructor/internal/domain"
)

// DefaultBaseURL is the production storefront API.
const DefaultBaseURL = "https://api.vyatsu-junior.ru"

var (
	ErrInvalidEmail = errors.New("backend: invalid e-mail address")
	ErrInvalidCode  = errors.New("backend: confirmation code must have at least 4 characters")
	ErrNoCookie     = errors.New("backend: server did not return a session cookie")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// StatusError is a non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server %s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("server %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Unwrap maps 401/403 onto domain.ErrAuthChallenge.
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return domain.ErrAuthChallenge
	}
	return nil
}

// Client talks to the storefront API. The session is a cookie string as
// returned by Confirm; it is sent verbatim in the Cookie header.
type Client struct {
	BaseURL string
	Cookie  string
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing slash; it will be normalized.
// An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, cookie string) *Client {
	b := strings.TrimRight(baseURL, "/")
	if b == "" {
		b = DefaultBaseURL
	}
	return &Client{
		BaseURL: b,
		Cookie:  cookie,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithHTTPClient replaces the underlying http.Client, e.g. for custom timeouts or TLS.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.client = hc
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if c.Cookie != "" {
		req.Header.Set("Cookie", c.Cookie)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doJSON sends in as a JSON body (when non-nil) and decodes the response into dest (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, dest any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, statusError(method, path, resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return resp, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp, nil
}

func statusError(method, path string, resp *http.Response) error {
	se := &StatusError{Method: method, Path: path, Status: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
	}
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && json.Unmarshal(b, &payload) == nil {
		se.Message = payload.Message
	}
	return se
}

// SaveDesign posts the design package as multipart/form-data to /design/dev-add.
// It returns the HTTP status, or an error when no response was received.
func (c *Client) SaveDesign(ctx context.Context, pkg domain.DesignPackage) (int, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range [][2]string{
		{"product_id", pkg.ProductID},
		{"name", pkg.Name},
		{"background_color", pkg.BackgroundColor},
	} {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return 0, err
		}
	}
	name := pkg.FileName
	if name == "" {
		name = domain.DesignFileName
	}
	ct := pkg.ContentType
	if ct == "" {
		ct = domain.DesignContentType
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, name))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return 0, err
	}
	if _, err := part.Write(pkg.Image); err != nil {
		return 0, err
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/design/dev-add", &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// Login asks the server to e-mail a confirmation code.
func (c *Client) Login(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	_, err := c.doJSON(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email}, nil)
	return err
}

// Confirm exchanges the e-mailed code for a session. The returned cookie
// string is also installed on the client.
func (c *Client) Confirm(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if len([]rune(code)) < 4 {
		return "", ErrInvalidCode
	}
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/confirm", map[string]string{"code": code}, nil)
	if err != nil {
		return "", err
	}
	var parts []string
	for _, ck := range resp.Cookies() {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	if len(parts) == 0 {
		return "", ErrNoCookie
	}
	c.Cookie = strings.Join(parts, "; ")
	return c.Cookie, nil
}

// Me returns the authenticated profile.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	_, err := c.doJSON(ctx, http.MethodGet, "/user/me", nil, &u)
	return u, err
}

// ListDesigns returns the public catalog.
func (c *Client) ListDesigns(ctx context.Context) ([]domain.Design, error) {
	var raw []struct {
		Design domain.Design `json:"Design"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, "/design/all", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Design, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.Design)
	}
	return out, nil
}

// AddToCart puts one piece of the design into the cart.
func (c *Client) AddToCart(ctx context.Context, designID int64) error {
	in := struct {
		DesignID int64 `json:"design_id"`
		Quantity int   `json:"quantity"`
	}{designID, 1}
	_, err := c.doJSON(ctx, http.MethodPost, "/cart/add-to-cart", in, nil)
	return err
}

// Cart returns the current user's cart.
func (c *Client) Cart(ctx context.Context) (domain.Cart, error) {
	var cart domain.Cart
	_, err := c.doJSON(ctx, http.MethodGet, "/cart/my-cart", nil, &cart)
	return cart, err
}
