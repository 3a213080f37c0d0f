/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry sends anonymous, opt-in editor events and crash reports.
// Nothing is sent unless the user opted in and an endpoint is configured.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "caseconstructor/internal/log"
	"caseconstructor/internal/version"
)

// Config holds runtime configuration for telemetry and crash uploads.
//
// Environment variables (read by FromEnv):
// - CASE_TELEMETRY_OPT_IN: "1", "true", "yes" to enable metrics
// - CASE_TELEMETRY_URL: endpoint receiving event batches
// - CASE_CRASH_UPLOAD_URL: endpoint receiving crash reports
// - CASE_TELEMETRY_TIMEOUT_MS: request timeout, default 1500ms
// - CASE_TELEMETRY_DEBUG: log send attempts
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	BatchSize    int
	FlushEvery   time.Duration
	DebugLogging bool
}

func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv("CASE_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("CASE_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("CASE_CRASH_UPLOAD_URL")),
		Timeout:      1500 * time.Millisecond,
		DebugLogging: os.Getenv("CASE_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("CASE_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil {
			cfg.Timeout = v
		}
	}
	return cfg
}

// Merge applies the persisted opt-in on top of cfg. The environment can only
// turn telemetry on, never off.
func (cfg Config) Merge(optIn bool) Config {
	cfg.OptIn = cfg.OptIn || optIn
	return cfg
}

func (cfg Config) withDefaults() Config {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 1500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 2 * time.Second
	}
	return cfg
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Anonymous editor events. Props must never carry design names, images or
// account data.
const (
	EventSessionOpened  = "session_opened"
	EventTextAdded      = "text_added"
	EventImageInserted  = "image_inserted"
	EventDesignExported = "design_exported"
)

// Sink receives events. *Client implements it; Nop discards.
type Sink interface {
	Event(name string, props map[string]any)
}

// Nop is a Sink that drops everything.
type Nop struct{}

func (Nop) Event(string, map[string]any) {}

// event is one queued record.
type event struct {
	Name  string         `json:"name"`
	TS    string         `json:"ts"`
	Props map[string]any `json:"props,omitempty"`
}

// batch is the body posted to the events endpoint.
type batch struct {
	Run     string  `json:"run"`
	Version string  `json:"version"`
	OS      string  `json:"os"`
	Arch    string  `json:"arch"`
	Events  []event `json:"events"`
}

// Client queues events and posts them in batches from a single goroutine.
// Event never blocks; a full queue drops the event.
type Client struct {
	cfg  Config
	log  *slog.Logger
	cli  *http.Client
	run  string
	q    chan event
	kick chan chan struct{}
	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

// New constructs a client and starts its sender.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:  cfg,
		log:  applog.WithComponent("telemetry"),
		cli:  &http.Client{Timeout: cfg.Timeout},
		run:  uuid.NewString(),
		q:    make(chan event, 64),
		kick: make(chan chan struct{}),
		done: make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

// Enabled reports whether events are sent at all.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// RunID identifies this process in event batches. It is random per run.
func (c *Client) RunID() string { return c.run }

func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	e := event{Name: name, TS: time.Now().UTC().Format(time.RFC3339Nano)}
	if len(props) > 0 {
		e.Props = make(map[string]any, len(props))
		for k, v := range props {
			e.Props[k] = v
		}
	}
	select {
	case c.q <- e:
	default:
	}
}

// Flush sends whatever is queued and waits for that send, or for ctx.
func (c *Client) Flush(ctx context.Context) {
	ack := make(chan struct{})
	select {
	case c.kick <- ack:
	case <-c.done:
		return
	case <-ctx.Done():
		return
	}
	select {
	case <-ack:
	case <-ctx.Done():
	}
}

// Close sends pending events and stops the sender.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
	c.wg.Wait()
}

func (c *Client) loop() {
	defer c.wg.Done()
	t := time.NewTicker(c.cfg.FlushEvery)
	defer t.Stop()
	var pending []event
	drain := func() {
		for {
			select {
			case e := <-c.q:
				pending = append(pending, e)
			default:
				return
			}
		}
	}
	for {
		select {
		case e := <-c.q:
			pending = append(pending, e)
			if len(pending) >= c.cfg.BatchSize {
				pending = c.send(pending)
			}
		case <-t.C:
			pending = c.send(pending)
		case ack := <-c.kick:
			drain()
			pending = c.send(pending)
			close(ack)
		case <-c.done:
			drain()
			c.send(pending)
			return
		}
	}
}

// send posts evs and returns the emptied buffer. Failures drop the batch.
func (c *Client) send(evs []event) []event {
	if len(evs) == 0 {
		return evs
	}
	body, err := json.Marshal(batch{
		Run: c.run, Version: version.String(), OS: runtime.GOOS, Arch: runtime.GOARCH, Events: evs,
	})
	if err == nil {
		err = c.post(context.Background(), c.cfg.EventsURL, "application/json", body)
	}
	if c.cfg.DebugLogging {
		c.log.Debug("telemetry batch", slog.Int("events", len(evs)), slog.Any("err", err))
	}
	return evs[:0]
}

func (c *Client) post(ctx context.Context, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.cli.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// UploadCrash posts a crash report and waits for the request, bounded by
// the client timeout. The caller exits right after, so this is synchronous.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()
	err := c.post(ctx, c.cfg.CrashURL, "text/plain; charset=utf-8", report)
	if c.cfg.DebugLogging {
		c.log.Debug("crash upload", slog.Any("err", err))
	}
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Default returns the process-wide client, built from the environment on
// first use. The crash handler uses it because it runs before any App.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(FromEnv())
	}
	return defaultClient
}

// SetDefault replaces the process-wide client.
func SetDefault(c *Client) {
	defaultMu.Lock()
	defaultClient = c
	defaultMu.Unlock()
}

// UploadCrash uses the default client.
func UploadCrash(report []byte) { Default().UploadCrash(report) }
