/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script replays JSON editor scripts headlessly. A script describes a
// canvas and a list of editor steps; the CLI uses it to render or submit
// designs without a window.
package script

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var schema = gojsonschema.NewBytesLoader(schemaJSON)

// Document is a parsed script.
type Document struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Canvas  Canvas `json:"canvas"`
	Steps   []Step `json:"steps"`
}

// Canvas is the headless container size. Zero dimensions fall back to the
// viewport defaults.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Op names a step.
type Op string

const (
	OpTool       Op = "tool"
	OpAddText    Op = "add_text"
	OpAddImage   Op = "add_image"
	OpSelect     Op = "select"
	OpSelectNone Op = "select_none"
	OpRemove     Op = "remove"
	OpClick      Op = "click"
	OpSet        Op = "set"
	OpCaseColor  Op = "case_color"
	OpResize     Op = "resize"
	OpName       Op = "name"
)

// Step is one editor action. Only the fields of its Op are set.
type Step struct {
	Op     Op      `json:"op"`
	Value  any     `json:"value,omitempty"`
	Path   string  `json:"path,omitempty"`
	Index  int     `json:"index,omitempty"`
	Field  string  `json:"field,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// ValidationError lists schema violations.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid script: " + strings.Join(e.Problems, "; ")
}

// Parse validates data against the embedded schema and decodes it.
func Parse(data []byte) (Document, error) {
	res, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Document{}, fmt.Errorf("parse script: %w", err)
	}
	if !res.Valid() {
		ve := &ValidationError{}
		for _, e := range res.Errors() {
			ve.Problems = append(ve.Problems, e.String())
		}
		return Document{}, ve
	}
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("parse script: %w", err)
	}
	return doc, nil
}
