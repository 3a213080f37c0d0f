/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontLibrary stores parsed OpenType fonts by family name.
// Lookups are case-insensitive. Safe for concurrent use after loading.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[string]*opentype.Font
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[string]*opentype.Font)} }

// Families offered by the editor's font picker.
var Families = []string{"Arial", "Helvetica", "Times New Roman", "Georgia", "Verdana", "Courier New"}

// DefaultLibrary maps every picker family onto an embedded Go font so that
// measurement and rendering never depend on fonts installed on the host.
func DefaultLibrary() *FontLibrary {
	fl := NewFontLibrary()
	embedded := map[string][]byte{
		"Arial":           goregular.TTF,
		"Helvetica":       goregular.TTF,
		"Verdana":         goregular.TTF,
		"Times New Roman": gomedium.TTF,
		"Georgia":         gomedium.TTF,
		"Courier New":     gomono.TTF,
	}
	for fam, data := range embedded {
		// embedded fonts are known-good; a parse error here is a build defect
		if err := fl.LoadBytes(fam, data); err != nil {
			panic(err)
		}
	}
	return fl
}

// LoadTTF loads a font file into the library under family.
func (fl *FontLibrary) LoadTTF(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	if err := fl.LoadBytes(family, data); err != nil {
		return fmt.Errorf("font %s: %w", path, err)
	}
	return nil
}

// LoadBytes parses TTF/OTF data and registers it under family.
func (fl *FontLibrary) LoadBytes(family string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[string]*opentype.Font)
	}
	fl.fonts[strings.ToLower(family)] = f
	return nil
}

// Names returns the registered families, sorted.
func (fl *FontLibrary) Names() []string {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	out := make([]string, 0, len(fl.fonts))
	for k := range fl.fonts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (fl *FontLibrary) find(family string) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	return fl.fonts[strings.ToLower(family)]
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
// Faces are cached per family and size.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider

	mu    sync.Mutex
	faces map[faceKey]resolved
}

type faceKey struct {
	family string
	size   float64
}

type resolved struct {
	face font.Face
	met  Metrics
}

func NewOTProvider(lib *FontLibrary) *OTProvider { return &OTProvider{Lib: lib} }

func (p *OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.Size <= 0 {
		spec.Size = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	key := faceKey{family: strings.ToLower(spec.Family), size: spec.Size}

	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.faces[key]; ok {
		return r.face, r.met
	}
	if f := p.Lib.find(spec.Family); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.Size, DPI: dpi, Hinting: font.HintingNone})
		if err == nil {
			r := resolved{face: face, met: metricsOf(face)}
			if p.faces == nil {
				p.faces = make(map[faceKey]resolved)
			}
			p.faces[key] = r
			return r.face, r.met
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}
