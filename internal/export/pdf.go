/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/goregular"

	"caseconstructor/internal/domain"
	"caseconstructor/internal/vector"
)

// ProofOptions controls the print proof layout.
// Units are millimetres on an A4 portrait page.
type ProofOptions struct {
	Title     string    // defaults to "Case design proof"
	Generated time.Time // defaults to now
	Margin    float64   // defaults to 15
}

// WriteProofPDF writes a one-page proof sheet: the exported raster, a swatch
// of the case colour and the package metadata. The raster is embedded as is;
// nothing is vectorised.
func WriteProofPDF(w io.Writer, pkg domain.DesignPackage, opt ProofOptions) error {
	if len(pkg.Image) == 0 {
		return errors.New("proof: package has no image")
	}
	if opt.Title == "" {
		opt.Title = "Case design proof"
	}
	if opt.Generated.IsZero() {
		opt.Generated = time.Now()
	}
	if opt.Margin <= 0 {
		opt.Margin = 15
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(opt.Title, true)
	pdf.SetCreator("caseconstructor", true)
	// Design names are free text and often Cyrillic; core fonts cannot show them.
	pdf.AddUTF8FontFromBytes("goregular", "", goregular.TTF)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	m := opt.Margin
	pdf.SetFont("goregular", "", 16)
	pdf.Text(m, m+6, opt.Title)

	pdf.SetFont("goregular", "", 10)
	name := pkg.Name
	if name == "" {
		name = "(untitled)"
	}
	lines := []string{
		"Name: " + name,
		"Product: " + pkg.ProductID,
		"Case colour: " + pkg.BackgroundColor,
		fmt.Sprintf("Raster: %d x %d px", pkg.Width, pkg.Height),
		"Generated: " + opt.Generated.Format("2006-01-02 15:04"),
	}
	y := m + 14
	for _, ln := range lines {
		pdf.Text(m, y, ln)
		y += 5.5
	}

	// colour swatch to the right of the metadata
	if c, err := vector.ParseHex(pkg.BackgroundColor); err == nil {
		pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.2)
		pdf.Rect(pageW-m-20, m+10, 20, 20, "FD")
	}

	// raster fitted into the remaining box, aspect preserved
	top := y + 4
	boxW := pageW - 2*m
	boxH := pageH - top - m
	imgW, imgH := boxW, boxH
	if pkg.Width > 0 && pkg.Height > 0 {
		s := vector.ContainScale(vector.Size{W: float64(pkg.Width), H: float64(pkg.Height)}, vector.Size{W: boxW, H: boxH})
		imgW, imgH = float64(pkg.Width)*s, float64(pkg.Height)*s
	}
	x := m + (boxW-imgW)/2
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("design", opts, bytes.NewReader(pkg.Image))
	pdf.ImageOptions("design", x, top, imgW, imgH, false, opts, 0, "")
	pdf.SetDrawColor(180, 180, 180)
	pdf.Rect(x, top, imgW, imgH, "D")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write proof pdf: %w", err)
	}
	return nil
}
