/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"caseconstructor/internal/vector"
)

var (
	ErrUnknownField      = errors.New("scene: unknown field")
	ErrFieldNotSupported = errors.New("scene: field not supported by object")
	ErrInvalidValue      = errors.New("scene: invalid value")
)

// Field names an editable object property.
type Field string

const (
	FieldLeft       Field = "left"
	FieldTop        Field = "top"
	FieldWidth      Field = "width"
	FieldHeight     Field = "height"
	FieldScaleX     Field = "scaleX"
	FieldScaleY     Field = "scaleY"
	FieldAngle      Field = "angle"
	FieldText       Field = "text"
	FieldFontFamily Field = "fontFamily"
	FieldFontSize   Field = "fontSize"
	FieldFill       Field = "fill"
)

var allFields = []Field{
	FieldLeft, FieldTop, FieldWidth, FieldHeight, FieldScaleX, FieldScaleY,
	FieldAngle, FieldText, FieldFontFamily, FieldFontSize, FieldFill,
}

// ParseField accepts the field name case-insensitively.
func ParseField(s string) (Field, error) {
	for _, f := range allFields {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Intent is one edit: set Field of Target to Value.
type Intent struct {
	Target ObjectID
	Field  Field
	Value  any
}

// Apply reduces in against s and returns the next snapshot.
// Sizes are written as scale factors against the intrinsic dimensions.
func Apply(s Scene, in Intent) (Scene, error) {
	obj, idx, ok := s.Find(in.Target)
	if !ok {
		return s, fmt.Errorf("apply %s: %w", in.Field, ErrNotFound)
	}
	next, err := applyField(obj, in.Field, in.Value, s.measure)
	if err != nil {
		return s, fmt.Errorf("apply %s to %s: %w", in.Field, obj.Kind(), err)
	}
	return s.replace(idx, next), nil
}

func applyField(obj Object, f Field, v any, m Measurer) (Object, error) {
	switch f {
	case FieldLeft, FieldTop, FieldWidth, FieldHeight, FieldScaleX, FieldScaleY, FieldAngle:
		if obj.Kind() == KindBackground {
			return nil, ErrFieldNotSupported
		}
		n, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		tr, err := setGeometry(obj.Transform(), f, n)
		if err != nil {
			return nil, err
		}
		return obj.withTransform(tr), nil
	case FieldFill:
		c, err := toColor(v)
		if err != nil {
			return nil, err
		}
		switch o := obj.(type) {
		case Background:
			o.Fill = c
			return o, nil
		case TextBox:
			o.Fill = c
			return o, nil
		}
		return nil, ErrFieldNotSupported
	case FieldText, FieldFontFamily, FieldFontSize:
		tb, ok := obj.(TextBox)
		if !ok {
			return nil, ErrFieldNotSupported
		}
		return setText(tb, f, v, m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, string(f))
	}
}

func setGeometry(tr Transform, f Field, n float64) (Transform, error) {
	switch f {
	case FieldLeft:
		tr.Left = n
	case FieldTop:
		tr.Top = n
	case FieldAngle:
		tr.Angle = n
	case FieldScaleX:
		tr.ScaleX = n
	case FieldScaleY:
		tr.ScaleY = n
	case FieldWidth:
		s, err := vector.ScaleForLength(n, tr.Width)
		if err != nil {
			return tr, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		tr.ScaleX = s
	case FieldHeight:
		s, err := vector.ScaleForLength(n, tr.Height)
		if err != nil {
			return tr, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		tr.ScaleY = s
	}
	return tr, nil
}

// setText updates a text field and re-measures the intrinsic box. The center
// and scale stay put.
func setText(tb TextBox, f Field, v any, m Measurer) (Object, error) {
	switch f {
	case FieldText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: text must be a string", ErrInvalidValue)
		}
		tb.Text = s
	case FieldFontFamily:
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: font family must be a non-empty string", ErrInvalidValue)
		}
		tb.FontFamily = s
	case FieldFontSize:
		n, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: font size %v", ErrInvalidValue, n)
		}
		tb.FontSize = n
	}
	ext := measure(m, tb)
	tb.tr.Width, tb.tr.Height = ext.W, ext.H
	return tb, nil
}

func toFloat(v any) (float64, error) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, x)
		}
		n = f
	default:
		return 0, fmt.Errorf("%w: %T is not a number", ErrInvalidValue, v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: non-finite number", ErrInvalidValue)
	}
	return n, nil
}

func toColor(v any) (vector.Color, error) {
	switch x := v.(type) {
	case vector.Color:
		return x, nil
	case string:
		c, err := vector.ParseHex(x)
		if err != nil {
			return vector.Color{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return c, nil
	}
	return vector.Color{}, fmt.Errorf("%w: %T is not a color", ErrInvalidValue, v)
}
