// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/fogleman/gg"

	"github.com/tomoacademy/qr/coding"
)

const dataURLPrefix = "data:image/png;base64,"

// A Renderer draws module grids as decorated PNG images: black
// modules on a background, a radial gradient overlay and four corner
// ticks.
//
// A Renderer is stateless and may be used concurrently.
type Renderer struct {
	Style Style

	// NewSurface returns a drawing surface of w×h pixels, or nil if
	// none is available.  If NewSurface is nil, gg.NewContext is used.
	NewSurface func(w, h int) *gg.Context
}

// DefaultRenderer draws with DefaultStyle.
var DefaultRenderer = &Renderer{Style: DefaultStyle}

func (r *Renderer) surface(w, h int) *gg.Context {
	if r.NewSurface != nil {
		return r.NewSurface(w, h)
	}
	return gg.NewContext(w, h)
}

// ModuleSize returns the side of a module in pixels for a symbol of
// n modules on a side drawn at size pixels.  The remainder of the
// division is left as border on the right and bottom.
func ModuleSize(size, n int) int {
	if n <= 0 {
		return 0
	}
	return size / n
}

// Draw draws c on a new size×size surface.  It returns ErrNoSurface if
// no surface is available.
func (r *Renderer) Draw(c *coding.Code, size int) (*gg.Context, error) {
	if c == nil || c.Size <= 0 || size <= 0 {
		return nil, ErrArgs
	}
	if size > MaxPixels {
		return nil, ErrLargeImage
	}
	dc := r.surface(size, size)
	if dc == nil {
		return nil, ErrNoSurface
	}
	st := &r.Style
	s := float64(size)

	dc.SetColor(st.Background)
	dc.Clear()

	if ms := ModuleSize(size, c.Size); ms > 0 {
		m := float64(ms)
		for y := 0; y < c.Size; y++ {
			for x := 0; x < c.Size; x++ {
				if c.Black(x, y) {
					dc.DrawRectangle(float64(x)*m, float64(y)*m, m, m)
				}
			}
		}
		dc.SetColor(st.Foreground)
		dc.Fill()
	}

	// Overlay
	g := gg.NewRadialGradient(s/2, s/2, 0, s/2, s/2, s/2)
	g.AddColorStop(0, st.GradientInner)
	g.AddColorStop(1, st.GradientOuter)
	dc.SetFillStyle(g)
	dc.DrawRectangle(0, 0, s, s)
	dc.Fill()

	// Corner ticks
	if l := st.TickLength; l > 0 && st.TickWidth > 0 {
		dc.SetColor(st.Tick)
		dc.SetLineWidth(st.TickWidth)
		for _, p := range [4][3][2]float64{
			{{0, l}, {0, 0}, {l, 0}},
			{{s - l, 0}, {s, 0}, {s, l}},
			{{s, s - l}, {s, s}, {s - l, s}},
			{{l, s}, {0, s}, {0, s - l}},
		} {
			dc.MoveTo(p[0][0], p[0][1])
			dc.LineTo(p[1][0], p[1][1])
			dc.LineTo(p[2][0], p[2][1])
		}
		dc.Stroke()
	}
	return dc, nil
}

// PNG returns c drawn at size×size pixels as a PNG image.
func (r *Renderer) PNG(c *coding.Code, size int) ([]byte, error) {
	dc, err := r.Draw(c, size)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if err := dc.EncodePNG(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Render returns c drawn at size×size pixels as a PNG data URL, or an
// empty string if no drawing surface is available.
func (r *Renderer) Render(c *coding.Code, size int) (string, error) {
	png, err := r.PNG(c, size)
	if errors.Is(err, ErrNoSurface) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return DataURL(png), nil
}

// Generate builds the symbol for text and renders it.
func (r *Renderer) Generate(text string, size int) (string, error) {
	c, err := coding.Build(text)
	if err != nil {
		return "", err
	}
	return r.Render(c, size)
}

// DataURL returns png as a "data:" URL.
func DataURL(png []byte) string {
	var b strings.Builder
	b.Grow(len(dataURLPrefix) + base64.StdEncoding.EncodedLen(len(png)))
	b.WriteString(dataURLPrefix)
	b.WriteString(base64.StdEncoding.EncodeToString(png))
	return b.String()
}

// DecodeDataURL returns the PNG image in a URL returned by DataURL.
func DecodeDataURL(url string) ([]byte, error) {
	s, ok := strings.CutPrefix(url, dataURLPrefix)
	if !ok {
		return nil, ErrArgs
	}
	return base64.StdEncoding.DecodeString(s)
}
