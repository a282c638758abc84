// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// A Style sets the colours and decorations drawn by a Renderer.
type Style struct {
	Background    Colour  `yaml:"background"`
	Foreground    Colour  `yaml:"foreground"`
	GradientInner Colour  `yaml:"gradient_inner"` // overlay at the centre
	GradientOuter Colour  `yaml:"gradient_outer"` // overlay at the edge
	Tick          Colour  `yaml:"tick"`           // corner ticks
	TickLength    float64 `yaml:"tick_length"`    // 0 disables ticks
	TickWidth     float64 `yaml:"tick_width"`
}

// DefaultStyle draws black on white under a faint blue to purple
// overlay, with 10 pixel translucent blue corner ticks.
var DefaultStyle = Style{
	Background:    Colour{0xff, 0xff, 0xff, 0xff},
	Foreground:    Colour{0x00, 0x00, 0x00, 0xff},
	GradientInner: Colour{59, 130, 246, 26},
	GradientOuter: Colour{147, 51, 234, 26},
	Tick:          Colour{59, 130, 246, 77},
	TickLength:    10,
	TickWidth:     2,
}

// A Colour is a non-alpha-premultiplied colour.
type Colour color.NRGBA

func (c Colour) RGBA() (r, g, b, a uint32) {
	return color.NRGBA(c).RGBA()
}

var colourNames = map[string]Colour{
	"black":       {0x00, 0x00, 0x00, 0xff},
	"white":       {0xff, 0xff, 0xff, 0xff},
	"transparent": {0x00, 0x00, 0x00, 0x00},
	"blue":        {59, 130, 246, 0xff},
	"purple":      {147, 51, 234, 0xff},
}

// ParseColour parses a colour given as a name or 3, 4, 6 or 8 hex
// digits (RGB, RGBA, RRGGBB or RRGGBBAA), with an optional "#".
func ParseColour(s string) (Colour, error) {
	if c, ok := colourNames[strings.ToLower(strings.ReplaceAll(s, " ", ""))]; ok {
		return c, nil
	}
	h := strings.TrimPrefix(s, "#")
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Colour{}, fmt.Errorf("%q: bad colour spec", s)
	}
	switch len(h) {
	case 3:
		n = n<<4 | 0xf
		fallthrough
	case 4:
		var nn uint64
		for i := 0; i < 4; i++ {
			nn <<= 8
			nn |= n >> 12 & 0xf * 0x11
			n <<= 4
		}
		n = nn
	case 6:
		n = n<<8 | 0xff
	case 8:
	default:
		return Colour{}, fmt.Errorf("%q: bad colour spec", s)
	}
	return Colour{uint8(n >> 24), uint8(n >> 16), uint8(n >> 8), uint8(n)}, nil
}

func (c Colour) String() string {
	switch c {
	case colourNames["black"]:
		return "black"
	case colourNames["white"]:
		return "white"
	}
	if c.A == 0xff {
		return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Colour) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseColour(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Colour) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}
