// Copyright 2011 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package qr generates badge symbols: QR-like module grids rendered
as decorated PNG data URLs for profile and directory pages.

The symbols are built by package coding.  They are not standard QR
codes and generally do not scan.
*/
package qr // import "github.com/tomoacademy/qr"

import (
	"errors"
	"image"
	"image/color"
	"strings"

	"github.com/tomoacademy/qr/coding"
)

// Image sizes in pixels.
const (
	DefaultSize = 200   // badge size on profile pages
	AvatarSize  = 60    // badge size in directory listings
	MaxPixels   = 16384 // largest side of a rendered image
)

var (
	ErrArgs       = errors.New("qr: invalid arguments")
	ErrLargeImage = errors.New("qr: image too large")
	ErrNoSurface  = errors.New("qr: no drawing surface")
)

// Generate returns a PNG data URL showing the symbol for text on a
// size×size pixel image, drawn by DefaultRenderer.  It returns an
// empty string if no drawing surface is available, ErrArgs if size is
// not positive and ErrLargeImage if size exceeds MaxPixels.
func Generate(text string, size int) (string, error) {
	return DefaultRenderer.Generate(text, size)
}

// A Code is a square pixel grid.
// It implements image.Image and PBM and text encoding.
type Code struct {
	Bitmap  []byte // 1 is black, 0 is white
	Size    int    // number of pixels on a side
	Stride  int    // number of bytes per row
	Scale   int    // number of image pixels per QR pixel
	Border  int    // quiet zone in QR pixels
	Reverse bool   // swap black and white
}

// Encode returns the symbol for text at scale 1 without a quiet zone.
func Encode(text string) (*Code, error) {
	c, err := coding.Build(text)
	if err != nil {
		return nil, err
	}
	return NewCode(c), nil
}

// NewCode returns a Code sharing the bitmap of c.
func NewCode(c *coding.Code) *Code {
	return &Code{Bitmap: c.Bitmap, Size: c.Size, Stride: c.Stride, Scale: 1}
}

// Grid returns the module grid of c.
func (c *Code) Grid() *coding.Code {
	return &coding.Code{Bitmap: c.Bitmap, Size: c.Size, Stride: c.Stride}
}

func (c *Code) isValid() bool {
	return c != nil && c.Size > 0 && c.Scale > 0 && c.Border >= 0 &&
		c.Stride == (c.Size+7)>>3 && len(c.Bitmap) == c.Size*c.Stride
}

// Black returns true if the pixel at (x,y) is black.
func (c *Code) Black(x, y int) bool {
	return 0 <= x && x < c.Size && 0 <= y && y < c.Size &&
		c.Bitmap[y*c.Stride+x/8]&(1<<uint(7-x&7)) != 0
}

// ink reports whether QR pixel (x,y), counted from the corner of the
// quiet zone, is drawn dark.
func (c *Code) ink(x, y int) bool {
	return c.Black(x-c.Border, y-c.Border) != c.Reverse
}

// Image returns an Image displaying the code.
func (c *Code) Image() image.Image {
	return &codeImage{c}
}

// codeImage implements image.Image
type codeImage struct {
	*Code
}

var (
	whiteColor color.Color = color.Gray{0xFF}
	blackColor color.Color = color.Gray{0x00}
)

func (c *codeImage) Bounds() image.Rectangle {
	d := (c.Size + 2*c.Border) * c.Scale
	return image.Rect(0, 0, d, d)
}

func (c *codeImage) At(x, y int) color.Color {
	if x < 0 || y < 0 {
		return whiteColor
	}
	if c.ink(x/c.Scale, y/c.Scale) {
		return blackColor
	}
	return whiteColor
}

func (c *codeImage) ColorModel() color.Model {
	return color.GrayModel
}

// String draws c with half block characters, two QR pixels per
// character.  Scale is ignored.
func (c *Code) String() string {
	pix := c.Size + 2*c.Border
	var b strings.Builder
	for y := 0; y < pix; y += 2 {
		for x := 0; x < pix; x++ {
			n := 0
			if c.ink(x, y) {
				n = 2
			}
			if y+1 < pix && c.ink(x, y+1) {
				n++
			}
			b.WriteString([4]string{" ", "▄", "▀", "█"}[n])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ASCII draws c with two "#" characters per black QR pixel.
// Scale is ignored.
func (c *Code) ASCII() string {
	pix := c.Size + 2*c.Border
	b := make([]byte, (pix*2+1)*pix)
	i := 0
	for y := 0; y < pix; y++ {
		for x := 0; x < pix; x++ {
			var p byte = ' '
			if c.ink(x, y) {
				p = '#'
			}
			b[i], b[i+1] = p, p
			i += 2
		}
		b[i] = '\n'
		i++
	}
	return string(b)
}
