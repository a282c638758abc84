// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// Finder block size and the size of the reserved box around it.
const (
	FinderSize = 7
	reserved   = 9
	timingLine = 6 // row and column of the timing strips
	timingFrom = 8 // first timing module
)

// IsFunction reports whether the module at row, col of a symbol with
// siz modules on a side is reserved: inside one of the 9x9 boxes at
// the top left, top right and bottom left corners, or on row or
// column 6.
func IsFunction(siz, row, col int) bool {
	top, left := row < reserved, col < reserved
	bottom, right := row >= siz-reserved, col >= siz-reserved
	return top && left || top && right || bottom && left ||
		row == timingLine || col == timingLine
}

// finderPat holds the rows of a finder block, most significant bit
// leftmost: a dark 7x7 ring, a light 5x5 ring and a dark 3x3 centre.
var finderPat = [FinderSize]byte{
	0b1111111_0,
	0b1000001_0,
	0b1011101_0,
	0b1011101_0,
	0b1011101_0,
	0b1000001_0,
	0b1111111_0,
}

// AddPositionMarkers draws a finder block with its top left module at
// row, col.  Light modules of the block are cleared.
func AddPositionMarkers(c *Code, row, col int) {
	for y, pat := range finderPat {
		for x := 0; x < FinderSize; x++ {
			c.Set(col+x, row+y, pat<<x&0x80 != 0)
		}
	}
}

// AddTimingPatterns draws the timing strips on row and column 6 from
// module 8 up to, not including, module siz-8.  Even modules are dark.
func AddTimingPatterns(c *Code) {
	for i := timingFrom; i < c.Size-timingFrom; i++ {
		black := i&1 == 0
		c.Set(i, timingLine, black)
		c.Set(timingLine, i, black)
	}
}

// Serialise writes bits from s to c in zigzag scan order, starting at
// the bottom right and moving through 2 module wide columns,
// alternately upwards and downwards.  Column 6 and function modules
// are skipped.  Serialise stops when s is exhausted, leaving the rest
// of the data modules unchanged; bits left in s when the data
// modules run out are ignored.
func Serialise(c *Code, s *BitStream) {
	siz := c.Size
	up := true
	for x := siz - 1; x > 0; x -= 2 {
		if x == timingLine {
			x--
		}
		for i := 0; i < siz; i++ {
			y := i
			if up {
				y = siz - 1 - i
			}
			for xx := x; xx > x-2; xx-- {
				if IsFunction(siz, y, xx) {
					continue
				}
				if s.Done() {
					return
				}
				c.Set(xx, y, s.Next() != 0)
			}
		}
		up = !up
	}
}

// AddData encodes text and serialises it into the data modules of c.
func AddData(c *Code, text string) error {
	b, err := EncodeText(text)
	if err != nil {
		return err
	}
	s := b.Stream()
	Serialise(c, &s)
	return nil
}

// ApplyMask inverts every data module whose row and column add up to
// an even number.
func ApplyMask(c *Code) {
	siz := c.Size
	for y := 0; y < siz; y++ {
		for x := y & 1; x < siz; x += 2 {
			if !IsFunction(siz, y, x) {
				c.Flip(x, y)
			}
		}
	}
}

// Unmasked returns the symbol for text before masking.
func Unmasked(text string) (*Code, error) {
	u, err := CodeUnits(text)
	if err != nil {
		return nil, err
	}
	siz := ModuleCount(len(u))
	c := NewCode(siz)
	AddPositionMarkers(c, 0, 0)
	AddPositionMarkers(c, 0, siz-FinderSize)
	AddPositionMarkers(c, siz-FinderSize, 0)
	AddTimingPatterns(c)
	if err := AddData(c, text); err != nil {
		return nil, err
	}
	return c, nil
}

// Build returns the masked symbol for text.
func Build(text string) (*Code, error) {
	c, err := Unmasked(text)
	if err != nil {
		return nil, err
	}
	ApplyMask(c)
	return c, nil
}
