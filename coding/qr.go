// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coding implements the low-level construction of badge
// symbols: QR-like module grids with finder blocks, timing strips,
// zigzag data placement and a fixed checkerboard mask.
//
// The symbols are not standard QR codes.  There are no error
// correction codewords, format or version information, alignment
// boxes or mask evaluation, and the data capacity is estimated.
// Readers decode them only by luck.
package coding // import "github.com/tomoacademy/qr/coding"

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Symbol sizes in modules.
const (
	MinSize = 21
	MaxSize = 37
)

// FunctionModules is the estimated number of function modules used
// to derive the data capacity of every symbol size.
const FunctionModules = 192

// Bit stream constants.
const (
	ModeByte      = 0x4  // mode indicator, byte mode
	ModeBits      = 4    // mode indicator length
	LengthBits    = 8    // character count indicator length
	TerminatorLen = 4    // terminator length
	PadCodeword   = 0xec // pad codeword repeated to capacity
)

// sizeTab maps the largest text length of each bracket to the symbol
// size.  Longer texts get MaxSize.
var sizeTab = [...]struct{ max, size int }{
	{25, 21},
	{47, 25},
	{77, 29},
	{114, 33},
}

// ModuleCount returns the number of modules on a side of the symbol
// for a text of n UTF-16 code units.  Texts of any length fit: those
// over the largest bracket get MaxSize and are truncated.
func ModuleCount(n int) int {
	for _, v := range sizeTab {
		if n <= v.max {
			return v.size
		}
	}
	return MaxSize
}

// DataCapacity returns the number of bits available to a text of n
// UTF-16 code units, rounded down to whole bytes.
func DataCapacity(n int) int {
	siz := ModuleCount(n)
	return (siz*siz - FunctionModules) / 8 * 8
}

// Bits is a bit writer with a fixed capacity.  Bits written past the
// capacity are dropped.
type Bits struct {
	b    []byte
	nbit int
	max  int
}

// NewBits returns Bits holding at most n bits.
func NewBits(n int) *Bits {
	return &Bits{b: make([]byte, 0, (n+7)>>3), max: n}
}

func (b *Bits) Reset() {
	b.b = b.b[:0]
	b.nbit = 0
}

// Bits returns the number of bits written.
func (b *Bits) Bits() int { return b.nbit }

// Cap returns the capacity of b in bits.
func (b *Bits) Cap() int { return b.max }

// Full reports whether b is filled to capacity.
func (b *Bits) Full() bool { return b.nbit >= b.max }

// Bytes returns the written bits.  A fractional last byte is padded
// with zero bits.
func (b *Bits) Bytes() []byte { return b.b }

// Write appends the low nbit bits of v, most significant first.
// nbit must not exceed 32.
func (b *Bits) Write(v uint32, nbit int) {
	if room := b.max - b.nbit; nbit > room {
		v >>= uint(nbit - room)
		nbit = room
	}
	if nbit <= 0 {
		return
	}
	v <<= 32 - nbit
	if rem := -b.nbit & 7; rem != 0 {
		b.b[len(b.b)-1] |= byte(v >> (32 - rem))
		if rem >= nbit {
			b.nbit += nbit
			return
		}
		b.nbit += rem
		nbit -= rem
		v <<= rem
	}
	for n := nbit; n > 0; n -= 8 {
		b.b = append(b.b, byte(v>>24))
		v <<= 8
	}
	b.nbit += nbit
}

// Pad adds zero bits up to a byte boundary and fills the rest of b
// with PadCodeword.
func (b *Bits) Pad() {
	if rem := -b.nbit & 7; rem != 0 {
		b.Write(0, rem)
	}
	for !b.Full() {
		b.Write(PadCodeword, 8)
	}
}

// Stream returns a BitStream reading the bits written to b.
func (b *Bits) Stream() BitStream {
	return BitStream{b: b.b, n: b.nbit}
}

// BitStream reads bits from the underlying buffer.
type BitStream struct {
	b   []byte
	n   int
	pos int
}

// NewBitStream returns a BitStream reading nbit bits from b.
func NewBitStream(b []byte, nbit int) BitStream {
	return BitStream{b: b, n: min(nbit, len(b)*8)}
}

// Len returns the number of unread bits.
func (s *BitStream) Len() int { return s.n - s.pos }

// Done reports whether all bits have been read.
func (s *BitStream) Done() bool { return s.pos >= s.n }

// Next returns the next bit from s as 0 or 1.
// Past the end Next returns 0.
func (s *BitStream) Next() byte {
	if s.Done() {
		return 0
	}
	b := s.b[s.pos>>3] >> (7 &^ s.pos) & 1
	s.pos++
	return b
}

var utf16Encoding = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// CodeUnits returns the low bytes of the UTF-16 code units of text.
// Characters outside Latin-1 lose their high bits; those outside the
// BMP count as two surrogate units.  Invalid UTF-8 is read as U+FFFD.
func CodeUnits(text string) ([]byte, error) {
	s, err := utf16Encoding.NewEncoder().String(text)
	if err != nil {
		return nil, err
	}
	u := make([]byte, len(s)/2)
	for i := range u {
		u[i] = s[2*i+1]
	}
	return u, nil
}

// EncodeText returns the bit stream for text: mode indicator,
// character count, one byte per code unit, terminator and padding,
// cut at DataCapacity.
func EncodeText(text string) (*Bits, error) {
	u, err := CodeUnits(text)
	if err != nil {
		return nil, err
	}
	b := NewBits(DataCapacity(len(u)))
	b.Write(ModeByte, ModeBits)
	b.Write(uint32(len(u)), LengthBits)
	for _, c := range u {
		b.Write(uint32(c), 8)
	}
	b.Write(0, TerminatorLen)
	b.Pad()
	return b, nil
}

// A Code is a square module grid.
type Code struct {
	Bitmap []byte // 1 is dark, 0 is light
	Size   int    // number of modules on a side
	Stride int    // number of bytes per row
}

// NewCode returns an all-light Code with siz modules on a side.
func NewCode(siz int) *Code {
	stride := (siz + 7) >> 3
	return &Code{Bitmap: make([]byte, siz*stride), Size: siz, Stride: stride}
}

// Black returns true if the module at column x, row y is dark.
func (c *Code) Black(x, y int) bool {
	return 0 <= x && x < c.Size && 0 <= y && y < c.Size &&
		c.Bitmap[y*c.Stride+x/8]&(1<<uint(7&^x)) != 0
}

func (c *Code) index(x, y int) (int, byte) {
	if x < 0 || x >= c.Size || y < 0 || y >= c.Size {
		panic("qr: module out of range")
	}
	return y*c.Stride + x>>3, byte(0x80) >> (x & 7)
}

// Set sets the module at column x, row y.
func (c *Code) Set(x, y int, black bool) {
	off, b := c.index(x, y)
	if black {
		c.Bitmap[off] |= b
	} else {
		c.Bitmap[off] &^= b
	}
}

// Flip inverts the module at column x, row y.
func (c *Code) Flip(x, y int) {
	off, b := c.index(x, y)
	c.Bitmap[off] ^= b
}

// Clone returns a copy of c.
func (c *Code) Clone() *Code {
	cc := *c
	cc.Bitmap = append([]byte(nil), c.Bitmap...)
	return &cc
}

// Rows returns the grid as rows of booleans, true for dark.
func (c *Code) Rows() [][]bool {
	rows := make([][]bool, c.Size)
	for y := range rows {
		rows[y] = make([]bool, c.Size)
		for x := range rows[y] {
			rows[y][x] = c.Black(x, y)
		}
	}
	return rows
}

// String draws c with half block characters, two rows per line.
func (c *Code) String() string {
	var b strings.Builder
	for y := 0; y < c.Size; y += 2 {
		for x := 0; x < c.Size; x++ {
			n := 0
			if c.Black(x, y) {
				n = 2
			}
			if c.Black(x, y+1) {
				n++
			}
			b.WriteString([4]string{" ", "▄", "▀", "█"}[n])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
