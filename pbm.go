// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"bufio"
	"io"
	"strconv"
)

// EncodePBM writes a Portable Bit Map image displaying the code to w,
// for use with netpbm.  The image carries no decorations.
func (c *Code) EncodePBM(w io.Writer) error {
	if !c.isValid() {
		return ErrArgs
	}
	length := c.Scale * (c.Size + c.Border*2)
	if length > MaxPixels {
		return ErrLargeImage
	}
	b := bufio.NewWriter(w)
	ls := strconv.Itoa(length)
	if _, err := b.WriteString("P4\n" + ls + " " + ls + "\n"); err != nil {
		return err
	}
	row := make([]byte, (length+7)/8)
	for y := 0; y < c.Size+c.Border*2; y++ {
		pbmRow(row, c, y)
		for i := 0; i < c.Scale; i++ {
			if _, err := b.Write(row); err != nil {
				return err
			}
		}
	}
	return b.Flush()
}

// pbmRow encodes QR pixel row y, including the quiet zone, in PBM
// format.  In PBM 1 is black.
func pbmRow(row []byte, c *Code, y int) {
	for i := range row {
		row[i] = 0
	}
	scale := c.Scale
	j := 0
	for x := 0; x < c.Size+c.Border*2; x++ {
		if !c.ink(x, y) {
			j += scale
			continue
		}
		for n := scale; n > 0; n-- {
			row[j>>3] |= 0x80 >> (j & 7)
			j++
		}
	}
}
