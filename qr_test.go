// Copyright 2011 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr_test

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tomoacademy/qr"
	"github.com/tomoacademy/qr/coding"
)

const profileURL = "https://tomoacademy.site/profile/kanish-sj"

func decode(t *testing.T, url string) image.Image {
	t.Helper()
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
	b, err := qr.DecodeDataURL(url)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return img
}

func dark(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return (r+g+b)/3 < 0x4000
}

func light(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return (r+g+b)/3 > 0xc000
}

func TestGenerate(t *testing.T) {
	for _, text := range []string{"", "hello", profileURL, strings.Repeat("é", 500)} {
		url, err := qr.Generate(text, qr.DefaultSize)
		require.NoError(t, err)
		img := decode(t, url)
		require.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())
	}
}

func TestGenerateProfile(t *testing.T) {
	require.Len(t, profileURL, 42)
	require.Equal(t, 25, coding.ModuleCount(len(profileURL)))
	require.Equal(t, 25, coding.ModuleCount(43))
	require.Equal(t, 8, qr.ModuleSize(200, 25))

	url, err := qr.Generate(profileURL, 200)
	require.NoError(t, err)
	img := decode(t, url)
	require.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())

	c, err := coding.Build(profileURL)
	require.NoError(t, err)
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			px, py := x*8+4, y*8+4
			if c.Black(x, y) {
				require.True(t, dark(img, px, py), "module %d,%d", x, y)
			} else {
				require.True(t, light(img, px, py), "module %d,%d", x, y)
			}
		}
	}
}

func TestGenerateAvatarBorder(t *testing.T) {
	require.Equal(t, 2, qr.ModuleSize(qr.AvatarSize, 21))
	url, err := qr.Generate("TA", qr.AvatarSize)
	require.NoError(t, err)
	img := decode(t, url)
	require.Equal(t, image.Rect(0, 0, 60, 60), img.Bounds())
	// The symbol covers 42 pixels, the remaining 18 are border.
	require.True(t, dark(img, 41, 5))  // right column of top right block
	require.True(t, light(img, 43, 5)) // border
	require.True(t, dark(img, 3, 29))  // top row of bottom left block
	require.True(t, light(img, 3, 43))
	require.True(t, light(img, 50, 50))
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := qr.Generate(profileURL, 200)
	require.NoError(t, err)
	b, err := qr.Generate(profileURL, 200)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestGenerateConcurrent(t *testing.T) {
	want, err := qr.Generate(profileURL, 120)
	require.NoError(t, err)
	var wg sync.WaitGroup
	got := make([]string, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = qr.Generate(profileURL, 120)
		}(i)
	}
	wg.Wait()
	for _, v := range got {
		require.Equal(t, want, v)
	}
}

func TestGenerateArgs(t *testing.T) {
	for _, size := range []int{0, -1} {
		url, err := qr.Generate("x", size)
		require.ErrorIs(t, err, qr.ErrArgs)
		require.Empty(t, url)
	}
	_, err := qr.Generate("x", qr.MaxPixels+1)
	require.ErrorIs(t, err, qr.ErrLargeImage)
	url, err := qr.Generate("x", 20000)
	require.ErrorIs(t, err, qr.ErrLargeImage)
	require.Empty(t, url)
}

func TestNoSurface(t *testing.T) {
	r := &qr.Renderer{
		Style:      qr.DefaultStyle,
		NewSurface: func(w, h int) *gg.Context { return nil },
	}
	url, err := r.Generate("x", 200)
	require.NoError(t, err)
	require.Empty(t, url)

	c, err := coding.Build("x")
	require.NoError(t, err)
	_, err = r.PNG(c, 200)
	require.ErrorIs(t, err, qr.ErrNoSurface)
}

func TestPlainStyle(t *testing.T) {
	st := qr.DefaultStyle
	st.GradientInner = qr.Colour{}
	st.GradientOuter = qr.Colour{}
	st.TickLength = 0
	r := &qr.Renderer{Style: st}
	c, err := coding.Build("plain")
	require.NoError(t, err)
	b, err := r.PNG(c, 21*3+5)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	for y := 0; y < 68; y++ {
		for x := 0; x < 68; x++ {
			want := x < 63 && y < 63 && c.Black(x/3, y/3)
			require.Equal(t, want, dark(img, x, y), "pixel %d,%d", x, y)
			require.Equal(t, !want, light(img, x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestTinyImage(t *testing.T) {
	// Smaller than the symbol: no modules, only background.
	url, err := qr.Generate("x", 20)
	require.NoError(t, err)
	img := decode(t, url)
	require.True(t, light(img, 10, 10))
}

func TestDataURL(t *testing.T) {
	url := qr.DataURL([]byte("\x89PNG"))
	require.Equal(t, "data:image/png;base64,iVBORw==", url)
	b, err := qr.DecodeDataURL(url)
	require.NoError(t, err)
	require.Equal(t, []byte("\x89PNG"), b)
	_, err = qr.DecodeDataURL("data:text/plain,hi")
	require.ErrorIs(t, err, qr.ErrArgs)
}

func TestParseColour(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want qr.Colour
	}{
		{"white", qr.Colour{0xff, 0xff, 0xff, 0xff}},
		{"Black", qr.Colour{0, 0, 0, 0xff}},
		{"f80", qr.Colour{0xff, 0x88, 0x00, 0xff}},
		{"f808", qr.Colour{0xff, 0x88, 0x00, 0x88}},
		{"#3b82f6", qr.Colour{59, 130, 246, 0xff}},
		{"3b82f64d", qr.Colour{59, 130, 246, 77}},
	} {
		c, err := qr.ParseColour(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, c, tc.in)
	}
	for _, s := range []string{"", "12345", "xyz", "#1234567890"} {
		_, err := qr.ParseColour(s)
		require.Error(t, err, s)
	}
	require.Equal(t, "white", qr.Colour{0xff, 0xff, 0xff, 0xff}.String())
	require.Equal(t, "3b82f64d", qr.Colour{59, 130, 246, 77}.String())
}

func TestStyleYAML(t *testing.T) {
	st := qr.DefaultStyle
	err := yaml.Unmarshal([]byte("foreground: '#123456'\ntick_length: 4\n"), &st)
	require.NoError(t, err)
	require.Equal(t, qr.Colour{0x12, 0x34, 0x56, 0xff}, st.Foreground)
	require.Equal(t, 4.0, st.TickLength)
	require.Equal(t, qr.DefaultStyle.Background, st.Background)

	out, err := yaml.Marshal(st)
	require.NoError(t, err)
	var back qr.Style
	require.NoError(t, yaml.Unmarshal(out, &back))
	require.Equal(t, st, back)

	require.Error(t, yaml.Unmarshal([]byte("tick: nope\n"), &st))
}

func TestCodeOutputs(t *testing.T) {
	c, err := qr.Encode("")
	require.NoError(t, err)
	require.Equal(t, 21, c.Size)

	s := c.String()
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	require.Len(t, lines, 11)
	require.True(t, strings.HasPrefix(lines[0], "█▀▀▀▀▀█"))

	a := strings.Split(strings.TrimSuffix(c.ASCII(), "\n"), "\n")
	require.Len(t, a, 21)
	require.Equal(t, strings.Repeat("#", 14), a[0][:14])
	require.Len(t, a[0], 42)

	c.Scale, c.Border = 2, 1
	img := c.Image()
	require.Equal(t, image.Rect(0, 0, 46, 46), img.Bounds())
	require.Equal(t, color.Gray{0xff}, img.At(0, 0))
	require.Equal(t, color.Gray{0x00}, img.At(2, 2))
	require.Equal(t, color.Gray{0xff}, img.At(45, 45))

	c.Reverse = true
	require.Equal(t, color.Gray{0x00}, img.At(0, 0))
}

func TestEncodePBM(t *testing.T) {
	c, err := qr.Encode("pbm")
	require.NoError(t, err)
	c.Scale, c.Border = 3, 2
	var b bytes.Buffer
	require.NoError(t, c.EncodePBM(&b))
	const n = (21 + 4) * 3
	header := fmt.Sprintf("P4\n%d %d\n", n, n)
	require.True(t, strings.HasPrefix(b.String(), header))
	body := b.Bytes()[len(header):]
	stride := (n + 7) / 8
	require.Len(t, body, stride*n)
	bit := func(x, y int) bool {
		return body[y*stride+x/8]&(0x80>>(x&7)) != 0
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			want := c.Black(x/3-2, y/3-2)
			require.Equal(t, want, bit(x, y), "pixel %d,%d", x, y)
		}
	}

	c.Scale = 0
	require.ErrorIs(t, c.EncodePBM(&b), qr.ErrArgs)
}

func ExampleGenerate() {
	url, err := qr.Generate(profileURL, qr.DefaultSize)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Println(url[:22])
	// Output: data:image/png;base64,
}
