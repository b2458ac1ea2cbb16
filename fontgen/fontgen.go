// Package fontgen rasterizes vector or bitmap font faces into 4 bit/pixel
// bitmapfont assets.
package fontgen

import (
	"errors"
	"fmt"
	"image"

	"github.com/ampliui/st7789/bitmapfont"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Opts configures Rasterize.
type Opts struct {
	Spacing int  // Pixels between two glyphs
	Trim    bool // Skip the blank rows shared by every glyph
}

// Range returns the runes first..last inclusive.
func Range(first, last rune) []rune {
	if last < first {
		return nil
	}
	runes := make([]rune, 0, last-first+1)
	for r := first; r <= last; r++ {
		runes = append(runes, r)
	}
	return runes
}

// GoMono returns the Go Mono face at size points, rendered at 72 DPI so one
// point is one pixel.
func GoMono(size float64) (font.Face, error) {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("fontgen: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("fontgen: %w", err)
	}
	return face, nil
}

// Rasterize draws every rune of runes with face and packs the coverage into a
// bitmapfont.Font. Each glyph is as wide as its rounded-up advance and as
// tall as the face's ascent plus descent.
//
// Consecutive runes produce a First..Last range, any other order an explicit
// Codepoints list.
func Rasterize(face font.Face, runes []rune, opts *Opts) (*bitmapfont.Font, error) {
	if opts == nil {
		opts = &Opts{}
	}
	if len(runes) == 0 {
		return nil, errors.New("fontgen: no runes")
	}
	if opts.Spacing < 0 {
		return nil, errors.New("fontgen: negative spacing")
	}

	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	height := ascent + m.Descent.Ceil()
	if height <= 0 {
		return nil, errors.New("fontgen: face has no height")
	}

	f := &bitmapfont.Font{
		Height:  height,
		Spacing: opts.Spacing,
		Glyphs:  make([]bitmapfont.GlyphDesc, 0, len(runes)),
	}
	if contiguous(runes) {
		f.First, f.Last = runes[0], runes[len(runes)-1]
	} else {
		f.Codepoints = append([]rune(nil), runes...)
	}

	seen := make(map[rune]bool, len(runes))
	ink := image.Rectangle{}
	for _, r := range runes {
		if seen[r] {
			return nil, fmt.Errorf("fontgen: duplicate rune %q", r)
		}
		seen[r] = true

		adv, ok := face.GlyphAdvance(r)
		if !ok {
			return nil, fmt.Errorf("fontgen: face has no glyph for %q", r)
		}
		w := adv.Ceil()

		mask := image.NewAlpha(image.Rect(0, 0, w, height))
		d := font.Drawer{
			Dst:  mask,
			Src:  image.Opaque,
			Face: face,
			Dot:  fixed.P(0, ascent),
		}
		d.DrawString(string(r))

		f.Glyphs = append(f.Glyphs, bitmapfont.GlyphDesc{Width: w, Offset: len(f.Bitmap)})
		f.Bitmap = appendNibbles(f.Bitmap, mask)
		ink = ink.Union(inkRect(mask))
	}

	if opts.Trim && !ink.Empty() {
		f.TopSkip = ink.Min.Y
		f.BottomSkip = height - ink.Max.Y
	}
	return f, nil
}

func contiguous(runes []rune) bool {
	for i, r := range runes {
		if r != runes[0]+rune(i) {
			return false
		}
	}
	return true
}

// appendNibbles packs mask row by row, two pixels per byte with the high
// nibble first, padding odd rows with a blank pixel.
func appendNibbles(dst []byte, mask *image.Alpha) []byte {
	b := mask.Bounds()
	w := b.Dx()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := 0; x < w; x += 2 {
			hi := mask.AlphaAt(b.Min.X+x, y).A >> 4
			var lo uint8
			if x+1 < w {
				lo = mask.AlphaAt(b.Min.X+x+1, y).A >> 4
			}
			dst = append(dst, hi<<4|lo)
		}
	}
	return dst
}

// inkRect returns the bounds of the pixels that survive 4 bit quantization,
// or an empty rectangle when there are none.
func inkRect(mask *image.Alpha) image.Rectangle {
	r := image.Rectangle{}
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.AlphaAt(x, y).A>>4 == 0 {
				continue
			}
			r = r.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return r
}
