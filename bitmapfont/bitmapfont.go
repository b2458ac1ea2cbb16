// Package bitmapfont decodes compact 4-bit-per-pixel bitmap fonts.
//
// A Font is a read-only asset: glyph metrics plus one shared bitmap blob where
// every glyph is stored row by row, two pixels per byte (high nibble first),
// rows padded to an even pixel count. A Table is built once from a Font and
// resolves runes to Glyph views that decode intensities straight from the blob.
package bitmapfont

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// GlyphDesc describes one glyph of the bitmap blob.
type GlyphDesc struct {
	Width  int // Pixel width of the glyph
	Offset int // Byte offset of the glyph's first row in Font.Bitmap
}

// Font is a 4bpp bitmap font asset.
//
// Coverage is either the explicit Codepoints list or, when Codepoints is nil,
// the contiguous range First..Last. Glyphs[i] describes the i-th covered rune.
type Font struct {
	Height     int // Rows stored per glyph in Bitmap
	TopSkip    int // Unused rows at the top of every glyph
	BottomSkip int // Unused rows at the bottom of every glyph
	Spacing    int // Pixels between two glyphs

	First, Last rune
	Codepoints  []rune

	Glyphs []GlyphDesc
	Bitmap []byte
}

// Validate checks that every glyph's bitmap lies inside the blob.
func (f *Font) Validate() error {
	if f.TopSkip < 0 || f.BottomSkip < 0 || f.Spacing < 0 {
		return errors.New("bitmapfont: negative skip or spacing")
	}
	if f.Height-f.TopSkip-f.BottomSkip <= 0 {
		return errors.New("bitmapfont: skips leave no visible rows")
	}
	n := len(f.Codepoints)
	if f.Codepoints == nil {
		if f.Last < f.First {
			return errors.New("bitmapfont: empty rune range")
		}
		n = int(f.Last-f.First) + 1
	}
	if n != len(f.Glyphs) {
		return fmt.Errorf("bitmapfont: %d runes covered but %d glyphs described", n, len(f.Glyphs))
	}
	for i, d := range f.Glyphs {
		if d.Width < 0 || d.Offset < 0 {
			return fmt.Errorf("bitmapfont: glyph %d has negative metrics", i)
		}
		if end := d.Offset + (stride(d.Width)*f.Height+1)/2; end > len(f.Bitmap) {
			return fmt.Errorf("bitmapfont: glyph %d bitmap out of range (%d > %d)", i, end, len(f.Bitmap))
		}
	}
	return nil
}

// Glyph is the drawing view of one character.
// It borrows the bitmap of the Font it was built from.
type Glyph struct {
	Width            int // Drawn width, widened for monospaced digits
	BitmapWidth      int // Width of the stored bitmap
	Height           int // Visible rows
	WidthWithSpacing int
	TopSkip          int

	bitmap []byte
}

// Intensity returns the 4-bit gray value at (x, y) in glyph coordinates.
// A widened glyph keeps its bitmap centered; the margins and everything
// outside [0, Width) x [0, Height) decode as 0.
func (g *Glyph) Intensity(x, y int) uint8 {
	left := (g.Width - g.BitmapWidth) / 2
	if x < left || x >= left+g.BitmapWidth || y < 0 || y >= g.Height {
		return 0
	}
	off := (y+g.TopSkip)*stride(g.BitmapWidth) + x - left
	b := g.bitmap[off/2]
	if off%2 == 0 {
		return b >> 4
	}
	return b & 0x0F
}

// Table maps runes to glyphs.
type Table struct {
	font   *Font
	glyphs map[rune]*Glyph
	height int
}

// NewTable builds the glyphs of f. With monospace set, every digit 0-9 is
// widened to the widest digit so numeric readouts keep a stable width.
func NewTable(f *Font, monospace bool) (*Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	t := &Table{
		font:   f,
		glyphs: make(map[rune]*Glyph, len(f.Glyphs)),
		height: f.Height - f.TopSkip - f.BottomSkip,
	}
	for i, d := range f.Glyphs {
		r := f.First + rune(i)
		if f.Codepoints != nil {
			r = f.Codepoints[i]
		}
		t.glyphs[r] = &Glyph{
			Width:            d.Width,
			BitmapWidth:      d.Width,
			Height:           t.height,
			WidthWithSpacing: d.Width + f.Spacing,
			TopSkip:          f.TopSkip,
			bitmap:           f.Bitmap[d.Offset:],
		}
	}
	if monospace {
		t.monospaceDigits()
	}
	return t, nil
}

func (t *Table) monospaceDigits() {
	widest := 0
	for r := '0'; r <= '9'; r++ {
		if g, ok := t.glyphs[r]; ok && g.Width > widest {
			widest = g.Width
		}
	}
	for r := '0'; r <= '9'; r++ {
		if g, ok := t.glyphs[r]; ok {
			g.Width = widest
			g.WidthWithSpacing = widest + t.font.Spacing
		}
	}
}

// Lookup returns the glyph of r, if the font covers it.
func (t *Table) Lookup(r rune) (*Glyph, bool) {
	g, ok := t.glyphs[r]
	return g, ok
}

// Height returns the visible glyph height in pixels.
func (t *Table) Height() int {
	return t.height
}

// Spacing returns the pixels between two glyphs.
func (t *Table) Spacing() int {
	return t.font.Spacing
}

// TextWidth returns the width s takes when drawn: the widths of covered runes
// plus one spacing between every pair of runes. Uncovered runes add no width
// but still count toward the spacing.
func (t *Table) TextWidth(s string) int {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return 0
	}
	w := 0
	for _, r := range s {
		if g, ok := t.glyphs[r]; ok {
			w += g.Width
		}
	}
	return w + (n-1)*t.font.Spacing
}

// stride returns the stored row length in pixels.
func stride(w int) int {
	return w + w%2
}
