// Package gfx draws text, images and anti-aliased rounded rectangles into a
// packed 12-bit frame.
//
// All functions are stateless and synchronous. They write through the unchecked
// pixel path, so callers keep every shape inside the surface.
package gfx

import (
	"image"

	"github.com/ampliui/st7789/bitmapfont"
	"github.com/ampliui/st7789/rgb444"
)

// Surface is the pixel sink the primitives draw into. *rgb444.Frame implements it.
type Surface interface {
	Bounds() image.Rectangle
	SetRGB444Unchecked(x, y int, c rgb444.Color)
	FillRect(x0, y0, x1, y1 int, c rgb444.Color)
}

var _ Surface = (*rgb444.Frame)(nil)

// Align selects where a string sits between its start and end column.
type Align uint8

const (
	AlignCenter Align = iota
	AlignLeft
	AlignRight
)

// TextOpts configures DrawString. The zero value draws white text on black,
// centered, with the sides cleared.
type TextOpts struct {
	Inverted  bool // Black text on white
	KeepSides bool // Leave the columns around the text untouched
	Align     Align
}

// DrawGlyph renders g with its top-left corner at (x, y).
// The drawn width is rounded up to an even number of columns so glyphs always
// cover whole pixel pairs; withSpacing includes the trailing spacing columns.
func DrawGlyph(s Surface, g *bitmapfont.Glyph, x, y int, whiteOnBlack, withSpacing bool) {
	w := g.Width
	if withSpacing {
		w = g.WidthWithSpacing
	}
	w += w % 2
	for gy := 0; gy < g.Height; gy++ {
		for gx := 0; gx < w; gx++ {
			v := g.Intensity(gx, gy)
			if !whiteOnBlack {
				v = 0x0F - v
			}
			s.SetRGB444Unchecked(x+gx, y+gy, rgb444.Gray(v))
		}
	}
}

// DrawString renders text on the row starting at y0, laid out between
// columns x0 and x1. Runes missing from the font are skipped.
func DrawString(s Surface, t *bitmapfont.Table, text string, x0, y0, x1 int, opts *TextOpts) {
	if opts == nil {
		opts = &TextOpts{}
	}
	if text == "" || x0 > x1 {
		return
	}

	w := t.TextWidth(text)
	start := textStart(w, x0, x1, opts.Align)
	end := start + w

	if !opts.KeepSides {
		bg := rgb444.Black
		if opts.Inverted {
			bg = rgb444.White
		}
		y1 := y0 + t.Height()
		if x0 < start {
			s.FillRect(x0, y0, start, y1, bg)
		}
		if end < x1 {
			s.FillRect(end, y0, x1, y1, bg)
		}
	}

	runes := []rune(text)
	x := start
	for i, r := range runes {
		g, ok := t.Lookup(r)
		if !ok {
			continue
		}
		DrawGlyph(s, g, x, y0, !opts.Inverted, i < len(runes)-1)
		x += g.Width + t.Spacing()
	}
}

func textStart(w, x0, x1 int, align Align) int {
	switch align {
	case AlignLeft:
		return x0
	case AlignRight:
		return max(x0, x1-w)
	default:
		middle := x0 + (x1-x0)/2
		return max(x0, middle-w/2)
	}
}
