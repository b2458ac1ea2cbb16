package gfx

import (
	"fmt"

	"github.com/ampliui/st7789/rgb444"
)

// DefaultRadius is the corner radius used when RectOpts.Radius is zero.
const DefaultRadius = 7

// RectOpts configures DrawRoundedRect. The zero value draws a white box on
// black with both sides rounded by DefaultRadius.
type RectOpts struct {
	Inverted    bool // Black box on white
	SquareLeft  bool
	SquareRight bool
	Radius      int
}

// DrawRoundedRect fills [x0, x1) x [y0, y1) with an anti-aliased rounded box.
//
// One octant of the corner circle is computed following Arvo's fast
// anti-aliased circle generation (Graphics Gems II) and mirrored eight ways
// into the four corners. The boundary intensity is the fractional part of
// sqrt(r^2 - y^2) in 4-bit fixed point.
//
// The rectangle must satisfy 0 <= x0 <= x1 <= W and 0 <= y0 <= y1 <= H.
func DrawRoundedRect(s Surface, x0, y0, x1, y1 int, opts *RectOpts) {
	if opts == nil {
		opts = &RectOpts{}
	}
	b := s.Bounds()
	if x0 < 0 || y0 < 0 || x1 > b.Dx() || y1 > b.Dy() || x0 > x1 || y0 > y1 {
		panic(fmt.Sprintf("gfx: rounded rectangle (%d, %d)-(%d, %d) outside %v", x0, y0, x1, y1, b))
	}
	r := opts.Radius
	if r == 0 {
		r = DefaultRadius
	}

	fill, outside := rgb444.White, rgb444.Black
	if opts.Inverted {
		fill, outside = outside, fill
	}

	leftX := x0 + r - 1
	topY := y0 + r - 1
	rightX := x1 - r
	bottomY := y1 - r

	mirror8 := func(x, y int, c rgb444.Color) {
		left, right := c, c
		if opts.SquareLeft {
			left = fill
		}
		if opts.SquareRight {
			right = fill
		}
		s.SetRGB444Unchecked(leftX-x, topY-y, left)
		s.SetRGB444Unchecked(leftX-y, topY-x, left)
		s.SetRGB444Unchecked(leftX-x, bottomY+y, left)
		s.SetRGB444Unchecked(leftX-y, bottomY+x, left)
		s.SetRGB444Unchecked(rightX+x, topY-y, right)
		s.SetRGB444Unchecked(rightX+y, topY-x, right)
		s.SetRGB444Unchecked(rightX+x, bottomY+y, right)
		s.SetRGB444Unchecked(rightX+y, bottomY+x, right)
	}

	x, y := r, 0
	for x > y {
		y++
		xFixed := isqrt((r*r - y*y) * 16 * 16)
		x = xFixed / 16
		v := uint8(xFixed & 0x0F)
		if opts.Inverted {
			v = 0x0F - v
		}
		mirror8(x, y, rgb444.Gray(v))
		for i := y; i < x; i++ {
			mirror8(i, y, fill)
		}
		for i := x + 1; i < r; i++ {
			mirror8(i, y, outside)
		}
	}

	// Cross-shaped remainder: the full-width band between the corner centers,
	// then the top and bottom bands between the left and right corners.
	for j := topY; j <= bottomY; j++ {
		for i := x0; i < x1; i++ {
			s.SetRGB444Unchecked(i, j, fill)
		}
	}
	for j := 0; j < r; j++ {
		for i := leftX; i <= rightX; i++ {
			s.SetRGB444Unchecked(i, y0+j, fill)
			s.SetRGB444Unchecked(i, y1-j-1, fill)
		}
	}
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n int) int {
	if n < 2 {
		return n
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
