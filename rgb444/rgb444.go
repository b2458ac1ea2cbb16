package rgb444

import (
	"bytes"
	"image"
	"image/color"
)

// Color is a 12-bit color: red in bits 11-8, green in bits 7-4, blue in bits 3-0.
// Bits above bit 11 are ignored.
type Color uint16

const (
	Black Color = 0x000
	White Color = 0xFFF
)

// Gray replicates a 4-bit intensity into all three channels.
func Gray(v uint8) Color {
	c := Color(v & 0x0F)
	return c<<8 | c<<4 | c
}

// FromRGB888 keeps the 4 most significant bits of each 8-bit channel.
func FromRGB888(r, g, b uint8) Color {
	return Color(r>>4)<<8 | Color(g>>4)<<4 | Color(b>>4)
}

// R returns the red channel (0-15).
func (c Color) R() uint8 { return uint8(c>>8) & 0x0F }

// G returns the green channel (0-15).
func (c Color) G() uint8 { return uint8(c>>4) & 0x0F }

// B returns the blue channel (0-15).
func (c Color) B() uint8 { return uint8(c) & 0x0F }

// RGBA converts the Color to standard RGBA.
// Each 4-bit channel is scaled to 16-bit: 0xF * 0x1111 = 0xFFFF.
func (c Color) RGBA() (r, g, b, a uint32) {
	return uint32(c.R()) * 0x1111, uint32(c.G()) * 0x1111, uint32(c.B()) * 0x1111, 0xFFFF
}

// Bytes returns the three bytes of a pixel pair where both pixels are c.
func Bytes(c Color) [3]byte {
	return [3]byte{
		c.R()<<4 | c.G(),
		c.B()<<4 | c.R(),
		c.G()<<4 | c.B(),
	}
}

func toRGB444(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v & 0xFFF
	}
	r, g, b, _ := c.RGBA()
	return Color(r>>12)<<8 | Color(g>>12)<<4 | Color(b>>12)
}

// Model converts colors to Color.
var Model = color.ModelFunc(toRGB444)

// Frame is a 12-bit image where two horizontally consecutive pixels share three bytes.
// Pixels are numbered row-major; the pair is formed by an even pixel index and the
// following odd one, which holds across row boundaries since the width is even.
type Frame struct {
	Pix  []byte // Packed pixel data, W*H*3/2 bytes
	W, H int
}

// NewFrame allocates a frame of w x h pixels.
// The width must be even so that every row ends on a byte boundary.
func NewFrame(w, h int) *Frame {
	if w <= 0 || h <= 0 {
		panic("rgb444: frame dimensions must be positive")
	}
	if w%2 != 0 {
		panic("rgb444: width must be even")
	}
	return &Frame{
		Pix: make([]byte, w*h*3/2),
		W:   w,
		H:   h,
	}
}

// ColorModel returns the color model of the frame.
func (f *Frame) ColorModel() color.Model {
	return Model
}

// Bounds returns the frame bounds, always anchored at the origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.W, f.H)
}

// Stride returns the number of bytes per row.
func (f *Frame) Stride() int {
	return f.W * 3 / 2
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (f *Frame) At(x, y int) color.Color {
	return f.RGB444At(x, y)
}

// Set sets the color of the pixel at (x, y), converting it first.
func (f *Frame) Set(x, y int, c color.Color) {
	f.SetRGB444(x, y, Model.Convert(c).(Color))
}

// RGB444At returns the color of the pixel at (x, y), or Black outside the frame.
func (f *Frame) RGB444At(x, y int) Color {
	if !f.in(x, y) {
		return Black
	}
	n := f.nibbleIndex(x, y)
	return Color(f.nibble(n))<<8 | Color(f.nibble(n+1))<<4 | Color(f.nibble(n+2))
}

// SetRGB444 sets the pixel at (x, y). Coordinates outside the frame are ignored.
func (f *Frame) SetRGB444(x, y int, c Color) {
	if !f.in(x, y) {
		return
	}
	f.SetRGB444Unchecked(x, y, c)
}

// SetRGB444Unchecked sets the pixel at (x, y) without clipping.
// The caller guarantees 0 <= x < W and 0 <= y < H; an x past the row end
// lands on the next row and anything past the buffer panics.
func (f *Frame) SetRGB444Unchecked(x, y int, c Color) {
	n := f.nibbleIndex(x, y)
	f.setNibble(n, c.R())
	f.setNibble(n+1, c.G())
	f.setNibble(n+2, c.B())
}

// Fill sets every pixel of the frame to c.
func (f *Frame) Fill(c Color) {
	b := Bytes(c)
	if b[0] == b[1] && b[1] == b[2] {
		for i := range f.Pix {
			f.Pix[i] = b[0]
		}
		return
	}
	for i := 0; i+2 < len(f.Pix); i += 3 {
		f.Pix[i] = b[0]
		f.Pix[i+1] = b[1]
		f.Pix[i+2] = b[2]
	}
}

// FillRect sets every pixel of the half-open rectangle [x0, x1) x [y0, y1) to c.
// The end coordinates are clamped to the frame, and a start past its end is pulled
// back onto it, so an inverted rectangle draws nothing.
func (f *Frame) FillRect(x0, y0, x1, y1 int, c Color) {
	x1 = clamp(x1, 0, f.W)
	y1 = clamp(y1, 0, f.H)
	x0 = clamp(x0, 0, x1)
	y0 = clamp(y0, 0, y1)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			f.SetRGB444Unchecked(x, y, c)
		}
	}
}

// Equal reports whether two frames have the same size and content.
func (f *Frame) Equal(o *Frame) bool {
	return f.W == o.W && f.H == o.H && bytes.Equal(f.Pix, o.Pix)
}

func (f *Frame) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.W && y < f.H
}

// nibbleIndex returns the index of the red nibble of pixel (x, y).
// Each pixel covers three consecutive nibbles; nibble n lives in byte n/2,
// in the high half when n is even.
func (f *Frame) nibbleIndex(x, y int) int {
	return (y*f.W + x) * 3
}

func (f *Frame) nibble(n int) uint8 {
	shift := uint(4 * (1 - (n & 1)))
	return (f.Pix[n/2] >> shift) & 0x0F
}

// setNibble is the only place where packed bytes are modified partially.
func (f *Frame) setNibble(n int, v uint8) {
	shift := uint(4 * (1 - (n & 1)))
	i := n / 2
	f.Pix[i] = (f.Pix[i] &^ (0x0F << shift)) | ((v & 0x0F) << shift)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
