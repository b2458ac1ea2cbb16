package gfx

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ampliui/st7789/rgb444"
)

// Image is a raw 8 bit/channel bitmap asset.
// Data holds B, G, R (and A when HasAlpha) per pixel, row-major, with rows
// padded to an even pixel count. Alpha only affects the stride; it is not blended.
type Image struct {
	W, H     int
	HasAlpha bool
	Data     []byte
}

// NewImage converts src into the raw asset layout.
func NewImage(src image.Image, withAlpha bool) *Image {
	b := src.Bounds()
	img := &Image{W: b.Dx(), H: b.Dy(), HasAlpha: withAlpha}
	span := img.span()
	rowPx := img.rowPixels()
	img.Data = make([]byte, rowPx*img.H*span)
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			off := (y*rowPx + x) * span
			img.Data[off] = c.B
			img.Data[off+1] = c.G
			img.Data[off+2] = c.R
			if withAlpha {
				img.Data[off+3] = c.A
			}
		}
	}
	return img
}

// Validate checks that Data holds every padded row.
func (img *Image) Validate() error {
	if img.W < 0 || img.H < 0 {
		return errors.New("gfx: negative image size")
	}
	if want := img.rowPixels() * img.H * img.span(); len(img.Data) < want {
		return fmt.Errorf("gfx: %dx%d image needs %d bytes, has %d", img.W, img.H, want, len(img.Data))
	}
	return nil
}

func (img *Image) span() int {
	if img.HasAlpha {
		return 4
	}
	return 3
}

func (img *Image) rowPixels() int {
	return img.W + img.W%2
}

// rgb444At reads the pixel at (x, y), which must lie inside the image.
func (img *Image) rgb444At(x, y int) rgb444.Color {
	off := (y*img.rowPixels() + x) * img.span()
	return rgb444.FromRGB888(img.Data[off+2], img.Data[off+1], img.Data[off])
}

// DrawImage blits img with its top-left corner at (x, y).
// An odd-width image is extended by one black column to keep pixel pairs whole.
// It panics if img fails Validate.
func DrawImage(s Surface, img *Image, x, y int) {
	if err := img.Validate(); err != nil {
		panic(err)
	}
	w := img.rowPixels()
	for iy := 0; iy < img.H; iy++ {
		for ix := 0; ix < w; ix++ {
			c := rgb444.Black
			if ix < img.W {
				c = img.rgb444At(ix, iy)
			}
			s.SetRGB444Unchecked(x+ix, y+iy, c)
		}
	}
}

// DrawImageCentered blits img centered on (cx, cy).
func DrawImageCentered(s Surface, img *Image, cx, cy int) {
	DrawImage(s, img, cx-img.W/2, cy-img.H/2)
}
