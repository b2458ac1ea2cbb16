package lcdsim

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"time"

	"github.com/ericpauley/go-quantize/quantize"
)

// Recorder accumulates panel snapshots into an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	delays []int
}

// Add quantizes img to at most 256 colors and appends it as a frame shown for delay.
func (r *Recorder) Add(img image.Image, delay time.Duration) {
	b := img.Bounds()
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, 256), img))
	draw.Draw(pm, b, img, b.Min, draw.Src)

	r.frames = append(r.frames, pm)
	r.delays = append(r.delays, int(delay/(10*time.Millisecond)))
}

// Len returns the number of recorded frames.
func (r *Recorder) Len() int {
	return len(r.frames)
}

// Encode writes the recorded frames as an animated GIF looping forever.
func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return errors.New("lcdsim: no frames recorded")
	}
	return gif.EncodeAll(w, &gif.GIF{
		Image: r.frames,
		Delay: r.delays,
	})
}
