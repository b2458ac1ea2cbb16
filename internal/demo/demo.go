// Package demo renders the amplifier's main screen: the input tabs on the
// left, the volume readout on the right and the balance indicator on top.
package demo

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ampliui/st7789/bitmapfont"
	"github.com/ampliui/st7789/fontgen"
	"github.com/ampliui/st7789/gfx"
	"github.com/ampliui/st7789/rgb444"
	"golang.org/x/image/font/basicfont"
)

// DigitSize is the point size of the volume digits.
const DigitSize = 64

// Ranges of the amplifier controls.
const (
	MaxVolumeDB  = 63
	MaxBalanceDB = 5
)

// Layout of the main screen.
const (
	tabWidth   = 92
	tabPadding = 8

	volumeMinX   = 94
	volumeMargin = 8

	balanceTop = 8
)

// DefaultInputs are the labels of the audio inputs.
var DefaultInputs = []string{"BAL", "RCA 1", "RCA 2", "RCA 3"}

// Screen is the state shown on the main screen.
type Screen struct {
	VolumeDB  int // 0 to MaxVolumeDB
	Muted     bool
	Inputs    []string // Tab labels from top to bottom, DefaultInputs if nil
	Selected  int      // Index into Inputs, out of range selects nothing
	BalanceDB int      // Left/right balance within ±MaxBalanceDB, hidden when 0
}

var (
	muteIcon    = gfx.NewImage(speaker(40, true), false)
	speakerIcon = gfx.NewImage(speaker(12, false), false)
)

// LoadFonts builds the two fonts of the screen: the 7x13 bitmap face for
// labels and Go Mono for the monospaced volume digits.
func LoadFonts() (small, digits *bitmapfont.Table, err error) {
	sf, err := fontgen.Rasterize(basicfont.Face7x13, fontgen.Range(' ', '~'), &fontgen.Opts{Spacing: 1, Trim: true})
	if err != nil {
		return nil, nil, err
	}
	if small, err = bitmapfont.NewTable(sf, false); err != nil {
		return nil, nil, err
	}

	face, err := fontgen.GoMono(DigitSize)
	if err != nil {
		return nil, nil, err
	}
	defer face.Close()
	df, err := fontgen.Rasterize(face, fontgen.Range('-', '9'), &fontgen.Opts{Spacing: 2, Trim: true})
	if err != nil {
		return nil, nil, err
	}
	if digits, err = bitmapfont.NewTable(df, true); err != nil {
		return nil, nil, err
	}
	return small, digits, nil
}

// MaxInputs returns how many input tabs fit, without overlapping, in a
// frame h pixels tall.
func MaxInputs(h int, small *bitmapfont.Table) int {
	n := 0
	for tabsFit(n+1, h, small.Height()+tabPadding) {
		n++
	}
	return n
}

func tabsFit(n, h, tabHeight int) bool {
	spacing := h / (n + 1)
	return spacing > tabHeight && spacing*n-tabHeight/2+tabHeight+1 <= h
}

func (s *Screen) inputs() []string {
	if s.Inputs == nil {
		return DefaultInputs
	}
	return s.Inputs
}

// Validate reports the state Draw cannot show in full on f.
func (s *Screen) Validate(f *rgb444.Frame, small, digits *bitmapfont.Table) error {
	if s.VolumeDB < 0 || s.VolumeDB > MaxVolumeDB {
		return fmt.Errorf("demo: volume %d dB outside 0..%d", s.VolumeDB, MaxVolumeDB)
	}
	if s.BalanceDB < -MaxBalanceDB || s.BalanceDB > MaxBalanceDB {
		return fmt.Errorf("demo: balance %d dB outside ±%d", s.BalanceDB, MaxBalanceDB)
	}
	inputs := s.inputs()
	if n := MaxInputs(f.H, small); len(inputs) > n {
		return fmt.Errorf("demo: %d inputs, at most %d fit", len(inputs), n)
	}
	for _, name := range inputs {
		if w := small.TextWidth(name); w > tabWidth {
			return fmt.Errorf("demo: input label %q is %d pixels wide, tabs are %d", name, w, tabWidth)
		}
	}
	if w, room := digits.TextWidth(fmt.Sprint(s.VolumeDB)), f.W-volumeMargin-volumeMinX; w > room {
		return fmt.Errorf("demo: volume readout is %d pixels wide, %d available", w, room)
	}
	return nil
}

// Draw repaints the whole screen into f, which should be 320x240.
// Tabs that do not fit are dropped, labels too wide for their tab are
// shortened and a volume readout wider than its area is not drawn; Validate
// reports those cases.
func (s *Screen) Draw(f *rgb444.Frame, small, digits *bitmapfont.Table) {
	f.Fill(rgb444.Black)
	s.drawInputs(f, small)
	s.drawVolume(f, digits)
	s.drawBalance(f, small)
}

func (s *Screen) drawInputs(f *rgb444.Frame, small *bitmapfont.Table) {
	inputs := s.inputs()
	if n := MaxInputs(f.H, small); len(inputs) > n {
		inputs = inputs[:n]
	}
	spacing := f.H / (len(inputs) + 1)
	tabHeight := small.Height() + tabPadding

	for i, name := range inputs {
		cy := spacing * (i + 1)
		boxTop := cy - tabHeight/2
		textTop := cy - small.Height()/2

		selected := i == s.Selected
		if selected {
			gfx.DrawRoundedRect(f, 0, boxTop, tabWidth, boxTop+tabHeight+1, &gfx.RectOpts{SquareLeft: true})
		}
		gfx.DrawString(f, small, fit(small, name, tabWidth), 0, textTop, tabWidth, &gfx.TextOpts{Inverted: selected, KeepSides: true})
	}
}

func (s *Screen) drawVolume(f *rgb444.Frame, digits *bitmapfont.Table) {
	maxX := f.W - volumeMargin
	midX := (maxX-volumeMinX)/2 + volumeMinX
	midY := f.H / 2

	if s.Muted {
		gfx.DrawImageCentered(f, muteIcon, midX+3, midY)
		return
	}
	text := fmt.Sprint(s.VolumeDB)
	if digits.TextWidth(text) > maxX-volumeMinX {
		return
	}
	gfx.DrawString(f, digits, text, volumeMinX, midY-digits.Height()/2, maxX, nil)
}

func (s *Screen) drawBalance(f *rgb444.Frame, small *bitmapfont.Table) {
	if s.BalanceDB == 0 {
		return
	}
	midX := f.W / 2
	textTop := balanceTop + 4

	gfx.DrawString(f, small, "R", midX-20, textTop, midX-3, &gfx.TextOpts{KeepSides: true, Align: gfx.AlignRight})
	gfx.DrawImage(f, speakerIcon, midX, balanceTop)

	// Glyphs are drawn on whole pixel pairs, keep one column spare.
	x := midX + speakerIcon.W + 3
	text := fit(small, fmt.Sprintf("%+ddB", s.BalanceDB), f.W-x-1)
	gfx.DrawString(f, small, text, x, textTop, x+37, &gfx.TextOpts{KeepSides: true, Align: gfx.AlignLeft})
}

// fit drops trailing runes of text until it is at most w pixels wide.
func fit(t *bitmapfont.Table, text string, w int) string {
	runes := []rune(text)
	for len(runes) > 0 && t.TextWidth(string(runes)) > w {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

// speaker draws an h pixel tall loudspeaker, white on black. A muted
// speaker is widened with a cross on its right.
func speaker(h int, muted bool) *image.NRGBA {
	w := 2 * h / 3
	if muted {
		w = h + h/2
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	white := color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
	black := color.NRGBA{0, 0, 0, 0xFF}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, black)
		}
	}

	// Magnet
	for y := h / 3; y < 2*h/3; y++ {
		for x := 0; x < h/3; x++ {
			img.SetNRGBA(x, y, white)
		}
	}
	// Cone, opening at 45 degrees
	for x := h / 3; x < 2*h/3; x++ {
		half := h/6 + x - h/3
		for y := h/2 - half; y < h/2+half; y++ {
			img.SetNRGBA(x, y, white)
		}
	}

	if muted {
		x0, y0 := 2*h/3+h/8, h/4
		n := h / 2
		for dy := 0; dy < n; dy++ {
			for dx := 0; dx < n; dx++ {
				if abs(dx-dy) <= 1 || abs(dx+dy-(n-1)) <= 1 {
					img.SetNRGBA(x0+dx, y0+dy, white)
				}
			}
		}
	}
	return img
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
