package demo

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ampliui/st7789/rgb444"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, s *Screen) *rgb444.Frame {
	t.Helper()
	small, digits, err := LoadFonts()
	require.NoError(t, err)
	f := rgb444.NewFrame(320, 240)
	s.Draw(f, small, digits)
	return f
}

func lit(f *rgb444.Frame, x0, y0, x1, y1 int) int {
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if f.RGB444At(x, y) != rgb444.Black {
				n++
			}
		}
	}
	return n
}

func TestLoadFonts(t *testing.T) {
	small, digits, err := LoadFonts()
	require.NoError(t, err)

	for r := ' '; r <= '~'; r++ {
		_, ok := small.Lookup(r)
		assert.True(t, ok, "small font misses %q", r)
	}
	assert.LessOrEqual(t, small.Height(), 13)

	zero, ok := digits.Lookup('0')
	require.True(t, ok)
	for r := '1'; r <= '9'; r++ {
		g, ok := digits.Lookup(r)
		require.True(t, ok)
		assert.Equal(t, zero.Width, g.Width)
	}
	_, ok = digits.Lookup('-')
	assert.True(t, ok)
	assert.Greater(t, digits.Height(), small.Height())
}

func TestDrawSelectedTab(t *testing.T) {
	f := render(t, &Screen{VolumeDB: 30, Selected: 0})

	// Tab centers are spaced H/(n+1) apart: 48, 96, 144, 192.
	assert.Equal(t, rgb444.White, f.RGB444At(1, 48))
	assert.Equal(t, rgb444.Black, f.RGB444At(1, 96))
	assert.Equal(t, rgb444.Black, f.RGB444At(1, 144))

	// Square left side, rounded right side. The outermost corner pixel
	// is left untouched on both sides.
	small, _, err := LoadFonts()
	require.NoError(t, err)
	top := 48 - (small.Height()+tabPadding)/2
	assert.Equal(t, rgb444.White, f.RGB444At(0, top+1))
	assert.Equal(t, rgb444.Black, f.RGB444At(tabWidth-1, top+1))

	// Labels of unselected tabs are drawn white on black.
	assert.Positive(t, lit(f, 0, 96-10, tabWidth, 96+10))
}

func TestDrawNoSelection(t *testing.T) {
	f := render(t, &Screen{Selected: -1, Inputs: []string{"A", "B"}})
	// Two inputs: centers at 80 and 160.
	assert.Equal(t, rgb444.Black, f.RGB444At(1, 80))
	assert.Equal(t, rgb444.Black, f.RGB444At(1, 160))
	assert.Positive(t, lit(f, 0, 70, tabWidth, 90))
}

func TestDrawVolume(t *testing.T) {
	a := render(t, &Screen{VolumeDB: 30})
	b := render(t, &Screen{VolumeDB: 31})

	assert.Positive(t, lit(a, volumeMinX, 0, 320-volumeMargin, 240))
	assert.False(t, a.Equal(b))

	// Nothing outside the volume area differs between the two.
	assert.Equal(t, lit(a, 0, 0, volumeMinX, 240), lit(b, 0, 0, volumeMinX, 240))
}

func TestDrawMuted(t *testing.T) {
	f := render(t, &Screen{VolumeDB: 30, Muted: true})
	unmuted := render(t, &Screen{VolumeDB: 30})

	assert.False(t, f.Equal(unmuted))
	// The icon is centered three pixels right of the volume area's middle.
	midX := (320-volumeMargin-volumeMinX)/2 + volumeMinX + 3
	assert.Positive(t, lit(f, midX-muteIcon.W/2, 120-muteIcon.H/2, midX+muteIcon.W/2, 120+muteIcon.H/2))
	assert.Zero(t, lit(f, volumeMinX, 0, midX-muteIcon.W/2-1, 240))
}

func TestDrawBalance(t *testing.T) {
	centered := render(t, &Screen{VolumeDB: 30})
	assert.Zero(t, lit(centered, 140, balanceTop, 220, balanceTop+20))

	f := render(t, &Screen{VolumeDB: 30, BalanceDB: 3})
	assert.Positive(t, lit(f, 140, balanceTop, 157, balanceTop+20), "R label")
	assert.Positive(t, lit(f, 160, balanceTop, 160+speakerIcon.W, balanceTop+speakerIcon.H), "speaker")
	assert.Positive(t, lit(f, 175, balanceTop, 220, balanceTop+20), "balance text")
}

func TestSpeakerIcons(t *testing.T) {
	s := speaker(12, false)
	assert.Equal(t, 8, s.Bounds().Dx())
	assert.Equal(t, 12, s.Bounds().Dy())

	m := speaker(40, true)
	assert.Equal(t, 60, m.Bounds().Dx())
	// Cross center is lit.
	c := m.NRGBAAt(2*40/3+40/8+10, 40/4+10)
	assert.Equal(t, uint8(0xFF), c.R)
	// Gap between cone and cross stays black.
	g := m.NRGBAAt(2*40/3+1, 2)
	assert.Equal(t, uint8(0), g.R)
}

func TestMaxInputs(t *testing.T) {
	small, _, err := LoadFonts()
	require.NoError(t, err)

	n := MaxInputs(240, small)
	assert.GreaterOrEqual(t, n, len(DefaultInputs))
	assert.Less(t, n, 30)
	assert.Zero(t, MaxInputs(small.Height(), small))

	th := small.Height() + tabPadding
	assert.True(t, tabsFit(n, 240, th))
	assert.False(t, tabsFit(n+1, 240, th))
}

func TestDrawTooManyInputs(t *testing.T) {
	small, digits, err := LoadFonts()
	require.NoError(t, err)
	n := MaxInputs(240, small)

	labels := make([]string, 30)
	for i := range labels {
		labels[i] = fmt.Sprintf("IN %d", i)
	}
	for _, sel := range []int{0, n - 1, 29} {
		s := &Screen{VolumeDB: 30, Inputs: labels, Selected: sel}
		f := rgb444.NewFrame(320, 240)
		require.NotPanics(t, func() { s.Draw(f, small, digits) }, "selected %d", sel)

		// Only the first n tabs are laid out; nothing below the last one.
		spacing := 240 / (n + 1)
		th := small.Height() + tabPadding
		assert.Zero(t, lit(f, 0, spacing*n+th/2+2, tabWidth, 240), "selected %d", sel)
	}
	assert.Error(t, (&Screen{VolumeDB: 30, Inputs: labels}).Validate(rgb444.NewFrame(320, 240), small, digits))
}

func TestDrawLongLabel(t *testing.T) {
	long := strings.Repeat("W", 40)
	for _, sel := range []int{0, -1} {
		f := render(t, &Screen{VolumeDB: 30, Inputs: []string{long}, Selected: sel})
		assert.Positive(t, lit(f, 0, 110, tabWidth, 130))
		assert.Zero(t, lit(f, tabWidth+1, 0, volumeMinX, 240), "selected %d", sel)
	}
}

func TestDrawOversizedVolume(t *testing.T) {
	ref := render(t, &Screen{VolumeDB: 30})
	f := render(t, &Screen{VolumeDB: -1234567})

	// The readout does not fit, so it is left out instead of wrapping into the tabs.
	assert.Equal(t, lit(ref, 0, 0, volumeMinX, 240), lit(f, 0, 0, volumeMinX, 240))
	assert.Zero(t, lit(f, volumeMinX, 0, 320, 240))
}

func TestDrawBalanceExtremes(t *testing.T) {
	for _, b := range []int{-MaxBalanceDB, MaxBalanceDB, -1000000} {
		f := render(t, &Screen{VolumeDB: 30, BalanceDB: b})
		assert.Positive(t, lit(f, 175, balanceTop, 320, balanceTop+20), "balance %d", b)
	}
}

func TestScreenValidate(t *testing.T) {
	small, digits, err := LoadFonts()
	require.NoError(t, err)
	f := rgb444.NewFrame(320, 240)

	tests := []struct {
		name    string
		screen  Screen
		wantErr string
	}{
		{"defaults", Screen{}, ""},
		{"loudest", Screen{VolumeDB: MaxVolumeDB, BalanceDB: -MaxBalanceDB}, ""},
		{"negative volume", Screen{VolumeDB: -1}, "demo: volume -1 dB outside 0..63"},
		{"volume too high", Screen{VolumeDB: 64}, "demo: volume 64 dB outside 0..63"},
		{"balance", Screen{BalanceDB: 6}, "demo: balance 6 dB outside ±5"},
		{"wide label", Screen{Inputs: []string{strings.Repeat("W", 40)}}, "demo: input label"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.screen.Validate(f, small, digits)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
