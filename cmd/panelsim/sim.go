package main

import (
	"image"
	"log"

	"github.com/ampliui/st7789"
	"github.com/ampliui/st7789/bitmapfont"
	"github.com/ampliui/st7789/internal/demo"
	"github.com/ampliui/st7789/lcdsim"
	"github.com/ampliui/st7789/rgb444"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

const (
	width  = 320
	height = 240
)

// simulator drives a simulated panel through the real display driver.
type simulator struct {
	panel *lcdsim.Panel
	bl    *gpiotest.Pin
	dev   *st7789.Dev
	frame *rgb444.Frame

	small, digits *bitmapfont.Table

	logger *log.Logger
	sent   int
}

func newSimulator(logger *log.Logger, maxTx int, backlight gpio.Duty) (*simulator, error) {
	small, digits, err := demo.LoadFonts()
	if err != nil {
		return nil, err
	}

	s := &simulator{
		panel:  lcdsim.New(width, height),
		bl:     &gpiotest.Pin{N: "BL", Num: -1},
		frame:  rgb444.NewFrame(width, height),
		small:  small,
		digits: digits,
		logger: logger,
	}
	s.panel.MaxTx = maxTx

	s.dev, err = st7789.NewSPI(s.panel, s.panel.DC(), &st7789.Opts{
		W:         width,
		H:         height,
		BL:        s.bl,
		Backlight: backlight,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("%s on %s, backlight %s", s.dev, s.panel, s.bl.D)

	// The panel powers up white; start from a known black frame.
	if err := s.dev.Blit(s.frame); err != nil {
		return nil, err
	}
	s.sent = s.panel.Pixels()
	return s, nil
}

// show renders screen and sends the changed region to the panel.
func (s *simulator) show(screen *demo.Screen) error {
	screen.Draw(s.frame, s.small, s.digits)
	if err := s.dev.Draw(s.dev.Bounds(), s.frame, image.Point{}); err != nil {
		return err
	}
	n := s.panel.Pixels()
	s.logger.Printf("volume %d dB: %d pixels sent", screen.VolumeDB, n-s.sent)
	s.sent = n
	return nil
}

// validate reports whether screen can be shown in full.
func (s *simulator) validate(screen *demo.Screen) error {
	return screen.Validate(s.frame, s.small, s.digits)
}

// snapshot returns what the panel currently shows.
func (s *simulator) snapshot() *image.RGBA {
	return s.panel.Image()
}

func (s *simulator) close() error {
	return s.dev.Halt()
}

// sweep returns n volumes stepping evenly from `from` to `to`, both included.
func sweep(from, to, n int) []int {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []int{from}
	}
	v := make([]int, n)
	for i := range v {
		v[i] = from + (to-from)*i/(n-1)
	}
	return v
}
