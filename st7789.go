package st7789

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/ampliui/st7789/rgb444"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Command set used by this driver (ST7789 datasheet, section 9).
const (
	cmdSLPIN     = 0x10 // Sleep in
	cmdSLPOUT    = 0x11 // Sleep out
	cmdINVOFF    = 0x20 // Display inversion off
	cmdINVON     = 0x21 // Display inversion on
	cmdDISPOFF   = 0x28 // Display off
	cmdDISPON    = 0x29 // Display on
	cmdCASET     = 0x2A // Column address set
	cmdRASET     = 0x2B // Row address set
	cmdRAMWR     = 0x2C // Memory write
	cmdMADCTL    = 0x36 // Memory data access control
	cmdCOLMOD    = 0x3A // Interface pixel format
	cmdPORCTRL   = 0xB2 // Porch setting
	cmdGCTRL     = 0xB7 // Gate control
	cmdVCOMS     = 0xBB // VCOM setting
	cmdLCMCTRL   = 0xC0 // LCM control
	cmdVDVVRH    = 0xC2 // VDV and VRH command enable
	cmdVRHS      = 0xC3 // VRH set
	cmdVDVS      = 0xC4 // VDV set
	cmdFRCTRL2   = 0xC6 // Frame rate control in normal mode
	cmdPWCTRL1   = 0xD0 // Power control 1
	cmdPVGAMCTRL = 0xE0 // Positive voltage gamma control
	cmdNVGAMCTRL = 0xE1 // Negative voltage gamma control
)

const (
	colmod12Bit     = 0x03
	madctlLandscape = 0xA0

	// backlightHz is high enough to stay out of the audio band.
	backlightHz = 20 * physic.KiloHertz

	resetDelay = 200 * time.Millisecond
)

// DefaultBacklight is 57/256 of full brightness.
const DefaultBacklight = gpio.Duty(57 * gpio.DutyMax / 256)

var sleep = time.Sleep

// Opts is the configuration for the ST7789 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 320, must be even and ≤320)
	H int // Height (default: 240, must be ≤240 in landscape)

	// SPI clock (default: 20MHz)
	Hz physic.Frequency

	// Optional pins
	RST gpio.PinOut // Reset pin, nil if not used
	BL  gpio.PinOut // Backlight pin driven with PWM, nil if not used

	// Initial backlight duty (default: DefaultBacklight)
	Backlight gpio.Duty
}

// Dev is the device handle for the ST7789 display.
type Dev struct {
	// Communication
	c     conn.Conn   // SPI connection
	dc    gpio.PinOut // Data/Command pin
	rst   gpio.PinOut // Reset pin (optional)
	bl    gpio.PinOut // Backlight pin (optional)
	maxTx int         // Largest single transfer, 0 if unlimited

	rect image.Rectangle

	// Pixel buffers
	buffer []byte        // Last frame sent to the panel
	next   *rgb444.Frame // For lazy double buffering

	// State
	halted bool
}

var _ display.Drawer = (*Dev)(nil)

// NewSPI creates a new ST7789 device connected via SPI.
//
// The SPI port is configured in Mode3 (CPOL=1, CPHA=1) with 8-bit transfers.
// The dc (Data/Command) GPIO pin must be provided.
//
// opts can be nil to use defaults (320x240 display).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.W == 0 && o.H == 0 {
		o.W, o.H = 320, 240
	}
	if o.Hz == 0 {
		o.Hz = 20 * physic.MegaHertz
	}
	if o.Backlight == 0 {
		o.Backlight = DefaultBacklight
	}

	if o.W <= 0 || o.W%2 != 0 || o.W > 320 {
		return nil, errors.New("st7789: width must be even and between 2 and 320")
	}
	if o.H <= 0 || o.H > 240 {
		return nil, errors.New("st7789: height must be between 1 and 240")
	}
	if dc == nil {
		return nil, errors.New("st7789: dc pin is required")
	}

	c, err := p.Connect(o.Hz, spi.Mode3, 8)
	if err != nil {
		return nil, fmt.Errorf("st7789: %w", err)
	}

	d := &Dev{
		c:      c,
		dc:     dc,
		rst:    o.RST,
		bl:     o.BL,
		rect:   image.Rect(0, 0, o.W, o.H),
		buffer: make([]byte, o.W*o.H*3/2),
	}
	if l, ok := c.(conn.Limits); ok {
		d.maxTx = l.MaxTxSize()
	}

	if err := d.init(o.Backlight); err != nil {
		return nil, err
	}
	return d, nil
}

// init resets the controller and sends the register initialization sequence.
func (d *Dev) init(backlight gpio.Duty) error {
	if d.rst != nil {
		sleep(resetDelay)
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("st7789: failed to pull RST low: %w", err)
		}
		sleep(resetDelay)
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("st7789: failed to pull RST high: %w", err)
		}
		sleep(resetDelay)
	}

	seq := []struct {
		cmd  byte
		data []byte
	}{
		{cmdMADCTL, []byte{madctlLandscape}},
		{cmdCOLMOD, []byte{colmod12Bit}},
		{cmdINVON, nil},
		{cmdCASET, []byte{0x00, 0x00, byte((d.rect.Dx() - 1) >> 8), byte(d.rect.Dx() - 1)}},
		{cmdRASET, []byte{0x00, 0x00, byte((d.rect.Dy() - 1) >> 8), byte(d.rect.Dy() - 1)}},
		{cmdPORCTRL, []byte{0x0C, 0x0C, 0x00, 0x33, 0x33}},
		{cmdGCTRL, []byte{0x35}},
		{cmdVCOMS, []byte{0x1F}},
		{cmdLCMCTRL, []byte{0x2C}},
		{cmdVDVVRH, []byte{0x01}},
		{cmdVRHS, []byte{0x12}},
		{cmdVDVS, []byte{0x20}},
		{cmdFRCTRL2, []byte{0x0F}}, // 60Hz
		{cmdPWCTRL1, []byte{0xA4, 0xA1}},
		{cmdPVGAMCTRL, []byte{0xD0, 0x08, 0x11, 0x08, 0x0C, 0x15, 0x39, 0x33, 0x50, 0x36, 0x13, 0x14, 0x29, 0x2D}},
		{cmdNVGAMCTRL, []byte{0xD0, 0x08, 0x10, 0x08, 0x06, 0x06, 0x39, 0x44, 0x51, 0x0B, 0x16, 0x14, 0x2F, 0x31}},
		{cmdINVON, nil},
		{cmdSLPOUT, nil},
		{cmdDISPON, nil},
	}
	for _, s := range seq {
		if err := d.sendCommand(s.cmd, s.data...); err != nil {
			return err
		}
	}

	if d.bl != nil {
		return d.bl.PWM(backlight, backlightHz)
	}
	return nil
}

// sendCommand sends a command byte followed by its parameters.
func (d *Dev) sendCommand(cmd byte, params ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	return d.sendData(params)
}

// sendData sends data bytes, split in chunks the connection accepts.
func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		n := len(data)
		if d.maxTx > 0 && n > d.maxTx {
			n = d.maxTx
		}
		if err := d.c.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// writeRect writes packed pixel data to a rectangular region of the display.
// x and width must be even.
func (d *Dev) writeRect(x, y, width, height int, pixels []byte) error {
	xEnd := x + width - 1
	yEnd := y + height - 1
	if err := d.sendCommand(cmdCASET, byte(x>>8), byte(x), byte(xEnd>>8), byte(xEnd)); err != nil {
		return err
	}
	if err := d.sendCommand(cmdRASET, byte(y>>8), byte(y), byte(yEnd>>8), byte(yEnd)); err != nil {
		return err
	}
	if err := d.sendCommand(cmdRAMWR); err != nil {
		return err
	}
	return d.sendData(pixels)
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return rgb444.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Blit sends the whole frame to the display.
func (d *Dev) Blit(f *rgb444.Frame) error {
	if f.Bounds() != d.rect {
		return errors.New("st7789: frame size mismatch")
	}
	_, err := d.Write(f.Pix)
	return err
}

// Write writes raw pixel data to the display in rgb444 packed format.
// The data must be exactly W * H * 3 / 2 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("st7789: halted")
	}
	if len(pixels) != len(d.buffer) {
		return 0, errors.New("st7789: invalid buffer size")
	}
	if err := d.writeRect(0, 0, d.rect.Dx(), d.rect.Dy(), pixels); err != nil {
		return 0, err
	}
	copy(d.buffer, pixels)
	return len(pixels), nil
}

// Draw draws an image onto the display and only sends the rows and pixel-pair
// columns that changed since the last update.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("st7789: halted")
	}

	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	if d.next == nil {
		d.next = rgb444.NewFrame(d.rect.Dx(), d.rect.Dy())
	}
	copy(d.next.Pix, d.buffer)

	// Fast path: a full rgb444 frame needs no conversion
	if f, ok := src.(*rgb444.Frame); ok && dst == d.rect && sp == (image.Point{}) && f.Bounds() == d.rect {
		copy(d.next.Pix, f.Pix)
	} else {
		draw.Draw(d.next, dst, src, sp, draw.Src)
	}

	minCol, maxCol, minRow, maxRow := d.calculateDiff()
	if minCol > maxCol {
		return nil
	}

	changed := d.extractRegion(minCol, maxCol, minRow, maxRow)
	if err := d.writeRect(minCol, minRow, maxCol-minCol+1, maxRow-minRow+1, changed); err != nil {
		return err
	}

	copy(d.buffer, d.next.Pix)
	return nil
}

// calculateDiff compares the sent and next buffers to find the minimal changed
// region, aligned to pixel pairs. Returns (minCol, maxCol, minRow, maxRow) with
// minCol > maxCol if nothing changed.
func (d *Dev) calculateDiff() (minCol, maxCol, minRow, maxRow int) {
	width := d.rect.Dx()
	height := d.rect.Dy()
	stride := width * 3 / 2

	minRow, maxRow = height, -1
	minCol, maxCol = width, -1

	for y := 0; y < height; y++ {
		rowStart := y * stride
		rowEnd := rowStart + stride
		if bytes.Equal(d.buffer[rowStart:rowEnd], d.next.Pix[rowStart:rowEnd]) {
			continue
		}
		minRow = min(minRow, y)
		maxRow = max(maxRow, y)

		// Each group of 3 bytes is one pixel pair
		for pair := 0; pair < width/2; pair++ {
			i := rowStart + pair*3
			if !bytes.Equal(d.buffer[i:i+3], d.next.Pix[i:i+3]) {
				minCol = min(minCol, pair*2)
				maxCol = max(maxCol, pair*2+1)
			}
		}
	}
	return
}

// extractRegion extracts the packed bytes of a pair-aligned rectangular region.
func (d *Dev) extractRegion(minCol, maxCol, minRow, maxRow int) []byte {
	stride := d.rect.Dx() * 3 / 2
	byteWidth := (maxCol - minCol + 1) * 3 / 2

	result := make([]byte, 0, byteWidth*(maxRow-minRow+1))
	for y := minRow; y <= maxRow; y++ {
		start := y*stride + minCol*3/2
		result = append(result, d.next.Pix[start:start+byteWidth]...)
	}
	return result
}

// SetBacklight sets the backlight PWM duty cycle.
func (d *Dev) SetBacklight(duty gpio.Duty) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	if d.bl == nil {
		return errors.New("st7789: no backlight pin")
	}
	return d.bl.PWM(duty, backlightHz)
}

// Invert inverts the display colors (black becomes white and vice versa).
// The panel itself needs inversion on for normal colors, so this toggles it off.
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	mode := byte(cmdINVON)
	if invert {
		mode = cmdINVOFF
	}
	return d.sendCommand(mode)
}

// Halt turns the display off and puts the controller to sleep.
// After calling Halt, the display will not respond to further commands
// until the device is re-initialized.
func (d *Dev) Halt() error {
	d.halted = true
	if err := d.sendCommand(cmdDISPOFF); err != nil {
		return err
	}
	return d.sendCommand(cmdSLPIN)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("st7789.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
