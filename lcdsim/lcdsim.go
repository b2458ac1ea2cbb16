// Package lcdsim simulates a ST7789 panel on the host.
//
// Panel plays the role of both the SPI port and the controller: it decodes the
// command stream a driver sends (column/row address set and memory write in
// 12 bit/pixel mode) and paints the result into an image.RGBA. Other commands
// are recorded but have no visual effect.
package lcdsim

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	cmdCASET = 0x2A
	cmdRASET = 0x2B
	cmdRAMWR = 0x2C
)

// Panel is a simulated ST7789 behind a SPI port.
type Panel struct {
	// MaxTx, when non-zero, is reported through conn.Limits so drivers split
	// their transfers.
	MaxTx int

	mu  sync.Mutex
	dc  gpiotest.Pin
	img *image.RGBA

	// Connection settings requested by the driver
	hz   physic.Frequency
	mode spi.Mode

	// Controller state
	cmd      int // -1 until the first command byte
	args     []byte
	commands []byte

	x0, x1, y0, y1 int // Window, end exclusive
	curX, curY     int
	pixels         int
}

var (
	_ spi.Port    = (*Panel)(nil)
	_ spi.Conn    = (*Panel)(nil)
	_ conn.Limits = (*Panel)(nil)
)

// New returns a panel of w x h pixels, initially white like an unlit LCD.
func New(w, h int) *Panel {
	p := &Panel{
		dc:  gpiotest.Pin{N: "DC", Num: -1},
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		cmd: -1,
		x1:  w,
		y1:  h,
	}
	for i := range p.img.Pix {
		p.img.Pix[i] = 0xFF
	}
	return p
}

// DC returns the Data/Command pin to hand to the driver.
func (p *Panel) DC() *gpiotest.Pin {
	return &p.dc
}

// String implements conn.Resource.
func (p *Panel) String() string {
	b := p.img.Bounds()
	return fmt.Sprintf("lcdsim.Panel{%dx%d}", b.Dx(), b.Dy())
}

// Connect implements spi.Port.
func (p *Panel) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits != 8 {
		return nil, errors.New("lcdsim: only 8 bit words are supported")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hz = f
	p.mode = mode
	return p, nil
}

// LimitSpeed implements spi.Port.
func (p *Panel) LimitSpeed(f physic.Frequency) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hz == 0 || f < p.hz {
		p.hz = f
	}
	return nil
}

// Duplex implements conn.Conn.
func (p *Panel) Duplex() conn.Duplex {
	return conn.Half
}

// MaxTxSize implements conn.Limits.
func (p *Panel) MaxTxSize() int {
	return p.MaxTx
}

// Tx implements conn.Conn. Reads are not supported.
func (p *Panel) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("lcdsim: reads are not supported")
	}
	if p.MaxTx > 0 && len(w) > p.MaxTx {
		return fmt.Errorf("lcdsim: transfer of %d bytes exceeds %d", len(w), p.MaxTx)
	}
	isData := p.dc.Read() == gpio.High
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range w {
		if isData {
			p.data(b)
		} else {
			p.command(b)
		}
	}
	return nil
}

// TxPackets implements spi.Conn.
func (p *Panel) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if err := p.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

// Settings returns the clock and mode the driver connected with.
func (p *Panel) Settings() (physic.Frequency, spi.Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hz, p.mode
}

// Commands returns every command byte received so far.
func (p *Panel) Commands() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.commands...)
}

// Pixels returns the number of pixels written through memory writes.
func (p *Panel) Pixels() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pixels
}

// Image returns a copy of the panel content.
func (p *Panel) Image() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	dup := *p.img
	dup.Pix = append([]byte(nil), p.img.Pix...)
	return &dup
}

func (p *Panel) command(b byte) {
	p.cmd = int(b)
	p.args = p.args[:0]
	p.commands = append(p.commands, b)
}

func (p *Panel) data(b byte) {
	if p.cmd < 0 {
		return
	}
	p.args = append(p.args, b)
	switch p.cmd {
	case cmdCASET:
		if len(p.args) == 4 {
			p.x0, p.x1 = window(p.args)
			p.curX = p.x0
		}
	case cmdRASET:
		if len(p.args) == 4 {
			p.y0, p.y1 = window(p.args)
			p.curY = p.y0
		}
	case cmdRAMWR:
		if len(p.args) == 3 {
			a := p.args
			p.plot(uint16(a[0])<<4 | uint16(a[1])>>4)
			p.plot(uint16(a[1]&0x0F)<<8 | uint16(a[2]))
			p.args = p.args[:0]
		}
	}
}

// window decodes big-endian start and inclusive end addresses.
func window(a []byte) (start, end int) {
	return int(a[0])<<8 | int(a[1]), (int(a[2])<<8 | int(a[3])) + 1
}

// plot writes one pixel at the cursor and advances it, wrapping at the window edge.
func (p *Panel) plot(c uint16) {
	if p.curY >= p.y1 {
		return
	}
	p.img.SetRGBA(p.curX, p.curY, toRGBA(c))
	p.pixels++
	p.curX++
	if p.curX >= p.x1 {
		p.curX = p.x0
		p.curY++
	}
}

// toRGBA expands a 12-bit color the way the panel's DAC does: full scale
// maps to 0xFF, everything else is a plain shift.
func toRGBA(c uint16) color.RGBA {
	expand := func(v uint16) uint8 {
		v &= 0x0F
		if v == 0x0F {
			return 0xFF
		}
		return uint8(v << 4)
	}
	return color.RGBA{R: expand(c >> 8), G: expand(c >> 4), B: expand(c), A: 0xFF}
}
