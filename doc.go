// Package st7789 controls a ST7789 TFT display via SPI in 12 bit/pixel mode.
//
// The ST7789 is a 262K color TFT controller supporting up to 240×320 pixels.
// This driver runs it in landscape orientation (320×240) with the RGB444
// interface format, where two pixels travel in three bytes. It implements the
// display.Drawer interface from periph.io.
//
// # Display Characteristics
//
// - 12-bit color, 16 levels per channel
// - Landscape memory access (MADCTL 0xA0)
// - Backlight driven by PWM from an optional GPIO
// - Display inversion
//
// # Hardware Connection
//
// Connect the ST7789 panel to your system via SPI:
//
//	Panel Pin   → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL/CLK     → SPI Clock (SCLK)
//	SDA/MOSI    → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select (or GND if always selected)
//	RES         → Optional: GPIO for hardware reset
//	BLK         → Optional: PWM capable GPIO for the backlight
//
// # Basic Usage
//
//	package main
//
//	import (
//		"github.com/ampliui/st7789"
//		"github.com/ampliui/st7789/rgb444"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		spiBus, _ := spireg.Open("")
//		dcPin := gpioreg.ByName("GPIO25")
//
//		dev, _ := st7789.NewSPI(spiBus, dcPin, &st7789.Opts{
//			BL: gpioreg.ByName("GPIO18"),
//		})
//		defer dev.Halt()
//
//		f := rgb444.NewFrame(320, 240)
//		f.Fill(rgb444.Black)
//		f.FillRect(10, 10, 100, 50, 0xF00)
//
//		dev.Blit(f)
//	}
//
// # Drawing Modes
//
// ## Full-Frame Update
//
// Blit and Write send the whole packed frame, W*H*3/2 bytes. Transfers are
// split to honor the SPI port's maximum transaction size.
//
// ## Differential Updates
//
// Draw converts any image.Image to RGB444 and only sends the bounding
// rectangle of the pixel pairs that changed since the previous update.
//
// # Drawing Content
//
// Package rgb444 holds the frame format, package gfx draws text, icons and
// anti-aliased rounded rectangles on it, and package bitmapfont decodes the
// 4 bit/pixel fonts gfx uses. Package lcdsim simulates the panel on the host.
//
// # Datasheet
//
// https://www.rhydolabz.com/documents/33/ST7789.pdf
package st7789
