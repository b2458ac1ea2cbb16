// Package rgb444 provides a 12-bit RGB image format for the ST7789 display controller.
//
// In 12 bit/pixel interface mode (COLMOD 0x03) the ST7789 expects three 4-bit channels per
// pixel. Two pixels share exactly three bytes on the wire, so a whole frame is kept in that
// packed layout and streamed without conversion.
//
// Memory layout example for a 2-pixel pair:
//
//	Pixels: p0      p1
//	Colors: 0x123   0xABC
//	Bytes:  0x12 0x3A 0xBC
//	        (byte 0 = R0 G0, byte 1 = B0 R1, byte 2 = G1 B1)
//
// The middle byte holds half of each pixel, so every write preserves the nibble belonging
// to the neighbor.
//
// This package provides:
//
// - Color: a 12-bit color value 0xRGB
// - Model: a color model converting standard Go colors to Color
// - Frame: a draw.Image backed by the packed byte layout
//
// Example usage:
//
//	// Create a 320x240 frame
//	f := rgb444.NewFrame(320, 240)
//
//	// Paint it black, then set a red pixel
//	f.Fill(rgb444.Black)
//	f.SetRGB444(10, 20, 0xF00)
//
//	// Use with standard Go image operations
//	draw.Draw(f, f.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
package rgb444
