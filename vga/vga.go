/*
Package vga implements a decoder and encoder for the raw splash screen format
used by VGA mode 13h boot routines.

The format is defined as 320 by 200 pixels exactly with up to 256 colors. It
is stored as two separate files with no header or compression. The image file
is 64000 bytes of pixel information; an 8-bit palette index for each pixel in
row-major order, top to bottom and left to right. The palette file is 768
bytes; 256 colors, each stored as three consecutive red, green and blue bytes.
Unused trailing colors are written as zero.
*/
package vga

const (
	// Width is the width in pixels of a splash image
	Width = 320
	// Height is the height in pixels of a splash image
	Height = 200
	// MaxColors is the number of entries in the palette
	MaxColors = 256

	// ImageSize is the size in bytes of the image file
	ImageSize = Width * Height
	// PaletteSize is the size in bytes of the palette file
	PaletteSize = MaxColors * 3

	dac6Max = 0x3f
)

// Options control how images are encoded and decoded. A nil *Options is
// equivalent to the zero value.
type Options struct {
	// Dither enables Floyd-Steinberg error diffusion when the image has to
	// be quantized
	Dither bool
	// DAC6 stores each palette component as a 6-bit value as expected by
	// the VGA DAC rather than the full 8-bit value
	DAC6 bool
}
