package vga

import (
	"errors"
	"image"
	"image/color"
	"io"
)

var (
	errNotEnough  = errors.New("vga: not enough image data")
	errTooMuch    = errors.New("vga: too much image data")
	errBadPalette = errors.New("vga: invalid palette value")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// Expand a 6-bit DAC value to 8 bits, so 0x3f becomes 0xff
func expand6(b byte) byte {
	return b<<2 | b>>4
}

type decoder struct {
	r  io.Reader
	pr io.Reader
	o  Options

	image   *image.Paletted
	palette color.Palette

	// Enough to hold the pixels
	tmp [ImageSize]byte
}

func (d *decoder) readPalette() error {
	var tmp [PaletteSize]byte
	if err := readFull(d.pr, tmp[:]); err != nil {
		return err
	}

	d.palette = make(color.Palette, MaxColors)
	for i := range d.palette {
		c := tmp[i*3 : i*3+3]
		if d.o.DAC6 {
			if c[0] > dac6Max || c[1] > dac6Max || c[2] > dac6Max {
				return errBadPalette
			}
			d.palette[i] = color.RGBA{expand6(c[0]), expand6(c[1]), expand6(c[2]), 0xff}
			continue
		}
		d.palette[i] = color.RGBA{c[0], c[1], c[2], 0xff}
	}

	return nil
}

func atEOF(r io.Reader) error {
	var b [1]byte
	if n, err := r.Read(b[:]); n != 0 || (err != io.EOF && err != io.ErrUnexpectedEOF) {
		if err != nil {
			return err
		}
		return errTooMuch
	}
	return nil
}

func (d *decoder) decodePalette() error {
	if err := d.readPalette(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	return atEOF(d.pr)
}

func (d *decoder) decode(configOnly bool) error {
	if configOnly {
		return d.decodePalette()
	}

	if err := readFull(d.r, d.tmp[:]); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	if err := atEOF(d.r); err != nil {
		return err
	}

	if err := d.decodePalette(); err != nil {
		return err
	}

	d.image = image.NewPaletted(image.Rect(0, 0, Width, Height), d.palette)
	copy(d.image.Pix, d.tmp[:])

	return nil
}

// Decode reads a splash image from r and its palette from pr and returns it
// as an *image.Paletted. The palette always has MaxColors entries.
func Decode(r, pr io.Reader, o *Options) (*image.Paletted, error) {
	d := decoder{r: r, pr: pr}
	if o != nil {
		d.o = *o
	}
	if err := d.decode(false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a splash image by
// reading only its palette from pr.
func DecodeConfig(pr io.Reader, o *Options) (image.Config, error) {
	d := decoder{pr: pr}
	if o != nil {
		d.o = *o
	}
	if err := d.decode(true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: d.palette,
		Width:      Width,
		Height:     Height,
	}, nil
}
