package vga

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

var errWrongSize = errors.New("vga: image is wrong size")

type encoder struct {
	w  io.Writer
	pw io.Writer
	o  Options
}

// Return the unique colors of an image in the order they are first seen, or
// false if there are more than MaxColors of them
func uniqueColors(m image.Image) (color.Palette, bool) {
	b := m.Bounds()
	seen := make(map[color.RGBA]struct{})
	p := make(color.Palette, 0, MaxColors)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(m.At(x, y)).(color.RGBA)
			if _, ok := seen[c]; ok {
				continue
			}
			if len(p) == MaxColors {
				return nil, false
			}
			seen[c] = struct{}{}
			p = append(p, c)
		}
	}
	return p, true
}

func paletted(m image.Image, o Options) *image.Paletted {
	if pm, ok := m.(*image.Paletted); ok && len(pm.Palette) > 0 && len(pm.Palette) <= MaxColors {
		return pm
	}

	b := m.Bounds()

	// Few enough colors that every pixel can be stored exactly
	if p, ok := uniqueColors(m); ok {
		pm := image.NewPaletted(b, p)
		draw.Draw(pm, b, m, b.Min, draw.Src)
		return pm
	}

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, MaxColors), m))
	if o.Dither {
		draw.FloydSteinberg.Draw(pm, b, m, b.Min)
	} else {
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}
	return pm
}

func (e *encoder) component(v uint32) byte {
	if e.o.DAC6 {
		return byte(v >> 10)
	}
	return byte(v >> 8)
}

func (e *encoder) encode(m *image.Paletted) error {
	// Write out pixel information, one row at a time
	var pixels [ImageSize]byte
	for y := 0; y < Height; y++ {
		i := m.PixOffset(m.Rect.Min.X, m.Rect.Min.Y+y)
		copy(pixels[y*Width:(y+1)*Width], m.Pix[i:i+Width])
	}

	if _, err := e.w.Write(pixels[:]); err != nil {
		return err
	}

	// Write out the palette, anything past the last color stays zero
	var palette [PaletteSize]byte
	for i, c := range m.Palette {
		r, g, b, _ := c.RGBA()

		palette[i*3+0] = e.component(r)
		palette[i*3+1] = e.component(g)
		palette[i*3+2] = e.component(b)
	}

	if _, err := e.pw.Write(palette[:]); err != nil {
		return err
	}

	return nil
}

// Encode writes the Image m to w and its palette to pw in VGA splash format.
// The image must be exactly Width by Height pixels. Unless m is already a
// paletted image it is reduced to no more than MaxColors colors.
func Encode(w, pw io.Writer, m image.Image, o *Options) error {
	b := m.Bounds()
	if b.Dx() != Width || b.Dy() != Height {
		return errWrongSize
	}

	e := encoder{w: w, pw: pw}
	if o != nil {
		e.o = *o
	}

	return e.encode(paletted(m, e.o))
}
