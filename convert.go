package vgasplash

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/bodgit/vgasplash/vga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errEmptyImage = errors.New("image has no pixels")

// Options control the conversion.
type Options struct {
	// Filter is the resampling kernel used to resize the image
	Filter Filter
	vga.Options
}

func (o *Options) fingerprint() string {
	return fmt.Sprintf("filter=%s,dither=%t,dac6=%t", o.Filter, o.Dither, o.DAC6)
}

// Splash is the pixel data and palette of a converted image, exactly
// vga.ImageSize and vga.PaletteSize bytes respectively.
type Splash struct {
	Image   []byte
	Palette []byte
}

func (s *Splash) valid() bool {
	return len(s.Image) == vga.ImageSize && len(s.Palette) == vga.PaletteSize
}

func sha1Hex(b []byte) string {
	return fmt.Sprintf("%X", sha1.Sum(b))
}

// Draw the image onto an opaque black background
func flatten(m image.Image) *image.RGBA {
	b := m.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Over)
	return dst
}

// Convert reads the image in file and returns it resized to vga.Width by
// vga.Height pixels and reduced to at most vga.MaxColors colors. Any problem
// with the input is returned as an *InputError. Nothing is written to disk.
func (c *Converter) Convert(file string, o *Options) (*Splash, error) {
	if o == nil {
		o = &Options{}
	}

	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, &InputError{File: file, Err: err}
	}
	sha := sha1Hex(b)

	if c.cache != nil {
		s, err := c.cache.Get(sha, o.fingerprint())
		if err != nil {
			return nil, err
		}
		if s != nil {
			c.logger.Printf("Using cached conversion of \"%s\", with SHA1 \"%s\"\n", file, sha)
			return s, nil
		}
	}

	m, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, &InputError{File: file, Err: err}
	}
	if m.Bounds().Empty() {
		return nil, &InputError{File: file, Err: errEmptyImage}
	}
	c.logger.Printf("Decoded \"%s\" as %s, %dx%d\n", file, format, m.Bounds().Dx(), m.Bounds().Dy())

	m = flatten(o.Filter.Scale(m, vga.Width, vga.Height))
	c.logger.Printf("Resized to %dx%d using %s\n", vga.Width, vga.Height, o.Filter)

	img, pal := new(bytes.Buffer), new(bytes.Buffer)
	if err := vga.Encode(img, pal, m, &o.Options); err != nil {
		return nil, err
	}

	s := &Splash{
		Image:   img.Bytes(),
		Palette: pal.Bytes(),
	}

	if c.cache != nil {
		if err := c.cache.Put(sha, o.fingerprint(), s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// WriteFiles writes the splash into dir as ImageFilename and PaletteFilename.
// Both files are written to temporary files first and only renamed into
// place once both are complete, so neither file is ever truncated. The
// palette is renamed first; if that fails no existing file is touched. The
// two renames are not atomic as a pair, so a failure renaming the image
// leaves the new palette next to the old image.
func (s *Splash) WriteFiles(dir string) error {
	if !s.valid() {
		return errors.New("invalid splash size")
	}

	files := []struct {
		name string
		b    []byte
	}{
		{PaletteFilename, s.Palette},
		{ImageFilename, s.Image},
	}

	var tmp []string
	defer func() {
		// Anything already renamed no longer exists
		for _, t := range tmp {
			os.Remove(t)
		}
	}()

	for _, file := range files {
		f, err := ioutil.TempFile(dir, "."+file.name+".*")
		if err != nil {
			return err
		}
		tmp = append(tmp, f.Name())

		if err := f.Chmod(0644); err != nil {
			f.Close()
			return err
		}

		if _, err := f.Write(file.b); err != nil {
			f.Close()
			return err
		}

		if err := f.Sync(); err != nil {
			f.Close()
			return err
		}

		if err := f.Close(); err != nil {
			return err
		}
	}

	for i, file := range files {
		if err := os.Rename(tmp[i], filepath.Join(dir, file.name)); err != nil {
			return err
		}
	}

	return nil
}
