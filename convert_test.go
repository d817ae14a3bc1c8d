package vgasplash

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/vgasplash/vga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir string, m image.Image) string {
	t.Helper()
	file := filepath.Join(dir, "input.png")
	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
	return file
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, c)
		}
	}
	return m
}

func noisyImage(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, color.NRGBA{byte(x * 7), byte(y * 13), byte(x*y + y), 0xff})
		}
	}
	return m
}

func newConverter(cache *Cache) *Converter {
	return New(cache, log.New(ioutil.Discard, "", 0))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	files, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name())
	}
	return names
}

func TestConvertSolid(t *testing.T) {
	dir := t.TempDir()
	file := writePNG(t, dir, solidImage(vga.Width, vga.Height, color.NRGBA{0xaa, 0x33, 0x01, 0xff}))

	s, err := newConverter(nil).Convert(file, nil)
	require.NoError(t, err)

	assert.Equal(t, []byte{0xaa, 0x33, 0x01}, s.Palette[:3])
	assert.Equal(t, make([]byte, vga.PaletteSize-3), s.Palette[3:])
	assert.Equal(t, make([]byte, vga.ImageSize), s.Image)
}

func TestConvertSizes(t *testing.T) {
	tables := map[string]struct {
		m image.Image
		o *Options
	}{
		"small":        {noisyImage(17, 9), nil},
		"large":        {noisyImage(1024, 768), nil},
		"exact":        {noisyImage(vga.Width, vga.Height), nil},
		"catmullrom":   {noisyImage(640, 400), &Options{Filter: CatmullRom}},
		"dither dac6":  {noisyImage(800, 600), &Options{Options: vga.Options{Dither: true, DAC6: true}}},
		"transparency": {image.NewNRGBA(image.Rect(0, 0, 100, 100)), nil},
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			file := writePNG(t, dir, table.m)

			s, err := newConverter(nil).Convert(file, table.o)
			require.NoError(t, err)

			out := t.TempDir()
			require.NoError(t, s.WriteFiles(out))

			img, err := ioutil.ReadFile(filepath.Join(out, ImageFilename))
			require.NoError(t, err)
			assert.Len(t, img, vga.ImageSize)

			pal, err := ioutil.ReadFile(filepath.Join(out, PaletteFilename))
			require.NoError(t, err)
			assert.Len(t, pal, vga.PaletteSize)

			assert.ElementsMatch(t, []string{ImageFilename, PaletteFilename}, listDir(t, out))
		})
	}
}

func TestConvertTransparentIsBlack(t *testing.T) {
	dir := t.TempDir()
	file := writePNG(t, dir, image.NewNRGBA(image.Rect(0, 0, vga.Width, vga.Height)))

	s, err := newConverter(nil).Convert(file, nil)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, vga.PaletteSize), s.Palette)
}

func TestConvertInputErrors(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, ioutil.WriteFile(garbage, []byte("definitely not an image"), 0644))

	for _, file := range []string{
		filepath.Join(dir, "missing.png"),
		garbage,
		dir,
	} {
		_, err := newConverter(nil).Convert(file, nil)
		require.Error(t, err)

		var ie *InputError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, file, ie.File)
	}

	_, err := newConverter(nil).Convert(filepath.Join(dir, "missing.png"), nil)
	assert.True(t, os.IsNotExist(errors.Unwrap(err)))

	assert.ElementsMatch(t, []string{"garbage.png"}, listDir(t, dir))
}

func TestConvertCache(t *testing.T) {
	dir := t.TempDir()

	cache, err := NewCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	file := writePNG(t, dir, noisyImage(64, 64))
	c := newConverter(cache)

	s1, err := c.Convert(file, nil)
	require.NoError(t, err)

	b, err := ioutil.ReadFile(file)
	require.NoError(t, err)

	// Poison the cache entry, so a hit is distinguishable from a conversion
	sha := sha1Hex(b)
	poisoned := &Splash{
		Image:   bytes.Repeat([]byte{0x07}, vga.ImageSize),
		Palette: s1.Palette,
	}
	require.NoError(t, cache.Put(sha, (&Options{}).fingerprint(), poisoned))

	s2, err := c.Convert(file, nil)
	require.NoError(t, err)
	assert.Equal(t, poisoned, s2)

	// Different options miss the cache
	s3, err := c.Convert(file, &Options{Filter: Bilinear})
	require.NoError(t, err)
	assert.NotEqual(t, poisoned.Image, s3.Image)
}

func TestWriteFilesInvalid(t *testing.T) {
	dir := t.TempDir()

	s := &Splash{Image: make([]byte, vga.ImageSize-1), Palette: make([]byte, vga.PaletteSize)}
	assert.Error(t, s.WriteFiles(dir))
	assert.Empty(t, listDir(t, dir))

	s = &Splash{Image: make([]byte, vga.ImageSize), Palette: make([]byte, vga.PaletteSize)}
	assert.Error(t, s.WriteFiles(filepath.Join(dir, "missing")))
	assert.Empty(t, listDir(t, dir))
}

func TestWriteFilesReplaces(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, ImageFilename), []byte("old"), 0644))

	s := &Splash{Image: bytes.Repeat([]byte{3}, vga.ImageSize), Palette: make([]byte, vga.PaletteSize)}
	require.NoError(t, s.WriteFiles(dir))

	b, err := ioutil.ReadFile(filepath.Join(dir, ImageFilename))
	require.NoError(t, err)
	assert.Equal(t, s.Image, b)
	assert.ElementsMatch(t, []string{ImageFilename, PaletteFilename}, listDir(t, dir))
}

// A GIF with a single 0x0 frame and a two color global palette
var emptyGIF = []byte{
	'G', 'I', 'F', '8', '9', 'a',
	0x00, 0x00, 0x00, 0x00, 0x80, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0xff, 0xff,
	0x2c, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x01, 0x2c, 0x00,
	0x3b,
}

func TestConvertEmptyImage(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "empty.gif")
	require.NoError(t, ioutil.WriteFile(file, emptyGIF, 0644))

	_, err := newConverter(nil).Convert(file, nil)
	require.Error(t, err)

	var ie *InputError
	require.True(t, errors.As(err, &ie), err)
	assert.Equal(t, file, ie.File)
}

func TestWriteFilesRenameFailure(t *testing.T) {
	dir := t.TempDir()

	// A directory in the way of the palette stops the rename
	require.NoError(t, os.Mkdir(filepath.Join(dir, PaletteFilename), 0755))

	s := &Splash{Image: make([]byte, vga.ImageSize), Palette: make([]byte, vga.PaletteSize)}
	assert.Error(t, s.WriteFiles(dir))

	// The image is never renamed into place and no temporaries remain
	assert.Equal(t, []string{PaletteFilename}, listDir(t, dir))
}
