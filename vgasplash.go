/*
Package vgasplash is a library for converting images into the raw palette and
pixel files displayed by a VGA mode 13h boot splash routine.
*/
package vgasplash

import (
	"fmt"
	"log"
)

const (
	// ImageFilename is the filename used for the pixel data
	ImageFilename = "splash.img"
	// PaletteFilename is the filename used for the palette
	PaletteFilename = "splash.pal"
)

// InputError is returned when the input image is missing, unreadable or
// cannot be decoded.
type InputError struct {
	File string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Converter turns images into splash files, optionally consulting a cache of
// previous conversions.
type Converter struct {
	cache  *Cache
	logger *log.Logger
}

// New returns a Converter. The cache may be nil.
func New(cache *Cache, logger *log.Logger) *Converter {
	return &Converter{
		cache:  cache,
		logger: logger,
	}
}
