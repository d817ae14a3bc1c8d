package vgasplash

import (
	"fmt"
	"image"
	"sort"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Filter is the resampling kernel used to resize images.
type Filter int

// Supported filters. Lanczos3 is the default.
const (
	Lanczos3 Filter = iota
	Lanczos2
	Bicubic
	MitchellNetravali
	Bilinear
	NearestNeighbor
	CatmullRom
)

var filterNames = map[Filter]string{
	Lanczos3:          "lanczos3",
	Lanczos2:          "lanczos2",
	Bicubic:           "bicubic",
	MitchellNetravali: "mitchell",
	Bilinear:          "bilinear",
	NearestNeighbor:   "nearest",
	CatmullRom:        "catmullrom",
}

var interpolation = map[Filter]resize.InterpolationFunction{
	Lanczos3:          resize.Lanczos3,
	Lanczos2:          resize.Lanczos2,
	Bicubic:           resize.Bicubic,
	MitchellNetravali: resize.MitchellNetravali,
	Bilinear:          resize.Bilinear,
	NearestNeighbor:   resize.NearestNeighbor,
}

// FilterNames returns the names accepted by ParseFilter, sorted.
func FilterNames() []string {
	names := make([]string, 0, len(filterNames))
	for _, n := range filterNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseFilter returns the Filter with the given name.
func ParseFilter(s string) (Filter, error) {
	for f, n := range filterNames {
		if n == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

func (f Filter) String() string {
	if n, ok := filterNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// Scale resizes m to w by h pixels. An image already of that size is
// returned unchanged.
func (f Filter) Scale(m image.Image, w, h int) image.Image {
	b := m.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return m
	}

	if f == CatmullRom {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), m, b, xdraw.Src, nil)
		return dst
	}

	interp, ok := interpolation[f]
	if !ok {
		interp = resize.Lanczos3
	}

	return resize.Resize(uint(w), uint(h), m, interp)
}
