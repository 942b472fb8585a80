// Package bitmap provides the raw image buffer used by the ordered dithering
// engine and the conversions between it and image.Image.
package bitmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/rusq/bayerdither/bayer"
)

var (
	// ErrNotSquare is returned for images whose width differs from height.
	ErrNotSquare = errors.New("image must be square")
	// ErrNotPowerOfTwo is returned for images whose size is not a power of
	// two.
	ErrNotPowerOfTwo = errors.New("image size must be a power of two")
	// ErrTooLarge is returned for images larger than the largest supported
	// Bayer matrix.
	ErrTooLarge = fmt.Errorf("image size must not exceed %d", 1<<bayer.MaxOrder)
	// ErrBuffer is returned when the pixel buffer does not match the
	// dimensions.
	ErrBuffer = errors.New("pixel buffer size mismatch")
)

// Raster is an 8-bit image buffer.  Samples are laid out row-major with the
// channels of a pixel interleaved, sample (x, y, c) is at
// Pix[c + Channels*(x + Width*y)].
type Raster struct {
	Width    int
	Height   int
	Channels int // 1 grey, 2 grey+alpha, 3 RGB, 4 RGBA
	Pix      []uint8
}

// NewRaster allocates a zeroed raster.
func NewRaster(width, height, channels int) *Raster {
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Offset returns the index of sample c of the pixel (x, y).
func (r *Raster) Offset(x, y, c int) int {
	return c + r.Channels*(x+r.Width*y)
}

// Order validates that the raster is a square with a power-of-two side and
// returns k such that Width = 2^k.
func (r *Raster) Order() (uint32, error) {
	if r.Channels < 1 || r.Channels > 4 || len(r.Pix) != r.Width*r.Height*r.Channels {
		return 0, fmt.Errorf("%w: %dx%dx%d, have %d samples", ErrBuffer, r.Width, r.Height, r.Channels, len(r.Pix))
	}
	if r.Width != r.Height {
		return 0, fmt.Errorf("%w: %dx%d", ErrNotSquare, r.Width, r.Height)
	}
	if r.Width <= 0 || uint64(r.Width) > math.MaxUint32 || !bayer.IsPowerOfTwo(uint32(r.Width)) {
		return 0, fmt.Errorf("%w: %d", ErrNotPowerOfTwo, r.Width)
	}
	order := bayer.FindMSB(uint32(r.Width))
	if order > bayer.MaxOrder {
		return 0, fmt.Errorf("%w: %d", ErrTooLarge, r.Width)
	}
	return order, nil
}

// Channels returns the number of channels needed to hold img without loss:
// 1 for grey images, 3 for opaque colour images and 4 otherwise.
func Channels(img image.Image) int {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.Paletted:
		if isGreyPalette(m.Palette) {
			return 1
		}
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

func isGreyPalette(p color.Palette) bool {
	for _, c := range p {
		r, g, b, a := c.RGBA()
		if r != g || g != b || a != 0xffff {
			return false
		}
	}
	return true
}

// FromImage converts img to a raster with the given number of channels.
// Colour images converted to 1 or 2 channels are reduced to luminance.
func FromImage(img image.Image, channels int) *Raster {
	bounds := img.Bounds()
	r := NewRaster(bounds.Dx(), bounds.Dy(), channels)
	if g, ok := img.(*image.Gray); ok && channels == 1 {
		for y := range r.Height {
			off := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(r.Pix[r.Offset(0, y, 0):], g.Pix[off:off+r.Width])
		}
		return r
	}
	for y := range r.Height {
		for x := range r.Width {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			i := r.Offset(x, y, 0)
			switch channels {
			case 1:
				r.Pix[i] = ColorToGray(c)
			case 2:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				r.Pix[i] = ColorToGray(color.RGBA{R: n.R, G: n.G, B: n.B, A: 0xff})
				r.Pix[i+1] = n.A
			default:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				copy(r.Pix[i:i+channels], []uint8{n.R, n.G, n.B, n.A})
			}
		}
	}
	return r
}

// Image returns a copy of the raster as an image.  Single channel rasters
// become *image.Gray, everything else *image.NRGBA.
func (r *Raster) Image() image.Image {
	rect := image.Rect(0, 0, r.Width, r.Height)
	if r.Channels == 1 {
		g := image.NewGray(rect)
		copy(g.Pix, r.Pix)
		return g
	}
	m := image.NewNRGBA(rect)
	for y := range r.Height {
		for x := range r.Width {
			i := r.Offset(x, y, 0)
			o := m.PixOffset(x, y)
			switch r.Channels {
			case 2:
				m.Pix[o], m.Pix[o+1], m.Pix[o+2], m.Pix[o+3] = r.Pix[i], r.Pix[i], r.Pix[i], r.Pix[i+1]
			case 3:
				m.Pix[o], m.Pix[o+1], m.Pix[o+2], m.Pix[o+3] = r.Pix[i], r.Pix[i+1], r.Pix[i+2], 0xff
			default:
				copy(m.Pix[o:o+4], r.Pix[i:i+4])
			}
		}
	}
	return m
}

// ColorToGray returns the luminance of c.
func ColorToGray(c color.Color) uint8 {
	if gray, ok := c.(color.Gray); ok {
		return gray.Y
	}
	r, g, b, _ := c.RGBA()
	gray := (299*r + 587*g + 114*b) / 1000
	return uint8(gray >> 8)
}
