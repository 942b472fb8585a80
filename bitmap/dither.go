package bitmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sort"

	"github.com/makeworld-the-better-one/dither/v2"

	"github.com/rusq/bayerdither/bayer"
)

const (
	// MinColors is the smallest number of levels per channel.
	MinColors = 2
	// MaxColors is the largest number of levels per channel.
	MaxColors = 1 << 16
	// MaxLibraryPalette limits the palette size of the dither library
	// backend, which searches the whole palette for every pixel.
	MaxLibraryPalette = 4096
)

// ErrColors is returned when the number of colours per channel is out of
// range.
var ErrColors = fmt.Errorf("colors per channel must be in range [%d, %d]", MinColors, MaxColors)

// DitherFunc reduces every channel of src to the given number of evenly
// spaced levels and returns a new raster of the same shape.
type DitherFunc func(src *Raster, colors int) (*Raster, error)

// DefaultDither is the name of the default dither function.
const DefaultDither = "bayer"

var ditherFunctions = map[string]DitherFunc{
	DefaultDither:     DBayer,
	"bayer-recursive": DBayerRecursive,
	"dither-lib":      DLibrary,
}

// DitherFunction returns a registered dither function by name.
func DitherFunction(name string) (DitherFunc, bool) {
	if name == "" {
		return DitherDefault, true
	}
	fn, ok := ditherFunctions[name]
	if !ok {
		return nil, false // function not found
	}
	return fn, true
}

// RegisterDitherFunction allows to register a new dither function by name.
func RegisterDitherFunction(name string, fn DitherFunc) {
	if name == "" {
		panic("dither function name cannot be empty")
	}
	if fn == nil {
		panic("dither function cannot be nil")
	}
	if _, exists := ditherFunctions[name]; exists {
		panic("dither function already registered: " + name)
	}
	ditherFunctions[name] = fn
}

// AllDitherFunctions returns a sorted list of all available dither function
// names.
func AllDitherFunctions() []string {
	keys := make([]string, 0, len(ditherFunctions))
	for k := range ditherFunctions {
		keys = append(keys, k)
	}
	sort.Strings(keys) // sort for consistent order
	return keys
}

// DitherDefault is the default dither function.
func DitherDefault(src *Raster, colors int) (*Raster, error) {
	return DBayer(src, colors)
}

var (
	// DBayer is the ordered dither with the closed form Bayer generator.
	DBayer = Ordered(bayer.Coefficient)
	// DBayerRecursive is the ordered dither with the quadrant subdivision
	// generator.  Its output is identical to DBayer.
	DBayerRecursive = Ordered(bayer.Recursive)
)

// Ordered returns the ordered dither function that takes its thresholds
// from fn.  The Bayer matrix spans the whole image: its order is derived from
// the image width, so every threshold is used exactly once.
func Ordered(fn bayer.CoefficientFunc) DitherFunc {
	return func(src *Raster, colors int) (*Raster, error) {
		order, err := src.Order()
		if err != nil {
			return nil, err
		}
		if err := CheckColors(colors); err != nil {
			return nil, err
		}
		slog.Debug("ordered dither", "size", src.Width, "channels", src.Channels, "order", order, "colors", colors)

		dst := NewRaster(src.Width, src.Height, src.Channels)
		area := uint64(src.Width) * uint64(src.Width) // 4^order
		for y := range src.Height {
			for x := range src.Width {
				threshold := uint64(fn(uint32(x), uint32(y), order))
				i := src.Offset(x, y, 0)
				for c := range src.Channels {
					dst.Pix[i+c] = Quantize(src.Pix[i+c], colors, threshold, area)
				}
			}
		}
		return dst, nil
	}
}

// Quantize returns the output sample for the input sample s reduced to the
// given number of levels, with the Bayer threshold threshold/area.
//
// With u = s/255 and q = u·(colors-1), the two candidate levels are
// floor(q)/(colors-1) and ceil(q)/(colors-1).  The upper one is chosen when
// the position of u between them is above the threshold.  When u is exactly
// representable both candidates coincide and it is returned as is.  The
// arithmetic is done on integers: the position of u between the candidates
// is rem/255 where rem = s·(colors-1) mod 255.
func Quantize(s uint8, colors int, threshold, area uint64) uint8 {
	steps := uint64(colors - 1)
	scaled := uint64(s) * steps
	lo, rem := scaled/255, scaled%255
	if rem == 0 {
		return level(lo, steps)
	}
	if rem*area > threshold*255 {
		return level(lo+1, steps)
	}
	return level(lo, steps)
}

// level returns round(i/steps · 255).
func level(i, steps uint64) uint8 {
	return uint8((2*i*255 + steps) / (2 * steps))
}

// CheckColors returns ErrColors if colors is out of the supported range.
func CheckColors(colors int) error {
	if colors < MinColors || colors > MaxColors {
		return fmt.Errorf("%w: %d", ErrColors, colors)
	}
	return nil
}

// libraryMapperMin and libraryMapperMax bound the Bayer matrix handed to the
// dither library, which materialises it.
const (
	libraryMapperMin = 2
	libraryMapperMax = 256
)

// DLibrary dithers src with the ordered ditherer of the dither library, using
// a Bayer matrix of the image size (clamped to [2, 256]) and a palette of
// all combinations of the output levels.  The library linearises colours
// before dithering, so its output differs from DBayer; it serves as a
// reference.  Alpha samples are copied from src.
func DLibrary(src *Raster, colors int) (*Raster, error) {
	if _, err := src.Order(); err != nil {
		return nil, err
	}
	if err := CheckColors(colors); err != nil {
		return nil, err
	}
	pal, err := levelPalette(colors, src.Channels)
	if err != nil {
		return nil, err
	}
	d := dither.NewDitherer(pal)
	if d == nil {
		return nil, errors.New("dither library rejected the palette")
	}
	sz := uint(min(max(src.Width, libraryMapperMin), libraryMapperMax))
	d.Mapper = dither.Bayer(sz, sz, 1.0)

	dithered := image.NewRGBA(image.Rect(0, 0, src.Width, src.Height))
	d.Draw(dithered, dithered.Bounds(), src.Image(), image.Point{})

	dst := FromImage(dithered, src.Channels)
	if src.Channels == 2 || src.Channels == 4 {
		for i := src.Channels - 1; i < len(src.Pix); i += src.Channels {
			dst.Pix[i] = src.Pix[i] // alpha
		}
	}
	return dst, nil
}

// levelPalette returns the palette of every combination of the output
// levels: grey levels for 1 and 2 channel rasters, RGB otherwise.
func levelPalette(colors int, channels int) ([]color.Color, error) {
	steps := uint64(colors - 1)
	levels := make([]uint8, colors)
	for i := range levels {
		levels[i] = level(uint64(i), steps)
	}
	if channels <= 2 {
		if colors > MaxLibraryPalette {
			return nil, fmt.Errorf("%w: palette of %d colours exceeds %d", ErrColors, colors, MaxLibraryPalette)
		}
		pal := make([]color.Color, 0, colors)
		for _, v := range levels {
			pal = append(pal, color.Gray{Y: v})
		}
		return pal, nil
	}
	if n := uint64(colors) * uint64(colors) * uint64(colors); n > MaxLibraryPalette {
		return nil, fmt.Errorf("%w: palette of %d colours exceeds %d", ErrColors, n, MaxLibraryPalette)
	}
	pal := make([]color.Color, 0, colors*colors*colors)
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				pal = append(pal, color.RGBA{R: r, G: g, B: b, A: 0xff})
			}
		}
	}
	return pal, nil
}
