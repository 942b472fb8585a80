package bitmap

import (
	"image"
	"image/color"
	"math"
	"slices"

	"golang.org/x/image/draw"
)

// DefaultPattern is the name of the default test pattern.
const DefaultPattern = "ramp"

// Patterns holds the square test image generators by name.  Each generator
// receives the image side in pixels.
var Patterns = map[string]func(int) image.Image{
	DefaultPattern: Ramp,
	"rgb":          RGBRamp,
	"checkers":     Checkers,
	"sinusoidal":   Sinusoidal,
}

// AllPatterns returns the sorted list of pattern names.
func AllPatterns() []string {
	names := make([]string, 0, len(Patterns))
	for name := range Patterns {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Ramp generates a grey ramp from black on the left to white on the right.
func Ramp(size int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for x := range size {
		v := rampValue(x, size)
		for y := range size {
			img.Pix[img.PixOffset(x, y)] = v
		}
	}
	return img
}

// RGBRamp generates a colour ramp: red grows to the right, green downwards
// and blue along the diagonal.
func RGBRamp(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			img.SetRGBA(x, y, color.RGBA{
				R: rampValue(x, size),
				G: rampValue(y, size),
				B: rampValue((x+y)/2, size),
				A: 0xff,
			})
		}
	}
	return img
}

// Checkers generates a one pixel black and white checkerboard.
func Checkers(size int) image.Image {
	pal := color.Palette{color.Black, color.White}
	img := image.NewPaletted(image.Rect(0, 0, size, size), pal)
	for y := range size {
		for x := range size {
			if (x+y)%2 == 0 {
				img.SetColorIndex(x, y, 1) // white square
			}
		}
	}
	return img
}

// Sinusoidal draws a black sine wave across a white canvas, with an amplitude
// of nearly half the image and one period per image width.
func Sinusoidal(size int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	mid := float64(size) / 2
	for x := range size {
		y := int(mid + (mid-1)*math.Sin(float64(x)*2*math.Pi/float64(size)))
		if y >= 0 && y < size {
			img.SetGray(x, y, color.Gray{})
		}
	}
	return img
}

// rampValue maps i in [0, n) onto [0, 255].
func rampValue(i, n int) uint8 {
	if n <= 1 {
		return 0
	}
	return uint8(i * 255 / (n - 1))
}
