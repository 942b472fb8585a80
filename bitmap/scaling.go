package bitmap

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/rusq/bayerdither/bayer"
)

// MaxSize is the largest image side the ordered dither accepts.
const MaxSize = 1 << bayer.MaxOrder

// SquareSize returns the smallest power of two that is not less than either
// side of r, capped at MaxSize.
func SquareSize(r image.Rectangle) int {
	n := max(r.Dx(), r.Dy(), 1)
	sz := 1
	for sz < n && sz < MaxSize {
		sz <<= 1
	}
	return sz
}

// FitSquare places img on a white square canvas of the given size.  Images
// that fit are not upscaled and are placed in the upper left corner, larger
// ones are downscaled to fit while maintaining aspect ratio.
func FitSquare(img image.Image, size int) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src) // fill with white

	b := img.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		draw.Copy(canvas, image.Point{}, img, b, draw.Over, nil)
		return canvas
	}
	w, h := size, size
	if b.Dx() > b.Dy() {
		h = max(b.Dy()*size/b.Dx(), 1)
	} else {
		w = max(b.Dx()*size/b.Dy(), 1)
	}
	draw.CatmullRom.Scale(canvas, image.Rect(0, 0, w, h), img, b, draw.Over, nil)
	return canvas
}
