package bitmap

import (
	"image"

	"github.com/disintegration/imaging"
)

// DefaultGamma is a special value that disables gamma adjustment.
const DefaultGamma = 0.0

// Prepare converts a decoded image to a raster, applying the optional gamma
// correction first.  The channel count is taken from the decoded image, so
// that a grey image stays single channel after the adjustment.  If grayscale
// is set, the result has one channel (two if img has transparency).
func Prepare(img image.Image, gamma float64, grayscale bool) *Raster {
	channels := Channels(img)
	if grayscale && channels > 1 {
		img = imaging.Grayscale(img)
		if channels == 4 {
			channels = 2
		} else {
			channels = 1
		}
	}
	if gamma != DefaultGamma && gamma != 1.0 {
		img = imaging.AdjustGamma(img, gamma)
	}
	return FromImage(img, channels)
}
