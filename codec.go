package bayerdither

import (
	"bufio"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp" // register webp decoder
)

// Decode opens and decodes the image file at path.  Any format registered
// with the image package is accepted: JPEG, PNG, GIF, BMP, TIFF and WebP.  If
// autoOrient is set, the EXIF orientation of JPEG images is applied.
func Decode(path string, autoOrient bool) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(autoOrient))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// WriteBMP encodes img as an uncompressed BMP file at path and returns the
// file size and the xxhash64 digest of its contents.  The image is written
// to a temporary file in the same directory, which is renamed to path on
// success and removed on failure, so that path never holds a partial file.
func WriteBMP(path string, img image.Image) (size int64, digest uint64, err error) {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, 0, &EncodeError{Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			if rmErr := os.Remove(tmp); rmErr != nil {
				slog.Warn("failed to remove temporary file", "filename", tmp, "error", rmErr)
			}
		}
	}()

	size, digest, err = encodeBMP(f, img)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, 0, &EncodeError{Path: path, Err: err}
	}
	if err = os.Rename(tmp, path); err != nil {
		return 0, 0, &EncodeError{Path: path, Err: err}
	}
	slog.Debug("output written", "filename", path, "size", size)
	return size, digest, nil
}

func encodeBMP(w io.Writer, img image.Image) (int64, uint64, error) {
	h := xxhash.New()
	cw := &countWriter{w: io.MultiWriter(w, h)}
	bw := bufio.NewWriter(cw)
	if err := bmp.Encode(bw, img); err != nil {
		return 0, 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, 0, err
	}
	return cw.n, h.Sum64(), nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
