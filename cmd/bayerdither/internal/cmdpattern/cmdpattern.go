// Package cmdpattern provides the test image subcommand.
package cmdpattern

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/rusq/bayerdither"
	"github.com/rusq/bayerdither/bayer"
	"github.com/rusq/bayerdither/bitmap"
)

// DefaultSize is the default side of the generated image.
const DefaultSize = 256

var CmdPattern = &cobra.Command{
	Use:   "pattern [flags] <output file>",
	Short: "writes a test image",
	Long: `
Writes a square test image that can be used as the dither input.  The
format is chosen by the file extension.  With --from, an existing image is
fitted onto a white square canvas instead.
`,
	Args: func(cmd *cobra.Command, args []string) error {
		if listPatterns {
			return nil
		}
		if err := cobra.ExactArgs(1)(cmd, args); err != nil {
			return &bayerdither.UsageError{Msg: err.Error()}
		}
		return nil
	},
	RunE: runPattern,
}

var (
	listPatterns bool
	size         int
	kind         string
	from         string
)

func init() {
	CmdPattern.Flags().BoolVar(&listPatterns, "list", false, "list patterns")
	CmdPattern.Flags().IntVar(&size, "size", 0, fmt.Sprintf("image side in pixels, a power of two up to %d (default %d, or the fitting size with --from)", bitmap.MaxSize, DefaultSize))
	CmdPattern.Flags().StringVar(&kind, "kind", bitmap.DefaultPattern, "pattern `name`, see --list")
	CmdPattern.Flags().StringVar(&from, "from", "", "fit the image `file` onto a square canvas instead of generating a pattern")
}

func runPattern(cmd *cobra.Command, args []string) error {
	if listPatterns {
		return list(cmd.OutOrStdout())
	}
	return Generate(cmd.Context(), args[0], Options{Size: size, Kind: kind, From: from})
}

func list(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Available test patterns: %v\n", bitmap.AllPatterns())
	return err
}

// Options are the parameters of Generate.
type Options struct {
	// Size is the image side, zero selects the default.
	Size int
	// Kind is the pattern name.
	Kind string
	// From is the source image to fit, if set Kind is ignored.
	From string
}

// Generate writes the test image to filename.
func Generate(ctx context.Context, filename string, opts Options) error {
	if opts.Size != 0 {
		if opts.Size < 0 || opts.Size > bitmap.MaxSize || !bayer.IsPowerOfTwo(uint32(opts.Size)) {
			return bayerdither.NewUsageError("size must be a power of two in range [1, %d], got %d", bitmap.MaxSize, opts.Size)
		}
	}

	var img image.Image
	if opts.From != "" {
		src, err := bayerdither.Decode(opts.From, true)
		if err != nil {
			return err
		}
		sz := opts.Size
		if sz == 0 {
			sz = bitmap.SquareSize(src.Bounds())
		}
		img = bitmap.FitSquare(src, sz)
	} else {
		fn, ok := bitmap.Patterns[opts.Kind]
		if !ok {
			return bayerdither.NewUsageError("unknown pattern %q, available: %v", opts.Kind, bitmap.AllPatterns())
		}
		sz := opts.Size
		if sz == 0 {
			sz = DefaultSize
		}
		img = fn(sz)
	}

	if err := imaging.Save(img, filename); err != nil {
		os.Remove(filename)
		return &bayerdither.EncodeError{Path: filename, Err: err}
	}
	slog.InfoContext(ctx, "test image written", "filename", filename, "size", img.Bounds().Dx())
	return nil
}
