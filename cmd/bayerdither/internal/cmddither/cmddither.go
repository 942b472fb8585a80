// Package cmddither provides the dither command.
package cmddither

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/rusq/bayerdither"
	"github.com/rusq/bayerdither/cmd/bayerdither/internal/cfg"
)

var CmdDither = &cobra.Command{
	Use:   "bayerdither [flags] colorsPerChannel path",
	Short: "reduces the colour depth of an image with ordered dithering",
	Long: `
Dithers a square image with a power-of-two side using the Bayer matrix of
the image size, reducing every channel to colorsPerChannel evenly spaced
levels.  The result is written as an uncompressed BMP file.
`,
	Args:          usageArgs(cobra.ExactArgs(2)),
	RunE:          runDither,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var current atomic.Pointer[bayerdither.Job]

func init() {
	CmdDither.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &bayerdither.UsageError{Msg: err.Error()}
	})
	cfg.RegisterSigInfoReporter(func(w io.Writer) {
		if j := current.Load(); j != nil {
			fmt.Fprintf(w, "%s: %s\n", j.Input, j.State())
		}
	})
}

// usageArgs wraps a positional argument validator so that it returns a
// UsageError.  Without arguments the help is requested.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errHelp
		}
		if err := fn(cmd, args); err != nil {
			return &bayerdither.UsageError{Msg: err.Error()}
		}
		return nil
	}
}

// errHelp is returned when the command is run without arguments.
var errHelp = &bayerdither.UsageError{Msg: "colorsPerChannel and path are required"}

// IsHelpRequest reports whether err is the result of running the command
// without arguments.
func IsHelpRequest(err error) bool {
	return err == errHelp
}

func runDither(cmd *cobra.Command, args []string) error {
	res, err := Dither(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	slog.InfoContext(cmd.Context(), "image dithered", "result", res)
	return nil
}

// Dither parses the number of colours and runs the dither job for the input
// file with the options from cfg.
func Dither(ctx context.Context, colorsPerChannel string, input string) (bayerdither.Result, error) {
	colors, err := strconv.Atoi(colorsPerChannel)
	if err != nil {
		return bayerdither.Result{}, bayerdither.NewUsageError("colorsPerChannel must be an integer, got %q", colorsPerChannel)
	}
	j, err := bayerdither.NewJob(input, cfg.Options(colors))
	if err != nil {
		return bayerdither.Result{}, err
	}
	current.Store(j)
	defer current.Store(nil)

	cfg.Log.DebugContext(ctx, "starting job", "input", input, "colors", colors, "method", cfg.Method)
	res, err := j.Run(ctx)
	if err != nil {
		return bayerdither.Result{}, err
	}
	return res, nil
}
