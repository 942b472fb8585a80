// Package cfg contains common configuration variables.
package cfg

import (
	"fmt"
	"log/slog"

	_ "github.com/joho/godotenv/autoload" // load .env before the defaults are read
	"github.com/rusq/osenv/v2"
	"github.com/spf13/pflag"

	"github.com/rusq/bayerdither"
	"github.com/rusq/bayerdither/bitmap"
)

var (
	TraceFile   string = osenv.Value("TRACE_FILE", "")
	LogFile     string = osenv.Value("LOG_FILE", "")
	JSONHandler bool   = osenv.Value("JSON_LOG", false)
	Verbose     bool   = osenv.Value("DEBUG", false)
	NoColor     bool   = osenv.Value("NO_COLOR", false)

	Output     string = osenv.Value("BAYER_OUTPUT", bayerdither.DefaultOutput)
	Method     string = osenv.Value("BAYER_METHOD", bitmap.DefaultDither)
	Gamma      float64
	Grayscale  bool
	AutoOrient bool

	Log *slog.Logger = slog.Default()
)

type FlagMask uint16

const (
	DefaultFlags FlagMask = 0
	OmitLogFlags FlagMask = 1 << (iota - 1)
	OmitImageFlags

	OmitAll = OmitLogFlags | OmitImageFlags
)

// SetBaseFlags sets base flags.
func SetBaseFlags(fs *pflag.FlagSet, mask FlagMask) {
	if mask&OmitLogFlags == 0 {
		fs.StringVar(&TraceFile, "trace", TraceFile, "trace `filename`")
		fs.StringVar(&LogFile, "log", LogFile, "log `file`, if not specified, messages are printed to STDERR")
		fs.BoolVar(&JSONHandler, "log-json", JSONHandler, "log in JSON format")
		fs.BoolVarP(&Verbose, "verbose", "v", Verbose, "verbose messages")
	}

	if mask&OmitImageFlags == 0 {
		fs.StringVarP(&Output, "output", "o", Output, "output BMP `filename`")
		fs.StringVar(&Method, "method", Method, fmt.Sprintf("dithering algorithm to use, one of: %v", bitmap.AllDitherFunctions()))
		fs.Float64Var(&Gamma, "gamma", bitmap.DefaultGamma, "gamma correction applied before dithering, 0 to disable")
		fs.BoolVar(&Grayscale, "grayscale", false, "convert colour images to grayscale before dithering")
		fs.BoolVar(&AutoOrient, "auto-orient", false, "apply the EXIF orientation of the input image")
	}
}

// Options returns the dither job options for the given number of colours.
func Options(colors int) bayerdither.Options {
	return bayerdither.Options{
		Colors:     colors,
		Method:     Method,
		Gamma:      Gamma,
		Grayscale:  Grayscale,
		AutoOrient: AutoOrient,
		Output:     Output,
	}
}
