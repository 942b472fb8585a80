package cfg

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/bayerdither"
)

func TestSetBaseFlags(t *testing.T) {
	tests := []struct {
		name    string
		mask    FlagMask
		present []string
		absent  []string
	}{
		{"all", DefaultFlags, []string{"trace", "log", "log-json", "verbose", "output", "method", "gamma", "grayscale", "auto-orient"}, nil},
		{"omit log", OmitLogFlags, []string{"output", "method"}, []string{"trace", "log", "verbose"}},
		{"omit image", OmitImageFlags, []string{"trace", "verbose"}, []string{"output", "gamma"}},
		{"omit all", OmitAll, nil, []string{"trace", "output"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			SetBaseFlags(fs, tt.mask)
			for _, name := range tt.present {
				assert.NotNil(t, fs.Lookup(name), name)
			}
			for _, name := range tt.absent {
				assert.Nil(t, fs.Lookup(name), name)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	oldOutput, oldMethod, oldGamma, oldGrayscale := Output, Method, Gamma, Grayscale
	t.Cleanup(func() { Output, Method, Gamma, Grayscale = oldOutput, oldMethod, oldGamma, oldGrayscale })

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	SetBaseFlags(fs, OmitLogFlags)
	require.NoError(t, fs.Parse([]string{"-o", "x.bmp", "--method", "bayer-recursive", "--gamma", "1.5", "--grayscale"}))

	want := bayerdither.Options{
		Colors:    4,
		Method:    "bayer-recursive",
		Gamma:     1.5,
		Grayscale: true,
		Output:    "x.bmp",
	}
	assert.Equal(t, want, Options(4))
}

func TestSigInfo(t *testing.T) {
	old := sigReporters
	t.Cleanup(func() { sigReporters = old })
	sigReporters = nil

	RegisterSigInfoReporter(nil)
	RegisterSigInfoReporter(func(w io.Writer) { io.WriteString(w, "one\n") })
	RegisterSigInfoReporter(func(w io.Writer) { io.WriteString(w, "two\n") })

	var buf bytes.Buffer
	SigInfo(&buf)
	assert.Equal(t, "one\ntwo\n", buf.String())
	assert.NotPanics(t, func() { SigInfo(nil) })
}
