package bitmap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradientRaster returns a square raster where every channel of pixel (x, y)
// is (x*w + y) scaled to the full 8-bit range.
func gradientRaster(t *testing.T, size, channels int) *Raster {
	t.Helper()
	r := NewRaster(size, size, channels)
	n := size * size
	for y := range size {
		for x := range size {
			v := uint8((x*size + y) * 255 / max(n-1, 1))
			for c := range channels {
				r.Pix[r.Offset(x, y, c)] = v
			}
		}
	}
	return r
}

func TestQuantize(t *testing.T) {
	type args struct {
		s         uint8
		colors    int
		threshold uint64
		area      uint64
	}
	tests := []struct {
		name string
		args args
		want uint8
	}{
		{"black stays black", args{0, 2, 0, 4}, 0},
		{"white stays white", args{255, 2, 3, 4}, 255},
		{"exact level 1/3 at threshold 0", args{85, 4, 0, 16}, 85},
		{"exact level 1/3 at high threshold", args{85, 4, 15, 16}, 85},
		{"exact level 2/3", args{170, 4, 7, 16}, 170},
		{"mid grey above threshold", args{128, 2, 0, 4}, 255},
		{"mid grey below threshold", args{128, 2, 3, 4}, 0},
		{"mid grey just above threshold", args{128, 2, 2, 4}, 255},
		{"exact level 1/255", args{1, 256, 0, 1}, 1},
		{"colors 3 upper half", args{200, 3, 0, 16}, 255},
		{"colors 3 upper half, high threshold", args{200, 3, 15, 16}, 128},
		{"order 0", args{100, 2, 0, 1}, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quantize(tt.args.s, tt.args.colors, tt.args.threshold, tt.args.area)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuantize_extremes(t *testing.T) {
	for colors := MinColors; colors <= 300; colors++ {
		for threshold := range uint64(16) {
			require.Equal(t, uint8(0), Quantize(0, colors, threshold, 16), "colors=%d", colors)
			require.Equal(t, uint8(255), Quantize(255, colors, threshold, 16), "colors=%d", colors)
		}
	}
}

func TestQuantize_bracketsInput(t *testing.T) {
	// the output is one of the two levels nearest to the input.
	for _, colors := range []int{2, 3, 4, 5, 8, 16, 17, 255, 256} {
		step := 255.0 / float64(colors-1)
		for s := range 256 {
			for threshold := range uint64(64) {
				got := float64(Quantize(uint8(s), colors, threshold, 64))
				require.LessOrEqual(t, got, float64(s)+step+0.5, "s=%d colors=%d", s, colors)
				require.GreaterOrEqual(t, got, float64(s)-step-0.5, "s=%d colors=%d", s, colors)
			}
		}
	}
}

func TestDBayer_exactLevels(t *testing.T) {
	// 4×4 grey image with rows [0 85 170 255], 4 levels: every sample is
	// representable, so the output equals the input for any threshold.
	src := NewRaster(4, 4, 1)
	for y := range 4 {
		copy(src.Pix[y*4:], []uint8{0, 85, 170, 255})
	}
	got, err := DBayer(src, 4)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, got.Pix)
	assert.Equal(t, 4, got.Width)
	assert.Equal(t, 4, got.Height)
	assert.Equal(t, 1, got.Channels)
}

func TestDBayer_midGrey(t *testing.T) {
	src := &Raster{Width: 2, Height: 2, Channels: 1, Pix: []uint8{128, 128, 128, 128}}
	got, err := DBayer(src, 2)
	require.NoError(t, err)
	// thresholds are [[0 2] [3 1]]/4, 128/255 is just above 2/4.
	assert.Equal(t, []uint8{255, 255, 0, 255}, got.Pix)
}

func TestDBayer_channelsShareThreshold(t *testing.T) {
	src := NewRaster(4, 4, 3)
	for i := range src.Pix {
		src.Pix[i] = 100
	}
	got, err := DBayer(src, 2)
	require.NoError(t, err)
	for y := range 4 {
		for x := range 4 {
			i := got.Offset(x, y, 0)
			assert.Equal(t, got.Pix[i], got.Pix[i+1])
			assert.Equal(t, got.Pix[i], got.Pix[i+2])
		}
	}
}

func TestDBayer_averagePreserved(t *testing.T) {
	// over a full matrix the number of "up" decisions is proportional to the
	// position of the input between the two levels.
	const size = 16
	for _, s := range []uint8{1, 64, 100, 128, 200, 254} {
		src := NewRaster(size, size, 1)
		for i := range src.Pix {
			src.Pix[i] = s
		}
		got, err := DBayer(src, 2)
		require.NoError(t, err)
		var white int
		for _, v := range got.Pix {
			if v == 255 {
				white++
			}
		}
		// rem*256 > t*255 for t in [0, 256)
		want := 0
		for th := range size * size {
			if int(s)*size*size > th*255 {
				want++
			}
		}
		assert.Equal(t, want, white, "sample %d", s)
	}
}

func TestDitherFuncs_rejectShape(t *testing.T) {
	tests := []struct {
		name    string
		src     *Raster
		wantErr error
	}{
		{"3x5", NewRaster(3, 5, 1), ErrNotSquare},
		{"5x5", NewRaster(5, 5, 1), ErrNotPowerOfTwo},
		{"6x6", NewRaster(6, 6, 3), ErrNotPowerOfTwo},
		{"0x0", NewRaster(0, 0, 1), ErrNotPowerOfTwo},
		{"short buffer", &Raster{Width: 2, Height: 2, Channels: 1, Pix: []uint8{1}}, ErrBuffer},
	}
	for _, name := range AllDitherFunctions() {
		fn, ok := DitherFunction(name)
		require.True(t, ok)
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				got, err := fn(tt.src, 4)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			})
		}
	}
}

func TestDitherFuncs_rejectColors(t *testing.T) {
	src := gradientRaster(t, 4, 1)
	for _, colors := range []int{-1, 0, 1, MaxColors + 1} {
		_, err := DBayer(src, colors)
		assert.ErrorIs(t, err, ErrColors, "colors=%d", colors)
	}
}

func TestDBayer_deterministic(t *testing.T) {
	src := gradientRaster(t, 32, 3)
	a, err := DBayer(src, 3)
	require.NoError(t, err)
	b, err := DBayer(src, 3)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a.Pix, b.Pix))
}

func TestDBayerRecursive_matchesDBayer(t *testing.T) {
	for _, size := range []int{1, 2, 8, 64} {
		src := gradientRaster(t, size, 4)
		for _, colors := range []int{2, 4, 7} {
			want, err := DBayer(src, colors)
			require.NoError(t, err)
			got, err := DBayerRecursive(src, colors)
			require.NoError(t, err)
			assert.Equal(t, want.Pix, got.Pix, "size=%d colors=%d", size, colors)
		}
	}
}

func TestDBayer_doesNotModifySource(t *testing.T) {
	src := gradientRaster(t, 8, 1)
	orig := bytes.Clone(src.Pix)
	_, err := DBayer(src, 2)
	require.NoError(t, err)
	assert.Equal(t, orig, src.Pix)
}

func TestDLibrary(t *testing.T) {
	t.Run("grey output uses palette levels", func(t *testing.T) {
		src := gradientRaster(t, 16, 1)
		got, err := DLibrary(src, 4)
		require.NoError(t, err)
		require.Equal(t, 1, got.Channels)
		for _, v := range got.Pix {
			assert.Contains(t, []uint8{0, 85, 170, 255}, v)
		}
	})
	t.Run("shape preserved", func(t *testing.T) {
		src := gradientRaster(t, 8, 3)
		got, err := DLibrary(src, 2)
		require.NoError(t, err)
		assert.Equal(t, src.Width, got.Width)
		assert.Equal(t, src.Height, got.Height)
		assert.Equal(t, src.Channels, got.Channels)
		for _, v := range got.Pix {
			assert.Contains(t, []uint8{0, 255}, v)
		}
	})
	t.Run("alpha copied", func(t *testing.T) {
		src := gradientRaster(t, 4, 4)
		got, err := DLibrary(src, 2)
		require.NoError(t, err)
		for i := 3; i < len(src.Pix); i += 4 {
			assert.Equal(t, src.Pix[i], got.Pix[i])
		}
	})
	t.Run("palette too large", func(t *testing.T) {
		_, err := DLibrary(gradientRaster(t, 4, 3), 17)
		assert.ErrorIs(t, err, ErrColors)
	})
}

func TestDitherFunction(t *testing.T) {
	tests := []struct {
		name   string
		wantOk bool
	}{
		{"", true},
		{"bayer", true},
		{"bayer-recursive", true},
		{"dither-lib", true},
		{"floyd-steinberg", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, ok := DitherFunction(tt.name)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantOk, fn != nil)
		})
	}
}

func TestAllDitherFunctions(t *testing.T) {
	assert.Equal(t, []string{"bayer", "bayer-recursive", "dither-lib"}, AllDitherFunctions())
}

func TestRegisterDitherFunction(t *testing.T) {
	assert.Panics(t, func() { RegisterDitherFunction("", DBayer) })
	assert.Panics(t, func() { RegisterDitherFunction("x", nil) })
	assert.Panics(t, func() { RegisterDitherFunction(DefaultDither, DBayer) })

	const name = "test-identity"
	RegisterDitherFunction(name, func(src *Raster, _ int) (*Raster, error) { return src, nil })
	t.Cleanup(func() { delete(ditherFunctions, name) })
	fn, ok := DitherFunction(name)
	require.True(t, ok)
	src := gradientRaster(t, 2, 1)
	got, err := fn(src, 2)
	require.NoError(t, err)
	assert.Same(t, src, got)
}
