package cmdmatrix

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/bayerdither"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		want    uint32
		wantErr bool
	}{
		{"zero", "0", 0, false},
		{"max", "6", 6, false},
		{"too large", "7", 0, true},
		{"negative", "-1", 0, true},
		{"not a number", "x", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOrder(tt.s)
			if tt.wantErr {
				var ue *bayerdither.UsageError
				assert.ErrorAs(t, err, &ue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableData(t *testing.T) {
	got := tableData([][]uint32{{0, 2}, {3, 1}})
	want := [][]string{
		{"j\\i", "0", "1"},
		{"0", "0", "2"},
		{"1", "3", "1"},
	}
	assert.Equal(t, want, got)
}

func TestPrintMatrix(t *testing.T) {
	for _, recursive := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, printMatrix(&buf, 2, recursive, true))
		out := buf.String()
		for _, v := range []string{"10", "15", "12", "14"} {
			assert.Contains(t, out, v)
		}
		assert.True(t, strings.Contains(out, "all distinct"))
	}
}

func TestVerifyMatrix(t *testing.T) {
	assert.NoError(t, verifyMatrix([][]uint32{{0, 2}, {3, 1}}, 1))
	assert.ErrorIs(t, verifyMatrix([][]uint32{{0, 2}, {2, 1}}, 1), ErrNotPermutation)
	assert.Error(t, verifyMatrix([][]uint32{{0, 3}, {2, 1}}, 1))
}
