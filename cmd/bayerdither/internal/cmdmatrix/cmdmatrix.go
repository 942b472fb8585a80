// Package cmdmatrix provides the Bayer matrix printing subcommand.
package cmdmatrix

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rusq/bayerdither"
	"github.com/rusq/bayerdither/bayer"
)

// MaxOrder is the largest order that is printed, the matrix of order 6 is
// 64 columns wide.
const MaxOrder = 6

var CmdMatrix = &cobra.Command{
	Use:   "matrix [flags] <order>",
	Short: "prints the Bayer matrix of the given order",
	Long: fmt.Sprintf(`
Prints the 2^order × 2^order Bayer threshold matrix, order must be in range
[0, %d].  Row j, column i holds the threshold of the pixel (i, j).
`, MaxOrder),
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(1)(cmd, args); err != nil {
			return &bayerdither.UsageError{Msg: err.Error()}
		}
		return nil
	},
	RunE: runMatrix,
}

var (
	recursive bool
	verify    bool
)

// ErrNotPermutation is returned by verification if the matrix does not hold
// every threshold exactly once.
var ErrNotPermutation = errors.New("matrix is not a permutation")

func init() {
	CmdMatrix.Flags().BoolVar(&recursive, "recursive", false, "use the recursive construction instead of the closed form")
	CmdMatrix.Flags().BoolVar(&verify, "verify", false, "verify that every threshold appears exactly once and both constructions agree")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	order, err := parseOrder(args[0])
	if err != nil {
		return err
	}
	return printMatrix(cmd.OutOrStdout(), order, recursive, verify)
}

func parseOrder(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n > MaxOrder {
		return 0, bayerdither.NewUsageError("order must be an integer in range [0, %d], got %q", MaxOrder, s)
	}
	return uint32(n), nil
}

func printMatrix(w io.Writer, order uint32, recursive bool, verify bool) error {
	fn := bayer.Coefficient
	if recursive {
		fn = bayer.Recursive
	}
	m := bayer.Matrix(order, fn)
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(tableData(m)).WithWriter(w).Render(); err != nil {
		return err
	}
	if verify {
		if err := verifyMatrix(m, order); err != nil {
			return err
		}
		fmt.Fprintf(w, "order %d: %d thresholds, all distinct, closed form and recursive construction agree\n", order, len(m)*len(m))
	}
	return nil
}

func verifyMatrix(m [][]uint32, order uint32) error {
	if !bayer.IsPermutation(m) {
		return ErrNotPermutation
	}
	for j, row := range m {
		for i, v := range row {
			c, r := bayer.Coefficient(uint32(i), uint32(j), order), bayer.Recursive(uint32(i), uint32(j), order)
			if c != v || r != v {
				return fmt.Errorf("threshold mismatch at (%d, %d): matrix %d, closed form %d, recursive %d", i, j, v, c, r)
			}
		}
	}
	return nil
}

// tableData returns the matrix as table rows, with a header of the column
// indexes and the row index in the first column.
func tableData(m [][]uint32) [][]string {
	data := make([][]string, 0, len(m)+1)
	header := make([]string, 0, len(m)+1)
	header = append(header, "j\\i")
	for i := range m {
		header = append(header, strconv.Itoa(i))
	}
	data = append(data, header)
	for j, row := range m {
		line := make([]string, 0, len(row)+1)
		line = append(line, strconv.Itoa(j))
		for _, v := range row {
			line = append(line, strconv.FormatUint(uint64(v), 10))
		}
		data = append(data, line)
	}
	return data
}
