// Package bayer generates Bayer threshold matrices of any power-of-two size
// without storing them.
//
// A Bayer matrix of order k is a 2^k × 2^k arrangement of the integers
// 0…4^k-1, each appearing once.  The value at column i and row j is computed
// on demand by Coefficient:
//
//	x = i ^ j, y = j
//	z = Dilate(x) | Dilate(y)<<1
//	v = BitReverse(z) >> (32 - 2k)
//
// The XOR folds the recursive 2×2 block construction ([[0 2] [3 1]] at every
// level) into a single bit permutation of the Morton code of (x, y).
package bayer

// MaxOrder is the largest supported matrix order.  Dilate uses only the low
// 16 bits of a coordinate, so matrices are at most 65536 × 65536.
const MaxOrder = 16

// CoefficientFunc returns the threshold at column i, row j of the Bayer
// matrix of the given order.
type CoefficientFunc func(i, j, order uint32) uint32

var (
	_ CoefficientFunc = Coefficient
	_ CoefficientFunc = Recursive
)

// Coefficient returns the threshold for column i, row j of the order-`order`
// Bayer matrix, in [0, 4^order).  The caller must ensure order <= MaxOrder
// and i, j < 2^order.
func Coefficient(i, j, order uint32) uint32 {
	x := i ^ j
	y := j
	z := Dilate(x) | Dilate(y)<<1
	// shift of 32 (order 0) yields 0
	return BitReverse(z) >> (32 - order<<1)
}

// base is the order 1 matrix, indexed [row][column].
var base = [2][2]uint32{
	{0, 2},
	{3, 1},
}

// Recursive is the quadrant subdivision construction of the Bayer matrix:
//
//	M(2n)[j][i] = 4·M(n)[j mod n][i mod n] + M(2)[j/n][i/n]
//
// It returns the same values as Coefficient in O(order) time.
func Recursive(i, j, order uint32) uint32 {
	var v, shift uint32
	for ; order > 0; order-- {
		n := uint32(1) << (order - 1)
		v |= base[j/n][i/n] << shift // quadrant rank, least significant first
		shift += 2
		i, j = i%n, j%n
	}
	return v
}

// Matrix materialises the order-`order` matrix using fn.  The result is
// indexed [row][column].
func Matrix(order uint32, fn CoefficientFunc) [][]uint32 {
	if fn == nil {
		fn = Coefficient
	}
	n := uint32(1) << order
	m := make([][]uint32, n)
	for j := range n {
		m[j] = make([]uint32, n)
		for i := range n {
			m[j][i] = fn(i, j, order)
		}
	}
	return m
}

// IsPermutation returns true if m is square and contains every value of
// 0…len(m)²-1 exactly once.
func IsPermutation(m [][]uint32) bool {
	n := len(m)
	seen := make([]bool, n*n)
	for _, row := range m {
		if len(row) != n {
			return false
		}
		for _, v := range row {
			if int(v) >= len(seen) || seen[v] {
				return false
			}
			seen[v] = true
		}
	}
	return true
}
