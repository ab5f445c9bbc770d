// Package floats32 holds the dense float32 matrix and the vector kernels
// the network layers are built from. Single precision end to end; the
// SIMD-dispatched kernels come from vek.
package floats32

import (
	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// Matrix is a dense row-major float32 matrix.
type Matrix struct {
	Rows, Cols int
	Data       []float32
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// Row returns row i as a slice sharing the matrix storage.
func (m *Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float32 { return m.Data[i*m.Cols+j] }

// Set stores v at row i, column j.
func (m *Matrix) Set(i, j int, v float32) { m.Data[i*m.Cols+j] = v }

// Zero clears the matrix in place.
func (m *Matrix) Zero() { clear(m.Data) }

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	out := NewMatrix(m.Rows, m.Cols)
	copy(out.Data, m.Data)
	return out
}

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float32) float32 { return vek32.Dot(a, b) }

// Sum returns the sum of the elements of x.
func Sum(x []float32) float32 { return vek32.Sum(x) }

// Max returns the largest element of x.
func Max(x []float32) float32 { return vek32.Max(x) }

// ArgMax returns the index of the largest element of x.
func ArgMax(x []float32) int { return vek32.ArgMax(x) }

// Scale multiplies x by alpha in place.
func Scale(alpha float32, x []float32) { vek32.MulNumber_Inplace(x, alpha) }

// Axpy adds alpha*x to y element-wise. vek carries no fused
// multiply-accumulate, so this one stays a plain loop.
func Axpy(alpha float32, x, y []float32) {
	for i, v := range x {
		y[i] += alpha * v
	}
}

// Norm returns the Euclidean length of x.
func Norm(x []float32) float32 { return math32.Sqrt(vek32.Dot(x, x)) }
