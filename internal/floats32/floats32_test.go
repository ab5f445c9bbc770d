package floats32

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrixRowSharesStorage(t *testing.T) {
	m := NewMatrix(3, 4)
	m.Row(1)[2] = 7

	assert.Equal(t, float32(7), m.At(1, 2))

	m.Set(2, 3, -1)
	assert.Equal(t, float32(-1), m.Row(2)[3])
}

func TestMatrixCloneIsIndependent(t *testing.T) {
	m := NewMatrix(2, 2)
	m.Set(0, 0, 1)
	c := m.Clone()
	c.Set(0, 0, 9)

	assert.Equal(t, float32(1), m.At(0, 0))
	assert.Equal(t, float32(9), c.At(0, 0))
}

func TestKernels(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}

	assert.InDelta(t, 32, Dot(a, b), 1e-6)
	assert.InDelta(t, 6, Sum(a), 1e-6)
	assert.Equal(t, float32(3), Max(a))
	assert.Equal(t, 2, ArgMax(a))
	assert.InDelta(t, 3.741657, Norm(a), 1e-5)

	y := []float32{1, 1, 1}
	Axpy(2, a, y)
	assert.Equal(t, []float32{3, 5, 7}, y)

	Scale(0.5, y)
	assert.Equal(t, []float32{1.5, 2.5, 3.5}, y)
}

func TestZero(t *testing.T) {
	m := NewMatrix(2, 3)
	for i := range m.Data {
		m.Data[i] = float32(i)
	}
	m.Zero()
	assert.Equal(t, make([]float32, 6), m.Data)
}
