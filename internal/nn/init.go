package nn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"textcnn/internal/floats32"
)

// initUniform fills m with draws from U(-bound, bound).
func initUniform(m *floats32.Matrix, bound float64, src rand.Source) {
	u := distuv.Uniform{Min: -bound, Max: bound, Src: src}
	for i := range m.Data {
		m.Data[i] = float32(u.Rand())
	}
}

// fanInBound is the scaled range weights and biases start from,
// 1/sqrt(fan_in).
func fanInBound(fanIn int) float64 {
	return 1 / math.Sqrt(float64(fanIn))
}
