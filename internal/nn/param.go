// Package nn implements the convolutional text classifier: a frozen
// embedding lookup, three convolution blocks and a two-layer head, all
// in single precision with explicit backward passes.
package nn

import "textcnn/internal/floats32"

// Param is one tensor of model state. Grad accumulates across a batch
// until the network is zeroed for the next one. Frozen params keep
// Trainable false and a nil Grad; the optimizer skips them but they are
// still written to checkpoints.
type Param struct {
	Name      string
	Value     *floats32.Matrix
	Grad      *floats32.Matrix
	Trainable bool
}

func newParam(name string, rows, cols int) *Param {
	return &Param{
		Name:      name,
		Value:     floats32.NewMatrix(rows, cols),
		Grad:      floats32.NewMatrix(rows, cols),
		Trainable: true,
	}
}

func frozenParam(name string, value *floats32.Matrix) *Param {
	return &Param{Name: name, Value: value}
}
