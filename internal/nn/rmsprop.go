package nn

import (
	"github.com/chewxy/math32"

	"textcnn/internal/floats32"
)

// RMSProp keeps a running average of squared gradients per trainable
// param and scales each update by its square root. Alpha and Eps carry
// the defaults the model was tuned with.
type RMSProp struct {
	LR    float32
	Alpha float32
	Eps   float32

	params []*Param
	sq     []*floats32.Matrix
}

// NewRMSProp tracks the given params. Frozen entries are skipped on
// every step.
func NewRMSProp(params []*Param, lr float64) *RMSProp {
	o := &RMSProp{LR: float32(lr), Alpha: 0.99, Eps: 1e-8, params: params}
	o.sq = make([]*floats32.Matrix, len(params))
	for i, p := range params {
		if p.Trainable {
			o.sq[i] = floats32.NewMatrix(p.Value.Rows, p.Value.Cols)
		}
	}
	return o
}

// Step applies one update from the gradients accumulated since the last
// ZeroGrad. Gradients are left in place for the caller to clear.
func (o *RMSProp) Step() {
	for i, p := range o.params {
		if !p.Trainable {
			continue
		}
		sq := o.sq[i].Data
		g := p.Grad.Data
		w := p.Value.Data
		for j, gj := range g {
			sq[j] = o.Alpha*sq[j] + (1-o.Alpha)*gj*gj
			w[j] -= o.LR * gj / (math32.Sqrt(sq[j]) + o.Eps)
		}
	}
}
