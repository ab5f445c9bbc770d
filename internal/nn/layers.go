package nn

import (
	"golang.org/x/exp/rand"

	"textcnn/internal/floats32"
)

// Layers cache their forward inputs and reuse scratch buffers between
// calls, so a network serves one goroutine at a time.

// Embedding maps token ids to vector columns. Output is channels-first
// (dim, seqLen) so convolution rows stay contiguous. Row 0 of the table
// is the padding vector; the table is frozen.
type Embedding struct {
	W   *Param
	dim int
	out *floats32.Matrix
}

// NewEmbedding wraps a pre-built (vocabRows, dim) table.
func NewEmbedding(table *floats32.Matrix) *Embedding {
	return &Embedding{W: frozenParam("embedding.weight", table), dim: table.Cols}
}

func (e *Embedding) Forward(tokens []int32) *floats32.Matrix {
	L := len(tokens)
	if e.out == nil || e.out.Cols != L {
		e.out = floats32.NewMatrix(e.dim, L)
	}
	for t, id := range tokens {
		row := e.W.Value.Row(int(id))
		for d := 0; d < e.dim; d++ {
			e.out.Data[d*L+t] = row[d]
		}
	}
	return e.out
}

// Conv1d is a 1-D convolution over a channels-first sequence, stride 1,
// no padding. Weights are stored flattened to (out, in*k) so every
// output position is a single dot product against an im2col row.
type Conv1d struct {
	In, Out, K int
	W, B       *Param

	// InputGrad off skips the gradient with respect to the input, which
	// the first layer never needs with a frozen embedding underneath.
	InputGrad bool

	x     *floats32.Matrix
	cols  *floats32.Matrix
	dcols *floats32.Matrix
	y     *floats32.Matrix
	dx    *floats32.Matrix
}

// NewConv1d builds a layer with fan-in scaled uniform init.
func NewConv1d(name string, in, out, k int, src rand.Source) *Conv1d {
	c := &Conv1d{In: in, Out: out, K: k, InputGrad: true}
	c.W = newParam(name+".weight", out, in*k)
	c.B = newParam(name+".bias", 1, out)
	bound := fanInBound(in * k)
	initUniform(c.W.Value, bound, src)
	initUniform(c.B.Value, bound, src)
	return c
}

func (c *Conv1d) Forward(x *floats32.Matrix) *floats32.Matrix {
	T := x.Cols - c.K + 1
	c.x = x
	if c.cols == nil || c.cols.Rows != T {
		c.cols = floats32.NewMatrix(T, c.In*c.K)
		c.y = floats32.NewMatrix(c.Out, T)
	}
	for t := 0; t < T; t++ {
		patch := c.cols.Row(t)
		for ch := 0; ch < c.In; ch++ {
			copy(patch[ch*c.K:(ch+1)*c.K], x.Row(ch)[t:t+c.K])
		}
	}
	for o := 0; o < c.Out; o++ {
		w := c.W.Value.Row(o)
		b := c.B.Value.Data[o]
		yr := c.y.Row(o)
		for t := 0; t < T; t++ {
			yr[t] = floats32.Dot(w, c.cols.Row(t)) + b
		}
	}
	return c.y
}

// Backward accumulates weight and bias gradients and returns the
// gradient with respect to the input, or nil when InputGrad is off.
func (c *Conv1d) Backward(dy *floats32.Matrix) *floats32.Matrix {
	T := dy.Cols
	if c.InputGrad {
		if c.dx == nil || c.dx.Cols != c.x.Cols {
			c.dx = floats32.NewMatrix(c.In, c.x.Cols)
			c.dcols = floats32.NewMatrix(T, c.In*c.K)
		}
		c.dx.Zero()
		c.dcols.Zero()
	}
	for o := 0; o < c.Out; o++ {
		dyr := dy.Row(o)
		c.B.Grad.Data[o] += floats32.Sum(dyr)
		gw := c.W.Grad.Row(o)
		w := c.W.Value.Row(o)
		for t := 0; t < T; t++ {
			g := dyr[t]
			if g == 0 {
				continue
			}
			floats32.Axpy(g, c.cols.Row(t), gw)
			if c.InputGrad {
				floats32.Axpy(g, w, c.dcols.Row(t))
			}
		}
	}
	if !c.InputGrad {
		return nil
	}
	for t := 0; t < T; t++ {
		dc := c.dcols.Row(t)
		for ch := 0; ch < c.In; ch++ {
			floats32.Axpy(1, dc[ch*c.K:(ch+1)*c.K], c.dx.Row(ch)[t:t+c.K])
		}
	}
	return c.dx
}

// ReLU clamps activations at zero.
type ReLU struct {
	x  *floats32.Matrix
	y  *floats32.Matrix
	dx *floats32.Matrix
}

func (r *ReLU) Forward(x *floats32.Matrix) *floats32.Matrix {
	r.x = x
	if r.y == nil || r.y.Rows != x.Rows || r.y.Cols != x.Cols {
		r.y = floats32.NewMatrix(x.Rows, x.Cols)
		r.dx = floats32.NewMatrix(x.Rows, x.Cols)
	}
	for i, v := range x.Data {
		if v > 0 {
			r.y.Data[i] = v
		} else {
			r.y.Data[i] = 0
		}
	}
	return r.y
}

func (r *ReLU) Backward(dy *floats32.Matrix) *floats32.Matrix {
	for i, v := range r.x.Data {
		if v > 0 {
			r.dx.Data[i] = dy.Data[i]
		} else {
			r.dx.Data[i] = 0
		}
	}
	return r.dx
}

// MaxPool1d takes the max over non-overlapping windows of width W per
// channel. Trailing positions that do not fill a window are dropped.
type MaxPool1d struct {
	W int

	inCols int
	argmax []int
	y      *floats32.Matrix
	dx     *floats32.Matrix
}

func NewMaxPool1d(w int) *MaxPool1d { return &MaxPool1d{W: w} }

func (p *MaxPool1d) Forward(x *floats32.Matrix) *floats32.Matrix {
	T := x.Cols / p.W
	if p.y == nil || p.y.Rows != x.Rows || p.y.Cols != T || p.inCols != x.Cols {
		p.y = floats32.NewMatrix(x.Rows, T)
		p.dx = floats32.NewMatrix(x.Rows, x.Cols)
		p.argmax = make([]int, x.Rows*T)
	}
	p.inCols = x.Cols
	for c := 0; c < x.Rows; c++ {
		xr := x.Row(c)
		yr := p.y.Row(c)
		for t := 0; t < T; t++ {
			win := xr[t*p.W : (t+1)*p.W]
			j := floats32.ArgMax(win)
			yr[t] = win[j]
			p.argmax[c*T+t] = t*p.W + j
		}
	}
	return p.y
}

func (p *MaxPool1d) Backward(dy *floats32.Matrix) *floats32.Matrix {
	p.dx.Zero()
	T := dy.Cols
	for c := 0; c < dy.Rows; c++ {
		dyr := dy.Row(c)
		dxr := p.dx.Row(c)
		for t := 0; t < T; t++ {
			dxr[p.argmax[c*T+t]] += dyr[t]
		}
	}
	return p.dx
}

// Linear is a fully connected layer over (1, n) row vectors.
type Linear struct {
	In, Out int
	W, B    *Param

	x  *floats32.Matrix
	y  *floats32.Matrix
	dx *floats32.Matrix
}

// NewLinear builds a layer with fan-in scaled uniform init.
func NewLinear(name string, in, out int, src rand.Source) *Linear {
	l := &Linear{In: in, Out: out}
	l.W = newParam(name+".weight", out, in)
	l.B = newParam(name+".bias", 1, out)
	bound := fanInBound(in)
	initUniform(l.W.Value, bound, src)
	initUniform(l.B.Value, bound, src)
	return l
}

func (l *Linear) Forward(x *floats32.Matrix) *floats32.Matrix {
	l.x = x
	if l.y == nil {
		l.y = floats32.NewMatrix(1, l.Out)
		l.dx = floats32.NewMatrix(1, l.In)
	}
	xr := x.Row(0)
	yr := l.y.Row(0)
	for o := 0; o < l.Out; o++ {
		yr[o] = floats32.Dot(l.W.Value.Row(o), xr) + l.B.Value.Data[o]
	}
	return l.y
}

func (l *Linear) Backward(dy *floats32.Matrix) *floats32.Matrix {
	l.dx.Zero()
	dyr := dy.Row(0)
	xr := l.x.Row(0)
	dxr := l.dx.Row(0)
	for o := 0; o < l.Out; o++ {
		g := dyr[o]
		l.B.Grad.Data[o] += g
		if g == 0 {
			continue
		}
		floats32.Axpy(g, xr, l.W.Grad.Row(o))
		floats32.Axpy(g, l.W.Value.Row(o), dxr)
	}
	return l.dx
}
