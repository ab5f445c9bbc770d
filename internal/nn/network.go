package nn

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"

	"textcnn/internal/floats32"
)

// Config fixes the network topology. The embedding table and class
// count come from the data, the rest is the convolution stack.
type Config struct {
	SeqLen     int    `json:"seq_len"`
	NumClasses int    `json:"num_classes"`
	Channels   int    `json:"channels"`
	Kernel     int    `json:"kernel"`
	Pool       int    `json:"pool"`
	Hidden     int    `json:"hidden"`
	InitSeed   uint64 `json:"init_seed"`
}

// Network is the classifier: embed, three convolution blocks with the
// final pool spanning whatever length survives, then a two-layer head
// producing log-probabilities. Kernel and pool windows clamp to the
// available length so short sequence budgets still build.
type Network struct {
	cfg Config

	embed               *Embedding
	conv1, conv2, conv3 *Conv1d
	relu1, relu2, relu3 *ReLU
	pool1, pool2, gpool *MaxPool1d
	flat                *floats32.Matrix
	dflat               *floats32.Matrix
	fc1, fc2            *Linear
	relu4               *ReLU
	logp                []float32
	dlogits             *floats32.Matrix
}

// New builds the network around a frozen (vocabRows, dim) embedding
// table. Weight init draws from a source seeded with cfg.InitSeed, so
// equal configs build identical networks.
func New(cfg Config, table *floats32.Matrix) (*Network, error) {
	switch {
	case cfg.SeqLen <= 0:
		return nil, fmt.Errorf("nn: sequence length must be positive, got %d", cfg.SeqLen)
	case cfg.NumClasses <= 0:
		return nil, fmt.Errorf("nn: class count must be positive, got %d", cfg.NumClasses)
	case cfg.Channels <= 0 || cfg.Kernel <= 0 || cfg.Pool <= 0 || cfg.Hidden <= 0:
		return nil, fmt.Errorf("nn: layer sizes must be positive, got channels=%d kernel=%d pool=%d hidden=%d",
			cfg.Channels, cfg.Kernel, cfg.Pool, cfg.Hidden)
	case table == nil || table.Rows == 0 || table.Cols == 0:
		return nil, fmt.Errorf("nn: empty embedding table")
	}

	src := rand.NewSource(cfg.InitSeed)
	n := &Network{cfg: cfg, embed: NewEmbedding(table)}

	t := cfg.SeqLen
	k1 := min(cfg.Kernel, t)
	t = t - k1 + 1
	w1 := min(cfg.Pool, t)
	t = t / w1
	k2 := min(cfg.Kernel, t)
	t = t - k2 + 1
	w2 := min(cfg.Pool, t)
	t = t / w2
	k3 := min(cfg.Kernel, t)
	t = t - k3 + 1

	n.conv1 = NewConv1d("conv1", table.Cols, cfg.Channels, k1, src)
	n.conv1.InputGrad = false
	n.pool1 = NewMaxPool1d(w1)
	n.conv2 = NewConv1d("conv2", cfg.Channels, cfg.Channels, k2, src)
	n.pool2 = NewMaxPool1d(w2)
	n.conv3 = NewConv1d("conv3", cfg.Channels, cfg.Channels, k3, src)
	n.gpool = NewMaxPool1d(t)
	n.fc1 = NewLinear("fc1", cfg.Channels, cfg.Hidden, src)
	n.fc2 = NewLinear("fc2", cfg.Hidden, cfg.NumClasses, src)
	n.relu1, n.relu2, n.relu3, n.relu4 = &ReLU{}, &ReLU{}, &ReLU{}, &ReLU{}

	n.flat = floats32.NewMatrix(1, cfg.Channels)
	n.dflat = floats32.NewMatrix(cfg.Channels, 1)
	n.logp = make([]float32, cfg.NumClasses)
	n.dlogits = floats32.NewMatrix(1, cfg.NumClasses)
	return n, nil
}

// Config returns the topology the network was built with.
func (n *Network) Config() Config { return n.cfg }

// Forward runs one padded sequence through the network and returns the
// class log-probabilities. The returned slice is reused by the next
// call.
func (n *Network) Forward(tokens []int32) []float32 {
	if len(tokens) != n.cfg.SeqLen {
		panic(fmt.Sprintf("nn: sequence length %d, network built for %d", len(tokens), n.cfg.SeqLen))
	}
	h := n.embed.Forward(tokens)
	h = n.pool1.Forward(n.relu1.Forward(n.conv1.Forward(h)))
	h = n.pool2.Forward(n.relu2.Forward(n.conv2.Forward(h)))
	h = n.gpool.Forward(n.relu3.Forward(n.conv3.Forward(h)))
	copy(n.flat.Row(0), h.Data)
	h = n.relu4.Forward(n.fc1.Forward(n.flat))
	logits := n.fc2.Forward(h)
	logSoftmax(logits.Row(0), n.logp)
	return n.logp
}

// Backward accumulates parameter gradients from the loss gradient with
// respect to the logits, for the sequence last run through Forward.
func (n *Network) Backward(dlogits []float32) {
	copy(n.dlogits.Row(0), dlogits)
	d := n.fc1.Backward(n.relu4.Backward(n.fc2.Backward(n.dlogits)))

	// unflatten (1, C) back onto the (C, 1) pooled column
	copy(n.dflat.Data, d.Row(0))

	d = n.conv3.Backward(n.relu3.Backward(n.gpool.Backward(n.dflat)))
	d = n.conv2.Backward(n.relu2.Backward(n.pool2.Backward(d)))
	n.conv1.Backward(n.relu1.Backward(n.pool1.Backward(d)))
}

// Params returns every tensor in checkpoint order, the frozen embedding
// first.
func (n *Network) Params() []*Param {
	return []*Param{
		n.embed.W,
		n.conv1.W, n.conv1.B,
		n.conv2.W, n.conv2.B,
		n.conv3.W, n.conv3.B,
		n.fc1.W, n.fc1.B,
		n.fc2.W, n.fc2.B,
	}
}

// ZeroGrad clears the accumulated gradients of every trainable param.
func (n *Network) ZeroGrad() {
	for _, p := range n.Params() {
		if p.Grad != nil {
			p.Grad.Zero()
		}
	}
}

// NumParams counts the trainable scalar parameters.
func (n *Network) NumParams() int {
	total := 0
	for _, p := range n.Params() {
		if p.Trainable {
			total += len(p.Value.Data)
		}
	}
	return total
}

// Summary renders one line per layer for startup logging.
func (n *Network) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "embedding (%d, %d) frozen\n", n.embed.W.Value.Rows, n.embed.W.Value.Cols)
	for i, c := range []*Conv1d{n.conv1, n.conv2, n.conv3} {
		fmt.Fprintf(&b, "conv%d    %d -> %d, kernel %d\n", i+1, c.In, c.Out, c.K)
	}
	fmt.Fprintf(&b, "pools    %d, %d, %d\n", n.pool1.W, n.pool2.W, n.gpool.W)
	fmt.Fprintf(&b, "fc1      %d -> %d\n", n.fc1.In, n.fc1.Out)
	fmt.Fprintf(&b, "fc2      %d -> %d\n", n.fc2.In, n.fc2.Out)
	fmt.Fprintf(&b, "trainable params %d", n.NumParams())
	return b.String()
}
