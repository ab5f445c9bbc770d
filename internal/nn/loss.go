package nn

import (
	"github.com/chewxy/math32"

	"textcnn/internal/floats32"
)

// logSoftmax writes log-probabilities for the given logits into out,
// using the max-shift form so large logits cannot overflow.
func logSoftmax(logits, out []float32) {
	m := floats32.Max(logits)
	var sum float32
	for _, v := range logits {
		sum += math32.Exp(v - m)
	}
	lse := m + math32.Log(sum)
	for i, v := range logits {
		out[i] = v - lse
	}
}

// NLLLoss returns the negative log-likelihood of target under logProbs.
func NLLLoss(logProbs []float32, target int32) float32 {
	return -logProbs[target]
}

// NLLGrad writes the gradient of the scaled loss with respect to the
// logits, (softmax - onehot) * invBatch. The log-softmax backward is
// folded in; exp of a log-probability is the probability itself.
func NLLGrad(logProbs []float32, target int32, invBatch float32, dst []float32) {
	for i, lp := range logProbs {
		dst[i] = math32.Exp(lp) * invBatch
	}
	dst[target] -= invBatch
}
