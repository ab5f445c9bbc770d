package train

import (
	"context"

	"textcnn/internal/dataset"
	"textcnn/internal/domain"
	"textcnn/internal/floats32"
	"textcnn/internal/nn"
)

// Evaluate runs the network over one split without touching its
// parameters. Loss is the mean of per-batch mean losses over the batches
// of the evaluated loader; accuracy is counted over all examples. When
// accumulators are supplied the run's numbers are appended to them.
func Evaluate(ctx context.Context, net *nn.Network, loader *dataset.Loader, lossAcc, accAcc *[]float64) (domain.EvalResult, error) {
	var res domain.EvalResult
	var lossSum float64
	batches := 0
	for b := range loader.Batches(ctx) {
		var batchLoss float32
		for i, x := range b.X {
			logp := net.Forward(x)
			batchLoss += nn.NLLLoss(logp, b.Y[i])
			pred := int32(floats32.ArgMax(logp))
			res.Pred = append(res.Pred, pred)
			if pred == b.Y[i] {
				res.Correct++
			}
			res.Total++
		}
		lossSum += float64(batchLoss) / float64(len(b.X))
		batches++
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if batches > 0 {
		res.Loss = lossSum / float64(batches)
	}
	if lossAcc != nil {
		*lossAcc = append(*lossAcc, res.Loss)
	}
	if accAcc != nil {
		*accAcc = append(*accAcc, res.Accuracy())
	}
	return res, nil
}
