// Package train drives the optimization loop and measures the model.
package train

import (
	"context"
	"fmt"

	"textcnn/internal/config"
	"textcnn/internal/dataset"
	"textcnn/internal/domain"
	"textcnn/internal/nn"
)

// Result collects the per-epoch validation history of one run plus the
// final test metrics.
type Result struct {
	ValLosses     []float64
	ValAccuracies []float64
	Test          domain.EvalResult
}

// Trainer runs epochs over the training split, validating after each
// one and reporting progress as it goes.
type Trainer struct {
	net      *nn.Network
	opt      *nn.RMSProp
	cfg      config.TrainingConfig
	reporter domain.Reporter
	dl       []float32
}

// New wires a trainer around the network. The reporter may be a fan-out
// of several sinks; pass Multi() for silence.
func New(net *nn.Network, cfg config.TrainingConfig, reporter domain.Reporter) *Trainer {
	return &Trainer{
		net:      net,
		opt:      nn.NewRMSProp(net.Params(), cfg.LearningRate),
		cfg:      cfg,
		reporter: reporter,
		dl:       make([]float32, net.Config().NumClasses),
	}
}

// Run trains for the configured number of epochs, validating after each
// one and measuring the test split once at the end. The training split
// is reshuffled every epoch from shuffleSeed; validation and test keep
// their order. Cancelling ctx stops between batches and returns the
// history so far.
func (t *Trainer) Run(ctx context.Context, s dataset.Splits, shuffleSeed uint64) (Result, error) {
	if s.Train.Len() == 0 {
		return Result{}, fmt.Errorf("train: empty training split")
	}
	trainLoader := dataset.NewLoader(s.Train, t.cfg.BatchSize, true, shuffleSeed)
	valLoader := dataset.NewLoader(s.Val, t.cfg.BatchSize, false, shuffleSeed)

	t.reporter.RunStarted(domain.RunInfo{
		Epochs:    t.cfg.Epochs,
		BatchSize: t.cfg.BatchSize,
		TrainSize: s.Train.Len(),
		ValSize:   s.Val.Len(),
		TestSize:  s.Test.Len(),
		Classes:   t.net.Config().NumClasses,
	})

	var res Result
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if err := t.trainEpoch(ctx, epoch, trainLoader); err != nil {
			return res, err
		}
		valRes, err := Evaluate(ctx, t.net, valLoader, &res.ValLosses, &res.ValAccuracies)
		if err != nil {
			return res, err
		}
		t.reporter.EpochDone(domain.EpochResult{Epoch: epoch, Val: valRes})
	}

	testLoader := dataset.NewLoader(s.Test, t.cfg.BatchSize, false, shuffleSeed)
	testRes, err := Evaluate(ctx, t.net, testLoader, nil, nil)
	if err != nil {
		return res, err
	}
	res.Test = testRes
	t.reporter.RunFinished(testRes)
	return res, nil
}

func (t *Trainer) trainEpoch(ctx context.Context, epoch int, loader *dataset.Loader) error {
	batches := loader.NumBatches()
	total := loader.Len()
	batch, seen := 0, 0
	for b := range loader.Batches(ctx) {
		loss := t.trainBatch(b)
		t.reporter.BatchDone(domain.BatchProgress{
			Epoch:   epoch,
			Batch:   batch,
			Batches: batches,
			Seen:    seen,
			Total:   total,
			Loss:    loss,
		})
		batch++
		seen += len(b.X)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// trainBatch accumulates gradients over the batch, scaled so the step
// optimizes the mean loss, and applies one optimizer update. Returns the
// batch mean loss.
func (t *Trainer) trainBatch(b domain.Batch) float64 {
	t.net.ZeroGrad()
	inv := 1 / float32(len(b.X))
	var loss float32
	for i, x := range b.X {
		logp := t.net.Forward(x)
		loss += nn.NLLLoss(logp, b.Y[i])
		nn.NLLGrad(logp, b.Y[i], inv, t.dl)
		t.net.Backward(t.dl)
	}
	t.opt.Step()
	return float64(loss) / float64(len(b.X))
}
