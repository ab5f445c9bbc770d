package train

import (
	"github.com/sirupsen/logrus"

	"textcnn/internal/domain"
)

// logReporter renders progress through the shared logger, one training
// line every interval batches plus a summary per epoch.
type logReporter struct {
	log      *logrus.Logger
	interval int
}

// NewLogReporter throttles batch lines to every interval batches;
// interval <= 0 logs every batch.
func NewLogReporter(log *logrus.Logger, interval int) domain.Reporter {
	return &logReporter{log: log, interval: interval}
}

func (r *logReporter) RunStarted(info domain.RunInfo) {
	r.log.WithFields(logrus.Fields{
		"epochs":     info.Epochs,
		"batch_size": info.BatchSize,
		"train":      info.TrainSize,
		"validation": info.ValSize,
		"classes":    info.Classes,
	}).Info("starting training")
}

func (r *logReporter) BatchDone(p domain.BatchProgress) {
	if r.interval > 0 && p.Batch%r.interval != 0 {
		return
	}
	pct := 0.0
	if p.Batches > 0 {
		pct = 100 * float64(p.Batch) / float64(p.Batches)
	}
	r.log.Infof("train epoch %d [%d/%d (%.0f%%)] loss: %.6f", p.Epoch, p.Seen, p.Total, pct, p.Loss)
}

func (r *logReporter) EpochDone(e domain.EpochResult) {
	r.log.Infof("epoch %d validation: average loss %.4f, accuracy %d/%d (%.0f%%)",
		e.Epoch, e.Val.Loss, e.Val.Correct, e.Val.Total, e.Val.Accuracy())
}

func (r *logReporter) RunFinished(test domain.EvalResult) {
	r.log.Infof("test: average loss %.4f, accuracy %d/%d (%.0f%%)",
		test.Loss, test.Correct, test.Total, test.Accuracy())
}

// multiReporter fans events out in order.
type multiReporter []domain.Reporter

// Multi bundles reporters into one; nils are dropped.
func Multi(rs ...domain.Reporter) domain.Reporter {
	var out multiReporter
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multiReporter) RunStarted(info domain.RunInfo) {
	for _, r := range m {
		r.RunStarted(info)
	}
}

func (m multiReporter) BatchDone(p domain.BatchProgress) {
	for _, r := range m {
		r.BatchDone(p)
	}
}

func (m multiReporter) EpochDone(e domain.EpochResult) {
	for _, r := range m {
		r.EpochDone(e)
	}
}

func (m multiReporter) RunFinished(test domain.EvalResult) {
	for _, r := range m {
		r.RunFinished(test)
	}
}
