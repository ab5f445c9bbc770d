// Package experiment persists per-run metrics under a timestamped
// directory, one CSV row per epoch. Recording is best-effort: when the
// directory cannot be created, the run proceeds without it.
package experiment

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"textcnn/internal/domain"
)

const runPrefix = "20ng-cnn"

// Recorder implements domain.Reporter by appending metric rows to CSV
// files inside its run directory: train.csv gets one row per batch,
// scalars.csv one row per epoch. The zero value is a disabled recorder
// that ignores every event.
type Recorder struct {
	dir string
	f   *os.File
	w   *csv.Writer
	tf  *os.File
	tw  *csv.Writer
	log *logrus.Logger
}

// New creates logDir/<prefix><timestamp> and the CSV files inside it.
// Any setup failure is logged once and yields a disabled recorder.
func New(logDir string, log *logrus.Logger) *Recorder {
	dir := filepath.Join(logDir, runPrefix+time.Now().Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.WithError(err).Warn("experiment recording disabled")
		return &Recorder{log: log}
	}
	f, err := os.Create(filepath.Join(dir, "scalars.csv"))
	if err != nil {
		log.WithError(err).Warn("experiment recording disabled")
		return &Recorder{log: log}
	}
	tf, err := os.Create(filepath.Join(dir, "train.csv"))
	if err != nil {
		f.Close()
		log.WithError(err).Warn("experiment recording disabled")
		return &Recorder{log: log}
	}
	w := csv.NewWriter(f)
	w.Write([]string{"epoch", "val_loss", "val_accuracy"})
	w.Flush()
	tw := csv.NewWriter(tf)
	tw.Write([]string{"epoch", "batch", "loss"})
	tw.Flush()
	return &Recorder{dir: dir, f: f, w: w, tf: tf, tw: tw, log: log}
}

// Enabled reports whether metrics are being written.
func (r *Recorder) Enabled() bool { return r.w != nil }

// Dir returns the run directory, empty when disabled.
func (r *Recorder) Dir() string { return r.dir }

func (r *Recorder) RunStarted(domain.RunInfo) {}

func (r *Recorder) BatchDone(p domain.BatchProgress) {
	if r.tw == nil {
		return
	}
	r.tw.Write([]string{
		strconv.Itoa(p.Epoch),
		strconv.Itoa(p.Batch),
		fmt.Sprintf("%.6f", p.Loss),
	})
}

func (r *Recorder) EpochDone(e domain.EpochResult) {
	if r.w == nil {
		return
	}
	if r.tw != nil {
		r.tw.Flush()
	}
	r.w.Write([]string{
		strconv.Itoa(e.Epoch),
		fmt.Sprintf("%.6f", e.Val.Loss),
		fmt.Sprintf("%.2f", e.Val.Accuracy()),
	})
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.log.WithError(err).Warn("experiment recording failed, disabling")
		r.w = nil
	}
}

func (r *Recorder) RunFinished(test domain.EvalResult) {
	if r.w == nil {
		return
	}
	r.w.Write([]string{"test", fmt.Sprintf("%.6f", test.Loss), fmt.Sprintf("%.2f", test.Accuracy())})
	r.w.Flush()
}

// Close flushes and releases the underlying files. Safe on a disabled
// recorder.
func (r *Recorder) Close() error {
	if r.f == nil {
		return nil
	}
	if r.w != nil {
		r.w.Flush()
	}
	if r.tw != nil {
		r.tw.Flush()
	}
	err := r.f.Close()
	if cerr := r.tf.Close(); err == nil {
		err = cerr
	}
	r.f, r.w, r.tf, r.tw = nil, nil, nil, nil
	return err
}
