package domain

// Document is a single newsgroup post: the decoded body text plus the id
// of the category directory it was read from.
type Document struct {
	Text  string
	Label int32
}

// Split is a named partition of the encoded corpus. X holds one padded
// token sequence per document, Y the matching label ids.
type Split struct {
	Name string
	X    [][]int32
	Y    []int32
}

// Len returns the number of examples in the split.
func (s Split) Len() int { return len(s.X) }

// Batch is a contiguous group of examples consumed by the network in one
// forward/backward pass.
type Batch struct {
	X [][]int32
	Y []int32
}

// EvalResult reports the outcome of running the model over one split.
// Pred keeps the per-example argmax so callers can build a confusion
// matrix without a second pass.
type EvalResult struct {
	Loss    float64
	Correct int
	Total   int
	Pred    []int32
}

// Accuracy returns the share of correct predictions as a percentage.
func (r EvalResult) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return 100 * float64(r.Correct) / float64(r.Total)
}

// RunInfo describes a training run before the first batch is processed.
type RunInfo struct {
	Epochs    int
	BatchSize int
	TrainSize int
	ValSize   int
	TestSize  int
	Classes   int
}

// BatchProgress is emitted while an epoch is in flight. Seen counts the
// examples consumed before the current batch, Loss is that batch's mean
// loss.
type BatchProgress struct {
	Epoch   int
	Batch   int
	Batches int
	Seen    int
	Total   int
	Loss    float64
}

// EpochResult is emitted after each epoch with the validation metrics.
type EpochResult struct {
	Epoch int
	Val   EvalResult
}

// Reporter receives training progress events. Implementations render them
// (log lines, terminal dashboard) or persist them (run directory).
type Reporter interface {
	RunStarted(info RunInfo)
	BatchDone(p BatchProgress)
	EpochDone(e EpochResult)
	RunFinished(test EvalResult)
}
