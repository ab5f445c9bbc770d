package dataset

import (
	"context"

	"golang.org/x/exp/rand"

	"textcnn/internal/domain"
)

// Loader hands out batches of one split. With shuffling on the example
// order is re-drawn from the loader's seeded source on every pass, so
// epochs see different orders but a rerun of the whole training job sees
// the same ones.
type Loader struct {
	split     domain.Split
	batchSize int
	shuffle   bool
	rng       *rand.Rand
}

// NewLoader wraps a split. batchSize must be positive.
func NewLoader(split domain.Split, batchSize int, shuffle bool, seed uint64) *Loader {
	return &Loader{
		split:     split,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Len returns the number of examples in the underlying split.
func (l *Loader) Len() int { return l.split.Len() }

// NumBatches returns how many batches one pass produces. The last batch
// may be smaller than batchSize.
func (l *Loader) NumBatches() int {
	return (l.split.Len() + l.batchSize - 1) / l.batchSize
}

// Batches starts a producer goroutine that assembles batches ahead of
// the consumer and sends them over a buffered channel. The channel is
// closed after the last batch, or early when ctx is canceled. The loader
// serves one consumer at a time.
func (l *Loader) Batches(ctx context.Context) <-chan domain.Batch {
	ch := make(chan domain.Batch, 4)
	go func() {
		defer close(ch)
		idx := make([]int, l.split.Len())
		for i := range idx {
			idx[i] = i
		}
		if l.shuffle {
			l.rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		}
		for start := 0; start < len(idx); start += l.batchSize {
			end := min(start+l.batchSize, len(idx))
			b := domain.Batch{
				X: make([][]int32, 0, end-start),
				Y: make([]int32, 0, end-start),
			}
			for _, j := range idx[start:end] {
				b.X = append(b.X, l.split.X[j])
				b.Y = append(b.Y, l.split.Y[j])
			}
			select {
			case ch <- b:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
