package dataset

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textcnn/internal/domain"
)

// numbered builds a dataset where each row carries its own index, so
// split membership can be traced back.
func numbered(n int) ([][]int32, []int32) {
	x := make([][]int32, n)
	y := make([]int32, n)
	for i := range x {
		x[i] = []int32{int32(i)}
		y[i] = int32(i % 4)
	}
	return x, y
}

func ids(s domain.Split) []int {
	out := make([]int, s.Len())
	for i, row := range s.X {
		out[i] = int(row[0])
	}
	return out
}

func TestSplitSizesAndCoverage(t *testing.T) {
	x, y := numbered(40)

	sp, err := SplitTrainValTest(x, y, 8, 4, 42)
	require.NoError(t, err)

	assert.Equal(t, 28, sp.Train.Len())
	assert.Equal(t, 4, sp.Val.Len())
	assert.Equal(t, 8, sp.Test.Len())

	all := append(append(ids(sp.Train), ids(sp.Val)...), ids(sp.Test)...)
	sort.Ints(all)
	want := make([]int, 40)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, all)
}

func TestSplitLabelsFollowRows(t *testing.T) {
	x, y := numbered(20)

	sp, err := SplitTrainValTest(x, y, 5, 3, 1)
	require.NoError(t, err)

	for _, s := range []domain.Split{sp.Train, sp.Val, sp.Test} {
		for i, row := range s.X {
			assert.Equal(t, int32(int(row[0])%4), s.Y[i], "split %s row %d", s.Name, i)
		}
	}
}

func TestSplitDeterministicPerSeed(t *testing.T) {
	x, y := numbered(40)

	a, err := SplitTrainValTest(x, y, 8, 4, 42)
	require.NoError(t, err)
	b, err := SplitTrainValTest(x, y, 8, 4, 42)
	require.NoError(t, err)
	c, err := SplitTrainValTest(x, y, 8, 4, 43)
	require.NoError(t, err)

	assert.Equal(t, ids(a.Train), ids(b.Train))
	assert.Equal(t, ids(a.Val), ids(b.Val))
	assert.Equal(t, ids(a.Test), ids(b.Test))
	assert.NotEqual(t, ids(a.Test), ids(c.Test))
}

func TestValidationIsTrailingSliceOfShuffledTrain(t *testing.T) {
	x, y := numbered(30)

	whole, err := SplitTrainValTest(x, y, 6, 0, 9)
	require.NoError(t, err)
	carved, err := SplitTrainValTest(x, y, 6, 5, 9)
	require.NoError(t, err)

	full := ids(whole.Train)
	assert.Equal(t, full[:len(full)-5], ids(carved.Train))
	assert.Equal(t, full[len(full)-5:], ids(carved.Val))
	assert.Equal(t, ids(whole.Test), ids(carved.Test))
}

func TestSplitErrors(t *testing.T) {
	x, y := numbered(10)

	_, err := SplitTrainValTest(x, y[:9], 2, 2, 1)
	assert.Error(t, err)

	_, err = SplitTrainValTest(nil, nil, 0, 0, 1)
	assert.Error(t, err)

	_, err = SplitTrainValTest(x, y, 8, 2, 1)
	assert.Error(t, err, "no training examples left")

	_, err = SplitTrainValTest(x, y, -1, 0, 1)
	assert.Error(t, err)
}

func split(n int) domain.Split {
	x, y := numbered(n)
	return domain.Split{Name: "train", X: x, Y: y}
}

func TestLoaderBatchShapes(t *testing.T) {
	l := NewLoader(split(10), 4, false, 1)

	assert.Equal(t, 3, l.NumBatches())

	var sizes []int
	for b := range l.Batches(context.Background()) {
		require.Equal(t, len(b.X), len(b.Y))
		sizes = append(sizes, len(b.X))
	}
	assert.Equal(t, []int{4, 4, 2}, sizes)
}

func TestLoaderPreservesOrderWithoutShuffle(t *testing.T) {
	l := NewLoader(split(6), 4, false, 1)

	var got []int
	for b := range l.Batches(context.Background()) {
		for _, row := range b.X {
			got = append(got, int(row[0]))
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, got)
}

func TestLoaderShuffleCoversAllExamples(t *testing.T) {
	l := NewLoader(split(17), 5, true, 3)

	var got []int
	for b := range l.Batches(context.Background()) {
		for _, row := range b.X {
			got = append(got, int(row[0]))
		}
	}
	sort.Ints(got)
	want := make([]int, 17)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestLoaderReshufflesBetweenPassesButRunsAreReproducible(t *testing.T) {
	drain := func(l *Loader) []int {
		var out []int
		for b := range l.Batches(context.Background()) {
			for _, row := range b.X {
				out = append(out, int(row[0]))
			}
		}
		return out
	}

	a := NewLoader(split(32), 8, true, 5)
	first, second := drain(a), drain(a)
	assert.NotEqual(t, first, second)

	b := NewLoader(split(32), 8, true, 5)
	assert.Equal(t, first, drain(b))
	assert.Equal(t, second, drain(b))
}

func TestLoaderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLoader(split(100), 1, false, 1)

	ch := l.Batches(ctx)
	<-ch
	cancel()

	seen := 1
	for range ch {
		seen++
	}
	assert.Less(t, seen, 100)
}
