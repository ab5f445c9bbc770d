// Package dataset partitions the encoded corpus and feeds it to the
// trainer in batches.
package dataset

import (
	"fmt"

	"golang.org/x/exp/rand"

	"textcnn/internal/domain"
)

// Splits groups the three partitions of the encoded corpus.
type Splits struct {
	Train domain.Split
	Val   domain.Split
	Test  domain.Split
}

// SplitTrainValTest draws a seeded permutation of the examples, takes
// the first testN permuted entries as the test split, then slices the
// trailing valN entries of the permuted remainder off as validation.
// Validation is therefore a plain suffix of the shuffled training set,
// not an independent draw; retraining with the same seed reproduces all
// three splits exactly.
func SplitTrainValTest(x [][]int32, y []int32, testN, valN int, seed uint64) (Splits, error) {
	n := len(x)
	if n != len(y) {
		return Splits{}, fmt.Errorf("dataset: %d sequences but %d labels", n, len(y))
	}
	if n == 0 {
		return Splits{}, fmt.Errorf("dataset: nothing to split")
	}
	if testN < 0 || valN < 0 {
		return Splits{}, fmt.Errorf("dataset: negative split size (test=%d validation=%d)", testN, valN)
	}
	if testN+valN >= n {
		return Splits{}, fmt.Errorf("dataset: test=%d plus validation=%d leaves no training examples out of %d", testN, valN, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	testIdx := perm[:testN]
	rest := perm[testN:]
	valIdx := rest[len(rest)-valN:]
	trainIdx := rest[:len(rest)-valN]

	return Splits{
		Train: gather("train", x, y, trainIdx),
		Val:   gather("validation", x, y, valIdx),
		Test:  gather("test", x, y, testIdx),
	}, nil
}

func gather(name string, x [][]int32, y []int32, idx []int) domain.Split {
	s := domain.Split{
		Name: name,
		X:    make([][]int32, len(idx)),
		Y:    make([]int32, len(idx)),
	}
	for i, j := range idx {
		s.X[i] = x[j]
		s.Y[i] = y[j]
	}
	return s
}
