package glove

import (
	"fmt"

	"textcnn/internal/floats32"
)

// Stats reports how much of the in-budget vocabulary the embedding table
// covered when the matrix was built.
type Stats struct {
	Rows   int
	Dim    int
	Hits   int
	Misses int
}

// Coverage returns the share of in-budget tokens that got a pre-trained
// vector, as a percentage.
func (s Stats) Coverage() float64 {
	n := s.Rows - 1
	if n <= 0 {
		return 0
	}
	return 100 * float64(s.Hits) / float64(n)
}

// BuildMatrix lays out one embedding row per vocabulary index. Row 0
// stays zero for the padding id, tokens ranked past the vocabulary
// budget are dropped, and in-budget tokens missing from the table keep a
// zero row. wordIndex must use the dense 1-based ranks the vectorizer
// assigns.
func BuildMatrix(wordIndex map[string]int, table *Table, maxVocab, dim int) (*floats32.Matrix, Stats, error) {
	if table.Dim() != dim {
		return nil, Stats{}, fmt.Errorf("glove: embedding dimension mismatch: table has %d, config wants %d", table.Dim(), dim)
	}
	rows := len(wordIndex) + 1
	if maxVocab < rows {
		rows = maxVocab
	}
	m := floats32.NewMatrix(rows, dim)
	st := Stats{Rows: rows, Dim: dim}
	for token, idx := range wordIndex {
		if idx >= rows {
			continue
		}
		vec, ok := table.Vector(token)
		if !ok {
			st.Misses++
			continue
		}
		copy(m.Row(idx), vec)
		st.Hits++
	}
	return m, st, nil
}
