package glove

import (
	"fmt"
	"sort"

	"textcnn/internal/floats32"
)

// Neighbor is a token scored by cosine similarity against a query.
type Neighbor struct {
	Token string
	Score float32
}

// Nearest scores every table entry against the query token by cosine
// similarity and returns the k best, the query itself excluded. Zero
// vectors are skipped rather than scored.
func (t *Table) Nearest(token string, k int) ([]Neighbor, error) {
	q, ok := t.vectors[token]
	if !ok {
		return nil, fmt.Errorf("glove: token %q not in table", token)
	}
	if k <= 0 {
		k = 10
	}
	qn := floats32.Norm(q)
	if qn == 0 {
		return nil, fmt.Errorf("glove: token %q has a zero vector", token)
	}
	scored := make([]Neighbor, 0, len(t.vectors)-1)
	for tok, vec := range t.vectors {
		if tok == token {
			continue
		}
		n := floats32.Norm(vec)
		if n == 0 {
			continue
		}
		scored = append(scored, Neighbor{Token: tok, Score: floats32.Dot(q, vec) / (qn * n)})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}
