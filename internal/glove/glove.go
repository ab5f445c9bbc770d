// Package glove reads pre-trained word embeddings from the
// whitespace-separated text format the Stanford GloVe releases use and
// turns them into the frozen embedding matrix the network trains on.
package glove

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Table maps tokens to their embedding vectors. Every vector in a table
// has the same dimension.
type Table struct {
	dim     int
	vectors map[string][]float32
}

// Load reads an embedding file. Each line is a token followed by its
// vector components. The first line fixes the dimension; a later line
// with a different component count is an error. When a token appears
// twice the later line wins.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("glove: open embeddings: %w", err)
	}
	defer f.Close()

	t := &Table{vectors: make(map[string][]float32)}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("glove: %s:%d: token without vector", path, line)
		}
		token := fields[0]
		vals := fields[1:]
		if t.dim == 0 {
			t.dim = len(vals)
		} else if len(vals) != t.dim {
			return nil, fmt.Errorf("glove: %s:%d: expected %d components, got %d", path, line, t.dim, len(vals))
		}
		vec := make([]float32, len(vals))
		for i, v := range vals {
			x, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return nil, fmt.Errorf("glove: %s:%d: parse component %d: %w", path, line, i, err)
			}
			vec[i] = float32(x)
		}
		t.vectors[token] = vec
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("glove: read embeddings: %w", err)
	}
	if len(t.vectors) == 0 {
		return nil, fmt.Errorf("glove: no vectors found in %s", path)
	}
	return t, nil
}

// Dim returns the vector dimension.
func (t *Table) Dim() int { return t.dim }

// Len returns the number of distinct tokens in the table.
func (t *Table) Len() int { return len(t.vectors) }

// Vector returns the embedding for a token.
func (t *Table) Vector(token string) ([]float32, bool) {
	v, ok := t.vectors[token]
	return v, ok
}
