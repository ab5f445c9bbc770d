// Package tokenizer turns raw text into padded integer sequences using
// the fit/encode split of the classic Keras text tokenizer, so models
// trained against indices produced elsewhere line up token for token.
package tokenizer

import (
	"sort"
	"strings"
)

// filters are the ASCII characters replaced by spaces before splitting.
// The apostrophe is deliberately absent, so contractions survive as
// single tokens.
const filters = "!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~\t\n"

var filtered = func() [128]bool {
	var t [128]bool
	for i := 0; i < len(filters); i++ {
		t[filters[i]] = true
	}
	return t
}()

// Tokenizer ranks every corpus token by frequency and encodes text
// against that ranking. The vocabulary budget is applied when encoding,
// not when fitting, so the full index stays available to callers that
// need it.
type Tokenizer struct {
	maxVocab  int
	wordIndex map[string]int
}

// New returns a tokenizer that encodes at most maxVocab distinct ids
// (ids 1..maxVocab-1, id 0 is reserved for padding). maxVocab <= 0
// means no budget.
func New(maxVocab int) *Tokenizer {
	return &Tokenizer{maxVocab: maxVocab, wordIndex: make(map[string]int)}
}

// MaxVocab returns the configured vocabulary budget.
func (t *Tokenizer) MaxVocab() int { return t.maxVocab }

// Fit builds the word index over the corpus: ids are assigned from 1 by
// descending token frequency, ties broken by first occurrence. Fitting
// again replaces the index.
func (t *Tokenizer) Fit(corpus []string) {
	counts := make(map[string]int)
	var order []string
	for _, text := range corpus {
		for _, tok := range tokenize(text) {
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	t.wordIndex = make(map[string]int, len(order))
	for rank, tok := range order {
		t.wordIndex[tok] = rank + 1
	}
}

// Len returns the number of distinct tokens seen while fitting.
func (t *Tokenizer) Len() int { return len(t.wordIndex) }

// WordIndex exposes the full fitted index, budget not applied. Callers
// must treat it as read-only.
func (t *Tokenizer) WordIndex() map[string]int { return t.wordIndex }

// Encode maps text to token ids. Unknown tokens and tokens ranked at or
// past the vocabulary budget are dropped, so the sequence length varies
// with content.
func (t *Tokenizer) Encode(text string) []int32 {
	var seq []int32
	for _, tok := range tokenize(text) {
		idx, ok := t.wordIndex[tok]
		if !ok {
			continue
		}
		if t.maxVocab > 0 && idx >= t.maxVocab {
			continue
		}
		seq = append(seq, int32(idx))
	}
	return seq
}

// EncodeAll encodes every text and pads each sequence to maxLen.
func (t *Tokenizer) EncodeAll(texts []string, maxLen int) [][]int32 {
	out := make([][]int32, len(texts))
	for i, text := range texts {
		out[i] = Pad(t.Encode(text), maxLen)
	}
	return out
}

// Pad fixes seq to exactly maxLen ids: long sequences keep their
// trailing tokens, short ones are left-padded with the zero id.
func Pad(seq []int32, maxLen int) []int32 {
	out := make([]int32, maxLen)
	if len(seq) >= maxLen {
		copy(out, seq[len(seq)-maxLen:])
		return out
	}
	copy(out[maxLen-len(seq):], seq)
	return out
}

// tokenize lowercases text, replaces filter characters with spaces and
// splits on single spaces, dropping empty pieces.
func tokenize(text string) []string {
	mapped := strings.Map(func(r rune) rune {
		if r < 128 && filtered[r] {
			return ' '
		}
		return r
	}, strings.ToLower(text))
	parts := strings.Split(mapped, " ")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
