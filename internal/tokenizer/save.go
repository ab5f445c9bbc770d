package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
)

type savedIndex struct {
	MaxVocab  int            `json:"max_vocab"`
	WordIndex map[string]int `json:"word_index"`
}

// Save writes the fitted index as JSON so a trained model can encode new
// text with the exact vocabulary it was trained on.
func (t *Tokenizer) Save(path string) error {
	data, err := json.Marshal(savedIndex{MaxVocab: t.maxVocab, WordIndex: t.wordIndex})
	if err != nil {
		return fmt.Errorf("tokenizer: encode index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("tokenizer: write index: %w", err)
	}
	return nil
}

// LoadFile reads an index written by Save.
func LoadFile(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: read index: %w", err)
	}
	var s savedIndex
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("tokenizer: parse index: %w", err)
	}
	t := &Tokenizer{maxVocab: s.MaxVocab, wordIndex: s.WordIndex}
	if t.wordIndex == nil {
		t.wordIndex = make(map[string]int)
	}
	return t, nil
}
