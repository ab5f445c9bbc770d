// Package newsgroups loads the 20 Newsgroups corpus from its on-disk
// layout: one directory per category, one numerically-named file per
// post, Latin-1 encoded, each post starting with an RFC 822 style header
// block.
package newsgroups

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"textcnn/internal/domain"
)

// Corpus is the decoded dataset. Label ids index into Labels and follow
// the lexicographic order of the category directories, so a corpus loads
// the same way on every machine.
type Corpus struct {
	Docs   []domain.Document
	Labels []string
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.Docs) }

// Texts returns the document bodies in corpus order.
func (c *Corpus) Texts() []string {
	out := make([]string, len(c.Docs))
	for i, d := range c.Docs {
		out[i] = d.Text
	}
	return out
}

// Load walks the immediate subdirectories of root in lexicographic
// order, assigning label ids in that order. Inside each category only
// regular files whose names are all digits count as posts; everything
// else (.svn droppings, READMEs) is skipped. Files are decoded as
// Latin-1 and the leading header block is stripped.
func Load(root string) (*Corpus, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("newsgroups: read corpus dir: %w", err)
	}
	c := &Corpus{}
	dec := charmap.ISO8859_1.NewDecoder()
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		label := int32(len(c.Labels))
		c.Labels = append(c.Labels, e.Name())
		dir := filepath.Join(root, e.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("newsgroups: read category %s: %w", e.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() || !isDigits(f.Name()) {
				continue
			}
			raw, err := os.ReadFile(filepath.Join(dir, f.Name()))
			if err != nil {
				return nil, fmt.Errorf("newsgroups: read post %s/%s: %w", e.Name(), f.Name(), err)
			}
			decoded, err := dec.Bytes(raw)
			if err != nil {
				return nil, fmt.Errorf("newsgroups: decode post %s/%s: %w", e.Name(), f.Name(), err)
			}
			c.Docs = append(c.Docs, domain.Document{
				Text:  stripHeader(string(decoded)),
				Label: label,
			})
		}
	}
	return c, nil
}

// stripHeader drops everything before the first blank line. A post that
// opens with a blank line has no header to strip and is kept whole.
func stripHeader(text string) string {
	if i := strings.Index(text, "\n\n"); i > 0 {
		return text[i:]
	}
	return text
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
