package store

import (
	"bytes"
	"fmt"

	"bytebpe/internal/pkg/bytebpe/bpe"
)

const FormatVersion = 1

// Model is the persisted form of a trained tokenizer. Merges are kept in
// priority order; the vocabulary is stored alongside for inspection and is
// checked against the merges on load.
type Model struct {
	Version int
	Merges  []bpe.Merge
	Vocab   []VocabEntry
}

type VocabEntry struct {
	ID    bpe.ID
	Bytes []byte
}

func FromTokenizer(t *bpe.Tokenizer) (*Model, error) {
	m := &Model{
		Version: FormatVersion,
		Merges:  t.Merges(),
		Vocab:   make([]VocabEntry, 0, t.VocabSize()),
	}
	for id := 0; id < bpe.FirstMergeID+len(m.Merges); id++ {
		b, err := t.TokenBytes(id)
		if err != nil {
			return nil, fmt.Errorf("failed to read token %d: %w", id, err)
		}
		m.Vocab = append(m.Vocab, VocabEntry{ID: id, Bytes: b})
	}
	return m, nil
}

// Tokenizer rebuilds the tokenizer described by m.
func (m *Model) Tokenizer(opts bpe.Options) (*bpe.Tokenizer, error) {
	if m.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported model version %d", m.Version)
	}
	t, err := bpe.Restore(m.Merges, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to restore merges: %w", err)
	}
	if len(m.Vocab) != t.VocabSize() {
		return nil, fmt.Errorf("vocabulary has %d entries, merges imply %d", len(m.Vocab), t.VocabSize())
	}
	for _, e := range m.Vocab {
		b, err := t.TokenBytes(e.ID)
		if err != nil {
			return nil, fmt.Errorf("vocabulary entry: %w", err)
		}
		if !bytes.Equal(b, e.Bytes) {
			return nil, fmt.Errorf("vocabulary entry %d does not match its merge", e.ID)
		}
	}
	return t, nil
}
