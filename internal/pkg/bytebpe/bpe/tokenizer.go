// Package bpe implements a byte-level byte-pair-encoding tokenizer.
//
// Token ids 0-255 stand for raw byte values. Training assigns ids 256, 257, ...
// to merged pairs in the order they are learned, and encoding replays those
// merges in the same order.
package bpe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

type Options struct {
	// CacheSize bounds the number of cached encode results, 0 disables caching.
	CacheSize    int
	MinFrequency int
	Workers      int
	Logger       *zerolog.Logger
}

// Tokenizer owns one vocabulary and one merge table.
// Encode and Decode may be called concurrently once training is done.
type Tokenizer struct {
	opts   Options
	vocab  *Vocabulary
	merges *MergeTable
	codec  *Codec
}

// New returns an untrained tokenizer that encodes text as raw bytes.
func New(opts Options) (*Tokenizer, error) {
	t := &Tokenizer{opts: opts}
	if err := t.install(NewMergeTable(), NewVocabulary()); err != nil {
		return nil, err
	}
	return t, nil
}

// Restore rebuilds a tokenizer from merges listed in priority order.
// Merge ids must run 256, 257, ... and only reference earlier ids.
func Restore(merges []Merge, opts Options) (*Tokenizer, error) {
	table := NewMergeTable()
	vocab := NewVocabulary()
	for i, m := range merges {
		want := FirstMergeID + i
		if m.ID != want {
			return nil, fmt.Errorf("%w: merge %d has id %d, want %d", ErrInvalidMerge, i, m.ID, want)
		}
		left, lok := vocab.entries[m.Pair.Left]
		right, rok := vocab.entries[m.Pair.Right]
		if !lok || !rok {
			return nil, fmt.Errorf("%w: merge %d references unknown id in %s", ErrInvalidMerge, i, m.Pair)
		}
		if err := table.Record(m.Pair, m.ID); err != nil {
			return nil, fmt.Errorf("merge %d: %w", i, err)
		}
		if err := vocab.Insert(m.ID, concatBytes(left, right)); err != nil {
			return nil, fmt.Errorf("merge %d: %w", i, err)
		}
	}

	t := &Tokenizer{opts: opts}
	if err := t.install(table, vocab); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tokenizer) install(merges *MergeTable, vocab *Vocabulary) error {
	codec, err := NewCodec(merges, vocab, t.opts.CacheSize)
	if err != nil {
		return err
	}
	t.merges, t.vocab, t.codec = merges, vocab, codec
	return nil
}

// Train learns merges from text until the vocabulary holds vocabSize entries
// or no pair is left to merge.
func (t *Tokenizer) Train(ctx context.Context, text string, vocabSize int) (Stats, error) {
	if t.merges.Len() > 0 {
		return Stats{}, ErrAlreadyTrained
	}

	trainer := NewTrainer(TrainerOptions{
		MinFrequency: t.opts.MinFrequency,
		Workers:      t.opts.Workers,
		Logger:       t.opts.Logger,
	})
	merges, vocab, stats, err := trainer.Train(ctx, text, vocabSize)
	if err != nil {
		return Stats{}, err
	}
	if err := t.install(merges, vocab); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (t *Tokenizer) Encode(text string) []ID {
	return t.codec.Encode(text)
}

func (t *Tokenizer) Decode(ids []ID) (string, error) {
	return t.codec.Decode(ids)
}

func (t *Tokenizer) DecodeTokens(ids []ID) ([]string, error) {
	return t.codec.DecodeTokens(ids)
}

func (t *Tokenizer) VocabSize() int {
	return t.vocab.Len()
}

// TokenBytes returns a copy of the bytes behind id.
func (t *Tokenizer) TokenBytes(id ID) ([]byte, error) {
	return t.vocab.Get(id)
}

// Merges returns the learned merges in priority order.
func (t *Tokenizer) Merges() []Merge {
	return t.merges.Merges()
}

func (t *Tokenizer) NumMerges() int {
	return t.merges.Len()
}
