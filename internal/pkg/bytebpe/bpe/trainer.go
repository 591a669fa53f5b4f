package bpe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Stats describes a finished training run.
type Stats struct {
	OriginalLength  int
	FinalLength     int
	MergesRequested int
	MergesPerformed int
	// Exhausted is set when training ran out of pairs before reaching the
	// requested vocabulary size.
	Exhausted bool
}

func (s Stats) CompressionRatio() float64 {
	if s.FinalLength == 0 {
		return 0
	}
	return float64(s.OriginalLength) / float64(s.FinalLength)
}

type TrainerOptions struct {
	// MinFrequency stops training once the most frequent pair occurs fewer
	// times than this. Values below 1 are treated as 1.
	MinFrequency int
	// Workers > 1 counts pairs concurrently on large sequences.
	Workers int
	Logger  *zerolog.Logger
}

type Trainer struct {
	minFrequency int
	workers      int
	log          zerolog.Logger
}

func NewTrainer(opts TrainerOptions) *Trainer {
	t := &Trainer{
		minFrequency: max(opts.MinFrequency, 1),
		workers:      opts.Workers,
		log:          zerolog.Nop(),
	}
	if opts.Logger != nil {
		t.log = *opts.Logger
	}
	return t
}

// Train learns up to vocabSize-256 merges from text and returns the merge
// table together with the vocabulary extended by those merges.
//
// The most frequent adjacent pair is merged on every iteration. When several
// pairs share the highest count, the one whose first occurrence is leftmost
// in the current token sequence wins.
func (t *Trainer) Train(ctx context.Context, text string, vocabSize int) (*MergeTable, *Vocabulary, Stats, error) {
	if vocabSize <= NumBytes {
		return nil, nil, Stats{}, fmt.Errorf("%w: got %d", ErrInvalidVocabSize, vocabSize)
	}

	numMerges := vocabSize - NumBytes
	ids := bytesToIDs([]byte(text))
	stats := Stats{
		OriginalLength:  len(ids),
		MergesRequested: numMerges,
	}
	merges := NewMergeTable()

	t.log.Debug().
		Int("bytes", len(ids)).
		Int("merges", numMerges).
		Msg("Training BPE merges")

	for m := 0; m < numMerges; m++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, Stats{}, err
		}

		counts, err := CountPairsParallel(ctx, ids, t.workers)
		if err != nil {
			return nil, nil, Stats{}, err
		}
		best, count, ok := counts.Max()
		if !ok || count < t.minFrequency {
			t.log.Debug().Int("merge", m).Int("max_count", count).Msg("No pairs left to merge")
			stats.Exhausted = true
			break
		}

		id := FirstMergeID + m
		if err := merges.Record(best, id); err != nil {
			panic(err)
		}
		ids = replacePair(ids, best, id)

		t.log.Debug().
			Stringer("pair", best).
			Int("id", id).
			Int("count", count).
			Int("seq_len", len(ids)).
			Msg("Merged pair into new id")
	}

	vocab := NewVocabulary()
	for _, mg := range merges.merges {
		left, right := vocab.entries[mg.Pair.Left], vocab.entries[mg.Pair.Right]
		if err := vocab.Insert(mg.ID, concatBytes(left, right)); err != nil {
			panic(err)
		}
	}

	stats.FinalLength = len(ids)
	stats.MergesPerformed = merges.Len()
	return merges, vocab, stats, nil
}
