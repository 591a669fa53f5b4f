package bpe

import (
	"context"
	"fmt"

	"github.com/emirpasic/gods/v2/maps/linkedhashmap"
	"golang.org/x/sync/errgroup"
)

// Pair is two adjacent token ids, order matters.
type Pair struct {
	Left, Right ID
}

func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.Left, p.Right)
}

// PairStats holds adjacency counts. Iteration follows the position at which
// each pair was first seen in the counted sequence.
type PairStats struct {
	counts *linkedhashmap.Map[Pair, int]
}

func newPairStats() *PairStats {
	return &PairStats{counts: linkedhashmap.New[Pair, int]()}
}

// CountPairs counts the len(tokens)-1 overlapping pairs of tokens.
func CountPairs(tokens []ID) *PairStats {
	s := newPairStats()
	s.addRange(tokens, 0, len(tokens)-1)
	return s
}

// CountPairsParallel produces the same result as CountPairs, splitting the
// pair start positions into contiguous chunks counted concurrently.
func CountPairsParallel(ctx context.Context, tokens []ID, workers int) (*PairStats, error) {
	n := len(tokens) - 1
	if workers <= 1 || n < workers*minPairsPerWorker {
		return CountPairs(tokens), nil
	}

	chunk := (n + workers - 1) / workers
	partials := make([]*PairStats, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := newPairStats()
			s.addRange(tokens, lo, hi)
			partials[w] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := newPairStats()
	for _, part := range partials {
		if part == nil {
			continue
		}
		it := part.counts.Iterator()
		for it.Next() {
			c, _ := merged.counts.Get(it.Key())
			merged.counts.Put(it.Key(), c+it.Value())
		}
	}
	return merged, nil
}

const minPairsPerWorker = 4096

// addRange counts pairs starting at positions [lo, hi).
func (s *PairStats) addRange(tokens []ID, lo, hi int) {
	for i := lo; i < hi; i++ {
		p := Pair{tokens[i], tokens[i+1]}
		c, _ := s.counts.Get(p)
		s.counts.Put(p, c+1)
	}
}

func (s *PairStats) Count(p Pair) int {
	c, _ := s.counts.Get(p)
	return c
}

func (s *PairStats) Len() int {
	return s.counts.Size()
}

// Each calls fn for every pair in first-seen order until fn returns false.
func (s *PairStats) Each(fn func(p Pair, count int) bool) {
	it := s.counts.Iterator()
	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			return
		}
	}
}

// Max returns the pair with the highest count. Among equal counts the pair
// seen first wins.
func (s *PairStats) Max() (best Pair, count int, ok bool) {
	s.Each(func(p Pair, c int) bool {
		if c > count {
			best, count, ok = p, c, true
		}
		return true
	})
	return best, count, ok
}
