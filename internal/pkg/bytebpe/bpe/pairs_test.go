package bpe

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pairCount struct {
	Pair  Pair
	Count int
}

func collect(s *PairStats) []pairCount {
	var out []pairCount
	s.Each(func(p Pair, c int) bool {
		out = append(out, pairCount{p, c})
		return true
	})
	return out
}

func TestCountPairs(t *testing.T) {
	cases := []struct {
		name     string
		tokens   []ID
		expected []pairCount
	}{
		{name: "empty", tokens: nil},
		{name: "single token", tokens: []ID{1}},
		{
			name:     "two tokens",
			tokens:   []ID{1, 2},
			expected: []pairCount{{Pair{1, 2}, 1}},
		},
		{
			name:   "overlapping run",
			tokens: []ID{97, 97, 97},
			expected: []pairCount{
				{Pair{97, 97}, 2},
			},
		},
		{
			name:   "first seen order",
			tokens: []ID{3, 1, 2, 3, 1, 2, 1},
			expected: []pairCount{
				{Pair{3, 1}, 2},
				{Pair{1, 2}, 2},
				{Pair{2, 3}, 1},
				{Pair{2, 1}, 1},
			},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(CountPairs(tt.tokens))
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("counts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPairStatsOrderMatters(t *testing.T) {
	s := CountPairs([]ID{1, 2, 1})
	assert.Equal(t, 1, s.Count(Pair{1, 2}))
	assert.Equal(t, 1, s.Count(Pair{2, 1}))
	assert.Equal(t, 0, s.Count(Pair{1, 1}))
	assert.Equal(t, 2, s.Len())
}

func TestPairStatsMaxTieBreak(t *testing.T) {
	// (5,6), (6,7) and (7,8) all occur twice and (5,6) is seen first.
	s := CountPairs([]ID{9, 5, 6, 7, 8, 5, 6, 7, 8})
	best, count, ok := s.Max()
	require.True(t, ok)
	assert.Equal(t, Pair{5, 6}, best)
	assert.Equal(t, 2, count)

	_, _, ok = CountPairs([]ID{1}).Max()
	assert.False(t, ok)
}

func TestCountPairsParallelMatchesSequential(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	tokens := make([]ID, 60000)
	for i := range tokens {
		tokens[i] = ID(r.Intn(12))
	}

	want := collect(CountPairs(tokens))
	for _, workers := range []int{0, 1, 3, 4, 8} {
		got, err := CountPairsParallel(context.Background(), tokens, workers)
		require.NoError(t, err)
		if diff := cmp.Diff(want, collect(got)); diff != "" {
			t.Fatalf("workers=%d mismatch (-want +got):\n%s", workers, diff)
		}
	}
}

func TestCountPairsParallelCancelled(t *testing.T) {
	tokens := make([]ID, 100000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CountPairsParallel(ctx, tokens, 4)
	assert.ErrorIs(t, err, context.Canceled)
}
