package bpe

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainerScenario(t *testing.T) {
	merges, vocab, stats, err := NewTrainer(TrainerOptions{}).Train(context.Background(), "aaabdaaabac", 258)
	require.NoError(t, err)

	assert.Equal(t, []Merge{
		{Pair{'a', 'a'}, 256},
		{Pair{256, 'a'}, 257},
	}, merges.Merges())
	assert.Equal(t, 258, vocab.Len())

	b, err := vocab.Get(256)
	require.NoError(t, err)
	assert.Equal(t, []byte("aa"), b)
	b, err = vocab.Get(257)
	require.NoError(t, err)
	assert.Equal(t, []byte("aaa"), b)

	assert.Equal(t, Stats{
		OriginalLength:  11,
		FinalLength:     7,
		MergesRequested: 2,
		MergesPerformed: 2,
	}, stats)
	assert.InDelta(t, 11.0/7.0, stats.CompressionRatio(), 1e-9)
}

func TestTrainerInvalidVocabSize(t *testing.T) {
	for _, size := range []int{-1, 0, 255, 256} {
		_, _, _, err := NewTrainer(TrainerOptions{}).Train(context.Background(), "abc", size)
		assert.ErrorIs(t, err, ErrInvalidVocabSize, "size %d", size)
	}
}

func TestTrainerSizeInvariant(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
	merges, vocab, stats, err := NewTrainer(TrainerOptions{}).Train(context.Background(), text, 300)
	require.NoError(t, err)
	require.False(t, stats.Exhausted)

	assert.Equal(t, 44, merges.Len())
	assert.Equal(t, 300, vocab.Len())

	for i, m := range merges.Merges() {
		assert.Equal(t, FirstMergeID+i, m.ID)
		r, ok := merges.PriorityOf(m.Pair)
		require.True(t, ok)
		assert.Equal(t, i, r)

		left, _ := vocab.Get(m.Pair.Left)
		right, _ := vocab.Get(m.Pair.Right)
		got, err := vocab.Get(m.ID)
		require.NoError(t, err)
		assert.Equal(t, append(left, right...), got)
	}
}

func TestTrainerDeterministic(t *testing.T) {
	text := "abcabcabdabdxyzxyz ab ab ab cd cd cd"
	first, _, _, err := NewTrainer(TrainerOptions{}).Train(context.Background(), text, 270)
	require.NoError(t, err)
	second, _, _, err := NewTrainer(TrainerOptions{Workers: 4}).Train(context.Background(), text, 270)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Merges(), second.Merges()); diff != "" {
		t.Errorf("merges differ between runs (-first +second):\n%s", diff)
	}
}

func TestTrainerExhaustion(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		merges int
		final  int
	}{
		{name: "empty", text: "", merges: 0, final: 0},
		{name: "single byte", text: "a", merges: 0, final: 1},
		{name: "two bytes", text: "ab", merges: 1, final: 1},
		{name: "run", text: "aaaa", merges: 2, final: 1},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			merges, vocab, stats, err := NewTrainer(TrainerOptions{}).Train(context.Background(), tt.text, 400)
			require.NoError(t, err)
			assert.True(t, stats.Exhausted)
			assert.Equal(t, tt.merges, stats.MergesPerformed)
			assert.Equal(t, tt.merges, merges.Len())
			assert.Equal(t, NumBytes+tt.merges, vocab.Len())
			assert.Equal(t, tt.final, stats.FinalLength)
		})
	}
}

func TestTrainerMinFrequency(t *testing.T) {
	merges, _, stats, err := NewTrainer(TrainerOptions{MinFrequency: 2}).Train(context.Background(), "abab", 300)
	require.NoError(t, err)
	assert.True(t, stats.Exhausted)
	assert.Equal(t, []Merge{{Pair{'a', 'b'}, 256}}, merges.Merges())
}

func TestTrainerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err := NewTrainer(TrainerOptions{}).Train(ctx, "aaaa", 300)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainerLogsMerges(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, _, _, err := NewTrainer(TrainerOptions{Logger: &logger}).Train(context.Background(), "aaabdaaabac", 258)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"pair":"(97,97)"`)
	assert.Contains(t, out, `"id":257`)
}
