package bpe

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizerRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"a",
		"hello hello hello world world, Hey what's your name? 1234",
		"naïve café … ünïcödé ✓✓✓ 日本語日本語",
		strings.Repeat("abcab", 50),
	}

	untrained, err := New(Options{})
	require.NoError(t, err)

	for _, text := range texts {
		got, err := untrained.Decode(untrained.Encode(text))
		require.NoError(t, err)
		assert.Equal(t, text, got)

		trained, err := New(Options{CacheSize: 16})
		require.NoError(t, err)
		if text != "" {
			_, err = trained.Train(context.Background(), text, 280)
			require.NoError(t, err)
		}
		got, err = trained.Decode(trained.Encode(text))
		require.NoError(t, err)
		assert.Equal(t, text, got)
	}
}

func TestTokenizerTrainScenario(t *testing.T) {
	tok, err := New(Options{})
	require.NoError(t, err)

	stats, err := tok.Train(context.Background(), "aaabdaaabac", 258)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.MergesPerformed)
	assert.Equal(t, 258, tok.VocabSize())
	assert.Equal(t, 2, tok.NumMerges())

	assert.Equal(t, []ID{257, 'b', 'd', 257, 'b', 'a', 'c'}, tok.Encode("aaabdaaabac"))

	b, err := tok.TokenBytes(257)
	require.NoError(t, err)
	assert.Equal(t, []byte("aaa"), b)
}

func TestTokenizerTrainResetsCache(t *testing.T) {
	tok, err := New(Options{CacheSize: 4})
	require.NoError(t, err)

	assert.Equal(t, []ID{'a', 'a'}, tok.Encode("aa"))

	_, err = tok.Train(context.Background(), "aaaa", 257)
	require.NoError(t, err)
	assert.Equal(t, []ID{256}, tok.Encode("aa"))
}

func TestTokenizerTrainTwice(t *testing.T) {
	tok, err := New(Options{})
	require.NoError(t, err)

	_, err = tok.Train(context.Background(), "abab", 257)
	require.NoError(t, err)
	_, err = tok.Train(context.Background(), "abab", 257)
	assert.ErrorIs(t, err, ErrAlreadyTrained)
}

func TestTokenizerTrainInvalidSizeKeepsState(t *testing.T) {
	tok, err := New(Options{})
	require.NoError(t, err)

	_, err = tok.Train(context.Background(), "abab", 256)
	assert.ErrorIs(t, err, ErrInvalidVocabSize)
	assert.Equal(t, 256, tok.VocabSize())
	assert.Equal(t, 0, tok.NumMerges())
}

func TestRestore(t *testing.T) {
	tok, err := New(Options{})
	require.NoError(t, err)
	text := "the cat sat on the mat with the hat"
	_, err = tok.Train(context.Background(), text, 270)
	require.NoError(t, err)

	restored, err := Restore(tok.Merges(), Options{})
	require.NoError(t, err)

	if diff := cmp.Diff(tok.Merges(), restored.Merges()); diff != "" {
		t.Fatalf("merges differ (-trained +restored):\n%s", diff)
	}
	assert.Equal(t, tok.VocabSize(), restored.VocabSize())
	assert.Equal(t, tok.Encode("the hat sat"), restored.Encode("the hat sat"))
}

func TestRestoreDecodeMerged(t *testing.T) {
	tok, err := Restore([]Merge{{Pair{97, 97}, 256}}, Options{})
	require.NoError(t, err)

	got, err := tok.Decode([]ID{256})
	require.NoError(t, err)
	assert.Equal(t, "aa", got)
}

func TestRestoreRejectsInvalidMerges(t *testing.T) {
	cases := []struct {
		name   string
		merges []Merge
	}{
		{name: "id gap", merges: []Merge{{Pair{1, 2}, 257}}},
		{name: "forward reference", merges: []Merge{{Pair{257, 2}, 256}}},
		{name: "self reference", merges: []Merge{{Pair{256, 2}, 256}}},
		{name: "duplicate pair", merges: []Merge{{Pair{1, 2}, 256}, {Pair{1, 2}, 257}}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore(tt.merges, Options{})
			assert.Error(t, err)
		})
	}
}
