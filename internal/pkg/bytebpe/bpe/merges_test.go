package bpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTableRecordAndLookup(t *testing.T) {
	m := NewMergeTable()
	require.NoError(t, m.Record(Pair{97, 97}, 256))
	require.NoError(t, m.Record(Pair{256, 98}, 257))

	id, ok := m.Lookup(Pair{256, 98})
	require.True(t, ok)
	assert.Equal(t, 257, id)

	_, ok = m.Lookup(Pair{98, 256})
	assert.False(t, ok)

	r, ok := m.PriorityOf(Pair{97, 97})
	require.True(t, ok)
	assert.Equal(t, 0, r)
	r, _ = m.PriorityOf(Pair{256, 98})
	assert.Equal(t, 1, r)

	_, ok = m.PriorityOf(Pair{1, 2})
	assert.False(t, ok)

	assert.Equal(t, []Merge{
		{Pair{97, 97}, 256},
		{Pair{256, 98}, 257},
	}, m.Merges())
	assert.Equal(t, Merge{Pair{256, 98}, 257}, m.At(1))
}

func TestMergeTableRejectsDuplicates(t *testing.T) {
	m := NewMergeTable()
	require.NoError(t, m.Record(Pair{1, 2}, 256))

	assert.ErrorIs(t, m.Record(Pair{1, 2}, 257), ErrDuplicatePairOrID)
	assert.ErrorIs(t, m.Record(Pair{2, 1}, 256), ErrDuplicatePairOrID)
	assert.Equal(t, 1, m.Len())
}
