package bpe

import (
	"fmt"
	"sort"
)

// ID is a token identifier. Ids below NumBytes are raw byte values.
type ID = int

const (
	NumBytes     = 256
	FirstMergeID = ID(NumBytes)
)

// Vocabulary maps every token id to the bytes it stands for.
type Vocabulary struct {
	entries map[ID][]byte
}

func NewVocabulary() *Vocabulary {
	v := &Vocabulary{
		entries: make(map[ID][]byte, 512),
	}
	for i := 0; i < NumBytes; i++ {
		v.entries[i] = []byte{byte(i)}
	}
	return v
}

// Get returns a copy of the byte sequence for id.
func (v *Vocabulary) Get(id ID) ([]byte, error) {
	b, ok := v.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return append([]byte(nil), b...), nil
}

func (v *Vocabulary) Insert(id ID, seq []byte) error {
	if id < 0 {
		return fmt.Errorf("%w: negative id %d", ErrInvalidMerge, id)
	}
	if _, ok := v.entries[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	v.entries[id] = append([]byte(nil), seq...)
	return nil
}

func (v *Vocabulary) Has(id ID) bool {
	_, ok := v.entries[id]
	return ok
}

func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// IDs returns every id in ascending order.
func (v *Vocabulary) IDs() []ID {
	ids := make([]ID, 0, len(v.entries))
	for id := range v.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// appendBytes appends the sequence for id to dst without copying through Get.
func (v *Vocabulary) appendBytes(dst []byte, id ID) ([]byte, bool) {
	b, ok := v.entries[id]
	if !ok {
		return dst, false
	}
	return append(dst, b...), true
}

func concatBytes(a, b []byte) []byte {
	c := make([]byte, len(a)+len(b))
	copy(c, a)
	copy(c[len(a):], b)
	return c
}
