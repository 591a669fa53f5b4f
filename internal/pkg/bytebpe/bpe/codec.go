package bpe

import (
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	xunicode "golang.org/x/text/encoding/unicode"
)

// Codec encodes text with a merge table and decodes ids with a vocabulary.
// Both must not change while the codec is in use.
type Codec struct {
	merges *MergeTable
	vocab  *Vocabulary
	cache  *lru.Cache[string, []ID]
}

// NewCodec builds a codec. cacheSize > 0 keeps that many encode results.
func NewCodec(merges *MergeTable, vocab *Vocabulary, cacheSize int) (*Codec, error) {
	c := &Codec{merges: merges, vocab: vocab}
	if cacheSize > 0 {
		cache, err := lru.New[string, []ID](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create encode cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Encode converts text into token ids by applying merges in the order they
// were learned.
func (c *Codec) Encode(text string) []ID {
	if c.cache != nil {
		if ids, ok := c.cache.Get(text); ok {
			return slices.Clone(ids)
		}
	}

	ids := c.encode(text)

	if c.cache != nil {
		c.cache.Add(text, slices.Clone(ids))
	}
	return ids
}

func (c *Codec) encode(text string) []ID {
	ids := bytesToIDs([]byte(text))
	for len(ids) >= 2 {
		var best Pair
		bestRank := -1
		for i := 0; i < len(ids)-1; i++ {
			p := Pair{ids[i], ids[i+1]}
			if r, ok := c.merges.PriorityOf(p); ok && (bestRank < 0 || r < bestRank) {
				best, bestRank = p, r
			}
		}
		if bestRank < 0 {
			break
		}
		ids = replacePair(ids, best, c.merges.At(bestRank).ID)
	}
	return ids
}

// Decode concatenates the bytes of every id and interprets them as UTF-8.
// Ill-formed byte runs are replaced by U+FFFD.
func (c *Codec) Decode(ids []ID) (string, error) {
	buf := make([]byte, 0, len(ids)*2)
	for i, id := range ids {
		var ok bool
		if buf, ok = c.vocab.appendBytes(buf, id); !ok {
			return "", fmt.Errorf("position %d: %w: %d", i, ErrUnknownID, id)
		}
	}
	return decodeLossy(buf)
}

// DecodeTokens decodes every id on its own.
func (c *Codec) DecodeTokens(ids []ID) ([]string, error) {
	out := make([]string, 0, len(ids))
	for i, id := range ids {
		b, ok := c.vocab.entries[id]
		if !ok {
			return nil, fmt.Errorf("position %d: %w: %d", i, ErrUnknownID, id)
		}
		s, err := decodeLossy(b)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeLossy(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	out, err := xunicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("failed to decode bytes: %w", err)
	}
	return string(out), nil
}
