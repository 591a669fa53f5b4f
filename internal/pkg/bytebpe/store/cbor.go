package store

import (
	"context"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

func init() {
	Register("cbor", func(_ context.Context, path string) (Store, error) {
		em, err := cbor.CanonicalEncOptions().EncMode()
		if err != nil {
			return nil, fmt.Errorf("failed to build cbor encoder: %w", err)
		}
		return newFileStore(path, cborCodec{em: em}), nil
	})
}

type cborCodec struct {
	em cbor.EncMode
}

func (c cborCodec) encode(m *Model) ([]byte, error) {
	data, err := c.em.Marshal(toRecord(m))
	if err != nil {
		return nil, fmt.Errorf("failed to encode model CBOR: %w", err)
	}
	return data, nil
}

func (cborCodec) decode(data []byte) (*Model, error) {
	var r modelRecord
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse model CBOR: %w", err)
	}
	return r.model(), nil
}
