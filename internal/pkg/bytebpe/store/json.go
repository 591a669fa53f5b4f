package store

import (
	"context"
	"encoding/json"
	"fmt"
)

func init() {
	Register("json", func(_ context.Context, path string) (Store, error) {
		return newFileStore(path, jsonCodec{}), nil
	})
}

type jsonCodec struct{}

func (jsonCodec) encode(m *Model) ([]byte, error) {
	data, err := json.MarshalIndent(toRecord(m), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode model JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func (jsonCodec) decode(data []byte) (*Model, error) {
	var r modelRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return r.model(), nil
}
