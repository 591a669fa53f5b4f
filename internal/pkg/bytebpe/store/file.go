package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// fileStore keeps a model in a single file using codec to convert it.
type fileStore struct {
	path  string
	codec fileCodec
}

type fileCodec interface {
	encode(m *Model) ([]byte, error)
	decode(data []byte) (*Model, error)
}

func newFileStore(path string, codec fileCodec) *fileStore {
	return &fileStore{path: path, codec: codec}
}

func (s *fileStore) Save(ctx context.Context, m *Model) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.codec.encode(m)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

func (s *fileStore) Load(ctx context.Context) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return s.codec.decode(data)
}

func (s *fileStore) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".bytebpe-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move model file into place: %w", err)
	}
	return nil
}
