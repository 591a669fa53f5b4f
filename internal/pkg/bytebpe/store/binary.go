package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"bytebpe/internal/pkg/bytebpe/bpe"
)

const binaryMagic = "BBPE"

func init() {
	Register("bin", func(_ context.Context, path string) (Store, error) {
		return newFileStore(path, binaryCodec{}), nil
	})
}

// binaryCodec writes a little-endian file:
//
//	"BBPE" u16 version
//	u32 merges, then per merge u32 left, u32 right, u32 id
//	u32 vocab entries, then per entry u32 id, u32 length, bytes
type binaryCodec struct{}

func (binaryCodec) encode(m *Model) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(binaryMagic)
	if err := binary.Write(&buf, binary.LittleEndian, uint16(m.Version)); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(m.Merges))); err != nil {
		return nil, err
	}
	for _, mg := range m.Merges {
		rec := [3]uint32{uint32(mg.Pair.Left), uint32(mg.Pair.Right), uint32(mg.ID)}
		if err := binary.Write(&buf, binary.LittleEndian, rec); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(m.Vocab))); err != nil {
		return nil, err
	}
	for _, e := range m.Vocab {
		if err := binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(e.ID), uint32(len(e.Bytes))}); err != nil {
			return nil, err
		}
		buf.Write(e.Bytes)
	}
	return buf.Bytes(), nil
}

func (binaryCodec) decode(data []byte) (*Model, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, len(binaryMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if string(magic) != binaryMagic {
		return nil, fmt.Errorf("invalid model magic number")
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	m := &Model{Version: int(version)}

	var numMerges uint32
	if err := binary.Read(r, binary.LittleEndian, &numMerges); err != nil {
		return nil, fmt.Errorf("failed to read merge count: %w", err)
	}
	if int64(numMerges)*12 > int64(r.Len()) {
		return nil, fmt.Errorf("merge count %d exceeds file size", numMerges)
	}
	m.Merges = make([]bpe.Merge, numMerges)
	for i := range m.Merges {
		var rec [3]uint32
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("failed to read merge %d: %w", i, err)
		}
		m.Merges[i] = bpe.Merge{Pair: bpe.Pair{Left: int(rec[0]), Right: int(rec[1])}, ID: int(rec[2])}
	}

	var numVocab uint32
	if err := binary.Read(r, binary.LittleEndian, &numVocab); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary size: %w", err)
	}
	if int64(numVocab)*8 > int64(r.Len()) {
		return nil, fmt.Errorf("vocabulary size %d exceeds file size", numVocab)
	}
	m.Vocab = make([]VocabEntry, numVocab)
	for i := range m.Vocab {
		var hdr [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return nil, fmt.Errorf("failed to read vocabulary entry %d: %w", i, err)
		}
		if int64(hdr[1]) > int64(r.Len()) {
			return nil, fmt.Errorf("vocabulary entry %d length %d exceeds file size", i, hdr[1])
		}
		b := make([]byte, hdr[1])
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, fmt.Errorf("failed to read vocabulary entry %d: %w", i, err)
		}
		m.Vocab[i] = VocabEntry{ID: int(hdr[0]), Bytes: b}
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after vocabulary", r.Len())
	}
	return m, nil
}
