package store

import "bytebpe/internal/pkg/bytebpe/bpe"

// modelRecord is the document layout shared by the json and cbor drivers.
// Merges are an array so their order survives every encoding.
type modelRecord struct {
	Version int           `json:"version" cbor:"1,keyasint"`
	Vocab   []vocabRecord `json:"vocab" cbor:"2,keyasint"`
	Merges  []mergeRecord `json:"merges" cbor:"3,keyasint"`
}

type vocabRecord struct {
	ID    int    `json:"id" cbor:"1,keyasint"`
	Bytes []byte `json:"bytes" cbor:"2,keyasint"`
}

type mergeRecord struct {
	Left  int `json:"left" cbor:"1,keyasint"`
	Right int `json:"right" cbor:"2,keyasint"`
	ID    int `json:"id" cbor:"3,keyasint"`
}

func toRecord(m *Model) *modelRecord {
	r := &modelRecord{
		Version: m.Version,
		Vocab:   make([]vocabRecord, len(m.Vocab)),
		Merges:  make([]mergeRecord, len(m.Merges)),
	}
	for i, e := range m.Vocab {
		r.Vocab[i] = vocabRecord{ID: e.ID, Bytes: e.Bytes}
	}
	for i, mg := range m.Merges {
		r.Merges[i] = mergeRecord{Left: mg.Pair.Left, Right: mg.Pair.Right, ID: mg.ID}
	}
	return r
}

func (r *modelRecord) model() *Model {
	m := &Model{
		Version: r.Version,
		Vocab:   make([]VocabEntry, len(r.Vocab)),
		Merges:  make([]bpe.Merge, len(r.Merges)),
	}
	for i, e := range r.Vocab {
		m.Vocab[i] = VocabEntry{ID: e.ID, Bytes: e.Bytes}
	}
	for i, mg := range r.Merges {
		m.Merges[i] = bpe.Merge{Pair: bpe.Pair{Left: mg.Left, Right: mg.Right}, ID: mg.ID}
	}
	return m
}
