package bpe

import "fmt"

// Merge records that Pair was replaced by ID.
type Merge struct {
	Pair Pair
	ID   ID
}

// MergeTable is the ordered set of learned merges. The position of a merge
// is its priority: lower positions are applied first when encoding.
type MergeTable struct {
	merges []Merge
	rank   map[Pair]int
	ids    map[ID]struct{}
}

func NewMergeTable() *MergeTable {
	return &MergeTable{
		rank: make(map[Pair]int),
		ids:  make(map[ID]struct{}),
	}
}

func (m *MergeTable) Lookup(p Pair) (ID, bool) {
	r, ok := m.rank[p]
	if !ok {
		return 0, false
	}
	return m.merges[r].ID, true
}

func (m *MergeTable) Record(p Pair, id ID) error {
	if _, ok := m.rank[p]; ok {
		return fmt.Errorf("%w: pair %s", ErrDuplicatePairOrID, p)
	}
	if _, ok := m.ids[id]; ok {
		return fmt.Errorf("%w: id %d", ErrDuplicatePairOrID, id)
	}
	m.rank[p] = len(m.merges)
	m.ids[id] = struct{}{}
	m.merges = append(m.merges, Merge{Pair: p, ID: id})
	return nil
}

// PriorityOf returns the 0-based position at which p was recorded.
func (m *MergeTable) PriorityOf(p Pair) (int, bool) {
	r, ok := m.rank[p]
	return r, ok
}

func (m *MergeTable) Len() int {
	return len(m.merges)
}

func (m *MergeTable) At(i int) Merge {
	return m.merges[i]
}

// Merges returns a copy of all merges in recording order.
func (m *MergeTable) Merges() []Merge {
	return append([]Merge(nil), m.merges...)
}
