package ordered

import (
	"iter"
	"slices"

	"github.com/dolthub/swiss"
	"github.com/google/btree"
)

const btreeDegree = 8

// Entry is a key/value pair held by a Map.
type Entry[V any] struct {
	Key   ID
	Value V
}

// slot is an entry positioned in the tree by its sequence number.
type slot[V any] struct {
	seq uint64
	Entry[V]
}

func lessSlot[V any](a, b *slot[V]) bool {
	return a.seq < b.seq
}

// Map is an insertion-ordered map keyed by ID. Lookups only use the key
// name; iteration follows the entry order, which Sort rearranges into rank
// order. The zero value is an empty map ready to use.
//
// Entries live in a B-tree ordered by position and are found by name
// through a separate index, as ranks change on every Sort while lookups
// ignore them.
type Map[V any] struct {
	tree  *btree.BTreeG[*slot[V]]
	index *swiss.Map[string, *slot[V]]
	next  uint64
}

func NewMap[V any]() *Map[V] {
	return &Map[V]{}
}

func (m *Map[V]) init(size int) {
	if m.tree == nil {
		m.tree = btree.NewG(btreeDegree, lessSlot[V])
		m.index = swiss.NewMap[string, *slot[V]](uint32(size))
	}
}

func (m *Map[V]) Len() int {
	if m.tree == nil {
		return 0
	}
	return m.tree.Len()
}

func (m *Map[V]) lookup(name string) (*slot[V], bool) {
	if m.index == nil {
		return nil, false
	}
	return m.index.Get(name)
}

func (m *Map[V]) Get(name string) (V, bool) {
	if s, ok := m.lookup(name); ok {
		return s.Value, true
	}
	var zero V
	return zero, false
}

// Key returns the stored key for the name, including its rank.
func (m *Map[V]) Key(name string) (ID, bool) {
	if s, ok := m.lookup(name); ok {
		return s.Key, true
	}
	return ID{}, false
}

func (m *Map[V]) Has(name string) bool {
	_, ok := m.lookup(name)
	return ok
}

// Set stores the value under the key name. An existing entry keeps its
// position and its key; a new entry is appended.
func (m *Map[V]) Set(key ID, v V) {
	if s, ok := m.lookup(key.Name); ok {
		s.Value = v
		return
	}
	m.init(0)
	m.insert(Entry[V]{Key: key, Value: v})
}

func (m *Map[V]) insert(e Entry[V]) {
	s := &slot[V]{seq: m.next, Entry: e}
	m.next++
	m.tree.ReplaceOrInsert(s)
	m.index.Put(e.Key.Name, s)
}

// Delete removes the entry with the given name, preserving the order of
// the remaining entries.
func (m *Map[V]) Delete(name string) bool {
	s, ok := m.lookup(name)
	if !ok {
		return false
	}
	m.tree.Delete(s)
	m.index.Delete(name)
	return true
}

// At returns the i-th entry in iteration order.
func (m *Map[V]) At(i int) Entry[V] {
	if i < 0 || i >= m.Len() {
		panic("ordered: entry index out of range")
	}
	var (
		found Entry[V]
		n     int
	)
	m.tree.Ascend(func(s *slot[V]) bool {
		if n == i {
			found = s.Entry
			return false
		}
		n++
		return true
	})
	return found
}

// Entries returns a copy of the entries in order.
func (m *Map[V]) Entries() []Entry[V] {
	entries := make([]Entry[V], 0, m.Len())
	for k, v := range m.All() {
		entries = append(entries, Entry[V]{Key: k, Value: v})
	}
	return entries
}

func (m *Map[V]) Keys() []ID {
	keys := make([]ID, 0, m.Len())
	for k := range m.All() {
		keys = append(keys, k)
	}
	return keys
}

func (m *Map[V]) Values() []V {
	values := make([]V, 0, m.Len())
	for _, v := range m.All() {
		values = append(values, v)
	}
	return values
}

// All iterates over the entries in order.
func (m *Map[V]) All() iter.Seq2[ID, V] {
	return func(yield func(ID, V) bool) {
		if m.tree == nil {
			return
		}
		m.tree.Ascend(func(s *slot[V]) bool {
			return yield(s.Key, s.Value)
		})
	}
}

// Sort stably reorders the entries by key rank, then by name.
func (m *Map[V]) Sort() {
	if m.Len() == 0 {
		return
	}
	slots := make([]*slot[V], 0, m.Len())
	m.tree.Ascend(func(s *slot[V]) bool {
		slots = append(slots, s)
		return true
	})
	slices.SortStableFunc(slots, func(a, b *slot[V]) int {
		return a.Key.Compare(b.Key)
	})
	// Sequence numbers are rewritten, so the tree is rebuilt rather than
	// updated in place.
	m.tree.Clear(false)
	m.next = 0
	for _, s := range slots {
		s.seq = m.next
		m.next++
		m.tree.ReplaceOrInsert(s)
	}
}

// InitRanks assigns ranks to every key from the table and sorts the map.
func (m *Map[V]) InitRanks(ranks RankTable) {
	if m.tree != nil {
		m.tree.Ascend(func(s *slot[V]) bool {
			s.Key.Init(ranks)
			return true
		})
	}
	m.Sort()
}

// Clone returns a copy of the map. Values are copied with the given
// function, or assigned as-is when it is nil.
func (m *Map[V]) Clone(cloneValue func(V) V) *Map[V] {
	c := &Map[V]{}
	if m.Len() == 0 {
		return c
	}
	c.init(m.Len())
	for k, v := range m.All() {
		if cloneValue != nil {
			v = cloneValue(v)
		}
		c.insert(Entry[V]{Key: k, Value: v})
	}
	return c
}
