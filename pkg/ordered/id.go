// Package ordered provides identifiers that carry a dynamically assigned
// sort rank, and a map that iterates in rank order while looking entries up
// by name alone.
package ordered

import (
	"cmp"
	"strings"
)

// ID is a string tagged with a sort rank. Equality only considers the name,
// ordering considers the rank first. The zero rank means the identifier has
// not been ranked yet; unranked identifiers sort after every ranked one.
type ID struct {
	Name string
	rank int
}

func NewID(name string) ID {
	return ID{Name: name}
}

func (id ID) String() string {
	return id.Name
}

// Rank returns the rank assigned by the last Init call, if any.
func (id ID) Rank() (int, bool) {
	return id.rank - 1, id.rank > 0
}

func (id ID) Equal(other ID) bool {
	return id.Name == other.Name
}

func (id ID) Compare(other ID) int {
	if c := cmp.Compare(id.sortRank(), other.sortRank()); c != 0 {
		return c
	}
	return strings.Compare(id.Name, other.Name)
}

func (id ID) Less(other ID) bool {
	return id.Compare(other) < 0
}

func (id ID) sortRank() uint {
	// rank 0 wraps around to the largest value.
	return uint(id.rank) - 1
}

// Init assigns the rank of the identifier from the given rank table. Names
// missing from the table become unranked.
func (id *ID) Init(ranks RankTable) {
	if r, ok := ranks[id.Name]; ok {
		id.rank = r + 1
		return
	}
	id.rank = 0
}

// RankTable maps names to their position in a reference ordering.
type RankTable map[string]int

// Ranks builds a rank table from a reference ordering. The first occurrence
// of a name wins.
func Ranks(names []string) RankTable {
	ranks := make(RankTable, len(names))
	for _, name := range names {
		if _, ok := ranks[name]; !ok {
			ranks[name] = len(ranks)
		}
	}
	return ranks
}

// RanksOf builds a rank table from a list of identifiers.
func RanksOf(ids []ID) RankTable {
	ranks := make(RankTable, len(ids))
	for _, id := range ids {
		if _, ok := ranks[id.Name]; !ok {
			ranks[id.Name] = len(ranks)
		}
	}
	return ranks
}
