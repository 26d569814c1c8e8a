package symgen

import (
	"path/filepath"
	"strings"

	"github.com/grafana/symgen/pkg/iter"
)

// SubregionDir returns the directory holding the subregion files of the
// file at path: the path without its extension.
func SubregionDir(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// SubregionPath resolves the file path of a subregion declared by the file
// at parent.
func SubregionPath(parent, name string) string {
	return filepath.Join(SubregionDir(parent), filepath.FromSlash(name))
}

// Cursor points at one symbol table of a tree together with the file path
// it is stored at.
type Cursor struct {
	Path  string
	Table *SymGen
	// Depth is 0 for the root table.
	Depth int
	// Block is the block declaring the subregion, empty for the root.
	Block string
}

// children returns the cursors of the loaded subregions of the table, in
// declaration order.
func (c Cursor) children() []Cursor {
	var children []Cursor
	for name, b := range c.Table.Blocks() {
		for _, sub := range b.Subregions {
			if sub.Contents == nil {
				continue
			}
			children = append(children, Cursor{
				Path:  SubregionPath(c.Path, sub.Name),
				Table: sub.Contents,
				Depth: c.Depth + 1,
				Block: name,
			})
		}
	}
	return children
}

type breadthFirst struct {
	queue []Cursor
	cur   Cursor
}

// BreadthFirst iterates over the table at path and every loaded subregion
// below it, level by level. Unloaded subregions are skipped.
func BreadthFirst(path string, root *SymGen) iter.Iterator[Cursor] {
	return &breadthFirst{queue: []Cursor{{Path: path, Table: root}}}
}

func (i *breadthFirst) Next() bool {
	if len(i.queue) == 0 {
		i.cur = Cursor{}
		return false
	}
	i.cur = i.queue[0]
	i.queue = append(i.queue[1:], i.cur.children()...)
	return true
}

func (i *breadthFirst) At() Cursor   { return i.cur }
func (i *breadthFirst) Err() error   { return nil }
func (i *breadthFirst) Close() error { return nil }

type depthFirst struct {
	stack []Cursor
	cur   Cursor
}

// DepthFirst iterates over the table at path and every loaded subregion
// below it in pre-order. Unloaded subregions are skipped.
func DepthFirst(path string, root *SymGen) iter.Iterator[Cursor] {
	return &depthFirst{stack: []Cursor{{Path: path, Table: root}}}
}

func (i *depthFirst) Next() bool {
	if len(i.stack) == 0 {
		i.cur = Cursor{}
		return false
	}
	last := len(i.stack) - 1
	i.cur = i.stack[last]
	i.stack = i.stack[:last]
	children := i.cur.children()
	for j := len(children) - 1; j >= 0; j-- {
		i.stack = append(i.stack, children[j])
	}
	return true
}

func (i *depthFirst) At() Cursor   { return i.cur }
func (i *depthFirst) Err() error   { return nil }
func (i *depthFirst) Close() error { return nil }
