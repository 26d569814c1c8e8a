package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/xlab/treeprint"

	appcontext "github.com/grafana/symgen/pkg/app/context"
	"github.com/grafana/symgen/pkg/symfile"
	"github.com/grafana/symgen/pkg/symgen"
)

type treeParams struct {
	paths []string
}

func addTreeParams(cmd commander) *treeParams {
	params := &treeParams{}
	cmd.Arg("path", "Symbol table file(s) to print.").Required().StringsVar(&params.paths)
	return params
}

func printTrees(ctx context.Context, fs afero.Fs, params *treeParams) error {
	out := appcontext.Output(ctx)
	for _, path := range params.paths {
		table, err := symfile.Load(fs, path, symfile.LoadOptions{Recursive: true})
		if err != nil {
			return err
		}
		tree := treeprint.NewWithRoot(path)
		addTable(tree, table)
		if _, err := fmt.Fprint(out, tree.String()); err != nil {
			return err
		}
	}
	return nil
}

func addTable(node treeprint.Tree, table *symgen.SymGen) {
	for name, b := range table.Blocks() {
		branch := node.AddMetaBranch(blockSummary(b), name)
		for _, sub := range b.Subregions {
			if sub.Contents == nil {
				branch.AddMetaNode("not loaded", sub.Name)
				continue
			}
			addTable(branch.AddBranch(sub.Name), sub.Contents)
		}
	}
}

func blockSummary(b *symgen.Block) string {
	return fmt.Sprintf("%s, %d functions, %d data", blockSize(b.Length), len(b.Functions), len(b.Data))
}

// blockSize renders the length of a block, listing every distinct length of
// a version-dependent one.
func blockSize(length symgen.MaybeVersionDep[symgen.Uint]) string {
	switch l := length.(type) {
	case symgen.Common[symgen.Uint]:
		return humanize.IBytes(uint64(l.Value))
	case *symgen.VersionMap[symgen.Uint]:
		if l.Len() == 0 {
			break
		}
		sizes := lo.Map(l.Entries(), func(e symgen.VersionEntry[symgen.Uint], _ int) string {
			return humanize.IBytes(uint64(e.Value))
		})
		return strings.Join(lo.Uniq(sizes), " | ")
	}
	return "unknown size"
}
