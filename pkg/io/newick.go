package io

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/tree"

	"github.com/matzehuels/hybridnet/pkg/errors"
)

// ParseNewick parses a single Newick tree.
func ParseNewick(s string) (*tree.Tree, error) {
	if err := errors.ValidateNewick(s); err != nil {
		return nil, err
	}
	t, err := newick.NewParser(strings.NewReader(strings.TrimSpace(s))).Parse()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNewick, err, "parse newick")
	}
	return t, nil
}

// ReadTrees reads every Newick tree from r. Trees are separated by ';' and
// may span several lines.
func ReadTrees(r io.Reader) ([]*tree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var out []*tree.Tree
	for i, part := range strings.Split(string(data), ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := ParseNewick(part + ";")
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i+1, err)
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidNewick, "no trees in input")
	}
	return out, nil
}

// ReadTreeFile reads every Newick tree from the file at path.
func ReadTreeFile(path string) ([]*tree.Tree, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTrees(f)
}

// ReadPair reads exactly two trees, either from one file holding both or
// from two files holding one each.
func ReadPair(paths ...string) (*tree.Tree, *tree.Tree, error) {
	var all []*tree.Tree
	for _, p := range paths {
		ts, err := ReadTreeFile(p)
		if err != nil {
			return nil, nil, err
		}
		all = append(all, ts...)
	}
	if len(all) != 2 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput,
			"expected 2 trees, found %d", len(all))
	}
	return all[0], all[1], nil
}

// children returns the neighbors of v other than the one it was reached from.
func children(v, from *tree.Node) []*tree.Node {
	var out []*tree.Node
	for _, n := range v.Neigh() {
		if n != from {
			out = append(out, n)
		}
	}
	return out
}
