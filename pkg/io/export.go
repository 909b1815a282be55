package io

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/evolbioinfo/gotree/tree"

	"github.com/matzehuels/hybridnet/pkg/hybrid"
	"github.com/matzehuels/hybridnet/pkg/network"
	"github.com/matzehuels/hybridnet/pkg/phylo"
)

// Document is the exported form of a search result.
type Document struct {
	HybridizationNumber int          `json:"hybridization_number"`
	Taxa                []string     `json:"taxa"`
	Dropped             []string     `json:"dropped,omitempty"`
	Networks            []NetworkDoc `json:"networks"`
	Stats               hybrid.Stats `json:"stats"`
}

// NetworkDoc describes one network of a [Document].
type NetworkDoc struct {
	Newick        string           `json:"newick"`
	Reticulations int              `json:"reticulations"`
	Tree1         string           `json:"tree1"`
	Tree2         string           `json:"tree2"`
	Graph         *network.Network `json:"graph"`
}

// NewDocument exports res with the labels of inst.
func NewDocument(res *hybrid.Result, inst *Instance) *Document {
	doc := &Document{
		HybridizationNumber: res.HybridizationNumber,
		Taxa:                inst.Taxa.Labels(),
		Dropped:             inst.Dropped,
		Networks:            make([]NetworkDoc, len(res.Networks)),
		Stats:               res.Stats,
	}
	for i, n := range res.Networks {
		doc.Networks[i] = NetworkDoc{
			Newick:        n.ExtendedNewick(inst.Taxa.Label),
			Reticulations: n.Reticulations(),
			Tree1:         TreeNewick(n.Displayed(network.Tree1), inst.Taxa),
			Tree2:         TreeNewick(n.Displayed(network.Tree2), inst.Taxa),
			Graph:         n,
		}
	}
	return doc
}

// Labels returns the taxon mapping of the document.
func (d *Document) Labels() *Taxa { return NewTaxa(d.Taxa) }

// Network returns network i of the document.
func (d *Document) Network(i int) (*network.Network, error) {
	if i < 0 || i >= len(d.Networks) {
		return nil, fmt.Errorf("network %d out of range [0,%d)", i, len(d.Networks))
	}
	if d.Networks[i].Graph == nil {
		return nil, fmt.Errorf("network %d has no graph", i)
	}
	return d.Networks[i].Graph, nil
}

// TreeNewick writes t as Newick with the labels of tx. Children are ordered
// by their canonical strings.
func TreeNewick(t *phylo.Tree, tx *Taxa) string {
	return toGotree(t, tx).Newick()
}

func toGotree(t *phylo.Tree, tx *Taxa) *tree.Tree {
	canon := t.Canonicals()
	g := tree.NewTree()
	var walk func(v int) *tree.Node
	walk = func(v int) *tree.Node {
		n := g.NewNode()
		if t.IsLeaf(v) {
			n.SetName(tx.Label(t.Taxon(v)))
			return n
		}
		kids := slices.Clone(t.Children(v))
		slices.SortFunc(kids, func(a, b int) int { return strings.Compare(canon[a], canon[b]) })
		for _, c := range kids {
			g.ConnectNodes(n, walk(c))
		}
		return n
	}
	g.SetRoot(walk(t.Root()))
	return g
}

// WriteJSON encodes doc as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a document written by [WriteJSON].
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &doc, nil
}

// WriteNewick writes the extended Newick string of every network, one per
// line.
func WriteNewick(w io.Writer, doc *Document) error {
	for _, n := range doc.Networks {
		if _, err := fmt.Fprintln(w, n.Newick); err != nil {
			return err
		}
	}
	return nil
}
