package network

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/hybridnet/pkg/phylo"
)

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	if s > Tree2 {
		return nil, fmt.Errorf("network: invalid source %d", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(b []byte) error {
	switch string(b) {
	case "merged":
		*s = Merged
	case "tree1":
		*s = Tree1
	case "tree2":
		*s = Tree2
	default:
		return fmt.Errorf("network: unknown source %q", b)
	}
	return nil
}

type jsonEdge struct {
	To     int    `json:"to"`
	Source Source `json:"source"`
}

type jsonNode struct {
	Taxon    *int       `json:"taxon,omitempty"`
	Children []jsonEdge `json:"children,omitempty"`
}

type jsonNetwork struct {
	Root  int        `json:"root"`
	Nodes []jsonNode `json:"nodes"`
}

// MarshalJSON encodes the node arena of n. Leaves carry their taxon,
// internal nodes list their outgoing edges.
func (n *Network) MarshalJSON() ([]byte, error) {
	out := jsonNetwork{Root: n.root, Nodes: make([]jsonNode, len(n.nodes))}
	for i, nd := range n.nodes {
		if nd.taxon != phylo.NoTaxon {
			taxon := nd.taxon
			out.Nodes[i].Taxon = &taxon
		}
		for _, e := range nd.children {
			out.Nodes[i].Children = append(out.Nodes[i].Children, jsonEdge(e))
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a network written by [Network.MarshalJSON]. Edge
// targets must be valid node indices and leaves must carry a taxon.
func (n *Network) UnmarshalJSON(b []byte) error {
	var in jsonNetwork
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if len(in.Nodes) == 0 {
		return fmt.Errorf("network: no nodes")
	}
	if in.Root < 0 || in.Root >= len(in.Nodes) {
		return fmt.Errorf("network: root %d out of range", in.Root)
	}

	nodes := make([]node, len(in.Nodes))
	for i, jn := range in.Nodes {
		nodes[i].taxon = phylo.NoTaxon
		if jn.Taxon != nil {
			nodes[i].taxon = *jn.Taxon
		}
		if len(jn.Children) == 0 && nodes[i].taxon < 0 {
			return fmt.Errorf("network: leaf %d without taxon", i)
		}
		for _, e := range jn.Children {
			if e.To < 0 || e.To >= len(in.Nodes) || e.To == i {
				return fmt.Errorf("network: node %d has edge to invalid node %d", i, e.To)
			}
			nodes[i].children = append(nodes[i].children, Edge(e))
		}
	}
	*n = Network{nodes: nodes, root: in.Root}
	return nil
}
