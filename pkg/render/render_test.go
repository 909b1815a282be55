package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/hybridnet/pkg/network"
	"github.com/matzehuels/hybridnet/pkg/phylo"
)

func scenario(t *testing.T) *network.Network {
	t.Helper()
	t1 := phylo.MustBuild(phylo.Inner(phylo.Leaf(0), phylo.Inner(phylo.Leaf(1), phylo.Leaf(2))))
	t2 := phylo.MustBuild(phylo.Inner(phylo.Inner(phylo.Leaf(0), phylo.Leaf(1)), phylo.Leaf(2)))
	a1, err := t1.AttachmentOf(0)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := t2.AttachmentOf(0)
	if err != nil {
		t.Fatal(err)
	}
	base := network.FromTree(phylo.MustBuild(phylo.Inner(phylo.Leaf(1), phylo.Leaf(2))), network.Merged)
	return network.AttachHybrid(base, 0, a1, a2)
}

func TestToDOT(t *testing.T) {
	n := scenario(t)
	labels := []string{"A", "B", "C"}
	dot := ToDOT(n, Options{
		Label:    func(x int) string { return labels[x] },
		Title:    "h = 1",
		Detailed: true,
	})

	for _, want := range []string{
		"digraph N {",
		`label="A"`,
		`label="C"`,
		"shape=diamond",
		`xlabel="#H1"`,
		"color=royalblue",
		"color=darkorange",
		`label="h = 1"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	edges := strings.Count(dot, "->")
	want := 0
	for v := range n.Len() {
		want += len(n.Children(v))
	}
	if edges != want {
		t.Errorf("DOT has %d edges, want %d", edges, want)
	}
}

func TestToDOTDefaultLabels(t *testing.T) {
	dot := ToDOT(scenario(t), Options{})
	if !strings.Contains(dot, `label="0"`) {
		t.Errorf("expected integer labels:\n%s", dot)
	}
	if strings.Contains(dot, "xlabel") {
		t.Error("xlabels should only appear in detailed mode")
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"dot", "svg", "png"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("ParseFormat(pdf) should fail")
	}
}

func TestRenderDOTPassthrough(t *testing.T) {
	out, err := Render(context.Background(), "digraph{}", FormatDOT)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "digraph{}" {
		t.Errorf("got %q", out)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 62.00 116.00" width="62" height="116"`) {
		t.Errorf("unexpected svg tag: %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("svg without viewBox should be unchanged, got %s", got)
	}
}
