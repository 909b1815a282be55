package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/hybridnet/pkg/errors"
	hio "github.com/matzehuels/hybridnet/pkg/io"
	"github.com/matzehuels/hybridnet/pkg/observability"
	"github.com/matzehuels/hybridnet/pkg/pipeline"
)

const (
	ladder = "(A,(B,C));"
	cherry = "((A,B),C);"
)

// run executes the root command with isolated config and cache directories.
func run(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTrees(t *testing.T) {
	a1, a2, err := loadTrees([]string{ladder, "((A,B),C)"})
	if err != nil {
		t.Fatalf("loadTrees() error: %v", err)
	}
	b1, b2, err := loadTrees([]string{cherry, ladder})
	if err != nil {
		t.Fatalf("loadTrees() error: %v", err)
	}
	if a1 != b2 || a2 != b1 {
		t.Errorf("argument order not kept: %q %q vs %q %q", a1, a2, b1, b2)
	}

	pair := writeFile(t, "pair.nwk", ladder+"\n"+cherry+"\n")
	f1, f2, err := loadTrees([]string{pair})
	if err != nil {
		t.Fatalf("loadTrees(file) error: %v", err)
	}
	if f1 != a1 || f2 != a2 {
		t.Errorf("file trees = %q %q, want %q %q", f1, f2, a1, a2)
	}

	second := writeFile(t, "second.nwk", cherry)
	m1, m2, err := loadTrees([]string{ladder, second})
	if err != nil {
		t.Fatalf("loadTrees(mixed) error: %v", err)
	}
	if m1 != a1 || m2 != a2 {
		t.Errorf("mixed trees = %q %q, want %q %q", m1, m2, a1, a2)
	}
}

func TestLoadTreesErrors(t *testing.T) {
	three := writeFile(t, "three.nwk", ladder+cherry+ladder)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"one tree", []string{ladder}, errors.ErrCodeInvalidInput},
		{"three trees", []string{three}, errors.ErrCodeInvalidInput},
		{"missing file", []string{filepath.Join(t.TempDir(), "none.nwk")}, errors.ErrCodeFileNotFound},
		{"bad newick", []string{"((A,B);", cherry}, errors.ErrCodeInvalidNewick},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := loadTrees(tt.args)
			if !errors.Is(err, tt.code) {
				t.Errorf("loadTrees(%v) error = %v, want code %s", tt.args, err, tt.code)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	res, err := pipeline.NewRunner(nil, nil, nil).Execute(context.Background(), pipeline.Options{
		Tree1: ladder,
		Tree2: cherry,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if err := verify(res.Instance, res.Document); err != nil {
		t.Errorf("verify() error: %v", err)
	}

	res.Document.HybridizationNumber = 2
	if err := verify(res.Instance, res.Document); err == nil {
		t.Error("verify() should reject a wrong reticulation count")
	}
}

func TestSolveCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.json")
	if err := run(t, "solve", "--no-cache", "--verify", "-f", "json", "-o", out, ladder, cherry); err != nil {
		t.Fatalf("solve error: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := hio.ReadJSON(f)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if doc.HybridizationNumber != 1 {
		t.Errorf("hybridization number = %d, want 1", doc.HybridizationNumber)
	}
	if len(doc.Networks) != 3 {
		t.Errorf("networks = %d, want 3", len(doc.Networks))
	}

	dot := filepath.Join(t.TempDir(), "net.dot")
	if err := run(t, "render", "-n", "2", "-f", "dot", "--title", "second", "-o", dot, out); err != nil {
		t.Fatalf("render error: %v", err)
	}
	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("digraph")) || !strings.Contains(string(data), "second") {
		t.Errorf("render output is not the titled DOT graph:\n%s", data)
	}

	if err := run(t, "render", "-n", "4", "-f", "dot", "-o", dot, out); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("render of a missing network error = %v", err)
	}
}

func TestSolveCommandMultipleFormats(t *testing.T) {
	base := filepath.Join(t.TempDir(), "net")
	if err := run(t, "solve", "--no-cache", "-f", "newick,dot", "-o", base, ladder, cherry); err != nil {
		t.Fatalf("solve error: %v", err)
	}
	for _, ext := range []string{".nwk", ".dot"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}
	data, _ := os.ReadFile(base + ".nwk")
	if strings.Count(string(data), "#H1") < 3 {
		t.Errorf("newick output should hold three networks with #H1:\n%s", data)
	}
}

func TestSolveCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"budget too small", []string{"solve", "--no-cache", "-k", "1", "-f", "json", "-o", os.DevNull,
			"((A,(B,C)),(D,(E,F)));", "(((A,B),C),((D,E),F));"}, errors.ErrCodeBudgetExceeded},
		{"unknown candidate", []string{"solve", "--no-cache", "--candidates", "Z", ladder, cherry}, errors.ErrCodeInvalidInput},
		{"bad network index", []string{"solve", "--no-cache", "-n", "0", ladder, cherry}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(t, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}

	if err := run(t, "solve", "-f", "pdf", ladder, cherry); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestSolveCommandUsesConfig(t *testing.T) {
	cfg := writeConfig(t, "cache = \"none\"\nformat = \"dot\"\n")
	out := filepath.Join(t.TempDir(), "net")
	if err := run(t, "--config", cfg, "solve", "-o", out, ladder, cherry); err != nil {
		t.Fatalf("solve error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("digraph")) {
		t.Errorf("config format should produce DOT, got:\n%s", data)
	}
}
