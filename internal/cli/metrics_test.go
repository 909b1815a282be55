package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/hybridnet/pkg/observability"
	"github.com/matzehuels/hybridnet/pkg/pipeline"
)

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	used := prometheus.NewCounter(prometheus.CounterOpts{Name: "used_total", Help: "used"})
	unused := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "unused_total", Help: "unused"}, []string{"kind"})
	reg.MustRegister(used, unused)
	used.Add(3)

	var buf bytes.Buffer
	if err := writeMetrics(&buf, reg); err != nil {
		t.Fatalf("writeMetrics() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "used_total 3") {
		t.Errorf("missing counter in:\n%s", out)
	}
	if strings.Contains(out, "unused_total") {
		t.Errorf("empty family should be skipped:\n%s", out)
	}
}

func TestEnableMetrics(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.enableMetrics()
	t.Cleanup(observability.Reset)

	runner, err := c.newRunner(t.Context(), true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := runner.Execute(t.Context(), pipeline.Options{Tree1: ladder, Tree2: cherry}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	var buf bytes.Buffer
	if err := writeMetrics(&buf, c.registry); err != nil {
		t.Fatalf("writeMetrics() error: %v", err)
	}
	out := buf.String()
	for _, name := range []string{"hybridnet_searches_total", "hybridnet_search_duration_seconds", "hybridnet_branches_total"} {
		if !strings.Contains(out, name) {
			t.Errorf("missing %s in:\n%s", name, out)
		}
	}
}
