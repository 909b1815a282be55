package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hybridnet/pkg/cache"
	"github.com/matzehuels/hybridnet/pkg/errors"
	"github.com/matzehuels/hybridnet/pkg/hybrid"
	hio "github.com/matzehuels/hybridnet/pkg/io"
	"github.com/matzehuels/hybridnet/pkg/observability"
	"github.com/matzehuels/hybridnet/pkg/render"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Every Solve
// creates its own search engine, so multiple goroutines can safely use the
// same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → solve → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	inst, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Instance = inst
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Taxa = inst.Taxa.Len()

	r.Logger.Info("parsed trees",
		"taxa", inst.Taxa.Len(),
		"dropped", len(inst.Dropped),
		"duration", result.Stats.ParseTime)
	if len(inst.Dropped) > 0 {
		r.Logger.Warn("labels missing from one tree were dropped", "labels", strings.Join(inst.Dropped, ","))
	}

	// Stage 2: Solve
	solveStart := time.Now()
	doc, hit, err := r.SolveWithCacheInfo(ctx, inst, opts)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats.SolveTime = time.Since(solveStart)
	result.CacheInfo.SolveHit = hit

	data, err := encode(doc)
	if err != nil {
		return nil, err
	}
	result.ResultHash = cache.Hash(data)

	r.Logger.Info("solved",
		"h", doc.HybridizationNumber,
		"networks", len(doc.Networks),
		"cached", hit,
		"duration", result.Stats.SolveTime)

	// Stage 3: Export
	exportStart := time.Now()
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, doc, result.ResultHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Debug("exported",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// Parse reads both trees and prepares them for the search.
func (r *Runner) Parse(ctx context.Context, opts Options) (inst *hio.Instance, err error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnParseStart(ctx, "newick")
	defer func() {
		n := 0
		if inst != nil {
			n = inst.Taxa.Len()
		}
		hooks.OnParseComplete(ctx, "newick", n, time.Since(start), err)
	}()

	g1, err := hio.ParseNewick(opts.Tree1)
	if err != nil {
		return nil, fmt.Errorf("first tree: %w", err)
	}
	g2, err := hio.ParseNewick(opts.Tree2)
	if err != nil {
		return nil, fmt.Errorf("second tree: %w", err)
	}
	return hio.Prepare(g1, g2)
}

// SolveWithCacheInfo solves inst with caching and reports whether the result
// came from the cache.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, inst *hio.Instance, opts Options) (*hio.Document, bool, error) {
	r.applyLogger(&opts)
	key := r.Keyer.ResultKey(instanceKey(inst), opts.ResultKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if doc, err := hio.ReadJSON(bytes.NewReader(data)); err == nil {
				hooks.OnCacheHit(ctx, "result")
				return doc, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "error", err)
		}
		hooks.OnCacheMiss(ctx, "result")
	}

	doc, err := r.Solve(ctx, inst, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := encode(doc); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLResult); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, "result", len(data))
		}
	}
	return doc, false, nil
}

// Solve runs the search on inst without consulting the cache.
func (r *Runner) Solve(ctx context.Context, inst *hio.Instance, opts Options) (*hio.Document, error) {
	r.applyLogger(&opts)
	cand, err := candidates(inst.Taxa, opts.Candidates)
	if err != nil {
		return nil, err
	}
	eng := hybrid.New(hybrid.Options{
		Budget:     opts.Budget,
		MemoSize:   opts.MemoSize,
		Candidates: cand,
		Logger:     opts.Logger,
	})
	res, err := eng.Compute(ctx, inst.Tree1, inst.Tree2)
	if err != nil {
		return nil, err
	}
	return hio.NewDocument(res, inst), nil
}

// ExportWithCacheInfo produces every requested format and reports whether
// all of them came from the cache.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, doc *hio.Document, resultHash string, opts Options) (artifacts map[string][]byte, allCached bool, err error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid options")
	}
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnExportStart(ctx, opts.Formats)
	defer func() {
		hooks.OnExportComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	artifacts = make(map[string][]byte, len(opts.Formats))
	allCached = true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		allCached = false

		data, err := Export(ctx, doc, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, allCached, nil
}

// Export writes doc in one format. Drawings show network opts.Network.
func Export(ctx context.Context, doc *hio.Document, format string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		if err := hio.WriteJSON(&buf, doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatNewick:
		if err := hio.WriteNewick(&buf, doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT, FormatSVG, FormatPNG:
		n, err := doc.Network(opts.Network)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "select network")
		}
		dot := render.ToDOT(n, render.Options{
			Label:    doc.Labels().Label,
			Title:    opts.Title,
			Detailed: opts.Detailed,
		})
		f, err := render.ParseFormat(format)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "render")
		}
		out, err := render.Render(ctx, dot, f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		return out, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// instanceKey identifies a prepared instance up to the order of children.
func instanceKey(inst *hio.Instance) string {
	return strings.Join([]string{
		inst.Tree1.Canonical(),
		inst.Tree2.Canonical(),
		strings.Join(inst.Taxa.Labels(), ","),
		strings.Join(inst.Dropped, ","),
	}, "|")
}

func candidates(tx *hio.Taxa, labels []string) (taxa.Set, error) {
	var ids []int
	for _, l := range labels {
		id, ok := tx.ID(l)
		if !ok {
			return taxa.Set{}, errors.New(errors.ErrCodeInvalidInput, "candidate %q is not a taxon of both trees", l)
		}
		ids = append(ids, id)
	}
	return taxa.Of(ids...), nil
}

func encode(doc *hio.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := hio.WriteJSON(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
