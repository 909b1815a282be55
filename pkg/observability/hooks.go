// Package observability lets a binary observe the search, the pipeline, the
// cache and the HTTP API without those packages importing a metrics backend.
//
// Each concern has a hooks interface with a no-op default. main installs a
// backend once at startup, typically [PrometheusHooks]:
//
//	hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	observability.SetSearchHooks(hooks)
//	observability.SetCacheHooks(hooks)
//
// and instrumented code reads the current hooks on every event:
//
//	observability.Search().OnMemo(ctx, hit)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Search Hooks
// =============================================================================

// SearchHooks receives events from the hybridization search.
type SearchHooks interface {
	// OnSearchStart is called once per Compute with the number of taxa and
	// the requested budget (zero or less for iterative deepening).
	OnSearchStart(ctx context.Context, taxa, budget int)

	// OnSearchComplete is called when Compute returns. h is -1 on error.
	OnSearchComplete(ctx context.Context, h, networks int, duration time.Duration, err error)

	// OnBranch is called for every candidate taxon tried as a reticulation.
	OnBranch(ctx context.Context, depth, taxon int)

	// OnPrune is called when a branch is cut off by the budget.
	OnPrune(ctx context.Context, depth int)

	// OnReduction is called when a reduction rule applies ("subtree" or "cluster").
	OnReduction(ctx context.Context, kind string)

	// OnMemo is called for every memo lookup.
	OnMemo(ctx context.Context, hit bool)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the parse -> solve -> export pipeline.
type PipelineHooks interface {
	// Parse events
	OnParseStart(ctx context.Context, source string)
	OnParseComplete(ctx context.Context, source string, taxa int, duration time.Duration, err error)

	// Export events
	OnExportStart(ctx context.Context, formats []string)
	OnExportComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response to a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSearchHooks is a no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnSearchStart(context.Context, int, int)                          {}
func (NoopSearchHooks) OnSearchComplete(context.Context, int, int, time.Duration, error) {}
func (NoopSearchHooks) OnBranch(context.Context, int, int)                               {}
func (NoopSearchHooks) OnPrune(context.Context, int)                                     {}
func (NoopSearchHooks) OnReduction(context.Context, string)                              {}
func (NoopSearchHooks) OnMemo(context.Context, bool)                                     {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParseStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnParseComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnExportStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnExportComplete(context.Context, []string, time.Duration, error)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds the installed hooks of one kind.
type slot[T any] struct {
	p   atomic.Pointer[T]
	def T
}

func (s *slot[T]) get() T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return s.def
}

// set installs h. A nil h leaves the slot unchanged.
func (s *slot[T]) set(h T) {
	if any(h) != nil {
		s.p.Store(&h)
	}
}

var (
	searchSlot   = slot[SearchHooks]{def: NoopSearchHooks{}}
	pipelineSlot = slot[PipelineHooks]{def: NoopPipelineHooks{}}
	cacheSlot    = slot[CacheHooks]{def: NoopCacheHooks{}}
	httpSlot     = slot[HTTPHooks]{def: NoopHTTPHooks{}}
)

// SetSearchHooks installs the hooks called by the hybridization search.
func SetSearchHooks(h SearchHooks) { searchSlot.set(h) }

// SetPipelineHooks installs the hooks called by the pipeline runner.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.set(h) }

// SetCacheHooks installs the hooks called on result and artifact lookups.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetHTTPHooks installs the hooks called by the API middleware.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h) }

func Search() SearchHooks     { return searchSlot.get() }
func Pipeline() PipelineHooks { return pipelineSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }
func HTTP() HTTPHooks         { return httpSlot.get() }

// Reset restores the no-op hooks.
func Reset() {
	searchSlot.p.Store(nil)
	pipelineSlot.p.Store(nil)
	cacheSlot.p.Store(nil)
	httpSlot.p.Store(nil)
}
