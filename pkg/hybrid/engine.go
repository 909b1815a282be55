package hybrid

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hybridnet/pkg/errors"
	"github.com/matzehuels/hybridnet/pkg/network"
	"github.com/matzehuels/hybridnet/pkg/observability"
	"github.com/matzehuels/hybridnet/pkg/phylo"
	"github.com/matzehuels/hybridnet/pkg/reduce"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

// Infeasible is returned internally as the hybridization number of a
// subproblem that has no solution within its budget.
const Infeasible = 1 << 30

// Result is the outcome of a successful search.
type Result struct {
	// HybridizationNumber is the minimum number of reticulations.
	HybridizationNumber int `json:"hybridization_number"`

	// Networks holds every distinct network with HybridizationNumber
	// reticulations that the search produces, in canonical order.
	Networks []*network.Network `json:"-"`

	Stats Stats `json:"stats"`
}

// Engine computes minimum hybridization networks for pairs of trees.
//
// An Engine owns its memo and statistics and is not safe for concurrent use.
// The memo survives between Compute calls, so solving related instances with
// one Engine reuses shared subproblems.
type Engine struct {
	opts   Options
	memo   *Memo
	logger *log.Logger
	hooks  observability.SearchHooks
	stats  Stats
}

// New creates an engine.
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		opts:   opts,
		memo:   NewMemo(opts.MemoSize),
		logger: opts.Logger,
		hooks:  opts.Hooks,
	}
}

// Memo returns the memo of the engine.
func (e *Engine) Memo() *Memo { return e.memo }

// Compute returns the hybridization number of t1 and t2 and all networks
// that attain it.
//
// Both trees must have the same taxa. When Options.Budget is positive the
// search is limited to that many reticulations and fails with
// errors.ErrCodeBudgetExceeded if none suffices; otherwise the budget is
// raised step by step from zero. Cancelling ctx stops the search with
// errors.ErrCodeCancelled.
func (e *Engine) Compute(ctx context.Context, t1, t2 *phylo.Tree) (res *Result, err error) {
	if t1 == nil || t2 == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "both trees are required")
	}
	alive := t1.Taxa()
	if !alive.Equal(t2.Taxa()) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"trees have different taxa: %s and %s", alive, t2.Taxa())
	}

	cand := alive
	if !e.opts.Candidates.Empty() {
		cand = cand.Intersect(e.opts.Candidates)
	}

	e.stats = Stats{}
	start := time.Now()
	e.hooks.OnSearchStart(ctx, alive.Len(), e.opts.Budget)
	defer func() {
		e.stats.Duration = time.Since(start)
		h, n := -1, 0
		if res != nil {
			h, n = res.HybridizationNumber, len(res.Networks)
			res.Stats = e.stats
		}
		e.hooks.OnSearchComplete(ctx, h, n, e.stats.Duration, err)
	}()

	budgets := []int{e.opts.Budget}
	if e.opts.Budget <= 0 {
		// Removing all but two taxa always leaves isomorphic trees.
		budgets = budgets[:0]
		for k := 0; k <= max(alive.Len()-2, 0); k++ {
			budgets = append(budgets, k)
		}
	}

	for _, k := range budgets {
		e.stats.Iterations++
		e.logger.Debug("searching", "budget", k, "taxa", alive.Len())
		h, nets, err := e.solve(ctx, t1, t2, false, cand, k, 0)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCancelled, err, "search stopped at budget %d", k)
		}
		if h <= k {
			e.logger.Info("solved",
				"h", h,
				"networks", nets.Len(),
				"calls", e.stats.Calls,
				"duration", time.Since(start))
			return &Result{HybridizationNumber: h, Networks: nets.Networks()}, nil
		}
	}

	if e.opts.Budget > 0 {
		return nil, errors.Wrap(errors.ErrCodeBudgetExceeded,
			&errors.BudgetExceededError{Budget: e.opts.Budget}, "search exhausted")
	}
	if !e.opts.Candidates.Empty() {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"no network has reticulations above candidate taxa %s only", e.opts.Candidates)
	}
	return nil, errors.New(errors.ErrCodeInternal, "no network found for %d taxa", alive.Len())
}

// solve returns the hybridization number of (t1, t2) and its networks if it
// is at most k, and Infeasible otherwise. The only error it returns is the
// context error.
func (e *Engine) solve(ctx context.Context, t1, t2 *phylo.Tree, reduced bool, cand taxa.Set, k, depth int) (int, *network.Set, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	e.stats.Calls++
	e.stats.MaxDepth = max(e.stats.MaxDepth, depth)

	alive := t1.Taxa()
	if !alive.Equal(t2.Taxa()) {
		panic(fmt.Sprintf("hybrid: alive taxa differ: %s in %s, %s in %s", alive, t1, t2.Taxa(), t2))
	}
	cand = cand.Intersect(alive)

	c1, c2 := t1.Canonical(), t2.Canonical()
	if c1 == c2 {
		return 0, network.NewSet(network.IsomorphicMerge(t1, t2)), nil
	}

	key := memoKey(c1, c2, cand, reduced)
	if h, nets, ok := e.memo.lookup(key, k); ok {
		e.stats.MemoHits++
		e.hooks.OnMemo(ctx, true)
		return h, nets, nil
	}
	e.stats.MemoMisses++
	e.hooks.OnMemo(ctx, false)

	h, nets, err := e.reduceOrBranch(ctx, t1, t2, reduced, cand, k, depth)
	if err != nil {
		return 0, nil, err
	}
	e.memo.store(key, h, k, nets)
	return h, nets, nil
}

func (e *Engine) reduceOrBranch(ctx context.Context, t1, t2 *phylo.Tree, reduced bool, cand taxa.Set, k, depth int) (int, *network.Set, error) {
	if !reduced {
		if res := reduce.Subtrees(t1, t2); res.State == reduce.Reduced {
			e.stats.SubtreeReductions++
			e.hooks.OnReduction(ctx, "subtree")
			for _, p := range res.Pairs {
				cand = withPlaceholder(cand, p.Placeholder, p.Tree1.Taxa())
			}
			h, nets, err := e.solve(ctx, res.T1, res.T2, false, cand, k, depth)
			if err != nil || h > k {
				return h, nil, err
			}
			return h, nets.Map(func(n *network.Network) *network.Network {
				for _, p := range res.Pairs {
					n = network.ExpandPlaceholder(n, p.Placeholder, p.Tree1)
				}
				return n
			}), nil
		}
	}

	if split, ok := reduce.Clusters(t1, t2); ok {
		e.stats.ClusterReductions++
		e.hooks.OnReduction(ctx, "cluster")
		hb, bottom, err := e.solve(ctx, split.Bottom1, split.Bottom2, true, cand, k, depth)
		if err != nil || hb > k {
			return Infeasible, nil, err
		}
		topCand := withPlaceholder(cand, split.Placeholder, split.Cluster)
		ht, top, err := e.solve(ctx, split.Top1, split.Top2, false, topCand, k-hb, depth)
		if err != nil || ht > k-hb {
			return Infeasible, nil, err
		}
		return hb + ht, network.CrossProduct(top, bottom, split.Placeholder), nil
	}

	return e.branch(ctx, t1, t2, cand, k, depth)
}

// branch tries every candidate taxon as the next reticulation. A taxon is
// removed from both trees, the rest is solved with one reticulation less,
// and the taxon is attached back as a reticulation in every network found.
func (e *Engine) branch(ctx context.Context, t1, t2 *phylo.Tree, cand taxa.Set, k, depth int) (int, *network.Set, error) {
	if k <= 0 {
		e.stats.Prunes++
		e.hooks.OnPrune(ctx, depth)
		return Infeasible, nil, nil
	}

	best, limit := Infeasible, k
	var nets *network.Set
	for _, x := range cand.Slice() {
		a1, err1 := t1.AttachmentOf(x)
		a2, err2 := t2.AttachmentOf(x)
		r1, err3 := t1.RemoveTaxon(x)
		r2, err4 := t2.RemoveTaxon(x)
		if err := firstErr(err1, err2, err3, err4); err != nil {
			panic(fmt.Sprintf("hybrid: removing taxon %d: %v", x, err))
		}
		r1, r2 = phylo.Refine(r1, r2)

		e.stats.Branches++
		e.hooks.OnBranch(ctx, depth, x)
		h, sub, err := e.solve(ctx, r1, r2, false, cand, limit-1, depth+1)
		if err != nil {
			return 0, nil, err
		}
		if h > limit-1 {
			e.stats.Prunes++
			e.hooks.OnPrune(ctx, depth)
			continue
		}

		h++
		attached := sub.Map(func(n *network.Network) *network.Network {
			return network.AttachHybrid(n, x, a1, a2)
		})
		if h < best {
			best, nets, limit = h, attached, h
		} else {
			nets.AddAll(attached)
		}
	}
	return best, nets, nil
}

// withPlaceholder adds the placeholder of a collapsed cluster to cand when the
// cluster holds a candidate. Without restricted candidates every cluster does.
func withPlaceholder(cand taxa.Set, placeholder int, cluster taxa.Set) taxa.Set {
	if !cluster.Intersects(cand) {
		return cand
	}
	return cand.With(placeholder)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
