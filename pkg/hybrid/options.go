package hybrid

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hybridnet/pkg/observability"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

// Options configures an [Engine].
type Options struct {
	// Budget is the largest hybridization number searched for. Zero or
	// negative searches with increasing budgets until a solution is found.
	Budget int

	// MemoSize bounds the number of memoized subproblems.
	// Zero uses DefaultMemoSize.
	MemoSize int

	// Candidates restricts the taxa that may become reticulations. An empty
	// set allows every taxon. Restricting candidates trades optimality for
	// speed: the result is minimal among networks whose reticulations lie
	// above candidate taxa, or above common subtrees and clusters holding at
	// least one candidate, only.
	Candidates taxa.Set

	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger

	// Hooks receives search events. Nil uses the registered search hooks.
	Hooks observability.SearchHooks
}

func (o Options) withDefaults() Options {
	if o.MemoSize <= 0 {
		o.MemoSize = DefaultMemoSize
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Hooks == nil {
		o.Hooks = observability.Search()
	}
	return o
}
