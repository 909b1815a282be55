package hybrid

import "time"

// Stats counts the work done by one [Engine.Compute] call.
type Stats struct {
	Calls             int           `json:"calls"`
	Branches          int           `json:"branches"`
	Prunes            int           `json:"prunes"`
	MemoHits          int           `json:"memo_hits"`
	MemoMisses        int           `json:"memo_misses"`
	SubtreeReductions int           `json:"subtree_reductions"`
	ClusterReductions int           `json:"cluster_reductions"`
	Iterations        int           `json:"iterations"`
	MaxDepth          int           `json:"max_depth"`
	Duration          time.Duration `json:"duration"`
}

// HitRate returns the fraction of memo lookups that were answered.
func (s Stats) HitRate() float64 {
	total := s.MemoHits + s.MemoMisses
	if total == 0 {
		return 0
	}
	return float64(s.MemoHits) / float64(total)
}
