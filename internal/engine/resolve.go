package engine

import (
	"sort"

	"github.com/secretshields/secretshields/internal/detectors"
	"github.com/secretshields/secretshields/internal/types"
)

type candidate struct {
	types.Span
	pattern *detectors.SecretPattern
	rank    int // registry priority, lower wins ties
}

// resolve picks a non-overlapping subset of candidates. Candidates are
// ordered by start, then by length (longest first), then by registry
// priority; a candidate is kept when it begins at or after the end of the
// previously kept one. The result is in input order.
func resolve(cands []candidate) []candidate {
	if len(cands) < 2 {
		return cands
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		return a.rank < b.rank
	})
	out := cands[:0:0]
	end := -1
	for _, c := range cands {
		if c.Start < end {
			continue
		}
		out = append(out, c)
		end = c.End
	}
	return out
}
