package dedupe

import (
	"github.com/matsen/bibdedupe/internal/citation"
)

// Selector chooses the canonical record of a duplicate cluster.
//
// Ranking, in priority order:
//  1. Source rank: position in Preferences (case-insensitive). Sources not
//     listed rank below every listed source and tie with each other.
//  2. Completeness: more populated fields wins.
//  3. Input order: first seen wins.
type Selector struct {
	Preferences []string
}

// sourceRank returns the preference position of a source tag, or
// len(Preferences) when the tag is not listed.
func (s Selector) sourceRank(source string) int {
	key := sourceKey(source)
	if key != "" {
		for i, pref := range s.Preferences {
			if sourceKey(pref) == key {
				return i
			}
		}
	}
	return len(s.Preferences)
}

// SelectIndex returns the position of the canonical citation in cluster,
// or -1 for an empty cluster.
func (s Selector) SelectIndex(cluster []citation.Citation) int {
	if len(cluster) == 0 {
		return -1
	}

	best := 0
	bestRank := s.sourceRank(cluster[0].Source)
	bestScore := cluster[0].Completeness()

	for i := 1; i < len(cluster); i++ {
		rank := s.sourceRank(cluster[i].Source)
		score := cluster[i].Completeness()

		// Strict comparisons keep the earlier citation on ties
		if rank < bestRank || (rank == bestRank && score > bestScore) {
			best, bestRank, bestScore = i, rank, score
		}
	}

	return best
}

// Select splits a cluster into its canonical citation and the remaining
// duplicates in original relative order.
func (s Selector) Select(cluster []citation.Citation) (citation.Citation, []citation.Citation) {
	idx := s.SelectIndex(cluster)
	if idx < 0 {
		return citation.Citation{}, nil
	}

	duplicates := make([]citation.Citation, 0, len(cluster)-1)
	for i, c := range cluster {
		if i != idx {
			duplicates = append(duplicates, c)
		}
	}
	return cluster[idx], duplicates
}
