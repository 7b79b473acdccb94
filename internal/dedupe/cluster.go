package dedupe

import (
	"sort"

	"github.com/matsen/bibdedupe/internal/citation"
	"github.com/matsen/bibdedupe/internal/normalize"
)

// unionFind is a disjoint-set forest over indices 0..n-1.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}

// Clusterer groups citations into duplicate sets. Clustering is transitive:
// if A~B and B~C then A, B and C share a cluster even when A and C score
// below the threshold directly.
type Clusterer struct {
	Scorer Scorer
}

// NewClusterer returns a Clusterer using the default scorer.
func NewClusterer() Clusterer {
	return Clusterer{Scorer: NewScorer()}
}

// Cluster groups all citations. Each returned cluster lists indices into
// citations in ascending order; clusters are ordered by their first index.
// Singletons are included.
func (c Clusterer) Cluster(citations []citation.Citation) [][]int {
	all := make([]int, len(citations))
	for i := range all {
		all[i] = i
	}
	return c.ClusterSubset(citations, all)
}

// ClusterSubset clusters the citations at the given indices only. Returned
// indices refer to the full citations slice. The slice is never modified.
func (c Clusterer) ClusterSubset(citations []citation.Citation, indices []int) [][]int {
	n := len(indices)
	if n == 0 {
		return nil
	}

	feats := make([]features, n)
	for i, idx := range indices {
		feats[i] = extractFeatures(citations[idx])
	}

	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if uf.find(i) == uf.find(j) {
				continue // already linked through another member
			}
			if c.Scorer.score(feats[i], feats[j]).IsDuplicate {
				uf.union(i, j)
			}
		}
	}

	// Assemble clusters in discovery order: a cluster is discovered at its
	// first member in partition order.
	byRoot := make(map[int]int)
	var clusters [][]int
	for i := 0; i < n; i++ {
		root := uf.find(i)
		pos, ok := byRoot[root]
		if !ok {
			pos = len(clusters)
			byRoot[root] = pos
			clusters = append(clusters, nil)
		}
		clusters[pos] = append(clusters[pos], indices[i])
	}

	for _, cl := range clusters {
		sort.Ints(cl)
	}
	sort.SliceStable(clusters, func(i, j int) bool { return clusters[i][0] < clusters[j][0] })

	return clusters
}

// PartitionByYear buckets citation indices by normalized year. Buckets are
// ordered by the first appearance of their year in the input; citations
// without a year share one bucket.
func PartitionByYear(citations []citation.Citation) [][]int {
	byYear := make(map[int]int)
	var partitions [][]int
	for i, c := range citations {
		y := normalize.Year(c.Year)
		pos, ok := byYear[y]
		if !ok {
			pos = len(partitions)
			byYear[y] = pos
			partitions = append(partitions, nil)
		}
		partitions[pos] = append(partitions[pos], i)
	}
	return partitions
}
