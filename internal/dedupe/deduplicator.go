package dedupe

import (
	"runtime"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/bibdedupe/internal/citation"
)

// Deduplicator finds duplicate groups in a citation list. It holds only
// configuration and is safe for concurrent use.
type Deduplicator struct {
	config    Config
	clusterer Clusterer
	log       *zap.Logger
}

// Stats summarizes one deduplication run.
type Stats struct {
	Citations  int `json:"citations"`
	Partitions int `json:"partitions"`
	Groups     int `json:"groups"`
	Duplicates int `json:"duplicates"`
}

// New creates a Deduplicator with DefaultConfig.
func New() *Deduplicator {
	return &Deduplicator{
		config:    DefaultConfig(),
		clusterer: NewClusterer(),
		log:       zap.NewNop(),
	}
}

// NewWithConfig creates a Deduplicator with the given configuration.
// The configuration is validated once, here.
func NewWithConfig(cfg Config) (*Deduplicator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := New()
	d.config = Config{
		GroupByYear:       cfg.GroupByYear,
		RunInParallel:     cfg.RunInParallel,
		SourcePreferences: slices.Clone(cfg.SourcePreferences),
	}
	return d, nil
}

// WithLogger returns a copy of d that logs to log.
func (d *Deduplicator) WithLogger(log *zap.Logger) *Deduplicator {
	cp := *d
	if log == nil {
		log = zap.NewNop()
	}
	cp.log = log
	return &cp
}

// Config returns a copy of the active configuration.
func (d *Deduplicator) Config() Config {
	cfg := d.config
	cfg.SourcePreferences = slices.Clone(d.config.SourcePreferences)
	return cfg
}

// FindDuplicates returns the duplicate groups in citations. Groups appear in
// partition order, then in cluster-discovery order within a partition,
// whether or not partitions run in parallel. Citations are never modified.
func (d *Deduplicator) FindDuplicates(citations []citation.Citation) ([]citation.DuplicateGroup, error) {
	groups, _, err := d.FindDuplicatesWithStats(citations)
	return groups, err
}

// FindDuplicatesWithStats is FindDuplicates plus run statistics.
func (d *Deduplicator) FindDuplicatesWithStats(citations []citation.Citation) ([]citation.DuplicateGroup, Stats, error) {
	resolved, stats, err := d.resolve(citations)
	if err != nil {
		return nil, stats, err
	}

	groups := make([]citation.DuplicateGroup, 0, len(resolved))
	for _, r := range resolved {
		g := citation.DuplicateGroup{
			Unique:     citations[r.unique],
			Duplicates: make([]citation.Citation, len(r.duplicates)),
		}
		for i, idx := range r.duplicates {
			g.Duplicates[i] = citations[idx]
		}
		groups = append(groups, g)
	}

	return groups, stats, nil
}

// Prune returns citations with every duplicate removed. Canonical citations
// and citations outside any group keep their relative input order.
func (d *Deduplicator) Prune(citations []citation.Citation) ([]citation.Citation, error) {
	resolved, _, err := d.resolve(citations)
	if err != nil {
		return nil, err
	}

	drop := make([]bool, len(citations))
	for _, r := range resolved {
		for _, idx := range r.duplicates {
			drop[idx] = true
		}
	}

	kept := make([]citation.Citation, 0, len(citations))
	for i, c := range citations {
		if !drop[i] {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

// resolvedGroup is a duplicate group expressed as input indices.
type resolvedGroup struct {
	unique     int
	duplicates []int
}

// resolve partitions, clusters, and selects, returning groups of size >= 2
// in output order.
func (d *Deduplicator) resolve(citations []citation.Citation) ([]resolvedGroup, Stats, error) {
	stats := Stats{Citations: len(citations)}

	partitions := d.partition(citations)
	stats.Partitions = len(partitions)

	perPartition, err := d.clusterPartitions(citations, partitions)
	if err != nil {
		return nil, stats, err
	}

	if err := checkCoverage(len(citations), perPartition); err != nil {
		return nil, stats, err
	}

	selector := Selector{Preferences: d.config.SourcePreferences}
	var groups []resolvedGroup

	for _, clusters := range perPartition {
		for _, cl := range clusters {
			if len(cl) < 2 {
				continue
			}
			members := make([]citation.Citation, len(cl))
			for i, idx := range cl {
				members[i] = citations[idx]
			}
			keep := selector.SelectIndex(members)

			g := resolvedGroup{unique: cl[keep], duplicates: make([]int, 0, len(cl)-1)}
			for i, idx := range cl {
				if i != keep {
					g.duplicates = append(g.duplicates, idx)
				}
			}
			groups = append(groups, g)
			stats.Duplicates += len(g.duplicates)
		}
	}
	stats.Groups = len(groups)

	d.log.Debug("dedupe: run complete",
		zap.Int("citations", stats.Citations),
		zap.Int("partitions", stats.Partitions),
		zap.Int("groups", stats.Groups),
		zap.Int("duplicates", stats.Duplicates),
		zap.Bool("parallel", d.config.RunInParallel),
	)

	return groups, stats, nil
}

func (d *Deduplicator) partition(citations []citation.Citation) [][]int {
	if len(citations) == 0 {
		return nil
	}
	if d.config.GroupByYear {
		return PartitionByYear(citations)
	}
	all := make([]int, len(citations))
	for i := range all {
		all[i] = i
	}
	return [][]int{all}
}

// clusterPartitions runs the clusterer over each partition. In parallel mode
// each partition writes only its own result slot; slots are read after the
// group has joined.
func (d *Deduplicator) clusterPartitions(citations []citation.Citation, partitions [][]int) ([][][]int, error) {
	results := make([][][]int, len(partitions))

	if !d.config.RunInParallel || len(partitions) < 2 {
		for i, p := range partitions {
			results[i] = d.clusterer.ClusterSubset(citations, p)
		}
		return results, nil
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, p := range partitions {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = citation.Other("clustering partition %d: %v", i, r)
				}
			}()
			results[i] = d.clusterer.ClusterSubset(citations, p)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// checkCoverage verifies that every citation index landed in exactly one
// cluster.
func checkCoverage(n int, perPartition [][][]int) error {
	seen := make([]bool, n)
	count := 0
	for _, clusters := range perPartition {
		for _, cl := range clusters {
			for _, idx := range cl {
				if idx < 0 || idx >= n {
					return citation.Other("cluster index %d out of range [0, %d)", idx, n)
				}
				if seen[idx] {
					return citation.Other("citation %d assigned to more than one cluster", idx)
				}
				seen[idx] = true
				count++
			}
		}
	}
	if count != n {
		return citation.Other("%d of %d citations were not clustered", n-count, n)
	}
	return nil
}
