package discovery

import (
	"context"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
	"golang.org/x/sync/errgroup"
)

// Manager orchestrates a caller-supplied subset of strategies in precedence
// order, collates their results, and resolves id collisions.
type Manager struct {
	strategies map[entities.SourceKind]ports.Strategy
}

// NewManager creates a Manager over the given strategies.
func NewManager(strategies ...ports.Strategy) *Manager {
	m := &Manager{strategies: make(map[entities.SourceKind]ports.Strategy, len(strategies))}
	for _, s := range strategies {
		m.strategies[s.Kind()] = s
	}
	return m
}

// Discover runs every enabled strategy over roots (in parallel) and merges
// their outcomes deterministically.
func (m *Manager) Discover(ctx context.Context, roots []string, enabled []entities.SourceKind) (ports.DiscoveryOutcome, error) {
	outcomes := make([]ports.DiscoveryOutcome, len(enabled))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range enabled {
		i, kind := i, kind
		strat, ok := m.strategies[kind]
		if !ok {
			continue
		}
		g.Go(func() error {
			out, err := strat.Discover(gctx, roots)
			if err != nil {
				out.Partial = true
			}
			outcomes[i] = out
			return nil
		})
	}
	// errgroup.Go never returns a non-nil error above; strategy failures are
	// captured per-outcome so one strategy's fatal error cannot cancel the rest.
	_ = g.Wait()

	return m.merge(enabled, outcomes), nil
}

type candidate struct {
	brief entities.PluginBrief
	entry entities.SnapshotEntry
	rank  int
}

// merge collates outcomes in strategy-precedence order (the order of enabled)
// and resolves id collisions per the lowest-precedence-rank-wins rule.
func (m *Manager) merge(enabled []entities.SourceKind, outcomes []ports.DiscoveryOutcome) ports.DiscoveryOutcome {
	winners := make(map[string]candidate)

	var merged ports.DiscoveryOutcome
	for i := range enabled {
		out := outcomes[i]
		merged.Errors = append(merged.Errors, out.Errors...)
		if out.Partial {
			merged.Partial = true
		}

		byID := make(map[string]entities.SnapshotEntry, len(out.Manifests))
		for _, e := range out.Manifests {
			byID[e.PluginID] = e
		}

		for _, brief := range out.Plugins {
			entry := byID[brief.ID]
			rank := brief.Source.Kind.PrecedenceRank()
			cur, exists := winners[brief.ID]
			if !exists || shouldReplace(cur, candidate{brief, entry, rank}) {
				winners[brief.ID] = candidate{brief, entry, rank}
			}
			merged.AllCandidates = append(merged.AllCandidates, brief)
		}
	}

	ids := make([]string, 0, len(winners))
	for id := range winners {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		c := winners[id]
		merged.Plugins = append(merged.Plugins, c.brief)
		merged.Manifests = append(merged.Manifests, c.entry)
	}
	return merged
}

// shouldReplace reports whether candidate new should win over incumbent cur:
// lower precedence rank wins; ties broken by higher semver, then by
// deterministic (lexicographic) path ordering.
func shouldReplace(cur, next candidate) bool {
	if next.rank != cur.rank {
		return next.rank < cur.rank
	}
	curVer, curErr := semver.NewVersion(cur.brief.Version)
	nextVer, nextErr := semver.NewVersion(next.brief.Version)
	if curErr == nil && nextErr == nil {
		cmp := nextVer.Compare(curVer)
		if cmp != 0 {
			return cmp > 0
		}
	}
	return next.brief.Source.Path < cur.brief.Source.Path
}
