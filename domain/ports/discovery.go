package ports

import (
	"context"

	"github.com/kb-labs/registry-host/domain/entities"
)

// DiscoveryOutcome is what a single strategy (or the manager) produces.
type DiscoveryOutcome struct {
	Plugins   []entities.PluginBrief
	Manifests []entities.SnapshotEntry
	Errors    []entities.DiscoveryError
	// AllCandidates holds every brief seen across every strategy before
	// collision resolution, for Manager.Discover's merged result only
	// (unset on a single strategy's own outcome). Used by Registry.Explain.
	AllCandidates []entities.PluginBrief
	Partial       bool
}

// Strategy discovers plugin manifests from a set of roots.
type Strategy interface {
	// Kind identifies the strategy (workspace|pkg|dir|file) for precedence ranking.
	Kind() entities.SourceKind
	Discover(ctx context.Context, roots []string) (DiscoveryOutcome, error)
}
