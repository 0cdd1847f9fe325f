// Package registry implements the in-memory authoritative view of
// discovered plugins: the current snapshot, the derived command index, diff
// computation against the prior snapshot, and change subscriptions.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
	"golang.org/x/sync/singleflight"
)

// Registry implements ports.PluginRegistry.
type Registry struct {
	store    ports.SnapshotStore
	discover func(ctx context.Context, roots []string, enabled []entities.SourceKind) (ports.DiscoveryOutcome, error)
	resolver ports.CommandResolver

	mu       sync.RWMutex
	snapshot *entities.RegistrySnapshot
	opts     ports.InitOptions
	lastAll  []entities.PluginBrief

	subMu       sync.Mutex
	subscribers map[int]ports.DiffSubscriber
	nextSubID   int

	group singleflight.Group
}

// Discoverer is the subset of discovery.Manager the registry depends on.
type Discoverer interface {
	Discover(ctx context.Context, roots []string, enabled []entities.SourceKind) (ports.DiscoveryOutcome, error)
}

// NewRegistry creates a Registry backed by store and discoverer d. resolver
// may be nil if the caller does not need command indexing from this registry.
func NewRegistry(store ports.SnapshotStore, d Discoverer, resolver ports.CommandResolver) *Registry {
	return &Registry{
		store:       store,
		discover:    d.Discover,
		resolver:    resolver,
		subscribers: make(map[int]ports.DiffSubscriber),
	}
}

// Initialize implements ports.PluginRegistry.
func (r *Registry) Initialize(ctx context.Context, opts ports.InitOptions) error {
	r.mu.Lock()
	r.opts = opts
	r.mu.Unlock()

	snap, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snap == nil {
		snap = r.store.CreateEmpty()
	}

	r.mu.Lock()
	r.snapshot = snap
	r.indexLocked()
	r.mu.Unlock()

	if opts.Mode == ports.ModeConsumer {
		return nil
	}
	if !snap.Partial && !snap.Stale {
		return nil
	}

	_, err = r.bootstrap(ctx)
	return err
}

// bootstrap populates the registry's very first snapshot from a discovery
// pass. Unlike doRefresh, it never increments rev past the loaded/CreateEmpty
// snapshot: createEmpty()'s rev=0 is the starting point this discovery pass
// fills in, not a prior revision being superseded, so the persisted snapshot
// stays rev=0 the way spec.md §8's "empty registry" scenario requires. When
// no roots are configured there is nothing to scan, so the snapshot is left
// partial=true (createEmpty()'s default) rather than overwritten with a
// vacuously-clean outcome.
func (r *Registry) bootstrap(ctx context.Context) (entities.RegistryDiff, error) {
	r.mu.RLock()
	opts := r.opts
	r.mu.RUnlock()

	var outcome ports.DiscoveryOutcome
	if len(opts.Roots) > 0 {
		var err error
		outcome, err = r.discover(ctx, opts.Roots, opts.Strategies)
		if err != nil {
			return entities.RegistryDiff{}, err
		}
	} else {
		outcome.Partial = true
	}

	next := r.store.CreateEmpty()
	next.Plugins = outcome.Plugins
	next.Manifests = outcome.Manifests
	next.Errors = outcome.Errors
	next.Partial = outcome.Partial

	diff := computeDiff(nil, next.Plugins)

	if err := r.store.Persist(next); err != nil {
		r.mu.Lock()
		r.snapshot = next
		r.lastAll = outcome.AllCandidates
		r.indexLocked()
		r.mu.Unlock()
		r.publish(diff)
		return diff, fmt.Errorf("failed to persist snapshot: %w", err)
	}

	r.mu.Lock()
	r.snapshot = next
	r.lastAll = outcome.AllCandidates
	r.indexLocked()
	r.mu.Unlock()

	r.publish(diff)
	return diff, nil
}

// List implements ports.PluginRegistry.
func (r *Registry) List() []entities.PluginBrief {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil {
		return nil
	}
	out := make([]entities.PluginBrief, len(r.snapshot.Plugins))
	copy(out, r.snapshot.Plugins)
	return out
}

// GetManifest implements ports.PluginRegistry.
func (r *Registry) GetManifest(id string) (*entities.Manifest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil {
		return nil, false
	}
	for _, e := range r.snapshot.Manifests {
		if e.PluginID == id {
			return e.Manifest, true
		}
	}
	return nil, false
}

// Explain implements ports.PluginRegistry.
func (r *Registry) Explain(id string) []entities.PluginBrief {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entities.PluginBrief
	for _, b := range r.lastAll {
		if b.ID == id {
			out = append(out, b)
		}
	}
	return out
}

// Refresh implements ports.PluginRegistry with single-flight semantics:
// concurrent callers await the same discovery+persist outcome.
func (r *Registry) Refresh(ctx context.Context) (entities.RegistryDiff, error) {
	v, err, _ := r.group.Do("refresh", func() (interface{}, error) {
		return r.doRefresh(ctx)
	})
	if err != nil {
		return entities.RegistryDiff{}, err
	}
	return v.(entities.RegistryDiff), nil
}

func (r *Registry) doRefresh(ctx context.Context) (entities.RegistryDiff, error) {
	r.mu.RLock()
	opts := r.opts
	prev := r.snapshot
	r.mu.RUnlock()

	outcome, err := r.discover(ctx, opts.Roots, opts.Strategies)
	if err != nil {
		return entities.RegistryDiff{}, err
	}

	next := r.store.CreateEmpty()
	next.Plugins = outcome.Plugins
	next.Manifests = outcome.Manifests
	next.Errors = outcome.Errors
	next.Partial = outcome.Partial
	if prev != nil {
		next.Rev = prev.Rev + 1
	}

	diff := computeDiff(previousPlugins(prev), next.Plugins)

	if err := r.store.Persist(next); err != nil {
		// Persist failures are surfaced to the caller but do not crash the
		// host; the in-memory view is still updated below.
		r.mu.Lock()
		r.snapshot = next
		r.lastAll = outcome.AllCandidates
		r.indexLocked()
		r.mu.Unlock()
		r.publish(diff)
		return diff, fmt.Errorf("failed to persist snapshot: %w", err)
	}

	r.mu.Lock()
	r.snapshot = next
	r.lastAll = outcome.AllCandidates
	r.indexLocked()
	r.mu.Unlock()

	r.publish(diff)
	return diff, nil
}

// indexLocked rebuilds the command index from the current snapshot. Caller
// must hold r.mu for writing.
func (r *Registry) indexLocked() {
	if r.resolver == nil || r.snapshot == nil {
		return
	}
	r.resolver.Index(r.snapshot.Manifests)
}

func previousPlugins(snap *entities.RegistrySnapshot) []entities.PluginBrief {
	if snap == nil {
		return nil
	}
	return snap.Plugins
}

// Subscribe implements ports.PluginRegistry.
func (r *Registry) Subscribe(fn ports.DiffSubscriber) func() {
	r.subMu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = fn
	r.subMu.Unlock()

	return func() {
		r.subMu.Lock()
		delete(r.subscribers, id)
		r.subMu.Unlock()
	}
}

func (r *Registry) publish(diff entities.RegistryDiff) {
	r.subMu.Lock()
	subs := make([]ports.DiffSubscriber, 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		subs = append(subs, fn)
	}
	r.subMu.Unlock()

	for _, fn := range subs {
		fn(diff)
	}
}

// computeDiff returns the RegistryDiff between an old and new plugin list,
// per the {version, source.kind, source.path} change comparison.
func computeDiff(oldList, newList []entities.PluginBrief) entities.RegistryDiff {
	oldByID := make(map[string]entities.PluginBrief, len(oldList))
	for _, b := range oldList {
		oldByID[b.ID] = b
	}
	newByID := make(map[string]entities.PluginBrief, len(newList))
	for _, b := range newList {
		newByID[b.ID] = b
	}

	var diff entities.RegistryDiff
	for _, b := range newList {
		old, existed := oldByID[b.ID]
		if !existed {
			diff.Added = append(diff.Added, b)
			continue
		}
		if old.Version != b.Version || old.Source.Kind != b.Source.Kind || old.Source.Path != b.Source.Path {
			diff.Changed = append(diff.Changed, entities.RegistryDiffChange{From: old, To: b})
		}
	}
	for _, b := range oldList {
		if _, stillPresent := newByID[b.ID]; !stillPresent {
			diff.Removed = append(diff.Removed, b)
		}
	}

	sort.Slice(diff.Added, func(i, j int) bool { return diff.Added[i].ID < diff.Added[j].ID })
	sort.Slice(diff.Removed, func(i, j int) bool { return diff.Removed[i].ID < diff.Removed[j].ID })
	sort.Slice(diff.Changed, func(i, j int) bool { return diff.Changed[i].To.ID < diff.Changed[j].To.ID })
	return diff
}
