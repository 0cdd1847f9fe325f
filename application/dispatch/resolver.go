package dispatch

import (
	"strings"
	"sync"

	"github.com/kb-labs/registry-host/domain/entities"
)

// pathSep joins path segments into a map key. Chosen to never collide with a
// legal segment, since manifest ids/aliases are namespaced strings, not raw
// control characters.
const pathSep = "\x1f"

// Resolver implements ports.CommandResolver: a command tree built from host
// registrations (fixed at startup) and the current plugin command set
// (rebuilt on every registry Index call), with host-over-plugin shadowing
// and the path-shortening fallback.
type Resolver struct {
	mu sync.RWMutex

	hostRecords []entities.CommandRecord
	hostByKey   map[string]entities.CommandRecord

	pluginRecords []entities.CommandRecord
	pluginByKey   map[string]entities.CommandRecord
	// pluginAliasKeys maps a plugin record's canonical joined path to the
	// joined paths of its own aliases, so reshadowLocked can check alias
	// collisions against hostByKey too, not just the canonical path.
	pluginAliasKeys map[string][]string

	groupPaths map[string]bool
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{
		hostByKey:       make(map[string]entities.CommandRecord),
		pluginByKey:     make(map[string]entities.CommandRecord),
		pluginAliasKeys: make(map[string][]string),
		groupPaths:      make(map[string]bool),
	}
}

// RegisterHost implements ports.CommandResolver. It reserves record.Path and
// every alias (sibling of the final path segment) for a host-native command;
// re-indexing plugin commands afterward marks any colliding plugin command
// shadowed.
func (r *Resolver) RegisterHost(record entities.CommandRecord, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.Origin = entities.OriginHost
	r.hostRecords = append(r.hostRecords, record)
	r.hostByKey[joinPath(record.Path)] = record

	for _, alias := range aliases {
		aliasPath := siblingPath(record.Path, alias)
		r.hostByKey[joinPath(aliasPath)] = record
	}

	r.rebuildGroupsLocked()
	r.reshadowLocked()
}

// Index implements ports.CommandResolver: it rebuilds the plugin command set
// from the current manifests, deriving each command's path from its group
// and id, and marks entries shadowed when they collide with a reserved host
// path or alias.
func (r *Resolver) Index(entries []entities.SnapshotEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pluginRecords = nil
	r.pluginByKey = make(map[string]entities.CommandRecord)
	r.pluginAliasKeys = make(map[string][]string)

	for _, entry := range entries {
		if entry.Manifest == nil {
			continue
		}
		for _, cmd := range entry.Manifest.Commands {
			path := commandPath(cmd.Group, cmd.ID)
			record := entities.CommandRecord{
				ManifestVersion: string(entry.Manifest.Schema),
				HandlerRef:      cmd.HandlerRef,
				PluginID:        entry.PluginID,
				Origin:          entities.OriginPlugin,
				Path:            path,
				Flags:           cmd.Flags,
			}
			canonicalKey := joinPath(path)
			r.pluginRecords = append(r.pluginRecords, record)
			r.pluginByKey[canonicalKey] = record

			var aliasKeys []string
			for _, alias := range cmd.Aliases {
				aliasPath := siblingPath(path, alias)
				aliasKey := joinPath(aliasPath)
				r.pluginByKey[aliasKey] = record
				aliasKeys = append(aliasKeys, aliasKey)
			}
			r.pluginAliasKeys[canonicalKey] = aliasKeys
		}
	}

	r.rebuildGroupsLocked()
	r.reshadowLocked()
}

// Resolve implements ports.CommandResolver.
func (r *Resolver) Resolve(path []string, rest []string) (entities.CommandRecord, []string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cur := append([]string(nil), path...)
	positional := append([]string(nil), rest...)

	for {
		key := joinPath(cur)
		if rec, ok := r.hostByKey[key]; ok {
			return rec, positional, true
		}
		if rec, ok := r.pluginByKey[key]; ok && !rec.Shadowed {
			return rec, positional, true
		}
		if r.groupPaths[key] {
			return entities.CommandRecord{Path: cur, Origin: entities.OriginPlugin}, positional, true
		}
		if len(cur) <= 2 {
			break
		}
		positional = append([]string{cur[len(cur)-1]}, positional...)
		cur = cur[:len(cur)-1]
	}

	return entities.CommandRecord{}, rest, false
}

// List implements ports.CommandResolver.
func (r *Resolver) List() []entities.CommandRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entities.CommandRecord, 0, len(r.hostRecords)+len(r.pluginRecords))
	out = append(out, r.hostRecords...)
	out = append(out, r.pluginRecords...)
	return out
}

// reshadowLocked marks every plugin record shadowed when its canonical path
// or any of its own aliases collides with a host-reserved path or alias.
// Caller must hold r.mu.
func (r *Resolver) reshadowLocked() {
	for i, rec := range r.pluginRecords {
		canonicalKey := joinPath(rec.Path)
		_, collides := r.hostByKey[canonicalKey]
		if !collides {
			for _, aliasKey := range r.pluginAliasKeys[canonicalKey] {
				if _, ok := r.hostByKey[aliasKey]; ok {
					collides = true
					break
				}
			}
		}
		r.pluginRecords[i].Shadowed = collides
		r.pluginByKey[canonicalKey] = r.pluginRecords[i]
		for _, aliasKey := range r.pluginAliasKeys[canonicalKey] {
			r.pluginByKey[aliasKey] = r.pluginRecords[i]
		}
	}
}

// rebuildGroupsLocked recomputes the set of paths that are proper prefixes
// of some registered command path (host or plugin); those paths resolve to
// group nodes rather than dispatchable commands. Caller must hold r.mu.
func (r *Resolver) rebuildGroupsLocked() {
	groups := make(map[string]bool)
	addPrefixes := func(path []string) {
		for i := 1; i < len(path); i++ {
			groups[joinPath(path[:i])] = true
		}
	}
	for _, rec := range r.hostRecords {
		addPrefixes(rec.Path)
	}
	for _, rec := range r.pluginRecords {
		addPrefixes(rec.Path)
	}
	r.groupPaths = groups
}

func joinPath(path []string) string {
	return strings.Join(path, pathSep)
}

// siblingPath replaces the final segment of path with alias, preserving any
// group prefix, so an alias registers at the same depth as its command.
func siblingPath(path []string, alias string) []string {
	if len(path) == 0 {
		return []string{alias}
	}
	out := append([]string(nil), path[:len(path)-1]...)
	return append(out, alias)
}

// commandPath derives a command's addressable path from its manifest group
// and id. Both may themselves be colon-separated, matching the same
// flattening convention the argument parser applies to a typed path.
func commandPath(group, id string) []string {
	var path []string
	path = append(path, splitNonEmpty(group)...)
	path = append(path, splitNonEmpty(id)...)
	return path
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ":")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
