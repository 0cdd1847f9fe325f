// Package discovery implements the four plugin-discovery strategies
// (workspace, pkg, dir, file) and the manager that orchestrates them.
package discovery

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
)

// DefaultLoadTimeout bounds a single manifest file load.
const DefaultLoadTimeout = 5 * time.Second

// packageDescriptor is the subset of a package.json-style descriptor the
// discovery strategies care about.
type packageDescriptor struct {
	KBLabs     *kbLabsField `json:"kbLabs"`
	Name       string       `json:"name"`
	Version    string       `json:"version"`
	Workspaces []string     `json:"workspaces"`
}

type kbLabsField struct {
	Manifest string   `json:"manifest"`
	Plugins  []string `json:"plugins"`
}

// loadManifestFile reads and parses a manifest file from disk, bounded by
// DefaultLoadTimeout. Errors are returned, never panicked, so the caller can
// collect them into the strategy's outcome without aborting.
func loadManifestFile(ctx context.Context, parser ports.ManifestParser, path string) (*entities.Manifest, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultLoadTimeout)
	defer cancel()

	type result struct {
		manifest *entities.Manifest
		err      error
	}
	done := make(chan result, 1)

	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			done <- result{err: err}
			return
		}
		m, err := parser.Parse(data)
		done <- result{manifest: m, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.manifest, r.err
	}
}

// briefFromManifest projects a loaded manifest into the registry-visible brief.
func briefFromManifest(m *entities.Manifest, src entities.Source) entities.PluginBrief {
	return entities.PluginBrief{
		ID:      m.ID,
		Version: m.Version,
		Kind:    m.Schema,
		Source:  src,
		Display: m.Display,
	}
}

// addManifest appends both the brief and the embedded snapshot entry for m,
// rooted at pluginRoot (the manifest's containing directory).
func addManifest(out *ports.DiscoveryOutcome, m *entities.Manifest, src entities.Source) {
	out.Plugins = append(out.Plugins, briefFromManifest(m, src))
	out.Manifests = append(out.Manifests, entities.SnapshotEntry{
		PluginID:   m.ID,
		Manifest:   m,
		PluginRoot: filepath.Dir(src.Path),
		Source:     src,
	})
}

func addError(out *ports.DiscoveryOutcome, path string, code entities.DiscoveryErrorCode, err error) {
	out.Errors = append(out.Errors, entities.DiscoveryError{
		PluginPath: path,
		Error:      err.Error(),
		Code:       code,
	})
}
