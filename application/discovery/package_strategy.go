package discovery

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
)

// PackageStrategy reads a package descriptor (package.json) at each root and
// honors its kbLabs.manifest / kbLabs.plugins fields.
type PackageStrategy struct {
	parser ports.ManifestParser
}

// NewPackageStrategy creates a PackageStrategy.
func NewPackageStrategy(parser ports.ManifestParser) *PackageStrategy {
	return &PackageStrategy{parser: parser}
}

// Kind implements ports.Strategy.
func (s *PackageStrategy) Kind() entities.SourceKind { return entities.SourcePkg }

// Discover implements ports.Strategy.
func (s *PackageStrategy) Discover(ctx context.Context, roots []string) (ports.DiscoveryOutcome, error) {
	var out ports.DiscoveryOutcome
	for _, root := range roots {
		s.discoverRoot(ctx, root, &out)
	}
	return out, nil
}

func (s *PackageStrategy) discoverRoot(ctx context.Context, root string, out *ports.DiscoveryOutcome) {
	descPath := filepath.Join(root, "package.json")
	data, err := os.ReadFile(descPath)
	if err != nil {
		// No package descriptor at this root is not fatal for this strategy.
		return
	}

	var desc packageDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		addError(out, descPath, entities.DiscoveryParseError, err)
		return
	}
	if desc.KBLabs == nil {
		return
	}

	if desc.KBLabs.Manifest != "" {
		s.loadOne(ctx, root, desc.KBLabs.Manifest, out)
	}
	for _, rel := range desc.KBLabs.Plugins {
		s.loadOne(ctx, root, rel, out)
	}
}

func (s *PackageStrategy) loadOne(ctx context.Context, root, rel string, out *ports.DiscoveryOutcome) {
	abs := filepath.Join(root, rel)
	m, err := loadManifestFile(ctx, s.parser, abs)
	if err != nil {
		addError(out, abs, entities.DiscoveryParseError, err)
		return
	}
	addManifest(out, m, entities.Source{Kind: entities.SourcePkg, Path: abs})
}
