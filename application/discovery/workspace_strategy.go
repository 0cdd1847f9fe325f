package discovery

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
	"gopkg.in/yaml.v3"
)

// WorkspaceStrategy climbs each root to find a workspace descriptor
// (pnpm-workspace.yaml or a package descriptor with a "workspaces" field)
// and loads the manifest declared by every member package.
type WorkspaceStrategy struct {
	parser ports.ManifestParser
}

// NewWorkspaceStrategy creates a WorkspaceStrategy.
func NewWorkspaceStrategy(parser ports.ManifestParser) *WorkspaceStrategy {
	return &WorkspaceStrategy{parser: parser}
}

// Kind implements ports.Strategy.
func (s *WorkspaceStrategy) Kind() entities.SourceKind { return entities.SourceWorkspace }

type pnpmWorkspace struct {
	Packages []string `yaml:"packages"`
}

// Discover implements ports.Strategy.
func (s *WorkspaceStrategy) Discover(ctx context.Context, roots []string) (ports.DiscoveryOutcome, error) {
	var out ports.DiscoveryOutcome
	for _, root := range roots {
		members, err := s.resolveMembers(root)
		if err != nil {
			addError(&out, root, entities.DiscoveryResolveError, err)
			continue
		}
		for _, member := range members {
			s.loadMember(ctx, member, &out)
		}
	}
	return out, nil
}

// resolveMembers returns the absolute directories of every workspace member
// declared by the nearest workspace descriptor at root or one of its parent
// directories, via pnpm-workspace.yaml or package.json#workspaces.
func (s *WorkspaceStrategy) resolveMembers(root string) ([]string, error) {
	for dir := root; ; dir = filepath.Dir(dir) {
		if data, err := os.ReadFile(filepath.Join(dir, "pnpm-workspace.yaml")); err == nil {
			var ws pnpmWorkspace
			if err := yaml.Unmarshal(data, &ws); err != nil {
				return nil, err
			}
			return expandGlobs(dir, ws.Packages)
		}

		if data, err := os.ReadFile(filepath.Join(dir, "package.json")); err == nil {
			var desc packageDescriptor
			if err := json.Unmarshal(data, &desc); err != nil {
				return nil, err
			}
			if len(desc.Workspaces) > 0 {
				return expandGlobs(dir, desc.Workspaces)
			}
		}

		if filepath.Dir(dir) == dir {
			return nil, nil
		}
	}
}

func expandGlobs(root string, patterns []string) ([]string, error) {
	var members []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err == nil && info.IsDir() {
				members = append(members, m)
			}
		}
	}
	return members, nil
}

func (s *WorkspaceStrategy) loadMember(ctx context.Context, dir string, out *ports.DiscoveryOutcome) {
	descPath := filepath.Join(dir, "package.json")
	data, err := os.ReadFile(descPath)
	if err != nil {
		return
	}
	var desc packageDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		addError(out, descPath, entities.DiscoveryParseError, err)
		return
	}
	if desc.KBLabs == nil || desc.KBLabs.Manifest == "" {
		return
	}

	abs := filepath.Join(dir, desc.KBLabs.Manifest)
	m, err := loadManifestFile(ctx, s.parser, abs)
	if err != nil {
		addError(out, abs, entities.DiscoveryParseError, err)
		return
	}
	addManifest(out, m, entities.Source{Kind: entities.SourceWorkspace, Path: abs})
}
