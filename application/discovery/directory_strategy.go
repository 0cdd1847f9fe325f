package discovery

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
)

// manifestGlobs are the recursive patterns searched under each root's
// .kb/plugins directory. The teacher's source ecosystem used dynamic-import
// extensions (.js/.mjs/.cjs/.ts); this host treats manifests as data, so the
// equivalent declarative file extensions are searched instead.
var manifestGlobs = []string{
	".kb/plugins/**/manifest.yaml",
	".kb/plugins/**/manifest.yml",
	".kb/plugins/**/manifest.json",
}

// DirectoryStrategy recursively globs .kb/plugins/** under each root for
// manifest files.
type DirectoryStrategy struct {
	parser ports.ManifestParser
}

// NewDirectoryStrategy creates a DirectoryStrategy.
func NewDirectoryStrategy(parser ports.ManifestParser) *DirectoryStrategy {
	return &DirectoryStrategy{parser: parser}
}

// Kind implements ports.Strategy.
func (s *DirectoryStrategy) Kind() entities.SourceKind { return entities.SourceDir }

// Discover implements ports.Strategy.
func (s *DirectoryStrategy) Discover(ctx context.Context, roots []string) (ports.DiscoveryOutcome, error) {
	var out ports.DiscoveryOutcome
	for _, root := range roots {
		fsys := os.DirFS(root)
		for _, pattern := range manifestGlobs {
			matches, err := doublestar.Glob(fsys, pattern)
			if err != nil {
				addError(&out, root, entities.DiscoveryResolveError, err)
				continue
			}
			for _, rel := range matches {
				abs := filepath.Join(root, rel)
				m, err := loadManifestFile(ctx, s.parser, abs)
				if err != nil {
					addError(&out, abs, entities.DiscoveryParseError, err)
					continue
				}
				addManifest(&out, m, entities.Source{Kind: entities.SourceDir, Path: abs})
			}
		}
	}
	return out, nil
}
