package discovery

import (
	"context"
	"path/filepath"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
)

// FileStrategy loads one or more explicit manifest file paths passed by the caller.
type FileStrategy struct {
	parser ports.ManifestParser
}

// NewFileStrategy creates a FileStrategy.
func NewFileStrategy(parser ports.ManifestParser) *FileStrategy {
	return &FileStrategy{parser: parser}
}

// Kind implements ports.Strategy.
func (s *FileStrategy) Kind() entities.SourceKind { return entities.SourceFile }

// Discover treats each root as an explicit manifest file path.
func (s *FileStrategy) Discover(ctx context.Context, roots []string) (ports.DiscoveryOutcome, error) {
	var out ports.DiscoveryOutcome
	for _, path := range roots {
		abs, err := filepath.Abs(path)
		if err != nil {
			addError(&out, path, entities.DiscoveryResolveError, err)
			continue
		}
		m, err := loadManifestFile(ctx, s.parser, abs)
		if err != nil {
			addError(&out, abs, entities.DiscoveryParseError, err)
			continue
		}
		addManifest(&out, m, entities.Source{Kind: entities.SourceFile, Path: abs})
	}
	return out, nil
}
