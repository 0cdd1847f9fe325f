package extractor

import (
	"fmt"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
)

// ManifestExtractor resolves the effective PermissionSpec a manifest requests,
// merging its top-level permissions with its setup handler's permissions (the
// setup hook runs once and may need a broader grant than the steady-state
// commands).
type ManifestExtractor struct {
	parser   ports.ManifestParser
	renderer ports.TemplateEngine
	manifest []byte
}

// ManifestExtractorOption configures the ManifestExtractor.
type ManifestExtractorOption func(*ManifestExtractor)

// WithParser sets the manifest parser.
func WithParser(p ports.ManifestParser) ManifestExtractorOption {
	return func(e *ManifestExtractor) {
		e.parser = p
	}
}

// WithTemplateEngine sets the template engine.
func WithTemplateEngine(t ports.TemplateEngine) ManifestExtractorOption {
	return func(e *ManifestExtractor) {
		e.renderer = t
	}
}

// NewManifestExtractor creates a new ManifestExtractor for the given manifest.
func NewManifestExtractor(manifest []byte, opts ...ManifestExtractorOption) *ManifestExtractor {
	e := &ManifestExtractor{
		manifest: manifest,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses the manifest (optionally templated against config) and
// returns the permission spec it requests.
func (e *ManifestExtractor) Extract(config map[string]interface{}) (*entities.PermissionSpec, error) {
	if e.parser == nil {
		return nil, fmt.Errorf("manifest parser is required")
	}

	data := e.manifest
	if e.renderer != nil {
		var err error
		data, err = e.renderer.Render(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to render manifest: %w", err)
		}
	}

	manifest, err := e.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	spec := &entities.PermissionSpec{}
	if manifest.Permissions != nil {
		spec.Merge(manifest.Permissions)
	}
	if manifest.Setup != nil && manifest.Setup.Permissions != nil {
		spec.Merge(manifest.Setup.Permissions)
	}

	return spec, nil
}
