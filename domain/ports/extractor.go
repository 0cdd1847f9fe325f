package ports

import "github.com/kb-labs/registry-host/domain/entities"

// Extractor analyzes plugin configuration and returns required capabilities.
type Extractor interface {
	// Extract returns capabilities needed based on the plugin's config.
	// Returns a PermissionSpec representing what the plugin needs.
	Extract(config map[string]interface{}) (*entities.PermissionSpec, error)
}

// ExtractorRegistry manages extractors by plugin name.
type ExtractorRegistry interface {
	Register(pluginName string, extractor Extractor)
	Get(pluginName string) (Extractor, bool)
}
