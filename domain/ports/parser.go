package ports

import "github.com/kb-labs/registry-host/domain/entities"

// ManifestParser parses raw YAML bytes into a Manifest.
type ManifestParser interface {
	// Parse unmarshals YAML bytes into a Manifest struct.
	Parse(data []byte) (*entities.Manifest, error)
}
