package ports

import "github.com/kb-labs/registry-host/domain/entities"

// CapabilityValidator validates capability configurations against schemas.
type CapabilityValidator interface {
	// Validate checks the manifest capabilities against registered schemas.
	Validate(manifest *entities.Manifest) (*entities.ValidationResult, error)
}
