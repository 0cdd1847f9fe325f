package ports

import "github.com/kb-labs/registry-host/domain/entities"

// GrantStore provides persistence for capability grants.
type GrantStore interface {
	// Load retrieves all granted capabilities.
	// Returns empty PermissionSpec (not error) if no grants exist.
	Load() (*entities.PermissionSpec, error)

	// Save persists the granted capabilities.
	Save(grants *entities.PermissionSpec) error

	// ConfigPath returns the path to the backing store (for user messaging).
	ConfigPath() string
}
