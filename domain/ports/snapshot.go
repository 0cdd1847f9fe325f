package ports

import "github.com/kb-labs/registry-host/domain/entities"

// SnapshotStore persists and loads the registry snapshot from disk under a
// root's `.kb/cache/` directory, per the atomic persist/load protocol.
type SnapshotStore interface {
	// Load reads the current snapshot, falling back to the `.prev` backup on
	// a checksum mismatch or parse error. Returns nil if both are unreadable.
	Load() (*entities.RegistrySnapshot, error)

	// Persist atomically writes snapshot as the new current snapshot,
	// backing up the prior one to `.prev` first (best-effort).
	Persist(snapshot *entities.RegistrySnapshot) error

	// CreateEmpty returns a valid, empty snapshot (rev=0, partial=true).
	CreateEmpty() *entities.RegistrySnapshot
}

// SnapshotCache is a best-effort external mirror for the serialized
// snapshot (e.g. Redis), consulted only as an accelerator.
type SnapshotCache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}
