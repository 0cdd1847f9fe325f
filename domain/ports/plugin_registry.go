package ports

import (
	"context"

	"github.com/kb-labs/registry-host/domain/entities"
)

// RegistryMode controls whether a registry instance may run discovery itself.
type RegistryMode string

const (
	// ModeProducer loads the snapshot and runs discovery if absent/stale.
	ModeProducer RegistryMode = "producer"
	// ModeConsumer only loads the snapshot; it never discovers.
	ModeConsumer RegistryMode = "consumer"
)

// InitOptions configures Registry.Initialize.
type InitOptions struct {
	Mode       RegistryMode
	Roots      []string
	Strategies []entities.SourceKind
	TTLMs      int64
}

// DiffSubscriber receives a RegistryDiff after every successful refresh.
type DiffSubscriber func(diff entities.RegistryDiff)

// PluginRegistry is the in-memory authoritative view of discovered plugins
// and the commands they contribute.
type PluginRegistry interface {
	Initialize(ctx context.Context, opts InitOptions) error
	List() []entities.PluginBrief
	GetManifest(id string) (*entities.Manifest, bool)
	Refresh(ctx context.Context) (entities.RegistryDiff, error)
	Explain(id string) []entities.PluginBrief
	Subscribe(fn DiffSubscriber) (unsubscribe func())
}
