package registry

import (
	"context"
	"testing"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiff_AddedRemovedChanged(t *testing.T) {
	old := []entities.PluginBrief{
		{ID: "@a", Version: "1.0.0"},
	}
	next := []entities.PluginBrief{
		{ID: "@a", Version: "1.1.0"},
		{ID: "@b", Version: "2.0.0"},
	}

	diff := computeDiff(old, next)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, "@b", diff.Added[0].ID)
	require.Len(t, diff.Changed, 1)
	assert.Equal(t, "1.0.0", diff.Changed[0].From.Version)
	assert.Equal(t, "1.1.0", diff.Changed[0].To.Version)
	assert.Empty(t, diff.Removed)
}

func TestComputeDiff_Removed(t *testing.T) {
	old := []entities.PluginBrief{{ID: "@a", Version: "1.0.0"}, {ID: "@b", Version: "1.0.0"}}
	next := []entities.PluginBrief{{ID: "@a", Version: "1.0.0"}}

	diff := computeDiff(old, next)
	require.Len(t, diff.Removed, 1)
	assert.Equal(t, "@b", diff.Removed[0].ID)
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Changed)
}

func TestComputeDiff_EmptyWhenUnchanged(t *testing.T) {
	list := []entities.PluginBrief{{ID: "@a", Version: "1.0.0"}}
	diff := computeDiff(list, list)
	assert.True(t, diff.IsEmpty())
}

type stubDiscoverer struct {
	outcomes []ports.DiscoveryOutcome
	call     int
}

func (s *stubDiscoverer) Discover(_ context.Context, _ []string, _ []entities.SourceKind) (ports.DiscoveryOutcome, error) {
	out := s.outcomes[s.call]
	if s.call < len(s.outcomes)-1 {
		s.call++
	}
	return out, nil
}

func TestRegistry_RefreshIncrementsRevAndPublishesDiff(t *testing.T) {
	store := fakeStore{}
	disc := &stubDiscoverer{outcomes: []ports.DiscoveryOutcome{
		{Plugins: []entities.PluginBrief{{ID: "@a", Version: "1.0.0"}}},
		{Plugins: []entities.PluginBrief{{ID: "@a", Version: "1.0.0"}, {ID: "@b", Version: "1.0.0"}}},
	}}
	reg := NewRegistry(&store, disc, nil)
	require.NoError(t, reg.Initialize(context.Background(), ports.InitOptions{Mode: ports.ModeConsumer}))

	var received []entities.RegistryDiff
	reg.Subscribe(func(d entities.RegistryDiff) { received = append(received, d) })

	diff1, err := reg.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, diff1.Added, 1)

	diff2, err := reg.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, diff2.Added, 1)
	assert.Equal(t, "@b", diff2.Added[0].ID)

	require.Len(t, received, 2)
	require.NotNil(t, store.current)
	assert.Equal(t, 2, store.current.Rev)
	assert.Equal(t, []entities.PluginBrief{
		{ID: "@a", Version: "1.0.0"}, {ID: "@b", Version: "1.0.0"},
	}, reg.List())
}

func TestRegistry_Initialize_BootstrapWithNoRootsStaysRevZeroAndPartial(t *testing.T) {
	store := fakeStore{}
	disc := &stubDiscoverer{outcomes: []ports.DiscoveryOutcome{{}}}
	reg := NewRegistry(&store, disc, nil)

	require.NoError(t, reg.Initialize(context.Background(), ports.InitOptions{Mode: ports.ModeProducer}))

	require.NotNil(t, store.current)
	assert.Equal(t, 0, store.current.Rev)
	assert.True(t, store.current.Partial)
	assert.Empty(t, store.current.Plugins)
}

func TestRegistry_Initialize_BootstrapWithRootsStaysRevZero(t *testing.T) {
	store := fakeStore{}
	disc := &stubDiscoverer{outcomes: []ports.DiscoveryOutcome{
		{Plugins: []entities.PluginBrief{{ID: "@a", Version: "1.0.0"}}},
	}}
	reg := NewRegistry(&store, disc, nil)

	require.NoError(t, reg.Initialize(context.Background(), ports.InitOptions{Mode: ports.ModeProducer, Roots: []string{"/tmp/work"}}))

	require.NotNil(t, store.current)
	assert.Equal(t, 0, store.current.Rev)
	assert.False(t, store.current.Partial)
	assert.Equal(t, []entities.PluginBrief{{ID: "@a", Version: "1.0.0"}}, store.current.Plugins)

	// A subsequent explicit Refresh is a real rev-incrementing update, not a
	// second bootstrap.
	diff, err := reg.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, diff.IsEmpty())
	assert.Equal(t, 1, store.current.Rev)
}

// fakeStore is a minimal in-memory ports.SnapshotStore for registry tests.
type fakeStore struct {
	current *entities.RegistrySnapshot
}

func (f *fakeStore) Load() (*entities.RegistrySnapshot, error) { return f.current, nil }
func (f *fakeStore) Persist(s *entities.RegistrySnapshot) error {
	f.current = s
	return nil
}
func (f *fakeStore) CreateEmpty() *entities.RegistrySnapshot {
	return &entities.RegistrySnapshot{Schema: entities.RegistrySnapshotSchema, Partial: true}
}
