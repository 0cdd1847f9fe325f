package discovery

import (
	"context"
	"testing"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStrategy struct {
	kind entities.SourceKind
	out  ports.DiscoveryOutcome
}

func (s *stubStrategy) Kind() entities.SourceKind { return s.kind }
func (s *stubStrategy) Discover(_ context.Context, _ []string) (ports.DiscoveryOutcome, error) {
	return s.out, nil
}

func brief(id, version string, kind entities.SourceKind, path string) entities.PluginBrief {
	return entities.PluginBrief{ID: id, Version: version, Source: entities.Source{Kind: kind, Path: path}}
}

func TestManager_PrecedenceInvariant(t *testing.T) {
	workspace := &stubStrategy{kind: entities.SourceWorkspace, out: ports.DiscoveryOutcome{
		Plugins: []entities.PluginBrief{brief("@org/p", "1.0.0", entities.SourceWorkspace, "/w/m.yaml")},
	}}
	file := &stubStrategy{kind: entities.SourceFile, out: ports.DiscoveryOutcome{
		Plugins: []entities.PluginBrief{brief("@org/p", "2.0.0", entities.SourceFile, "/f/m.yaml")},
	}}

	m := NewManager(workspace, file)
	out, err := m.Discover(context.Background(), nil, []entities.SourceKind{entities.SourceWorkspace, entities.SourceFile})
	require.NoError(t, err)

	require.Len(t, out.Plugins, 1)
	assert.Equal(t, entities.SourceWorkspace, out.Plugins[0].Source.Kind)
	assert.Equal(t, "1.0.0", out.Plugins[0].Version)
}

func TestManager_TieBreakByHigherSemver(t *testing.T) {
	a := &stubStrategy{kind: entities.SourceDir, out: ports.DiscoveryOutcome{
		Plugins: []entities.PluginBrief{brief("@org/p", "1.0.0", entities.SourceDir, "/a/m.yaml")},
	}}
	b := &stubStrategy{kind: entities.SourceDir, out: ports.DiscoveryOutcome{}}

	m := NewManager(a, b)
	// Simulate two dir-strategy results merged together by calling merge directly.
	out := m.merge([]entities.SourceKind{entities.SourceDir}, []ports.DiscoveryOutcome{
		{Plugins: []entities.PluginBrief{
			brief("@org/p", "1.0.0", entities.SourceDir, "/a/m.yaml"),
			brief("@org/p", "1.5.0", entities.SourceDir, "/b/m.yaml"),
		}},
	})

	require.Len(t, out.Plugins, 1)
	assert.Equal(t, "1.5.0", out.Plugins[0].Version)
}

func TestManager_TieBreakByPathWhenSemverEqual(t *testing.T) {
	m := NewManager()
	out := m.merge([]entities.SourceKind{entities.SourceDir}, []ports.DiscoveryOutcome{
		{Plugins: []entities.PluginBrief{
			brief("@org/p", "1.0.0", entities.SourceDir, "/z/m.yaml"),
			brief("@org/p", "1.0.0", entities.SourceDir, "/a/m.yaml"),
		}},
	})

	require.Len(t, out.Plugins, 1)
	assert.Equal(t, "/a/m.yaml", out.Plugins[0].Source.Path)
}

func TestManager_SortsResultsByID(t *testing.T) {
	m := NewManager()
	out := m.merge([]entities.SourceKind{entities.SourceDir}, []ports.DiscoveryOutcome{
		{Plugins: []entities.PluginBrief{
			brief("@org/zeta", "1.0.0", entities.SourceDir, "/z"),
			brief("@org/alpha", "1.0.0", entities.SourceDir, "/a"),
		}},
	})

	require.Len(t, out.Plugins, 2)
	assert.Equal(t, "@org/alpha", out.Plugins[0].ID)
	assert.Equal(t, "@org/zeta", out.Plugins[1].ID)
}

func TestManager_PartialPropagatesFromAnyStrategy(t *testing.T) {
	m := NewManager()
	out := m.merge([]entities.SourceKind{entities.SourceDir, entities.SourceFile}, []ports.DiscoveryOutcome{
		{Partial: true},
		{},
	})
	assert.True(t, out.Partial)
}
