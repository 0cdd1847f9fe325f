package validation_test

import (
	"testing"

	"github.com/kb-labs/registry-host/application/validation"
	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRegistry struct {
	schemas map[string]string
}

func (m *mockRegistry) Register(name string, capability interface{}) error { return nil }
func (m *mockRegistry) GetSchema(name string) (string, bool) {
	s, ok := m.schemas[name]
	return s, ok
}
func (m *mockRegistry) List() []string { return nil }

func TestCapabilityValidator_Validate(t *testing.T) {
	registry := &mockRegistry{
		schemas: map[string]string{
			"network": `{"type": "object"}`,
			"fs":      `{"type": "object", "required": ["allow"]}`,
		},
	}
	validator := validation.NewCapabilityValidator(registry)

	t.Run("Valid manifest", func(t *testing.T) {
		manifest := &entities.Manifest{
			Schema:  entities.SchemaV3,
			ID:      "test-plugin",
			Version: "1.0.0",
			Permissions: &entities.PermissionSpec{
				Network: &entities.NetworkGrant{Mode: entities.NetworkAllowHosts, AllowHosts: []string{"example.com"}},
			},
		}
		res, err := validator.Validate(manifest)
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("Invalid grant schema", func(t *testing.T) {
		// missing required 'allow' per the mock schema for 'fs'
		manifest := &entities.Manifest{
			Schema:      entities.SchemaV3,
			Version:     "1.0.0",
			Permissions: &entities.PermissionSpec{FS: &entities.FileSystemGrant{Mode: entities.FSRead}},
		}
		res, err := validator.Validate(manifest)
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.NotEmpty(t, res.Errors)
	})

	t.Run("Unknown grant category", func(t *testing.T) {
		// 'env' not in registry
		manifest := &entities.Manifest{
			Schema:      entities.SchemaV3,
			Version:     "1.0.0",
			Permissions: &entities.PermissionSpec{Env: &entities.EnvironmentGrant{Allow: []string{"FOO"}}},
		}
		res, err := validator.Validate(manifest)
		require.NoError(t, err)
		assert.False(t, res.Valid)
		if len(res.Errors) > 0 {
			assert.Contains(t, res.Errors[0].Message, "no schema registered for capability env")
		} else {
			t.Error("expected validation errors")
		}
	})

	t.Run("Unsupported schema version", func(t *testing.T) {
		manifest := &entities.Manifest{Schema: "v1", Version: "1.0.0"}
		res, err := validator.Validate(manifest)
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors[0].Message, "unsupported manifest schema")
	})

	t.Run("Missing required fields", func(t *testing.T) {
		manifest := &entities.Manifest{
			Schema:   entities.SchemaV3,
			Version:  "1.0.0",
			Commands: []entities.CommandDescriptor{{Describe: "no id or handler"}},
		}
		res, err := validator.Validate(manifest)
		require.NoError(t, err)
		assert.False(t, res.Valid)

		var fields []string
		for _, e := range res.Errors {
			fields = append(fields, e.Field)
		}
		assert.Contains(t, fields, "Manifest.ID")
		assert.Contains(t, fields, "Manifest.Commands[0].ID")
		assert.Contains(t, fields, "Manifest.Commands[0].HandlerRef")
	})
}
