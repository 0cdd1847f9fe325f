// Package validation provides validation logic for plugin manifests and their
// permission specs.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CapabilityValidator implements validation using JSON schemas, one per
// grant category (network/fs/env/exec/kv) in a manifest's permission spec.
type CapabilityValidator struct {
	registry ports.CapabilityRegistry
	compiler *jsonschema.Compiler
	shape    *validator.Validate
}

// NewCapabilityValidator creates a new validator.
func NewCapabilityValidator(registry ports.CapabilityRegistry) ports.CapabilityValidator {
	return &CapabilityValidator{
		registry: registry,
		compiler: jsonschema.NewCompiler(),
		shape:    validator.New(),
	}
}

// Validate checks the manifest's schema version, then its permission spec
// grants against registered schemas, one grant category at a time, then its
// required-field shape (id/version, every command's id/handlerRef) via
// struct tags.
func (v *CapabilityValidator) Validate(manifest *entities.Manifest) (*entities.ValidationResult, error) {
	result := &entities.ValidationResult{Valid: true}

	if manifest.Schema != entities.SchemaV2 && manifest.Schema != entities.SchemaV3 {
		result.Valid = false
		result.Errors = append(result.Errors, entities.ValidationError{
			Field:   "schema",
			Message: fmt.Sprintf("unsupported manifest schema %q", manifest.Schema),
		})
	}

	if manifest.Permissions == nil {
		v.checkShape(result, manifest)
		return result, nil
	}

	grants := map[string]interface{}{}
	if manifest.Permissions.Network != nil {
		grants["network"] = manifest.Permissions.Network
	}
	if manifest.Permissions.FS != nil {
		grants["fs"] = manifest.Permissions.FS
	}
	if manifest.Permissions.Env != nil {
		grants["env"] = manifest.Permissions.Env
	}
	if manifest.Permissions.Exec != nil {
		grants["exec"] = manifest.Permissions.Exec
	}
	if manifest.Permissions.KV != nil {
		grants["kv"] = manifest.Permissions.KV
	}

	for kind, grant := range grants {
		v.validateGrant(result, kind, grant)
	}

	v.checkShape(result, manifest)

	if len(result.Errors) > 0 {
		result.Valid = false
	}

	return result, nil
}

// checkShape appends one ValidationError per struct-tag failure (required
// fields on the manifest and its commands) after the grant-schema checks, so
// existing grant-error ordering is preserved when both kinds of failure
// occur together.
func (v *CapabilityValidator) checkShape(result *entities.ValidationResult, manifest *entities.Manifest) {
	err := v.shape.Struct(manifest)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return
	}
	result.Valid = false
	for _, fe := range fieldErrs {
		result.Errors = append(result.Errors, entities.ValidationError{
			Field:   fe.Namespace(),
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
		})
	}
}

func (v *CapabilityValidator) validateGrant(result *entities.ValidationResult, kind string, grant interface{}) {
	schemaStr, ok := v.registry.GetSchema(kind)
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, entities.ValidationError{
			Field:   kind,
			Message: fmt.Sprintf("no schema registered for capability %s", kind),
		})
		return
	}

	if err := v.compiler.AddResource(kind, strings.NewReader(schemaStr)); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, entities.ValidationError{
			Field:   kind,
			Message: fmt.Sprintf("failed to add schema resource for %s: %v", kind, err),
		})
		return
	}

	sch, err := v.compiler.Compile(kind)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, entities.ValidationError{
			Field:   kind,
			Message: fmt.Sprintf("invalid schema for %s: %v", kind, err),
		})
		return
	}

	b, _ := json.Marshal(grant)
	var obj interface{}
	if err := json.Unmarshal(b, &obj); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, entities.ValidationError{
			Field:   kind,
			Message: fmt.Sprintf("failed to prepare validation object: %v", err),
		})
		return
	}

	if err := sch.Validate(obj); err != nil {
		result.Valid = false
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   kind,
				Message: ve.Error(),
			})
		} else {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   kind,
				Message: err.Error(),
			})
		}
	}
}
