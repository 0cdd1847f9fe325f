package ports

import (
	"context"

	"github.com/kb-labs/registry-host/domain/entities"
)

// Handler is the in-process signature a registered handlerRef resolves to.
type Handler func(ctx context.Context, rc *ExecutionContext) (map[string]interface{}, error)

// ExecutionContext is the capability-scoped façade handed to a handler,
// exposing only the resources its manifest was granted.
type ExecutionContext struct {
	context.Context
	Output      Presenter
	Logger      interface{}
	Cwd         string
	Descriptor  entities.ExecutionDescriptor
	Argv        []string
	Flags       map[string]interface{}
}

// Presenter is the injected output surface; the core never touches
// stdout/stderr directly.
type Presenter interface {
	Progress(stage, message string, percent *int)
	Result(result entities.ExecutionResult)
}

// ExecutionBackend runs a resolved handler under a capability grant and
// resource quota, either in-process, out-of-process, or sandboxed.
type ExecutionBackend interface {
	Execute(ctx context.Context, req entities.ExecutionRequest) (entities.ExecutionResult, error)
}
