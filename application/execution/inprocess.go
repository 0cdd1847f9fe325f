// Package execution implements the execution backends that run a resolved
// handlerRef under a capability grant and resource quota: in-process,
// subprocess (Unix-domain socket IPC), and sandboxed WASM.
package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
)

// InProcessBackend dispatches to handlers registered in the current process.
// It is the fast path for trusted, first-party commands (host commands and
// plugins that declare no sandboxing requirement).
type InProcessBackend struct {
	handlers map[string]ports.Handler
	output   ports.Presenter
}

// NewInProcessBackend creates an InProcessBackend presenting progress/result
// events through output.
func NewInProcessBackend(output ports.Presenter) *InProcessBackend {
	return &InProcessBackend{handlers: make(map[string]ports.Handler), output: output}
}

// Register binds a handlerRef to its Go implementation.
func (b *InProcessBackend) Register(handlerRef string, h ports.Handler) {
	b.handlers[handlerRef] = h
}

// Execute implements ports.ExecutionBackend.
func (b *InProcessBackend) Execute(ctx context.Context, req entities.ExecutionRequest) (entities.ExecutionResult, error) {
	started := time.Now()
	meta := entities.ExecutionMeta{StartedAt: started, ExecutionID: req.ExecutionID, PluginID: req.PluginID}

	handler, ok := b.handlers[req.HandlerRef]
	if !ok {
		meta.FinishedAt = time.Now()
		return entities.ExecutionResult{
			Ok:       false,
			Error:    entities.NewErrorDetail("HANDLER_NOT_FOUND", fmt.Sprintf("no handler registered for %q", req.HandlerRef)),
			Metadata: meta,
		}, nil
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if req.TimeoutMs > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	rc := &ports.ExecutionContext{
		Context:    runCtx,
		Output:     b.output,
		Descriptor: req.Descriptor,
		Argv:       req.Input.Argv,
		Flags:      req.Input.Flags,
	}

	type outcome struct {
		data map[string]interface{}
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		data, err := handler(runCtx, rc)
		done <- outcome{data, err}
	}()

	select {
	case <-runCtx.Done():
		meta.FinishedAt = time.Now()
		if runCtx.Err() == context.DeadlineExceeded {
			return entities.ExecutionResult{
				Ok:       false,
				Error:    entities.NewErrorDetail("EXEC_TIMEOUT", fmt.Sprintf("handler %q exceeded %dms", req.HandlerRef, req.TimeoutMs)),
				Metadata: meta,
			}, nil
		}
		return entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_CANCELED", runCtx.Err().Error()), Metadata: meta}, nil
	case res := <-done:
		meta.FinishedAt = time.Now()
		if res.err != nil {
			return entities.ExecutionResult{
				Ok:       false,
				Error:    entities.NewErrorDetail("EXEC_FAILED", res.err.Error()),
				Metadata: meta,
			}, nil
		}
		result := entities.ExecutionResult{Ok: true, Data: res.data, Metadata: meta}
		if b.output != nil {
			b.output.Result(result)
		}
		return result, nil
	}
}
