package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
	"github.com/kb-labs/registry-host/host"
	"github.com/kb-labs/registry-host/hostfuncs"
)

// ArtifactResolver locates the compiled WASM binary for a plugin invocation,
// typically by reading the "wasm" label off the plugin's manifest artifacts.
type ArtifactResolver func(req entities.ExecutionRequest) (wasmPath string, err error)

// WasmBackend runs a plugin's handler inside a sandboxed wazero-compiled
// module, one fresh instance per invocation, via the host package's wazero
// plumbing. It is the trust tier a manifest opts into with
// engine.runtime = "wasm": every capability a guest exercises crosses the
// "reglet_host" host-function bridge and is checked against that
// invocation's own manifest grant, gated by domain/policy the same way the
// in-process and subprocess tiers are gated at their own boundaries.
type WasmBackend struct {
	executor *host.Executor
	resolver ArtifactResolver
	output   ports.Presenter

	mu    sync.Mutex
	bytes map[string][]byte
}

// NewWasmBackend creates a WasmBackend. The underlying executor registers
// the network/exec/smtp host function bundles behind CapabilityMiddleware,
// so every call a guest makes is checked against the manifest permissions
// the caller attaches per-invocation via ExecutionDescriptor.
func NewWasmBackend(ctx context.Context, resolver ArtifactResolver, output ports.Presenter) (*WasmBackend, error) {
	registry, err := hostfuncs.NewRegistry(
		hostfuncs.WithBundle(hostfuncs.AllBundles()),
		hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware(), hostfuncs.CapabilityMiddleware()),
	)
	if err != nil {
		return nil, fmt.Errorf("build host function registry: %w", err)
	}

	executor, err := host.NewExecutor(ctx, host.WithHostFunctions(registry))
	if err != nil {
		return nil, fmt.Errorf("create wasm executor: %w", err)
	}

	return &WasmBackend{
		executor: executor,
		resolver: resolver,
		output:   output,
		bytes:    make(map[string][]byte),
	}, nil
}

// Close releases the underlying wazero runtime.
func (b *WasmBackend) Close(ctx context.Context) error {
	return b.executor.Close(ctx)
}

// Execute implements ports.ExecutionBackend.
func (b *WasmBackend) Execute(ctx context.Context, req entities.ExecutionRequest) (entities.ExecutionResult, error) {
	started := time.Now()
	meta := entities.ExecutionMeta{StartedAt: started, ExecutionID: req.ExecutionID, PluginID: req.PluginID}
	fail := func(kind, format string, args ...interface{}) (entities.ExecutionResult, error) {
		meta.FinishedAt = time.Now()
		return entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail(kind, fmt.Sprintf(format, args...)), Metadata: meta}, nil
	}

	wasmPath, err := b.resolver(req)
	if err != nil {
		return fail("EXEC_FAILED", "locate wasm artifact: %v", err)
	}
	wasmBytes, err := b.cachedBytes(wasmPath)
	if err != nil {
		return fail("EXEC_FAILED", "read wasm binary: %v", err)
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if req.TimeoutMs > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}
	runCtx = hostfuncs.WithCapabilityContext(runCtx, hostfuncs.NewCapabilityChecker(
		map[string]*entities.PermissionSpec{req.PluginID: req.Descriptor.Permissions},
	), req.PluginID)

	payload, err := json.Marshal(req)
	if err != nil {
		return fail("EXEC_FAILED", "marshal request: %v", err)
	}

	type outcome struct {
		data []byte
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		instance, err := b.executor.LoadPlugin(runCtx, wasmBytes)
		if err != nil {
			done <- outcome{err: fmt.Errorf("instantiate guest module: %w", err)}
			return
		}
		data, err := instance.Invoke(runCtx, "invoke", payload)
		done <- outcome{data: data, err: err}
	}()

	select {
	case <-runCtx.Done():
		return fail("EXEC_TIMEOUT", "plugin %q exceeded %dms", req.PluginID, req.TimeoutMs)
	case out := <-done:
		meta.FinishedAt = time.Now()
		if out.err != nil {
			return entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_FAILED", out.err.Error()), Metadata: meta}, nil
		}
		var result entities.ExecutionResult
		if err := json.Unmarshal(out.data, &result); err != nil {
			return entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_FAILED", fmt.Sprintf("decode guest response: %v", err)), Metadata: meta}, nil
		}
		result.Metadata = meta
		if result.Ok && b.output != nil {
			b.output.Result(result)
		}
		return result, nil
	}
}

// cachedBytes reads and caches a wasm binary's bytes by path, since the
// same plugin artifact is typically invoked many times.
func (b *WasmBackend) cachedBytes(path string) ([]byte, error) {
	b.mu.Lock()
	if data, ok := b.bytes[path]; ok {
		b.mu.Unlock()
		return data, nil
	}
	b.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.bytes[path] = data
	b.mu.Unlock()
	return data, nil
}
