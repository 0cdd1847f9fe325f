package host

import (
	"context"
	"fmt"

	"github.com/kb-labs/registry-host/application/dispatch"
	"github.com/kb-labs/registry-host/application/discovery"
	"github.com/kb-labs/registry-host/application/execution"
	"github.com/kb-labs/registry-host/application/registry"
	"github.com/kb-labs/registry-host/application/snapshot"
	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
	"github.com/kb-labs/registry-host/hostfuncs"
	"github.com/kb-labs/registry-host/infrastructure/parser"
	"github.com/kb-labs/registry-host/infrastructure/watcher"
)

// consentTagPrefix marks a plugin as already approved in the GrantStore's
// free-form Tags, so repeat invocations of an already-approved plugin don't
// re-prompt.
const consentTagPrefix = "consented:"

// Host wires together the full registry/dispatch/execution stack: it is the
// single long-lived object a CLI entrypoint constructs once per process.
// Mirrors Executor's functional-options + Close(ctx) lifecycle, scaled up
// from "one wazero runtime" to "the whole plugin pipeline".
type Host struct {
	Registry ports.PluginRegistry
	Resolver *dispatch.Resolver

	inProcess  *execution.InProcessBackend
	subprocess *execution.SubprocessBackend
	wasm       *execution.WasmBackend

	watcher *watcher.Watcher
	store   ports.SnapshotStore

	roots      []string
	strategies []entities.SourceKind
	ttlMs      int64
	presenter  ports.Presenter

	prompter ports.Prompter
	grants   ports.GrantStore
}

// Option configures a Host.
type Option func(*hostConfig)

type hostConfig struct {
	roots        []string
	strategies   []entities.SourceKind
	ttlMs        int64
	presenter    ports.Presenter
	wasmResolver execution.ArtifactResolver
	cache        ports.SnapshotCache
	prompter     ports.Prompter
	grants       ports.GrantStore
}

func defaultHostConfig() hostConfig {
	return hostConfig{
		strategies: []entities.SourceKind{entities.SourceWorkspace, entities.SourcePkg, entities.SourceDir, entities.SourceFile},
		ttlMs:      5 * 60 * 1000,
	}
}

// WithRoots sets the filesystem roots discovery scans.
func WithRoots(roots ...string) Option {
	return func(c *hostConfig) { c.roots = roots }
}

// WithStrategies restricts which discovery strategies run.
func WithStrategies(kinds ...entities.SourceKind) Option {
	return func(c *hostConfig) { c.strategies = kinds }
}

// WithTTL sets the snapshot staleness window in milliseconds.
func WithTTL(ttlMs int64) Option {
	return func(c *hostConfig) { c.ttlMs = ttlMs }
}

// WithPresenter sets the output surface execution backends report through.
func WithPresenter(p ports.Presenter) Option {
	return func(c *hostConfig) { c.presenter = p }
}

// WithSnapshotCache attaches a best-effort external cache mirror.
func WithSnapshotCache(cache ports.SnapshotCache) Option {
	return func(c *hostConfig) { c.cache = cache }
}

// WithWasmArtifacts sets the resolver the sandboxed tier uses to find each
// plugin's compiled wasm binary.
func WithWasmArtifacts(resolver execution.ArtifactResolver) Option {
	return func(c *hostConfig) { c.wasmResolver = resolver }
}

// WithConsent wires an interactive Prompter and a persistent GrantStore, so
// Authorize can gate a plugin's first execution on the user approving its
// manifest-declared permissions. Without this option Authorize is a no-op.
func WithConsent(prompter ports.Prompter, grants ports.GrantStore) Option {
	return func(c *hostConfig) {
		c.prompter = prompter
		c.grants = grants
	}
}

// New builds a Host rooted at workspaceRoot, wiring discovery, the snapshot
// store, the plugin registry, the command resolver, and every execution
// backend. Callers still need to Register their own host-native commands
// against h.Resolver and h.RegisterInProcessHandler before dispatching.
func New(ctx context.Context, workspaceRoot string, opts ...Option) (*Host, error) {
	cfg := defaultHostConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.roots) == 0 {
		cfg.roots = []string{workspaceRoot}
	}

	manifestParser := parser.NewYamlManifestParser()
	strategies := []ports.Strategy{
		discovery.NewWorkspaceStrategy(manifestParser),
		discovery.NewPackageStrategy(manifestParser),
		discovery.NewDirectoryStrategy(manifestParser),
		discovery.NewFileStrategy(manifestParser),
	}
	manager := discovery.NewManager(strategies...)

	var storeOpts []snapshot.Option
	storeOpts = append(storeOpts, snapshot.WithTTL(cfg.ttlMs))
	if cfg.cache != nil {
		storeOpts = append(storeOpts, snapshot.WithCache(cfg.cache))
	}
	store := snapshot.NewStore(workspaceRoot, storeOpts...)

	resolver := dispatch.NewResolver()
	reg := registry.NewRegistry(store, manager, resolver)

	presenter := cfg.presenter
	inProcess := execution.NewInProcessBackend(presenter)

	h := &Host{
		Registry:   reg,
		Resolver:   resolver,
		inProcess:  inProcess,
		store:      store,
		watcher:    watcher.New(),
		roots:      cfg.roots,
		strategies: cfg.strategies,
		ttlMs:      cfg.ttlMs,
		presenter:  presenter,
		prompter:   cfg.prompter,
		grants:     cfg.grants,
	}

	if cfg.wasmResolver != nil {
		wasmBackend, err := execution.NewWasmBackend(ctx, cfg.wasmResolver, presenter)
		if err != nil {
			return nil, fmt.Errorf("construct wasm execution backend: %w", err)
		}
		h.wasm = wasmBackend
	}

	return h, nil
}

// RegisterInProcessHandler binds a handlerRef to a Go function, for
// host-native commands dispatched through the in-process backend.
func (h *Host) RegisterInProcessHandler(handlerRef string, fn ports.Handler) {
	h.inProcess.Register(handlerRef, fn)
}

// SetSubprocessBackend installs the out-of-process execution tier, built by
// the caller since the spawn command depends on the plugin runtime (node,
// deno, ...) the CLI entrypoint is configured for.
func (h *Host) SetSubprocessBackend(b *execution.SubprocessBackend) {
	h.subprocess = b
}

// Initialize loads (or builds) the current snapshot and indexes the
// resolver against it.
func (h *Host) Initialize(ctx context.Context, mode ports.RegistryMode) error {
	if err := h.Registry.Initialize(ctx, ports.InitOptions{
		Mode:       mode,
		Roots:      h.roots,
		Strategies: h.strategies,
		TTLMs:      h.ttlMs,
	}); err != nil {
		return fmt.Errorf("initialize registry: %w", err)
	}
	return nil
}

// Watch starts the filesystem watcher over the host's discovery roots. The
// registry indexes the resolver itself on every successful Refresh, so the
// change callback only needs to trigger that refresh.
func (h *Host) Watch(ctx context.Context) error {
	return h.watcher.Start(ctx, h.roots, func(ctx context.Context) {
		_, _ = h.Registry.Refresh(ctx)
	})
}

// Backend selects the execution backend for a resolved command: wasm when
// the plugin ships a "wasm" artifact, the in-process backend for
// host-native commands, and the subprocess backend otherwise.
func (h *Host) Backend(record entities.CommandRecord) (ports.ExecutionBackend, error) {
	if record.Origin == entities.OriginHost {
		return h.inProcess, nil
	}
	if manifest, ok := h.Registry.GetManifest(record.PluginID); ok {
		for _, a := range manifest.Artifacts {
			if a.Label == "wasm" {
				if h.wasm == nil {
					return nil, fmt.Errorf("plugin %q declares a wasm artifact but no wasm backend is configured", record.PluginID)
				}
				return h.wasm, nil
			}
		}
	}
	if h.subprocess == nil {
		return nil, fmt.Errorf("plugin %q requires a subprocess backend but none is configured", record.PluginID)
	}
	return h.subprocess, nil
}

// Authorize gates a plugin's first execution on interactive consent for its
// manifest-declared permissions. It is a no-op unless WithConsent was
// passed to New. Once approved, the plugin is tagged in the GrantStore so
// later invocations in later processes don't re-prompt; in a
// non-interactive session an unapproved plugin fails with the Prompter's
// formatted error instead of hanging on stdin.
func (h *Host) Authorize(pluginID string, manifest *entities.Manifest) error {
	if h.prompter == nil || h.grants == nil || manifest.Permissions.IsEmpty() {
		return nil
	}

	granted, err := h.grants.Load()
	if err != nil {
		return fmt.Errorf("load grants: %w", err)
	}

	tag := consentTagPrefix + pluginID
	for _, t := range granted.Tags {
		if t == tag {
			return nil
		}
	}

	if !h.prompter.IsInteractive() {
		return h.prompter.FormatNonInteractiveError(manifest.Permissions)
	}

	risk := entities.NewRiskAssessor().AssessPermissionSpec(manifest.Permissions)
	req := entities.CapabilityRequest{
		Kind:        "manifest",
		Description: fmt.Sprintf("%s (%s) requests the permissions declared in its manifest", manifest.DisplayName(), pluginID),
		RiskLevel:   risk,
	}
	ok, always, err := h.prompter.PromptForCapability(req)
	if err != nil {
		return fmt.Errorf("prompt for capability: %w", err)
	}
	if !ok {
		return fmt.Errorf("plugin %q: required permissions were not granted", pluginID)
	}
	if !always {
		return nil
	}

	granted.Tags = append(granted.Tags, tag)
	if err := h.grants.Save(granted); err != nil {
		return fmt.Errorf("save grants: %w", err)
	}
	return nil
}

// Close releases every backend's resources.
func (h *Host) Close(ctx context.Context) error {
	var firstErr error
	if h.wasm != nil {
		if err := h.wasm.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := h.watcher.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// CapabilityRegistryFor builds a hostfuncs.CapabilityChecker scoped to the
// permissions currently granted across the registry's plugins, for callers
// that need to gate host functions outside of the wasm execution path
// (e.g. a supervising process checking before it even spawns a subprocess).
func (h *Host) CapabilityRegistryFor(pluginIDs ...string) *hostfuncs.CapabilityChecker {
	grants := make(map[string]*entities.PermissionSpec, len(pluginIDs))
	for _, id := range pluginIDs {
		if m, ok := h.Registry.GetManifest(id); ok {
			grants[id] = m.Permissions
		}
	}
	return hostfuncs.NewCapabilityChecker(grants)
}
