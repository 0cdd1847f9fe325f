package policy

import (
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
)

// policyConfig holds configuration for the Policy engine.
type policyConfig struct {
	cwd             string              // Working directory for relative path resolution
	resolveSymlinks bool                // Whether to resolve symlinks (security feature)
	denialHandler   ports.DenialHandler // Handler invoked on policy denials
}

func defaultPolicyConfig() policyConfig {
	return policyConfig{
		cwd:             "",
		resolveSymlinks: true,                  // Secure default
		denialHandler:   &StderrDenialHandler{}, // Log to stderr by default
	}
}

// PolicyOption configures the Policy.
type PolicyOption func(*policyConfig)

// WithWorkingDirectory sets the working directory for relative path resolution.
func WithWorkingDirectory(cwd string) PolicyOption {
	return func(c *policyConfig) {
		c.cwd = cwd
	}
}

// WithSymlinkResolution enables/disables symlink resolution.
// Default is true (secure). Disable only for testing.
func WithSymlinkResolution(enabled bool) PolicyOption {
	return func(c *policyConfig) {
		c.resolveSymlinks = enabled
	}
}

// WithDenialHandler sets the denial handler.
func WithDenialHandler(h ports.DenialHandler) PolicyOption {
	return func(c *policyConfig) {
		c.denialHandler = h
	}
}

// Policy implements the Policy interface with stateless enforcement over a
// plugin's PermissionSpec.
type Policy struct {
	config policyConfig
	cache  sync.Map // key: *entities.PermissionSpec, value: *compiledPermissionSpec
}

type compiledPermissionSpec struct {
	networkMode entities.NetworkMode
	allowHosts  []string
	fsMode      entities.FSMode
	allow       []string
	deny        []string
	env         []string
	exec        []string
	kvRules     []compiledKVRule
}

type compiledKVRule struct {
	keys []string
	op   string
}

// NewPolicy creates a new Policy.
func NewPolicy(opts ...PolicyOption) ports.Policy {
	cfg := defaultPolicyConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Policy{config: cfg}
}

func (p *Policy) getCompiled(grants *entities.PermissionSpec) *compiledPermissionSpec {
	if grants == nil {
		return nil
	}
	if v, ok := p.cache.Load(grants); ok {
		return v.(*compiledPermissionSpec)
	}

	c := &compiledPermissionSpec{}

	if grants.Network != nil {
		c.networkMode = grants.Network.Mode
		for _, h := range grants.Network.AllowHosts {
			if doublestar.ValidatePattern(h) {
				c.allowHosts = append(c.allowHosts, h)
			}
		}
	}

	if grants.FS != nil {
		c.fsMode = grants.FS.Mode
		for _, a := range grants.FS.Allow {
			if doublestar.ValidatePattern(a) {
				c.allow = append(c.allow, a)
			}
		}
		for _, d := range grants.FS.Deny {
			if doublestar.ValidatePattern(d) {
				c.deny = append(c.deny, d)
			}
		}
	}

	if grants.Env != nil {
		for _, v := range grants.Env.Allow {
			if doublestar.ValidatePattern(v) {
				c.env = append(c.env, v)
			}
		}
	}

	if grants.Exec != nil {
		for _, cmd := range grants.Exec.Allow {
			if doublestar.ValidatePattern(cmd) {
				c.exec = append(c.exec, cmd)
			}
		}
	}

	if grants.KV != nil {
		for _, rule := range grants.KV.Rules {
			cr := compiledKVRule{op: rule.Operation}
			for _, k := range rule.Keys {
				if doublestar.ValidatePattern(k) {
					cr.keys = append(cr.keys, k)
				}
			}
			c.kvRules = append(c.kvRules, cr)
		}
	}

	p.cache.Store(grants, c)
	return c
}

func (p *Policy) CheckNetwork(req entities.NetworkRequest, grants *entities.PermissionSpec) bool {
	c := p.getCompiled(grants)
	if c == nil || c.networkMode != entities.NetworkAllowHosts {
		p.config.denialHandler.OnDenial("network", req, "no grants")
		return false
	}

	for _, pattern := range c.allowHosts {
		if matched, _ := doublestar.Match(pattern, req.Host); matched {
			return true
		}
	}

	p.config.denialHandler.OnDenial("network", req, "host not allowed")
	return false
}

func (p *Policy) CheckFileSystem(req entities.FileSystemRequest, grants *entities.PermissionSpec) bool {
	c := p.getCompiled(grants)
	if c == nil {
		p.config.denialHandler.OnDenial("fs", req, "no grants")
		return false
	}

	if req.Operation == "write" && c.fsMode != entities.FSReadWrite {
		p.config.denialHandler.OnDenial("fs", req, "read-only grant")
		return false
	}

	// Normalize and secure the path
	path := filepath.Clean(req.Path)
	if !filepath.IsAbs(path) {
		if p.config.cwd == "" {
			p.config.denialHandler.OnDenial("fs", req, "relative path without working directory")
			return false // Deny relative paths without cwd
		}
		path = filepath.Join(p.config.cwd, path)
	}

	// Resolve symlinks to prevent traversal attacks
	if p.config.resolveSymlinks {
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}
	}

	for _, pattern := range c.deny {
		if matched, _ := doublestar.Match(pattern, path); matched {
			p.config.denialHandler.OnDenial("fs", req, "path denied")
			return false
		}
	}

	for _, pattern := range c.allow {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}

	p.config.denialHandler.OnDenial("fs", req, "path not allowed")
	return false
}

func (p *Policy) CheckEnvironment(req entities.EnvironmentRequest, grants *entities.PermissionSpec) bool {
	c := p.getCompiled(grants)
	if c == nil {
		p.config.denialHandler.OnDenial("env", req, "no grants")
		return false
	}

	for _, pattern := range c.env {
		if matched, _ := doublestar.Match(pattern, req.Variable); matched {
			return true
		}
	}

	p.config.denialHandler.OnDenial("env", req, "variable not allowed")
	return false
}

func (p *Policy) CheckExec(req entities.ExecRequest, grants *entities.PermissionSpec) bool {
	c := p.getCompiled(grants)
	if c == nil {
		p.config.denialHandler.OnDenial("exec", req, "no grants")
		return false
	}

	cmd := filepath.Clean(req.Command)
	for _, pattern := range c.exec {
		if matched, _ := doublestar.Match(pattern, cmd); matched {
			return true
		}
	}

	p.config.denialHandler.OnDenial("exec", req, "command not allowed")
	return false
}

func (p *Policy) CheckKeyValue(req entities.KeyValueRequest, grants *entities.PermissionSpec) bool {
	c := p.getCompiled(grants)
	if c == nil {
		p.config.denialHandler.OnDenial("kv", req, "no grants")
		return false
	}

	for _, rule := range c.kvRules {
		allowedOp := false
		if rule.op == "read-write" {
			allowedOp = true
		} else if rule.op == "read" && req.Operation == "read" {
			allowedOp = true
		} else if rule.op == "write" && req.Operation == "write" {
			allowedOp = true
		}

		if !allowedOp {
			continue
		}

		for _, pattern := range rule.keys {
			if matched, _ := doublestar.Match(pattern, req.Key); matched {
				return true
			}
		}
	}

	p.config.denialHandler.OnDenial("kv", req, "key/operation not allowed")
	return false
}
