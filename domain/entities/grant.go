package entities

// NetworkMode selects whether a plugin may reach the network at all.
type NetworkMode string

const (
	NetworkNone       NetworkMode = "none"
	NetworkAllowHosts NetworkMode = "allowHosts"
)

// NetworkGrant defines permitted network access.
type NetworkGrant struct {
	Mode       NetworkMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowHosts []string    `json:"allowHosts,omitempty" yaml:"allowHosts,omitempty"`
}

// FSMode selects read-only or read-write filesystem access.
type FSMode string

const (
	FSRead      FSMode = "read"
	FSReadWrite FSMode = "readWrite"
)

// FileSystemGrant defines permitted filesystem access via glob sets.
type FileSystemGrant struct {
	Mode  FSMode   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Allow []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty" yaml:"deny,omitempty"`
}

// EnvironmentGrant defines the allow-listed environment variables.
type EnvironmentGrant struct {
	Allow []string `json:"allow,omitempty" yaml:"allow,omitempty"`
}

// ExecGrant defines permitted command execution patterns.
type ExecGrant struct {
	Allow []string `json:"allow,omitempty" yaml:"allow,omitempty"`
}

// KeyValueRule defines a single key-value store access rule. Kept from the
// teacher's SDK as an additive capability kind beyond the four the spec
// names explicitly (fs/network/env/quotas) — it naturally slots under
// "capability tags" and backs the plugin key-value scratch store.
type KeyValueRule struct {
	Operation string   `json:"op" yaml:"op"`
	Keys      []string `json:"keys" yaml:"keys"`
}

// KeyValueGrant defines permitted key-value store access.
type KeyValueGrant struct {
	Rules []KeyValueRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// ResourceQuota bounds the resources a single invocation may consume.
type ResourceQuota struct {
	TimeoutMs int `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	MemoryMb  int `json:"memoryMb,omitempty" yaml:"memoryMb,omitempty"`
	CPUMs     int `json:"cpuMs,omitempty" yaml:"cpuMs,omitempty"`
}

// PermissionSpec is the structured collection of rules representing every
// capability granted to a plugin, plus its resource quotas and free-form
// capability tags.
type PermissionSpec struct {
	FS      *FileSystemGrant  `json:"fs,omitempty" yaml:"fs,omitempty"`
	Network *NetworkGrant     `json:"network,omitempty" yaml:"network,omitempty"`
	Env     *EnvironmentGrant `json:"env,omitempty" yaml:"env,omitempty"`
	Exec    *ExecGrant        `json:"exec,omitempty" yaml:"exec,omitempty"`
	KV      *KeyValueGrant    `json:"kv,omitempty" yaml:"kv,omitempty"`
	Quotas  ResourceQuota     `json:"resourceQuotas,omitempty" yaml:"resourceQuotas,omitempty"`
	Tags    []string          `json:"capabilityTags,omitempty" yaml:"capabilityTags,omitempty"`
}

// IsEmpty returns true if no capabilities are present.
func (g *PermissionSpec) IsEmpty() bool {
	if g == nil {
		return true
	}
	if g.Network != nil && (len(g.Network.AllowHosts) > 0 || g.Network.Mode == NetworkAllowHosts) {
		return false
	}
	if g.FS != nil && (len(g.FS.Allow) > 0 || len(g.FS.Deny) > 0) {
		return false
	}
	if g.Env != nil && len(g.Env.Allow) > 0 {
		return false
	}
	if g.Exec != nil && len(g.Exec.Allow) > 0 {
		return false
	}
	if g.KV != nil && len(g.KV.Rules) > 0 {
		return false
	}
	return true
}

// Merge unions two permission specs. other wins no fields outright; its
// allow/deny entries are appended to g's.
func (g *PermissionSpec) Merge(other *PermissionSpec) {
	if other == nil {
		return
	}
	g.mergeNetwork(other.Network)
	g.mergeFS(other.FS)
	g.mergeEnv(other.Env)
	g.mergeExec(other.Exec)
	g.mergeKV(other.KV)
	g.Tags = append(g.Tags, other.Tags...)
}

func (g *PermissionSpec) mergeNetwork(other *NetworkGrant) {
	if other == nil {
		return
	}
	if g.Network == nil {
		g.Network = &NetworkGrant{Mode: other.Mode}
	}
	g.Network.AllowHosts = append(g.Network.AllowHosts, other.AllowHosts...)
}

func (g *PermissionSpec) mergeFS(other *FileSystemGrant) {
	if other == nil {
		return
	}
	if g.FS == nil {
		g.FS = &FileSystemGrant{Mode: other.Mode}
	}
	g.FS.Allow = append(g.FS.Allow, other.Allow...)
	g.FS.Deny = append(g.FS.Deny, other.Deny...)
}

func (g *PermissionSpec) mergeEnv(other *EnvironmentGrant) {
	if other == nil || len(other.Allow) == 0 {
		return
	}
	if g.Env == nil {
		g.Env = &EnvironmentGrant{}
	}
	g.Env.Allow = append(g.Env.Allow, other.Allow...)
}

func (g *PermissionSpec) mergeExec(other *ExecGrant) {
	if other == nil || len(other.Allow) == 0 {
		return
	}
	if g.Exec == nil {
		g.Exec = &ExecGrant{}
	}
	g.Exec.Allow = append(g.Exec.Allow, other.Allow...)
}

func (g *PermissionSpec) mergeKV(other *KeyValueGrant) {
	if other == nil || len(other.Rules) == 0 {
		return
	}
	if g.KV == nil {
		g.KV = &KeyValueGrant{}
	}
	g.KV.Rules = append(g.KV.Rules, other.Rules...)
}
