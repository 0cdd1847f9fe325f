package entities

import "time"

// SourceKind identifies which discovery strategy produced a plugin.
type SourceKind string

const (
	SourceWorkspace SourceKind = "workspace"
	SourcePkg       SourceKind = "pkg"
	SourceDir       SourceKind = "dir"
	SourceFile      SourceKind = "file"
)

// PrecedenceRank returns the strategy's static precedence rank (lower wins).
func (k SourceKind) PrecedenceRank() int {
	switch k {
	case SourceWorkspace:
		return 1
	case SourcePkg:
		return 2
	case SourceDir:
		return 3
	case SourceFile:
		return 4
	default:
		return 1 << 30
	}
}

// Source records where a plugin was discovered.
type Source struct {
	Kind SourceKind `json:"kind" yaml:"kind"`
	Path string     `json:"path" yaml:"path"`
}

// PluginBrief is the registry-visible view of a plugin: what listings and
// diffs compare. It never carries the full manifest.
type PluginBrief struct {
	Display *Display      `json:"display,omitempty" yaml:"display,omitempty"`
	ID      string        `json:"id" yaml:"id"`
	Version string        `json:"version" yaml:"version"`
	Kind    SchemaVersion `json:"kind" yaml:"kind"`
	Source  Source        `json:"source" yaml:"source"`
}

// SnapshotEntry embeds a plugin's full manifest alongside its root and
// source, so consumers can operate without re-running discovery.
type SnapshotEntry struct {
	PluginID   string    `json:"pluginId" yaml:"pluginId"`
	Manifest   *Manifest `json:"manifest" yaml:"manifest"`
	PluginRoot string    `json:"pluginRoot" yaml:"pluginRoot"`
	Source     Source    `json:"source" yaml:"source"`
}

// DiscoveryErrorCode enumerates the recoverable failure modes a discovery
// strategy can report for a single manifest without aborting the strategy.
type DiscoveryErrorCode string

const (
	DiscoveryManifestNotFound DiscoveryErrorCode = "MANIFEST_NOT_FOUND"
	DiscoveryParseError       DiscoveryErrorCode = "PARSE_ERROR"
	DiscoveryValidationError  DiscoveryErrorCode = "VALIDATION_ERROR"
	DiscoveryResolveError     DiscoveryErrorCode = "RESOLVE_ERROR"
)

// DiscoveryError describes a single manifest that a strategy could not load.
type DiscoveryError struct {
	PluginPath string              `json:"pluginPath" yaml:"pluginPath"`
	PluginID   string              `json:"pluginId,omitempty" yaml:"pluginId,omitempty"`
	Error      string              `json:"error" yaml:"error"`
	Code       DiscoveryErrorCode  `json:"code,omitempty" yaml:"code,omitempty"`
}

// SnapshotSource records provenance metadata embedded in a persisted snapshot.
type SnapshotSource struct {
	CLIVersion string `json:"cliVersion" yaml:"cliVersion"`
	Cwd        string `json:"cwd" yaml:"cwd"`
}

// RegistrySnapshotSchema is the fixed schema tag stamped on every persisted snapshot.
const RegistrySnapshotSchema = "kb.registry/1"

// RegistrySnapshot is the persisted, checksum-protected view of the registry.
type RegistrySnapshot struct {
	GeneratedAt       time.Time       `json:"generatedAt" yaml:"generatedAt"`
	ExpiresAt         *time.Time      `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	PreviousChecksum  *string         `json:"previousChecksum,omitempty" yaml:"previousChecksum,omitempty"`
	Schema            string          `json:"schema" yaml:"schema"`
	ChecksumAlgorithm string          `json:"checksumAlgorithm" yaml:"checksumAlgorithm"`
	Checksum          string          `json:"checksum" yaml:"checksum"`
	Plugins           []PluginBrief   `json:"plugins" yaml:"plugins"`
	Manifests         []SnapshotEntry `json:"manifests" yaml:"manifests"`
	Errors            []DiscoveryError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Source            SnapshotSource  `json:"source" yaml:"source"`
	Rev               int             `json:"rev" yaml:"rev"`
	TTLMs             int64           `json:"ttlMs,omitempty" yaml:"ttlMs,omitempty"`
	Partial           bool            `json:"partial" yaml:"partial"`
	Stale             bool            `json:"stale" yaml:"stale"`
	Corrupted         bool            `json:"corrupted,omitempty" yaml:"corrupted,omitempty"`
}

// CommandOrigin identifies whether a command path belongs to the host or a plugin.
type CommandOrigin string

const (
	OriginHost   CommandOrigin = "host"
	OriginPlugin CommandOrigin = "plugin"
)

// CommandRecord is a derived, addressable entry in the command tree built
// from the current snapshot.
type CommandRecord struct {
	ManifestVersion   string
	HandlerRef        string
	PluginID          string
	UnavailableReason string
	Origin            CommandOrigin
	Path              []string
	Flags             []FlagDescriptor
	Shadowed          bool
}

// RegistryDiffChange describes a plugin whose brief changed between two snapshots.
type RegistryDiffChange struct {
	From PluginBrief `json:"from"`
	To   PluginBrief `json:"to"`
}

// RegistryDiff is the structural difference between two snapshots.
type RegistryDiff struct {
	Added   []PluginBrief        `json:"added"`
	Removed []PluginBrief        `json:"removed"`
	Changed []RegistryDiffChange `json:"changed"`
}

// IsEmpty reports whether the diff carries no changes at all.
func (d RegistryDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}
