package entities

// SchemaVersion is the manifest schema a plugin was authored against.
type SchemaVersion string

const (
	SchemaV2 SchemaVersion = "v2"
	SchemaV3 SchemaVersion = "v3"
)

// RuntimeKind identifies the module convention a plugin's handler file uses.
type RuntimeKind string

const (
	RuntimeESM RuntimeKind = "esm"
	RuntimeCJS RuntimeKind = "cjs"
)

// EngineConstraints describes the host/runtime a manifest was built for.
type EngineConstraints struct {
	HostVersionRange string      `json:"hostVersionRange,omitempty" yaml:"hostVersionRange,omitempty"`
	Runtime          RuntimeKind `json:"runtime,omitempty" yaml:"runtime,omitempty"`
}

// Display holds the human-facing name/description for a plugin or command.
type Display struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// FlagType enumerates the supported command flag value types.
type FlagType string

const (
	FlagBoolean FlagType = "boolean"
	FlagString  FlagType = "string"
	FlagNumber  FlagType = "number"
	FlagArray   FlagType = "array"
)

// Valid reports whether t is one of the known flag types.
func (t FlagType) Valid() bool {
	switch t {
	case FlagBoolean, FlagString, FlagNumber, FlagArray:
		return true
	default:
		return false
	}
}

// FlagDescriptor declares a single command flag.
type FlagDescriptor struct {
	Default     interface{} `json:"default,omitempty" yaml:"default,omitempty"`
	Name        string      `json:"name" yaml:"name"`
	Alias       string      `json:"alias,omitempty" yaml:"alias,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Type        FlagType    `json:"type" yaml:"type"`
	Choices     []string    `json:"choices,omitempty" yaml:"choices,omitempty"`
	Required    bool        `json:"required,omitempty" yaml:"required,omitempty"`
}

// CommandDescriptor declares one subcommand a plugin contributes.
type CommandDescriptor struct {
	ID              string           `json:"id" yaml:"id" validate:"required"`
	Group           string           `json:"group,omitempty" yaml:"group,omitempty"`
	Describe        string           `json:"describe,omitempty" yaml:"describe,omitempty"`
	LongDescription string           `json:"longDescription,omitempty" yaml:"longDescription,omitempty"`
	HandlerRef      string           `json:"handlerRef" yaml:"handlerRef" validate:"required"`
	Aliases         []string         `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Flags           []FlagDescriptor `json:"flags,omitempty" yaml:"flags,omitempty" validate:"dive"`
	Examples        []string         `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// SetupHandler is an optional one-time initialization hook for a plugin.
type SetupHandler struct {
	HandlerRef  string          `json:"handlerRef" yaml:"handlerRef"`
	Describe    string          `json:"describe,omitempty" yaml:"describe,omitempty"`
	Permissions *PermissionSpec `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

// Artifact is a labeled path template a plugin exposes (e.g. a wasm binary).
type Artifact struct {
	Label string `json:"label" yaml:"label"`
	Path  string `json:"path" yaml:"path"`
}

// RequiresSpec names a peer-plugin dependency.
type RequiresSpec struct {
	ID    string `json:"id" yaml:"id"`
	Range string `json:"range" yaml:"range"`
}

// Manifest is the normalized, immutable-post-load plugin descriptor. A v2
// manifest is migrated to this shape in memory by the parser; every
// consumer downstream sees a single v3-shaped struct.
type Manifest struct {
	Schema      SchemaVersion       `json:"schema" yaml:"schema" validate:"required"`
	ID          string              `json:"id" yaml:"id" validate:"required"`
	Version     string              `json:"version" yaml:"version" validate:"required"`
	Display     *Display            `json:"display,omitempty" yaml:"display,omitempty"`
	Engine      EngineConstraints   `json:"engine,omitempty" yaml:"engine,omitempty"`
	Permissions *PermissionSpec     `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Commands    []CommandDescriptor `json:"commands" yaml:"commands" validate:"dive"`
	Setup       *SetupHandler       `json:"setup,omitempty" yaml:"setup,omitempty"`
	Artifacts   []Artifact          `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	Requires    []RequiresSpec      `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// DisplayName returns the plugin's human-facing name, falling back to ID.
func (m *Manifest) DisplayName() string {
	if m.Display != nil && m.Display.Name != "" {
		return m.Display.Name
	}
	return m.ID
}
