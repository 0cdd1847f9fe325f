package entities

import "time"

// ExecutionDescriptor carries the identity/permission context a handler runs under.
type ExecutionDescriptor struct {
	Permissions *PermissionSpec
	TenantID    string
	RequestID   string
}

// ExecutionInput is the argv/flags pair resolved by the dispatcher for a command.
type ExecutionInput struct {
	Flags map[string]interface{} `json:"flags"`
	Argv  []string               `json:"argv"`
}

// ExecutionRequest is what the dispatcher hands to an execution backend.
type ExecutionRequest struct {
	Descriptor     ExecutionDescriptor
	Quotas         ResourceQuota
	ExecutionID    string
	PluginID       string
	PluginVersion  string
	PluginRoot     string
	HandlerRef     string
	Input          ExecutionInput
	TimeoutMs      int64
}

// ExecutionMeta records timing/identity metadata attached to a result.
type ExecutionMeta struct {
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	ExecutionID string    `json:"executionId"`
	PluginID    string    `json:"pluginId"`
}

// ExecutionResult is the normalized outcome of running a handler, regardless
// of which backend ran it.
type ExecutionResult struct {
	Data     map[string]interface{} `json:"data,omitempty"`
	Error    *ErrorDetail           `json:"error,omitempty"`
	Metadata ExecutionMeta          `json:"metadata"`
	Ok       bool                   `json:"ok"`
}

// GlobalFlags are recognized at every path depth and forwarded to every command.
type GlobalFlags struct {
	LogLevel string `json:"logLevel,omitempty"`
	Help     bool   `json:"help,omitempty"`
	Version  bool   `json:"version,omitempty"`
	JSON     bool   `json:"json,omitempty"`
	Quiet    bool   `json:"quiet,omitempty"`
	Debug    bool   `json:"debug,omitempty"`
	Verbose  bool   `json:"verbose,omitempty"`
	NoColor  bool   `json:"noColor,omitempty"`
}

// ParsedInvocation is the structured result of parsing argv.
type ParsedInvocation struct {
	FlagsObj map[string]interface{}
	CmdPath  []string
	Rest     []string
	Global   GlobalFlags
}
