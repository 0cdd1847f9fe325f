package ports

import "github.com/kb-labs/registry-host/domain/entities"

// ArgParser parses a raw argv slice (excluding argv[0]) into a ParsedInvocation.
type ArgParser interface {
	Parse(argv []string) (entities.ParsedInvocation, error)
}

// CommandResolver resolves a parsed command path to a CommandRecord,
// applying the host-shadows-plugin precedence rule and the path-shortening
// fallback.
type CommandResolver interface {
	// Resolve returns the matched record, the leftover positional args
	// (everything shortened off the path plus ParsedInvocation.Rest), and
	// whether a match was found at all.
	Resolve(path []string, rest []string) (record entities.CommandRecord, positional []string, found bool)

	// RegisterHost reserves a path (and its aliases) for a host-native command.
	RegisterHost(record entities.CommandRecord, aliases ...string)

	// Index rebuilds the command tree from the current set of plugin manifests.
	Index(entries []entities.SnapshotEntry)

	// List returns every known command record, including shadowed ones.
	List() []entities.CommandRecord
}
