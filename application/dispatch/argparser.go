// Package dispatch turns parsed argv into a resolved command, applying the
// global-flag set, the path-shortening fallback, and host-over-plugin
// shadowing.
package dispatch

import (
	"strconv"
	"strings"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/spf13/pflag"
)

// ArgParser parses argv (excluding argv[0]) into an entities.ParsedInvocation.
type ArgParser struct{}

// NewArgParser creates an ArgParser.
func NewArgParser() *ArgParser { return &ArgParser{} }

// Parse implements ports.ArgParser. Global flags are extracted with pflag
// (declared ahead of time, since their names and types are fixed); the
// remaining tokens are walked by hand to split the leading path prefix from
// trailing positionals/command-specific flags, since a command's own flag
// set isn't known until the resolver matches a path.
func (p *ArgParser) Parse(argv []string) (entities.ParsedInvocation, error) {
	// A literal "--" terminator stops ALL option processing; everything
	// after it is positional, untouched by either global or command flag
	// recognition. Split it off before any flag parsing happens.
	head, literalTail := splitTerminator(argv)

	global, remaining, err := extractGlobalFlags(head)
	if err != nil {
		return entities.ParsedInvocation{}, err
	}

	pathTokens, tail := splitPathPrefix(remaining)
	rest, flagsObj := parseTail(tail)
	rest = append(rest, literalTail...)

	return entities.ParsedInvocation{
		CmdPath:  splitColonPath(pathTokens),
		Rest:     rest,
		Global:   global,
		FlagsObj: flagsObj,
	}, nil
}

// splitTerminator splits argv at its first literal "--" token, if any.
func splitTerminator(argv []string) (head, tail []string) {
	for i, tok := range argv {
		if tok == "--" {
			return argv[:i], argv[i+1:]
		}
	}
	return argv, nil
}

func extractGlobalFlags(argv []string) (entities.GlobalFlags, []string, error) {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)

	help := fs.Bool("help", false, "")
	version := fs.Bool("version", false, "")
	jsonOut := fs.Bool("json", false, "")
	quiet := fs.Bool("quiet", false, "")
	debug := fs.Bool("debug", false, "")
	verbose := fs.Bool("verbose", false, "")
	noColor := fs.Bool("noColor", false, "")
	logLevel := fs.String("logLevel", "", "")

	// Only global-flag tokens go to pflag; every other token (path segments,
	// positionals, command flags) is kept in order for parseTail.
	var globalArgs, remaining []string
	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		name := strings.SplitN(strings.TrimPrefix(tok, "--"), "=", 2)[0]
		if !strings.HasPrefix(tok, "--") || fs.Lookup(name) == nil {
			remaining = append(remaining, tok)
			continue
		}
		globalArgs = append(globalArgs, tok)
		if name == "logLevel" && !strings.Contains(tok, "=") && i+1 < len(argv) {
			i++
			globalArgs = append(globalArgs, argv[i])
		}
	}

	if err := fs.Parse(globalArgs); err != nil {
		return entities.GlobalFlags{}, nil, err
	}

	return entities.GlobalFlags{
		Help: *help, Version: *version, JSON: *jsonOut, Quiet: *quiet,
		Debug: *debug, Verbose: *verbose, NoColor: *noColor, LogLevel: *logLevel,
	}, remaining, nil
}

// splitPathPrefix returns the leading run of non-flag tokens (the candidate
// command path) and everything from the first flag token (or "--"
// terminator) onward.
func splitPathPrefix(tokens []string) (path []string, tail []string) {
	for i, tok := range tokens {
		if tok == "--" || strings.HasPrefix(tok, "--") {
			return tokens[:i], tokens[i:]
		}
		path = append(path, tok)
	}
	return path, nil
}

// parseTail walks the tokens after the path prefix, extracting command
// flags in --flag / --flag=value / --flag value / --no-flag form. The
// literal "--" terminator has already been split off by splitTerminator
// before this runs, so every token here is fair game for flag recognition.
func parseTail(tokens []string) (rest []string, flags map[string]interface{}) {
	flags = map[string]interface{}{}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "--") {
			rest = append(rest, tok)
			continue
		}

		name := strings.TrimPrefix(tok, "--")
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			flags[name[:eq]] = coerceValue(name[eq+1:])
			continue
		}
		if strings.HasPrefix(name, "no-") {
			flags[strings.TrimPrefix(name, "no-")] = false
			continue
		}
		// --flag value, unless the next token is itself a flag or absent,
		// in which case this is a boolean flag implied true.
		if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "--") {
			flags[name] = coerceValue(tokens[i+1])
			i++
			continue
		}
		flags[name] = true
	}
	return rest, flags
}

func coerceValue(raw string) interface{} {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}

// splitColonPath expands a single ≥3-segment "a:b:c" positional into a
// multi-element path. A two-segment colon form ("a:b") remains atomic, and
// multi-token paths are never colon-split.
func splitColonPath(path []string) []string {
	if len(path) != 1 {
		return path
	}
	segments := strings.Split(path[0], ":")
	if len(segments) < 3 {
		return path
	}
	return segments
}
