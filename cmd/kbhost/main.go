// Command kbhost is the CLI envelope: it parses argv, boots the plugin
// registry, resolves the command path, dispatches to the right execution
// backend, and exits with the taxonomy's mapped code.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/kb-labs/registry-host/application/dispatch"
	"github.com/kb-labs/registry-host/domain/entities"
	domainerrors "github.com/kb-labs/registry-host/domain/errors"
	"github.com/kb-labs/registry-host/domain/ports"
	"github.com/kb-labs/registry-host/host"
	grantstore "github.com/kb-labs/registry-host/infrastructure/grantstore"
	"github.com/kb-labs/registry-host/infrastructure/logging"
	"github.com/kb-labs/registry-host/infrastructure/prompter"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	level := envLogLevel()
	parser := dispatch.NewArgParser()
	invocation, err := parser.Parse(argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return domainerrors.ExitGeneral
	}

	logging.Init(logging.Stderr(), logging.WithLevel(level))

	presenter := newEnvelopePresenter(os.Stdout, os.Stderr, invocation.Global.JSON, invocation.Global.Quiet)

	if invocation.Global.Version {
		fmt.Fprintln(os.Stdout, "kbhost (dev)")
		return domainerrors.ExitOK
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return domainerrors.ExitIO
	}

	ctx := context.Background()
	consent := prompter.NewCliPrompter(os.Stdin, os.Stderr)
	grants := grantstore.NewFileStore()
	h, err := host.New(ctx, cwd, host.WithPresenter(presenter), host.WithConsent(consent, grants))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return domainerrors.ExitSoftware
	}
	defer h.Close(ctx)

	if err := h.Initialize(ctx, ports.ModeProducer); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return domainerrors.ExitSoftware
	}

	if invocation.Global.Help || len(invocation.CmdPath) == 0 {
		printHelp(h, invocation.CmdPath)
		return domainerrors.ExitOK
	}

	record, positional, found := h.Resolver.Resolve(invocation.CmdPath, invocation.Rest)
	if !found {
		err := domainerrors.NewRegistryError(domainerrors.KindCmdNotFound,
			fmt.Sprintf("unknown command %q", strings.Join(invocation.CmdPath, " ")))
		presenter.Result(entities.ExecutionResult{Ok: false, Error: err.ToErrorDetail()})
		return err.ExitCode()
	}
	if record.HandlerRef == "" {
		printHelp(h, invocation.CmdPath)
		return domainerrors.ExitOK
	}

	backend, err := h.Backend(record)
	if err != nil {
		presenter.Result(entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_FAILED", err.Error())})
		return domainerrors.ExitSoftware
	}

	req := entities.ExecutionRequest{
		ExecutionID: uuid.NewString(),
		PluginID:    record.PluginID,
		HandlerRef:  record.HandlerRef,
		PluginRoot:  cwd,
		Input: entities.ExecutionInput{
			Argv:  positional,
			Flags: invocation.FlagsObj,
		},
		Descriptor: entities.ExecutionDescriptor{RequestID: uuid.NewString()},
	}
	if manifest, ok := h.Registry.GetManifest(record.PluginID); ok {
		req.Descriptor.Permissions = manifest.Permissions
		if manifest.Permissions != nil {
			req.TimeoutMs = int64(manifest.Permissions.Quotas.TimeoutMs)
		}
		if err := h.Authorize(record.PluginID, manifest); err != nil {
			err := domainerrors.NewRegistryError(domainerrors.KindUnavailable, err.Error())
			presenter.Result(entities.ExecutionResult{Ok: false, Error: err.ToErrorDetail()})
			return err.ExitCode()
		}
	}

	result, err := backend.Execute(ctx, req)
	if err != nil {
		presenter.Result(entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_FAILED", err.Error())})
		return domainerrors.ExitSoftware
	}
	presenter.Result(result)
	if !result.Ok && result.Error != nil {
		return domainerrors.ExitCodeForErrorType(result.Error.Type)
	}
	return domainerrors.ExitOK
}

// printHelp renders global, group, or command help for path, derived from
// the resolver's known command records (the manifest is the source of
// truth for flags/descriptions; no separate help text is authored here).
func printHelp(h *host.Host, path []string) {
	records := h.Resolver.List()
	if len(path) == 0 {
		fmt.Fprintln(os.Stdout, "usage: kbhost [global-flags] <path...> [--] [args...]")
		fmt.Fprintln(os.Stdout, "\navailable commands:")
		for _, r := range records {
			if r.Shadowed {
				continue
			}
			fmt.Fprintf(os.Stdout, "  %s\n", strings.Join(r.Path, " "))
		}
		return
	}
	prefix := strings.Join(path, " ")
	fmt.Fprintf(os.Stdout, "usage: kbhost %s [args...]\n\nsubcommands:\n", prefix)
	for _, r := range records {
		if r.Shadowed || len(r.Path) <= len(path) {
			continue
		}
		if strings.Join(r.Path[:len(path)], " ") != prefix {
			continue
		}
		fmt.Fprintf(os.Stdout, "  %s\n", strings.Join(r.Path, " "))
	}
}

func envLogLevel() slog.Level {
	if _, debug := os.LookupEnv("KBHOST_DEBUG"); debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
