package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kb-labs/registry-host/domain/entities"
)

// CliPrompter implements ports.Prompter for CLI environments.
type CliPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewCliPrompter creates a new CliPrompter.
func NewCliPrompter(in io.Reader, out io.Writer) *CliPrompter {
	return &CliPrompter{in: in, out: out}
}

// IsInteractive checks if the input is a terminal.
func (p *CliPrompter) IsInteractive() bool {
	if f, ok := p.in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PromptForCapability asks the user to grant a single capability.
func (p *CliPrompter) PromptForCapability(req entities.CapabilityRequest) (granted bool, always bool, err error) {
	_, _ = fmt.Fprintf(p.out, "Plugin Request: %s\n", req.Description)
	_, _ = fmt.Fprintf(p.out, "Risk: %s\n", req.RiskLevel)
	_, _ = fmt.Fprintf(p.out, "Allow? [y/n/always]: ")

	scanner := bufio.NewScanner(p.in)
	if scanner.Scan() {
		text := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch text {
		case "y", "yes":
			return true, false, nil
		case "a", "always":
			return true, true, nil
		case "n", "no":
			return false, false, nil
		default:
			return false, false, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, false, err
	}
	return false, false, io.EOF
}

// PromptForCapabilities prompts for multiple capabilities.
func (p *CliPrompter) PromptForCapabilities(reqs []entities.CapabilityRequest) (*entities.PermissionSpec, error) {
	if len(reqs) == 0 {
		return &entities.PermissionSpec{}, nil
	}

	_, _ = fmt.Fprintf(p.out, "Plugin requests the following capabilities:\n")
	for _, req := range reqs {
		_, _ = fmt.Fprintf(p.out, "- [%s] %s\n", req.RiskLevel, req.Description)
	}
	_, _ = fmt.Fprintf(p.out, "Grant all? [y/n]: ")

	scanner := bufio.NewScanner(p.in)
	if scanner.Scan() {
		text := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if text == "y" || text == "yes" {
			gs := &entities.PermissionSpec{}
			for _, req := range reqs {
				addRuleToGrantSet(gs, req.Rule)
			}
			return gs, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Default deny
	return &entities.PermissionSpec{}, nil
}

func addRuleToGrantSet(gs *entities.PermissionSpec, rule interface{}) {
	temp := &entities.PermissionSpec{}
	switch r := rule.(type) {
	case *entities.NetworkGrant:
		temp.Network = r
	case *entities.FileSystemGrant:
		temp.FS = r
	case *entities.EnvironmentGrant:
		temp.Env = r
	case *entities.ExecGrant:
		temp.Exec = r
	case *entities.KeyValueGrant:
		temp.KV = r
	}
	gs.Merge(temp)
}

// FormatNonInteractiveError reports exactly which capabilities are missing
// so a non-interactive kbhost invocation (CI, a script, a piped stdin) fails
// with something actionable instead of a generic "review your grants".
func (p *CliPrompter) FormatNonInteractiveError(missing *entities.PermissionSpec) error {
	const header = "plugin requires capabilities in non-interactive mode"
	if missing == nil || missing.IsEmpty() {
		return fmt.Errorf("%s; run interactively to grant them, or pre-populate the grant store", header)
	}

	var wants []string
	if missing.Network != nil && len(missing.Network.AllowHosts) > 0 {
		wants = append(wants, fmt.Sprintf("network: %s", strings.Join(missing.Network.AllowHosts, ", ")))
	}
	if missing.FS != nil && (len(missing.FS.Allow) > 0 || len(missing.FS.Deny) > 0) {
		wants = append(wants, fmt.Sprintf("fs(%s): allow %v deny %v", missing.FS.Mode, missing.FS.Allow, missing.FS.Deny))
	}
	if missing.Env != nil && len(missing.Env.Allow) > 0 {
		wants = append(wants, fmt.Sprintf("env: %s", strings.Join(missing.Env.Allow, ", ")))
	}
	if missing.Exec != nil && len(missing.Exec.Allow) > 0 {
		wants = append(wants, fmt.Sprintf("exec: %s", strings.Join(missing.Exec.Allow, ", ")))
	}
	if missing.KV != nil && len(missing.KV.Rules) > 0 {
		wants = append(wants, fmt.Sprintf("kv: %d rule(s)", len(missing.KV.Rules)))
	}

	return fmt.Errorf("%s: %s; run interactively to grant them, or pre-populate the grant store",
		header, strings.Join(wants, "; "))
}
