package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/kb-labs/registry-host/domain/entities"
)

// envelopePresenter implements ports.Presenter for the CLI: progress lines
// go to stderr, the terminal result either prints a human-readable summary
// or, in --json mode, a single `{ok, data|error, metadata}` JSON object.
type envelopePresenter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	json   bool
	quiet  bool
}

func newEnvelopePresenter(out, errOut io.Writer, jsonMode, quiet bool) *envelopePresenter {
	return &envelopePresenter{out: out, errOut: errOut, json: jsonMode, quiet: quiet}
}

// Progress implements ports.Presenter.
func (p *envelopePresenter) Progress(stage, message string, percent *int) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.json {
		line, _ := json.Marshal(map[string]interface{}{"kind": "progress", "stage": stage, "message": message, "percent": percent})
		fmt.Fprintln(p.errOut, string(line))
		return
	}
	if percent != nil {
		fmt.Fprintf(p.errOut, "[%s] %s (%d%%)\n", stage, message, *percent)
		return
	}
	fmt.Fprintf(p.errOut, "[%s] %s\n", stage, message)
}

// Result implements ports.Presenter.
func (p *envelopePresenter) Result(result entities.ExecutionResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.json {
		line, _ := json.Marshal(result)
		fmt.Fprintln(p.out, string(line))
		return
	}
	if !result.Ok {
		if result.Error != nil {
			fmt.Fprintln(p.errOut, result.Error.Error())
		}
		return
	}
	if p.quiet {
		return
	}
	for k, v := range result.Data {
		fmt.Fprintf(p.out, "%s: %v\n", k, v)
	}
}
