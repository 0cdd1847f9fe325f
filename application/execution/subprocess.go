package execution

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
)

// killGrace bounds how long a subprocess gets to exit after its socket
// closes or its timeout fires before the host sends SIGKILL.
const killGrace = 2 * time.Second

// frame is a single newline-delimited JSON message on the subprocess wire.
// Kind is one of "invoke", "progress", "result".
type frame struct {
	Kind     string                  `json:"kind"`
	Request  *entities.ExecutionRequest `json:"request,omitempty"`
	Stage    string                  `json:"stage,omitempty"`
	Message  string                  `json:"message,omitempty"`
	Percent  *int                    `json:"percent,omitempty"`
	Result   *entities.ExecutionResult `json:"result,omitempty"`
}

// SubprocessBackend runs a plugin's handler in a child process, communicating
// over a per-invocation Unix-domain socket with newline-delimited JSON frames.
type SubprocessBackend struct {
	// socketDir is where per-invocation socket files are created.
	socketDir string
	// command builds the argv used to launch the plugin's handler process.
	command func(req entities.ExecutionRequest, socketPath string) *exec.Cmd
	output  ports.Presenter
}

// NewSubprocessBackend creates a SubprocessBackend. command builds the child
// process for a given request and socket path; socketDir defaults to
// os.TempDir() when empty.
func NewSubprocessBackend(socketDir string, command func(entities.ExecutionRequest, string) *exec.Cmd, output ports.Presenter) *SubprocessBackend {
	if socketDir == "" {
		socketDir = os.TempDir()
	}
	return &SubprocessBackend{socketDir: socketDir, command: command, output: output}
}

// Execute implements ports.ExecutionBackend.
func (b *SubprocessBackend) Execute(ctx context.Context, req entities.ExecutionRequest) (entities.ExecutionResult, error) {
	started := time.Now()
	meta := entities.ExecutionMeta{StartedAt: started, ExecutionID: req.ExecutionID, PluginID: req.PluginID}

	socketPath := filepath.Join(b.socketDir, fmt.Sprintf("kbhost-%s.sock", uuid.NewString()))
	_ = os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		meta.FinishedAt = time.Now()
		return entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_FAILED", fmt.Sprintf("bind socket: %v", err)), Metadata: meta}, nil
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	runCtx := ctx
	var cancel context.CancelFunc
	if req.TimeoutMs > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	cmd := b.command(req, socketPath)
	if err := cmd.Start(); err != nil {
		meta.FinishedAt = time.Now()
		return entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_FAILED", fmt.Sprintf("spawn plugin process: %v", err)), Metadata: meta}, nil
	}

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()
	defer func() {
		select {
		case <-waitDone:
		case <-time.After(killGrace):
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			<-waitDone
		}
	}()

	connCh := make(chan net.Conn, 1)
	acceptErr := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			acceptErr <- err
			return
		}
		connCh <- conn
	}()

	var conn net.Conn
	select {
	case conn = <-connCh:
	case err := <-acceptErr:
		meta.FinishedAt = time.Now()
		return entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_FAILED", fmt.Sprintf("accept plugin connection: %v", err)), Metadata: meta}, nil
	case <-runCtx.Done():
		meta.FinishedAt = time.Now()
		return entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_TIMEOUT", "plugin process did not connect in time"), Metadata: meta}, nil
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(frame{Kind: "invoke", Request: &req}); err != nil {
		meta.FinishedAt = time.Now()
		return entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_FAILED", fmt.Sprintf("write invoke frame: %v", err)), Metadata: meta}, nil
	}

	resultCh := make(chan entities.ExecutionResult, 1)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(conn)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			var f frame
			if err := json.Unmarshal(scanner.Bytes(), &f); err != nil {
				readErr <- fmt.Errorf("decode frame: %w", err)
				return
			}
			switch f.Kind {
			case "progress":
				if b.output != nil {
					b.output.Progress(f.Stage, f.Message, f.Percent)
				}
			case "result":
				if f.Result != nil {
					resultCh <- *f.Result
				} else {
					readErr <- fmt.Errorf("result frame missing result payload")
				}
				return
			}
		}
		if err := scanner.Err(); err != nil {
			readErr <- err
			return
		}
		readErr <- fmt.Errorf("plugin connection closed before a result frame arrived")
	}()

	select {
	case res := <-resultCh:
		meta.FinishedAt = time.Now()
		res.Metadata = meta
		if res.Ok && b.output != nil {
			b.output.Result(res)
		}
		return res, nil
	case err := <-readErr:
		meta.FinishedAt = time.Now()
		return entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_FAILED", err.Error()), Metadata: meta}, nil
	case <-runCtx.Done():
		meta.FinishedAt = time.Now()
		return entities.ExecutionResult{Ok: false, Error: entities.NewErrorDetail("EXEC_TIMEOUT", fmt.Sprintf("plugin %q exceeded %dms", req.PluginID, req.TimeoutMs)), Metadata: meta}, nil
	}
}
