package execution

import (
	"encoding/json"
	"net"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain lets this test binary re-exec itself as a fake plugin process
// (the standard Go helper-process pattern), so SubprocessBackend can be
// exercised against a real child process and a real Unix socket without
// depending on any actual plugin build.
func TestMain(m *testing.M) {
	if os.Getenv("KBHOST_TEST_HELPER") == "1" {
		runFakePlugin()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

// runFakePlugin connects to the socket path passed as argv[1], reads one
// invoke frame, emits a progress frame, then a result frame echoing the
// request's argv back as data.
func runFakePlugin() {
	conn, err := net.Dial("unix", os.Args[len(os.Args)-1])
	if err != nil {
		os.Exit(1)
	}
	defer conn.Close()

	dec := json.NewDecoder(conn)
	var in frame
	if err := dec.Decode(&in); err != nil {
		os.Exit(1)
	}

	enc := json.NewEncoder(conn)
	_ = enc.Encode(frame{Kind: "progress", Stage: "working", Message: "halfway"})
	_ = enc.Encode(frame{Kind: "result", Result: &entities.ExecutionResult{
		Ok:   true,
		Data: map[string]interface{}{"argv": toInterfaceSlice(in.Request.Input.Argv)},
	}})
}

func toInterfaceSlice(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func helperCommand(req entities.ExecutionRequest, socketPath string) *exec.Cmd {
	cmd := exec.Command(os.Args[0], socketPath)
	cmd.Env = append(os.Environ(), "KBHOST_TEST_HELPER=1")
	return cmd
}

func TestSubprocessBackend_RoundTrip(t *testing.T) {
	var progressCalls int
	presenter := &recordingPresenter{}
	_ = progressCalls

	b := NewSubprocessBackend(t.TempDir(), helperCommand, presenter)
	res, err := b.Execute(t.Context(), entities.ExecutionRequest{
		PluginID:   "@a/sub",
		HandlerRef: "handlers.echo",
		Input:      entities.ExecutionInput{Argv: []string{"x", "y"}},
		TimeoutMs:  5000,
	})
	require.NoError(t, err)
	assert.True(t, res.Ok)
	assert.Equal(t, []interface{}{"x", "y"}, res.Data["argv"])
}

func fakeHangingCommand(req entities.ExecutionRequest, socketPath string) *exec.Cmd {
	return exec.Command("sleep", "5")
}

func TestSubprocessBackend_TimeoutKillsChild(t *testing.T) {
	b := NewSubprocessBackend(t.TempDir(), fakeHangingCommand, nil)
	start := time.Now()
	res, err := b.Execute(t.Context(), entities.ExecutionRequest{
		HandlerRef: "handlers.never",
		TimeoutMs:  50,
	})
	require.NoError(t, err)
	assert.False(t, res.Ok)
	assert.Less(t, time.Since(start), 3*time.Second)
}
