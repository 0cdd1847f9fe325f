package execution

import (
	"context"
	"testing"
	"time"

	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPresenter struct {
	results []entities.ExecutionResult
}

func (p *recordingPresenter) Progress(stage, message string, percent *int) {}
func (p *recordingPresenter) Result(r entities.ExecutionResult)            { p.results = append(p.results, r) }

func TestInProcessBackend_ExecutesRegisteredHandler(t *testing.T) {
	presenter := &recordingPresenter{}
	b := NewInProcessBackend(presenter)
	b.Register("handlers.echo", func(ctx context.Context, rc *ports.ExecutionContext) (map[string]interface{}, error) {
		return map[string]interface{}{"argv": rc.Argv}, nil
	})

	res, err := b.Execute(context.Background(), entities.ExecutionRequest{
		HandlerRef: "handlers.echo",
		Input:      entities.ExecutionInput{Argv: []string{"x"}},
	})
	require.NoError(t, err)
	assert.True(t, res.Ok)
	assert.Equal(t, []string{"x"}, res.Data["argv"])
	require.Len(t, presenter.results, 1)
}

func TestInProcessBackend_UnknownHandler(t *testing.T) {
	b := NewInProcessBackend(nil)
	res, err := b.Execute(context.Background(), entities.ExecutionRequest{HandlerRef: "missing"})
	require.NoError(t, err)
	assert.False(t, res.Ok)
	require.NotNil(t, res.Error)
}

func TestInProcessBackend_TimeoutEnforced(t *testing.T) {
	b := NewInProcessBackend(nil)
	b.Register("handlers.slow", func(ctx context.Context, rc *ports.ExecutionContext) (map[string]interface{}, error) {
		select {
		case <-time.After(200 * time.Millisecond):
			return map[string]interface{}{}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	res, err := b.Execute(context.Background(), entities.ExecutionRequest{
		HandlerRef: "handlers.slow",
		TimeoutMs:  10,
	})
	require.NoError(t, err)
	assert.False(t, res.Ok)
	require.NotNil(t, res.Error)
}

func TestInProcessBackend_HandlerError(t *testing.T) {
	b := NewInProcessBackend(nil)
	b.Register("handlers.fail", func(ctx context.Context, rc *ports.ExecutionContext) (map[string]interface{}, error) {
		return nil, assertError{}
	})

	res, err := b.Execute(context.Background(), entities.ExecutionRequest{HandlerRef: "handlers.fail"})
	require.NoError(t, err)
	assert.False(t, res.Ok)
	assert.Equal(t, "EXEC_FAILED", res.Error.Type)
}

type assertError struct{}

func (assertError) Error() string { return "boom" }
