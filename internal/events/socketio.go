package events

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/report"
)

// connectTimeout bounds the initial socket.io handshake.
const connectTimeout = 15 * time.Second

// SocketIO pushes run events to an external socket.io endpoint.
type SocketIO struct {
	io *socket.Socket
}

// NewSocketIO connects to the given socket.io URL and returns an emitter
// bound to that connection. The optional URL fragment selects a namespace.
func NewSocketIO(ctx context.Context, rawURL string) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("emitter", "socketio", "url", rawURL)
	logger.Info("Connecting event emitter...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse events URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(parsedURL.Fragment, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Event emitter connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errs[0].(error)
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}
}

// Close disconnects the underlying socket.
func (e *SocketIO) Close() {
	e.io.Disconnect()
}

// emit sends one event, logging and swallowing any transport error.
func (e *SocketIO) emit(ctx context.Context, event string, payload map[string]any) {
	if err := e.io.Emit(event, payload); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to emit event", "event", event, "error", err)
	}
}

func (e *SocketIO) PipelineStarted(ctx context.Context, runID, pipeline string, environments int) {
	e.emit(ctx, "pipeline:started", map[string]any{
		"run_id":       runID,
		"pipeline":     pipeline,
		"environments": environments,
	})
}

func (e *SocketIO) EnvironmentStarted(ctx context.Context, envID string) {
	e.emit(ctx, "environment:started", map[string]any{"environment": envID})
}

func (e *SocketIO) StepStarted(ctx context.Context, envID, stepName string) {
	e.emit(ctx, "step:started", map[string]any{"environment": envID, "step": stepName})
}

func (e *SocketIO) StepFinished(ctx context.Context, envID string, outcome report.StepOutcome) {
	e.emit(ctx, "step:finished", map[string]any{
		"environment": envID,
		"step":        outcome.Name,
		"status":      string(outcome.Status),
		"exit_code":   outcome.ExitCode,
		"duration_ms": outcome.Duration.Milliseconds(),
	})
}

func (e *SocketIO) EnvironmentFinished(ctx context.Context, result report.EnvironmentResult) {
	e.emit(ctx, "environment:finished", map[string]any{
		"environment": result.ID,
		"status":      string(result.Status),
		"duration_ms": result.Duration.Milliseconds(),
	})
}

func (e *SocketIO) PipelineFinished(ctx context.Context, rep *report.PipelineReport) {
	e.emit(ctx, "pipeline:finished", map[string]any{
		"run_id":   rep.RunID,
		"pipeline": rep.Pipeline,
		"success":  rep.Success,
	})
}
