package providers

import (
	"context"
	"fmt"

	clc "github.com/cloudwego/eino-ext/callbacks/cozeloop"
	"github.com/cloudwego/eino/callbacks"
	"github.com/coze-dev/cozeloop-go"
)

// TracingConfig holds CozeLoop credentials
type TracingConfig struct {
	APIToken    string
	WorkspaceID string
}

// Enabled reports whether both credentials are present
func (c TracingConfig) Enabled() bool {
	return c.APIToken != "" && c.WorkspaceID != ""
}

// SetupTracing registers a CozeLoop callback handler for every eino
// component call. The returned func flushes and closes the client.
func SetupTracing(ctx context.Context, cfg TracingConfig) (func(), error) {
	if !cfg.Enabled() {
		return func() {}, nil
	}

	client, err := cozeloop.NewClient(
		cozeloop.WithAPIToken(cfg.APIToken),
		cozeloop.WithWorkspaceID(cfg.WorkspaceID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cozeloop client: %w", err)
	}

	callbacks.AppendGlobalHandlers(clc.NewLoopHandler(client))

	return func() {
		client.Close(ctx)
	}, nil
}
