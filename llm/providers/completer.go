package providers

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// ChatCompleter sends rendered prompt messages to a chat model and returns
// the text of the reply
type ChatCompleter struct {
	runnable compose.Runnable[[]*schema.Message, *schema.Message]
}

// NewChatCompleter compiles a single-node chain around the chat model
func NewChatCompleter(ctx context.Context, cm model.BaseChatModel) (*ChatCompleter, error) {
	if cm == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(cm)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}
	return &ChatCompleter{runnable: runnable}, nil
}

// Complete makes exactly one model call
func (c *ChatCompleter) Complete(ctx context.Context, messages []*schema.Message) (string, error) {
	msg, err := c.runnable.Invoke(ctx, messages)
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", fmt.Errorf("empty response from model")
	}
	return msg.Content, nil
}
