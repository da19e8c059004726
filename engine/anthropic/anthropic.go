// Package anthropic adapts the Anthropic Messages API to the engine.Engine
// boundary. The adapter runs non-streaming and emits the complete completion
// as a single output; engine state passes through unchanged.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/engine"
)

// Options configure the Anthropic engine adapter (model id, temperature, max
// tokens, API key, instruction prompt).
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	// Instructions is the system prompt defining the agent's role.
	Instructions string
}

// Engine wraps the Anthropic Messages API behind engine.Engine.
type Engine struct {
	client *anthropic.Client
	opts   Options
}

// New creates an adapter using the official client.
func New(optFns ...func(o *Options)) *Engine {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Engine{client: &client, opts: opts}
}

// NewFromClient creates an adapter from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Engine {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Run implements engine.Engine.
func (e *Engine) Run(ctx context.Context, msgs []core.Message, state map[string]any) (<-chan engine.Output, <-chan engine.Outcome) {
	outputs := make(chan engine.Output, 1)
	outcome := make(chan engine.Outcome, 1)

	go func() {
		defer close(outcome)
		defer close(outputs)

		params := anthropic.MessageNewParams{
			Model:       e.opts.Model,
			Messages:    buildMessages(msgs),
			MaxTokens:   e.opts.MaxTokens,
			Temperature: anthropic.Float(e.opts.Temperature),
		}
		if e.opts.Instructions != "" {
			params.System = []anthropic.TextBlockParam{{Text: e.opts.Instructions}}
		}

		resp, err := e.client.Messages.New(ctx, params)
		if err != nil {
			outcome <- engine.Outcome{Err: fmt.Errorf("anthropic api error: %w", err)}
			return
		}

		var text string
		for _, block := range resp.Content {
			if block.Type == "text" {
				text += block.AsText().Text
			}
		}

		select {
		case <-ctx.Done():
			outcome <- engine.Outcome{Err: ctx.Err()}
			return
		case outputs <- engine.Output{Text: text}:
		}

		outcome <- engine.Outcome{State: state}
	}()

	return outputs, outcome
}

// buildMessages converts conversation history to Anthropic message params.
func buildMessages(msgs []core.Message) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		block := anthropic.NewTextBlock(m.Text())
		switch m.Role {
		case core.RoleAgent:
			messages = append(messages, anthropic.NewAssistantMessage(block))
		default:
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	return messages
}
