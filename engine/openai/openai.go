// Package openai adapts the OpenAI Chat Completions API (streaming) to the
// engine.Engine boundary. Conversation history is supplied per run by the
// hosting service; the adapter itself is stateless and passes engine state
// through unchanged.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/engine"
)

// Options configure the OpenAI engine adapter. Fields mirror a minimal subset
// of Chat Completion parameters; extend via functional options without
// breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// Instructions is the system prompt defining the agent's role.
	Instructions string
}

// Engine wraps the OpenAI Chat Completions API behind engine.Engine.
type Engine struct {
	client *openai.Client
	opts   Options
}

// New creates an adapter using the default client (API key from environment).
func New(optFns ...func(o *Options)) *Engine {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an adapter from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{client: client, opts: opts}
}

// Run implements engine.Engine using the streaming completions endpoint.
func (e *Engine) Run(ctx context.Context, msgs []core.Message, state map[string]any) (<-chan engine.Output, <-chan engine.Outcome) {
	outputs := make(chan engine.Output, 32)
	outcome := make(chan engine.Outcome, 1)

	go func() {
		defer close(outcome)
		defer close(outputs)

		params := openai.ChatCompletionNewParams{
			Messages:            buildMessages(e.opts.Instructions, msgs),
			Model:               e.opts.Model,
			Temperature:         openai.Float(e.opts.Temperature),
			MaxCompletionTokens: openai.Int(e.opts.MaxCompletionTokens),
		}

		stream := e.client.Chat.Completions.NewStreaming(ctx, params)
		for stream.Next() {
			chunk := stream.Current()
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				select {
				case <-ctx.Done():
					outcome <- engine.Outcome{Err: ctx.Err()}
					return
				case outputs <- engine.Output{Text: choice.Delta.Content}:
				}
			}
		}
		if err := stream.Err(); err != nil {
			outcome <- engine.Outcome{Err: fmt.Errorf("openai streaming error: %w", err)}
			return
		}

		outcome <- engine.Outcome{State: state}
	}()

	return outputs, outcome
}

// buildMessages converts conversation history into provider messages, with
// the instruction prompt first when present.
func buildMessages(instructions string, msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if instructions != "" {
		messages = append(messages, openai.SystemMessage(instructions))
	}
	for _, m := range msgs {
		switch m.Role {
		case core.RoleAgent:
			messages = append(messages, openai.AssistantMessage(m.Text()))
		default:
			messages = append(messages, openai.UserMessage(m.Text()))
		}
	}
	return messages
}
