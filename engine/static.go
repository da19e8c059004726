package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/core"
)

// StaticEngine is a deterministic in-memory Engine useful for tests and
// examples. It answers the last user message from a canned response table,
// streams the answer in fixed-size rune chunks, and counts completed turns in
// its engine state.
type StaticEngine struct {
	name      string
	chunkSize int
	responses map[string]string
}

// StaticOptions configure a StaticEngine.
type StaticOptions struct {
	// ChunkSize is the number of runes per emitted delta. Defaults to 16.
	ChunkSize int
}

// NewStaticEngine constructs a StaticEngine identified by name.
func NewStaticEngine(name string, optFns ...func(o *StaticOptions)) *StaticEngine {
	opts := StaticOptions{ChunkSize: 16}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 16
	}
	return &StaticEngine{
		name:      name,
		chunkSize: opts.ChunkSize,
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (e *StaticEngine) AddResponse(prompt, response string) {
	e.responses[prompt] = response
}

// Run implements Engine.
func (e *StaticEngine) Run(ctx context.Context, msgs []core.Message, state map[string]any) (<-chan Output, <-chan Outcome) {
	outputs := make(chan Output, 16)
	outcome := make(chan Outcome, 1)

	go func() {
		defer close(outcome)
		defer close(outputs)

		if len(msgs) == 0 {
			outcome <- Outcome{Err: fmt.Errorf("static engine: no input messages")}
			return
		}

		input := lastUserText(msgs)
		full, ok := e.responses[input]
		if !ok {
			full = fmt.Sprintf("%s response to: %s", e.name, input)
		}

		if !e.send(ctx, outputs, outcome, Output{Status: "thinking"}) {
			return
		}
		for _, chunk := range chunks(full, e.chunkSize) {
			if !e.send(ctx, outputs, outcome, Output{Text: chunk}) {
				return
			}
		}

		outcome <- Outcome{State: bumpTurns(state)}
	}()

	return outputs, outcome
}

// send delivers one output honoring cancellation; a false return means the
// run was cancelled and its outcome already delivered.
func (e *StaticEngine) send(ctx context.Context, outputs chan<- Output, outcome chan<- Outcome, out Output) bool {
	select {
	case <-ctx.Done():
		outcome <- Outcome{Err: ctx.Err()}
		return false
	case outputs <- out:
		return true
	}
}

// lastUserText returns the text of the most recent user message, falling back
// to the last message of any role.
func lastUserText(msgs []core.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == core.RoleUser {
			return msgs[i].Text()
		}
	}
	return msgs[len(msgs)-1].Text()
}

// chunks splits s into rune groups of at most n.
func chunks(s string, n int) []string {
	runes := []rune(s)
	var out []string
	for len(runes) > 0 {
		end := n
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[:end]))
		runes = runes[end:]
	}
	return out
}

// bumpTurns increments the persisted turn counter, preserving other state.
func bumpTurns(state map[string]any) map[string]any {
	next := make(map[string]any, len(state)+1)
	for k, v := range state {
		next[k] = v
	}
	turns := 0
	switch v := next["turns"].(type) {
	case int:
		turns = v
	case float64:
		turns = int(v)
	}
	next["turns"] = turns + 1
	return next
}
