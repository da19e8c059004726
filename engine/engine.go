// Package engine defines the boundary to the agent reasoning loop. The loop
// itself (prompt construction, tool invocation, model calls) is an external
// collaborator; services only depend on the Engine interface and treat its
// outputs as an opaque lazy sequence.
//
// A run delivers an ordered outputs channel that is closed when the run
// finishes, then exactly one Outcome on a buffered channel carrying the final
// engine state or the terminal error.
// Implementations must respect context cancellation at every send.
package engine

import (
	"context"

	"github.com/hupe1980/agentrelay/core"
)

// Output is one intermediate result of a reasoning run. Text carries
// incremental content; Status optionally marks a coarse execution phase.
// Either field may be empty, not both.
type Output struct {
	Text   string
	Status string
}

// Outcome terminates a run: the final engine state to persist on success, or
// the error that ended the run. Exactly one Outcome is delivered per run,
// after the outputs channel is closed.
type Outcome struct {
	State map[string]any
	Err   error
}

// Engine executes one reasoning run over the full message history and the
// engine state restored from the session store. Implementations hold no
// per-session state between runs; each run reconstructs what it needs from
// the provided state and returns the updated state in its Outcome.
type Engine interface {
	Run(ctx context.Context, msgs []core.Message, state map[string]any) (<-chan Output, <-chan Outcome)
}
