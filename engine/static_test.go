package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

// Interface compliance (compile-time assertion)
var _ Engine = (*StaticEngine)(nil)

func drain(t *testing.T, outputs <-chan Output, outcome <-chan Outcome) (string, Outcome) {
	t.Helper()
	var b strings.Builder
	for out := range outputs {
		b.WriteString(out.Text)
	}
	select {
	case oc := <-outcome:
		return b.String(), oc
	case <-time.After(time.Second):
		t.Fatal("no outcome delivered")
		return "", Outcome{}
	}
}

func TestStaticEngine_CannedResponse(t *testing.T) {
	eng := NewStaticEngine("analyst", func(o *StaticOptions) { o.ChunkSize = 2 })
	eng.AddResponse("hi", "hello there")

	outputs, outcome := eng.Run(context.Background(), []core.Message{core.NewUserMessage("hi")}, nil)
	content, oc := drain(t, outputs, outcome)

	require.NoError(t, oc.Err)
	assert.Equal(t, "hello there", content, "chunked deltas must concatenate to the full response")
	assert.Equal(t, 1, oc.State["turns"])
}

func TestStaticEngine_DefaultResponseNamesEngine(t *testing.T) {
	eng := NewStaticEngine("writer")

	outputs, outcome := eng.Run(context.Background(), []core.Message{core.NewUserMessage("draft this")}, nil)
	content, oc := drain(t, outputs, outcome)

	require.NoError(t, oc.Err)
	assert.Contains(t, content, "writer response to: draft this")
}

func TestStaticEngine_TurnCounterAccumulates(t *testing.T) {
	eng := NewStaticEngine("analyst")
	msgs := []core.Message{core.NewUserMessage("hi")}

	_, outcome := eng.Run(context.Background(), msgs, map[string]any{"turns": 2, "other": "kept"})
	oc := <-outcome
	require.NoError(t, oc.Err)
	assert.Equal(t, 3, oc.State["turns"])
	assert.Equal(t, "kept", oc.State["other"], "unrelated state must be preserved")
}

func TestStaticEngine_EmptyInputFails(t *testing.T) {
	eng := NewStaticEngine("analyst")
	outputs, outcome := eng.Run(context.Background(), nil, nil)
	_, oc := drain(t, outputs, outcome)
	assert.Error(t, oc.Err)
}

func TestStaticEngine_Cancellation(t *testing.T) {
	eng := NewStaticEngine("analyst", func(o *StaticOptions) { o.ChunkSize = 1 })
	eng.AddResponse("hi", strings.Repeat("x", 100))

	ctx, cancel := context.WithCancel(context.Background())
	outputs, outcome := eng.Run(ctx, []core.Message{core.NewUserMessage("hi")}, nil)

	// Consume one output, then cancel without draining.
	<-outputs
	cancel()

	_, oc := drain(t, outputs, outcome)
	assert.ErrorIs(t, oc.Err, context.Canceled)
}
