package sse

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

// chunkReader delivers at most n bytes per Read to simulate arbitrary network
// chunking.
type chunkReader struct {
	data []byte
	n    int
	pos  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.n
	if end > len(r.data) {
		end = len(r.data)
	}
	count := copy(p, r.data[r.pos:end])
	r.pos += count
	return count, nil
}

const sampleStream = "data: {\"object\":\"content\",\"text\":\"a\"}\n\n" +
	": keep-alive\n" +
	"data: {\"object\":\"status\",\"status\":\"thinking\"}\n\n" +
	"data: {\"object\":\"content\",\"text\":\"b\"}\n\n" +
	"data: [DONE]\n\n"

func decodeAll(t *testing.T, r io.Reader) []core.Event {
	t.Helper()
	dec := NewDecoder(r)
	var events []core.Event
	for dec.Next() {
		events = append(events, dec.Event())
	}
	require.NoError(t, dec.Err())
	return events
}

func TestDecoder_EventSequence(t *testing.T) {
	events := decodeAll(t, strings.NewReader(sampleStream))
	require.Len(t, events, 3)
	assert.Equal(t, core.Delta{Text: "a"}, events[0])
	assert.Equal(t, core.Status{Value: "thinking"}, events[1])
	assert.Equal(t, core.Delta{Text: "b"}, events[2])
}

func TestDecoder_ChunkBoundaryInvariance(t *testing.T) {
	whole := decodeAll(t, strings.NewReader(sampleStream))
	for _, n := range []int{1, 2, 3, 7, 13} {
		split := decodeAll(t, &chunkReader{data: []byte(sampleStream), n: n})
		assert.Equal(t, whole, split, "chunk size %d changed the decoded sequence", n)
	}
}

func TestDecoder_SkipsMalformedPayloads(t *testing.T) {
	stream := "data: {not json\n\n" +
		"data: {\"object\":\"mystery\"}\n\n" +
		"data: {\"object\":\"content\",\"text\":\"ok\"}\n\n" +
		"data: [DONE]\n\n"
	events := decodeAll(t, strings.NewReader(stream))
	require.Len(t, events, 1)
	assert.Equal(t, core.Delta{Text: "ok"}, events[0])
}

func TestDecoder_CloseWithoutDoneIsProtocolError(t *testing.T) {
	stream := "data: {\"object\":\"content\",\"text\":\"partial\"}\n\n"
	dec := NewDecoder(strings.NewReader(stream))

	require.True(t, dec.Next())
	require.False(t, dec.Next())

	ce, ok := core.AsCallError(dec.Err())
	require.True(t, ok, "expected a classified error, got %v", dec.Err())
	assert.Equal(t, core.ErrorProtocol, ce.Kind)
}

func TestDecoder_DoneWithoutTrailingNewline(t *testing.T) {
	stream := "data: {\"object\":\"content\",\"text\":\"x\"}\n\ndata: [DONE]"
	events := decodeAll(t, strings.NewReader(stream))
	require.Len(t, events, 1)
}

func TestDecoder_NonRestartable(t *testing.T) {
	dec := NewDecoder(strings.NewReader(sampleStream))
	for dec.Next() {
	}
	require.NoError(t, dec.Err())
	assert.False(t, dec.Next(), "decoder must not restart after the terminal sentinel")
}

func TestAggregate_ConcatenatesDeltasInOrder(t *testing.T) {
	content, err := Aggregate(strings.NewReader(sampleStream))
	require.NoError(t, err)
	assert.Equal(t, "ab", content)
}

func TestAggregate_ErrorEventFailsCall(t *testing.T) {
	stream := "data: {\"object\":\"content\",\"text\":\"a\"}\n\n" +
		"data: {\"object\":\"error\",\"kind\":\"upstream\",\"message\":\"engine exploded\"}\n\n" +
		"data: [DONE]\n\n"
	content, err := Aggregate(strings.NewReader(stream))
	require.Error(t, err)
	assert.Empty(t, content, "no partial aggregate on failure")

	ce, ok := core.AsCallError(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrorUpstream, ce.Kind)
	assert.Contains(t, ce.Message, "engine exploded")
}
