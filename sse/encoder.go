package sse

import (
	"fmt"
	"io"
	"net/http"

	"github.com/hupe1980/agentrelay/core"
)

// flusher is the subset of http.Flusher the encoder needs. Writers without it
// (plain buffers in tests) are used unflushed.
type flusher interface{ Flush() }

// Encoder writes events as event-stream frames, one `data: <json>` line plus
// a blank separator per event, flushing after each frame so consumers observe
// deltas as they are produced.
type Encoder struct {
	w      io.Writer
	f      flusher
	closed bool
}

// NewEncoder wraps a writer. If the writer implements http.Flusher (as
// http.ResponseWriter does), every frame is flushed through it.
func NewEncoder(w io.Writer) *Encoder {
	enc := &Encoder{w: w}
	if f, ok := w.(flusher); ok {
		enc.f = f
	}
	return enc
}

// StreamHeaders stamps the response headers for an event-stream response.
// Must be called before the first write.
func StreamHeaders(h http.Header) {
	h.Set("Content-Type", ContentTypeEventStream)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
}

// Encode writes one event. Encoding core.Done emits the literal terminal
// sentinel and seals the encoder; writes after Done are an error.
func (e *Encoder) Encode(ev core.Event) error {
	if e.closed {
		return fmt.Errorf("sse: encode after terminal sentinel")
	}
	if _, ok := ev.(core.Done); ok {
		e.closed = true
		return e.writeFrame([]byte(doneSentinel))
	}
	body, err := marshalEvent(ev)
	if err != nil {
		return err
	}
	return e.writeFrame(body)
}

func (e *Encoder) writeFrame(body []byte) error {
	if _, err := fmt.Fprintf(e.w, "%s %s\n\n", dataPrefix, body); err != nil {
		return fmt.Errorf("sse: write frame: %w", err)
	}
	if e.f != nil {
		e.f.Flush()
	}
	return nil
}
