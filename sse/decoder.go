package sse

import (
	"bufio"
	"io"
	"strings"

	"github.com/hupe1980/agentrelay/core"
)

// Decoder incrementally decodes an event stream from a reader. It yields a
// lazy, finite, non-restartable event sequence: iteration stops at the
// terminal sentinel or at stream close, whichever comes first.
//
// Usage follows the scanner pattern:
//
//	dec := sse.NewDecoder(resp.Body)
//	for dec.Next() {
//	    ev := dec.Event()
//	    ...
//	}
//	if err := dec.Err(); err != nil { ... }
//
// Err returns nil after a clean terminal sentinel and a protocol-classified
// CallError when the stream closed without one.
type Decoder struct {
	r    *bufio.Reader
	ev   core.Event
	err  error
	done bool
}

// NewDecoder builds a decoder over r. Partial lines are buffered across reads
// so arbitrary network chunking cannot split a frame.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next advances to the next decodable event. It returns false at the terminal
// sentinel, at stream close, or after an error.
func (d *Decoder) Next() bool {
	if d.done || d.err != nil {
		return false
	}
	for {
		line, readErr := d.r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if ev, terminal, ok := d.decodeLine(line); ok {
			if terminal {
				d.done = true
				return false
			}
			d.ev = ev
			return true
		}

		if readErr != nil {
			if readErr == io.EOF {
				d.err = core.NewCallError(core.ErrorProtocol, "stream closed before terminal sentinel")
			} else {
				d.err = core.WrapCallError(core.ErrorTransport, readErr)
			}
			return false
		}
	}
}

// decodeLine interprets one complete line. The third return reports whether
// the line produced a result at all; keep-alives, blank separators and
// malformed payloads are skipped.
func (d *Decoder) decodeLine(line string) (ev core.Event, terminal, ok bool) {
	payload, found := strings.CutPrefix(line, dataPrefix)
	if !found {
		return nil, false, false
	}
	payload = strings.TrimSpace(payload)
	if payload == doneSentinel {
		return nil, true, true
	}
	event, valid := unmarshalEvent([]byte(payload))
	if !valid {
		return nil, false, false
	}
	return event, false, true
}

// Event returns the event produced by the last successful Next call.
func (d *Decoder) Event() core.Event { return d.ev }

// Err returns the terminal error, nil after a clean end of stream.
func (d *Decoder) Err() error { return d.err }

// Aggregate drains a stream and concatenates its delta payloads in emission
// order. An error event fails the whole call with an upstream classification;
// the caller receives either the complete aggregate or a classified error,
// never a silent partial string.
func Aggregate(r io.Reader) (string, error) {
	dec := NewDecoder(r)
	var b strings.Builder
	for dec.Next() {
		switch ev := dec.Event().(type) {
		case core.Delta:
			b.WriteString(ev.Text)
		case core.ErrorEvent:
			return "", core.NewCallError(ev.Kind, "%s", ev.Message)
		}
	}
	if err := dec.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}
