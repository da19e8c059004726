package sse

import (
	"strings"

	"github.com/hupe1980/agentrelay/core"
)

// Document is the single JSON body of a buffered (stream=false) response.
// Exactly one of Output or Error is populated.
type Document struct {
	Output []core.Message  `json:"output,omitempty"`
	Error  *core.CallError `json:"error,omitempty"`
	Status string          `json:"status,omitempty"`
}

// Collector buffers a full event sequence server-side until Done is observed,
// then renders it as one Document: the concatenation of all delta payloads in
// emission order, or the first error event if the sequence failed.
type Collector struct {
	content strings.Builder
	status  string
	failure *core.ErrorEvent
	done    bool
}

// Add folds one event into the collector. Events after Done are ignored.
func (c *Collector) Add(ev core.Event) {
	if c.done {
		return
	}
	switch e := ev.(type) {
	case core.Delta:
		c.content.WriteString(e.Text)
	case core.Status:
		c.status = e.Value
	case core.ErrorEvent:
		if c.failure == nil {
			failure := e
			c.failure = &failure
		}
	case core.Done:
		c.done = true
	}
}

// Done reports whether the terminal sentinel has been observed.
func (c *Collector) Done() bool { return c.done }

// Document renders the buffered response body.
func (c *Collector) Document() Document {
	if c.failure != nil {
		return Document{
			Error:  core.NewCallError(c.failure.Kind, "%s", c.failure.Message),
			Status: c.status,
		}
	}
	return Document{
		Output: []core.Message{core.NewAgentMessage(c.content.String())},
	}
}
