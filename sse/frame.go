package sse

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentrelay/core"
)

const (
	// ContentTypeEventStream is the response content type in streaming mode.
	ContentTypeEventStream = "text/event-stream"
	// ContentTypeJSON is the response content type in buffered mode.
	ContentTypeJSON = "application/json"

	dataPrefix   = "data:"
	doneSentinel = "[DONE]"

	objectContent = "content"
	objectStatus  = "status"
	objectError   = "error"
)

// frame is the JSON envelope of a single non-terminal event. The "object"
// field is the discriminant identifying the variant.
type frame struct {
	Object  string `json:"object"`
	Text    string `json:"text,omitempty"`
	Status  string `json:"status,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// marshalEvent renders a non-terminal event as its JSON frame body.
func marshalEvent(ev core.Event) ([]byte, error) {
	var f frame
	switch e := ev.(type) {
	case core.Delta:
		f = frame{Object: objectContent, Text: e.Text}
	case core.Status:
		f = frame{Object: objectStatus, Status: e.Value}
	case core.ErrorEvent:
		f = frame{Object: objectError, Kind: string(e.Kind), Message: e.Message}
	default:
		return nil, fmt.Errorf("sse: cannot frame event type %T", ev)
	}
	return json.Marshal(f)
}

// unmarshalEvent parses a frame body back into an event. The second return is
// false when the payload is not valid JSON or carries an unknown
// discriminant; such frames are skipped best-effort.
func unmarshalEvent(payload []byte) (core.Event, bool) {
	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil, false
	}
	switch f.Object {
	case objectContent:
		return core.Delta{Text: f.Text}, true
	case objectStatus:
		return core.Status{Value: f.Status}, true
	case objectError:
		kind := core.ErrorKind(f.Kind)
		if kind == "" {
			kind = core.ErrorUpstream
		}
		return core.ErrorEvent{Kind: kind, Message: f.Message}, true
	default:
		return nil, false
	}
}
