package core

// AgentRequest is the body of a POST /process call. One request corresponds
// to exactly one orchestrator call; requests are created per call and
// discarded after use.
type AgentRequest struct {
	// Input is the ordered message sequence for this call. Must be non-empty.
	Input []Message `json:"input"`
	// SessionID identifies the logical conversation. Stable for the
	// conversation's lifetime; never mutated by an orchestrator. The service
	// generates one when absent.
	SessionID string `json:"session_id,omitempty"`
	// UserID optionally identifies the end user on whose behalf the
	// conversation runs.
	UserID string `json:"user_id,omitempty"`
	// Stream selects the response mode. Nil defaults to streaming (SSE);
	// false requests a single buffered JSON document.
	Stream *bool `json:"stream,omitempty"`
}

// Streaming reports whether the caller requested an incremental event-stream
// response. The default (absent flag) is streaming.
func (r AgentRequest) Streaming() bool { return r.Stream == nil || *r.Stream }
