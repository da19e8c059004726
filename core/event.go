package core

// Event is one element of the stream an agent service produces for a single
// /process call. Concrete event types implement the unexported isEvent marker
// enabling a closed set.
//
// Contract: within one call's stream events are strictly ordered as emitted,
// a Done appears at most once and only as the last event, and every event
// before Done belongs to that call.
type Event interface{ isEvent() }

// Delta carries an incremental chunk of agent output text. The aggregate of a
// call is the concatenation of its Delta texts in emission order.
type Delta struct {
	Text string
}

// isEvent implements the Event interface for Delta.
func (Delta) isEvent() {}

// Status reports a coarse execution phase of the producing service, e.g.
// "thinking" or "delegating". Status events carry no content and do not
// contribute to the aggregate.
type Status struct {
	Value string
}

// isEvent implements the Event interface for Status.
func (Status) isEvent() {}

// ErrorEvent is a well-formed failure reported by the agent service itself.
// Consumers classify it as an upstream error for the enclosing call.
type ErrorEvent struct {
	Kind    ErrorKind
	Message string
}

// isEvent implements the Event interface for ErrorEvent.
func (ErrorEvent) isEvent() {}

// Done is the terminal sentinel closing a call's event stream.
type Done struct{}

// isEvent implements the Event interface for Done.
func (Done) isEvent() {}
