package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role identifies the author of a Message.
type Role string

const (
	// RoleUser marks a message originating from the calling user or an
	// upstream orchestrator acting on its behalf.
	RoleUser Role = "user"
	// RoleAgent marks a message produced by an agent service.
	RoleAgent Role = "agent"
)

// Part represents a polymorphic segment of message content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// Message is one turn of a conversation: a role plus an ordered sequence of
// typed content parts. Messages are immutable once constructed.
type Message struct {
	Role    Role
	Content []Part
}

// NewUserMessage builds a user message with a single text part.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []Part{TextPart{Text: text}}}
}

// NewAgentMessage builds an agent message with a single text part.
func NewAgentMessage(text string) Message {
	return Message{Role: RoleAgent, Content: []Part{TextPart{Text: text}}}
}

// Text concatenates all text parts in order.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Content {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// partEnvelope is the wire shape of a content part. The "type" field is the
// discriminant; unknown types are skipped on decode for forward compatibility.
type partEnvelope struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

const partTypeText = "text"

// MarshalJSON renders the message in the wire schema:
//
//	{"role":"user","content":[{"type":"text","text":"..."}]}
func (m Message) MarshalJSON() ([]byte, error) {
	envelopes := make([]partEnvelope, 0, len(m.Content))
	for _, p := range m.Content {
		switch pt := p.(type) {
		case TextPart:
			envelopes = append(envelopes, partEnvelope{Type: partTypeText, Text: pt.Text})
		default:
			return nil, fmt.Errorf("core: cannot marshal part type %T", p)
		}
	}
	return json.Marshal(struct {
		Role    Role           `json:"role"`
		Content []partEnvelope `json:"content"`
	}{Role: m.Role, Content: envelopes})
}

// UnmarshalJSON decodes the wire schema, dropping parts with an unrecognized
// type discriminant.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    Role           `json:"role"`
		Content []partEnvelope `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	m.Content = nil
	for _, env := range raw.Content {
		if env.Type != partTypeText {
			continue
		}
		m.Content = append(m.Content, TextPart{Text: env.Text})
	}
	return nil
}

// NewID generates a unique identifier for invocation tracking and correlation.
func NewID() string { return uuid.NewString() }
