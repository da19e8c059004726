package session

import (
	"context"
	"time"

	"github.com/hupe1980/agentrelay/core"
)

// State is the persisted memory of one agent role within a session: the
// conversation history visible to that role plus opaque reasoning-engine
// state restored at the start of each request.
type State struct {
	UserID  string         `json:"user_id,omitempty"`
	History []core.Message `json:"history"`
	Engine  map[string]any `json:"engine,omitempty"`
	Updated time.Time      `json:"updated"`
}

// Clone returns a deep copy safe for independent mutation.
func (s State) Clone() State {
	clone := State{UserID: s.UserID, Updated: s.Updated}
	if s.History != nil {
		clone.History = make([]core.Message, len(s.History))
		copy(clone.History, s.History)
	}
	if s.Engine != nil {
		clone.Engine = make(map[string]any, len(s.Engine))
		for k, v := range s.Engine {
			clone.Engine[k] = v
		}
	}
	return clone
}

// Store persists per-role session state under namespaced keys (DeriveKey).
// Implementations must be safe for concurrent use across distinct keys;
// consistency for concurrent writes to one key is the store's own guarantee.
type Store interface {
	// Load returns the state for a key. The boolean reports presence; a
	// missing key is not an error.
	Load(ctx context.Context, key string) (State, bool, error)

	// Save replaces the state snapshot for a key.
	Save(ctx context.Context, key string, state State) error
}
