// Package session provides conversation identity correlation and state
// persistence for agent services.
//
// Multiple agent roles can share one logical conversation. DeriveKey maps a
// (session id, role) pair onto a stable namespaced key so that, e.g., an
// "analyst" and a "writer" under the same session never read or write each
// other's memory. Store implementations persist per-key State snapshots; the
// package ships a volatile in-memory store and a durable SQLite store in the
// sqlite subpackage.
//
// Consistency under concurrent same-session access is a property of the
// backing store, not of this package: well-behaved callers do not issue
// concurrent requests for the same session id.
package session
