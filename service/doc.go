// Package service hosts one logical agent behind POST /process.
//
// A Service owns its dependencies (session store, reasoning engine, logger,
// metrics) via explicit construction; there is no shared mutable application
// registry. Per request it follows a load → run → persist → discard
// lifecycle: conversation memory is rehydrated from the store under the
// role-namespaced key, the reasoning engine runs with fresh state, outputs
// are framed through the sse codec (incremental or buffered depending on the
// request's stream flag), and updated memory is written back after the
// terminal sentinel and before the handler returns. No per-session state
// survives between requests inside the service itself.
//
// Requests for distinct session ids may execute fully concurrently. Requests
// sharing one session id must not be issued concurrently by a well-behaved
// caller; the service does not serialize them and relies on the store's
// consistency guarantees.
package service
