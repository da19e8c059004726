// Package orchestrate composes independently deployed agent services into
// higher-level workflows.
//
// The call primitive is Client.Call: it posts one message to an agent's
// /process endpoint, decodes the event stream into a full aggregate, and
// classifies every failure (transport, timeout, protocol, upstream) into a
// structured Result instead of propagating errors past the composition
// boundary. Three patterns build on it:
//
//   - Pipeline: ordered stages, each framed from the previous stage's
//     aggregate; aborts on the first failure and reports the failing stage.
//   - FanOut: N independent calls joined concurrently; results preserve
//     issue order and partial success is a valid outcome.
//   - ManagerWorker: a coordinating analysis call, worker calls sharing the
//     analysis verbatim, and a final synthesis call, all correlated under
//     one session via role-namespaced memory keys.
//
// There is no retry or backoff anywhere in this package. A failed call fails
// exactly the composition work that depends on it.
package orchestrate
