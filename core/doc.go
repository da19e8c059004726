// Package core defines the shared data model of AgentRelay: conversation
// messages and their typed content parts, the /process request schema, the
// stream event union exchanged between agent services and orchestrators, and
// the classified error taxonomy used at composition boundaries.
//
// Everything in this package is transport-agnostic. Wire framing lives in the
// sse package; composition logic lives in orchestrate.
package core
