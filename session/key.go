package session

// roleSeparator joins the base session id and the role label. Matches the
// wire-visible key shape consumers may already have persisted.
const roleSeparator = "_"

// DeriveKey returns the memory namespace key for one agent role within a
// logical conversation. It is pure and deterministic: the same pair always
// yields the same key, distinct roles under one session id yield distinct
// keys, and distinct session ids never collide for the same role.
func DeriveKey(sessionID, role string) string {
	return sessionID + roleSeparator + role
}
