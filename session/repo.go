package session

// Repo defines the interface for durable session storage. Implementations
// live in the storage package; a nil-session Load means "no session".
type Repo interface {
	// Load retrieves the persisted session, or nil when none is stored
	Load() (*Session, error)

	// Save persists the session, replacing any previous one
	Save(session *Session) error

	// Clear removes the persisted session. Clearing an empty store is not an error
	Clear() error
}
