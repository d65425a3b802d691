package internal

// Deduplicator removes repeated sessions from backend listings
type Deduplicator struct{}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Deduplicate keeps the first occurrence of each session ID, preserving order
func (d *Deduplicator) Deduplicate(sessions []Session) []Session {
	seen := make(map[string]bool, len(sessions))
	unique := make([]Session, 0, len(sessions))

	for _, session := range sessions {
		if seen[session.ID] {
			LogDebug("Dropping duplicate session %s", session.ID)
			continue
		}
		seen[session.ID] = true
		unique = append(unique, session)
	}

	return unique
}
