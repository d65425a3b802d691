package internal

// Normalizer converts backend payloads into typed transcript and session values
type Normalizer struct {
	deduplicator *Deduplicator
}

// NewNormalizer creates a new Normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{deduplicator: NewDeduplicator()}
}

// NormalizeHistory converts raw history entries into Messages.
// Entries with an unknown role are kept as system notices so no content is dropped.
func (n *Normalizer) NormalizeHistory(raw []RawMessage) []Message {
	messages := make([]Message, 0, len(raw))
	for _, msg := range raw {
		messages = append(messages, n.normalizeMessage(msg))
	}
	return messages
}

func (n *Normalizer) normalizeMessage(msg RawMessage) Message {
	role, err := ParseRole(msg.Role)
	if err != nil {
		LogDebug("History message with %v, treating as system", err)
		role = RoleSystem
	}
	return Message{
		Role:    role,
		Content: msg.Content,
	}
}

// NormalizeSessions drops entries without an identifier and keeps the first
// occurrence of any repeated identifier, preserving backend order.
func (n *Normalizer) NormalizeSessions(raw []Session) []Session {
	sessions := make([]Session, 0, len(raw))
	for _, s := range raw {
		if s.ID == "" {
			LogDebug("Skipping session entry without sessionId")
			continue
		}
		sessions = append(sessions, s)
	}
	return n.deduplicator.Deduplicate(sessions)
}
