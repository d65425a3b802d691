package internal

// CreateTestSession creates a titled test session
func CreateTestSession(id string) Session {
	return Session{ID: id, Title: "Test Conversation"}
}

// CreateTestMessages returns a short exchange including a fenced code reply
func CreateTestMessages() []Message {
	return []Message{
		NewUserMessage("How do I print in **Go**?"),
		NewAssistantMessage("Use fmt:\n\n```go\nfmt.Println(\"hi\")\n```"),
		NewUserMessage("And in Python?"),
		NewSystemMessage("Sorry, there was an error processing your request."),
	}
}
