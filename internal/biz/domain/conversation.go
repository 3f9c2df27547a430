package domain

import "time"

// Conversation represents the per-user conversation aggregate root
type Conversation struct {
	UserID       int64
	History      []Message
	LastActiveAt time.Time
}

// IsEmpty checks if the conversation has no history yet
func (c *Conversation) IsEmpty() bool {
	return len(c.History) == 0
}

// AppendUser appends a user message, seeding the system persona on first use
func (c *Conversation) AppendUser(text, persona string) {
	if c.IsEmpty() {
		c.History = append(c.History, Message{Role: RoleSystem, Content: persona})
	}
	c.History = append(c.History, Message{Role: RoleUser, Content: text})
}

// AppendAssistant appends an assistant reply
func (c *Conversation) AppendAssistant(text string) {
	c.History = append(c.History, Message{Role: RoleAssistant, Content: text})
}

// IsExpired checks if the conversation has been idle longer than timeout
func (c *Conversation) IsExpired(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	return now.Sub(c.LastActiveAt) > timeout
}

// Touch updates the last-activity mark
func (c *Conversation) Touch(now time.Time) {
	c.LastActiveAt = now
}
