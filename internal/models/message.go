package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of a conversation. Order within a history is significant.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatHistory is the persisted transcript for a single passkey.
type ChatHistory struct {
	PasskeyID string    `json:"passkeyId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
