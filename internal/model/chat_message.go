package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is append-only; ordering by CreatedAt (then ID) defines the
// conversational memory for a session.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatbotID uint      `gorm:"not null;index" json:"chatbot_id"`
	SessionID string    `gorm:"size:36;not null;index" json:"session_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
