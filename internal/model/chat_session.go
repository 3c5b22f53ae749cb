package model

import "time"

type ChatSession struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ChatbotID uint      `gorm:"not null;index" json:"chatbot_id"`
	CreatedAt time.Time `json:"created_at"`
}
