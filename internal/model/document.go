package model

import "time"

// Document is the metadata row for one uploaded file. The raw bytes live in
// the object store under BucketPath; IsProcessed flips only after the file's
// content has been durably indexed.
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatbotID   uint      `gorm:"not null;index" json:"chatbot_id"`
	FileName    string    `gorm:"size:256;not null" json:"file_name"`
	FileType    string    `gorm:"size:16;not null" json:"file_type"`
	BucketPath  string    `gorm:"size:512;not null" json:"bucket_path"`
	IsProcessed bool      `gorm:"not null;default:false;index" json:"is_processed"`
	CreatedAt   time.Time `json:"created_at"`
}
