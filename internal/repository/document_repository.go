package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docubot/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListByChatbotID(chatbotID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("chatbot_id = ?", chatbotID).Order("created_at ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// ListUnprocessedByChatbotID returns documents whose content has not entered
// the index yet.
func (r *DocumentRepository) ListUnprocessedByChatbotID(chatbotID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("chatbot_id = ? AND is_processed = ?", chatbotID, false).
		Order("created_at ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list unprocessed documents failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) GetByIDAndChatbotID(id, chatbotID uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ? AND chatbot_id = ?", id, chatbotID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

// MarkProcessed flips is_processed for the given document ids. Called only
// after the index pair has been durably persisted.
func (r *DocumentRepository) MarkProcessed(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.Model(&model.Document{}).Where("id IN ?", ids).
		Update("is_processed", true).Error; err != nil {
		return fmt.Errorf("mark documents processed failed: %w", err)
	}
	return nil
}

// MarkAllUnprocessed resets the processed flag for a chatbot, forcing a full
// rebuild on the next ingestion (used after a document deletion).
func (r *DocumentRepository) MarkAllUnprocessed(chatbotID uint) error {
	if err := r.db.Model(&model.Document{}).Where("chatbot_id = ?", chatbotID).
		Update("is_processed", false).Error; err != nil {
		return fmt.Errorf("mark documents unprocessed failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) DeleteByID(id uint) error {
	if err := r.db.Delete(&model.Document{}, id).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}
