package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docubot/internal/model"
)

type ChatbotRepository struct {
	db *gorm.DB
}

func NewChatbotRepository(db *gorm.DB) *ChatbotRepository {
	return &ChatbotRepository{db: db}
}

func (r *ChatbotRepository) Create(bot *model.Chatbot) error {
	if err := r.db.Create(bot).Error; err != nil {
		return fmt.Errorf("create chatbot failed: %w", err)
	}
	return nil
}

func (r *ChatbotRepository) GetByIDAndOwnerID(id, ownerID uint) (*model.Chatbot, error) {
	var bot model.Chatbot
	if err := r.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&bot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chatbot failed: %w", err)
	}
	return &bot, nil
}

func (r *ChatbotRepository) ListByOwnerID(ownerID uint) ([]model.Chatbot, error) {
	var bots []model.Chatbot
	if err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&bots).Error; err != nil {
		return nil, fmt.Errorf("list chatbots failed: %w", err)
	}
	return bots, nil
}
