package app

import (
	"strings"

	"docubot/internal/model"
)

// ChatbotStore is the metadata-store slice for chatbots.
type ChatbotStore interface {
	Create(bot *model.Chatbot) error
	GetByIDAndOwnerID(id, ownerID uint) (*model.Chatbot, error)
	ListByOwnerID(ownerID uint) ([]model.Chatbot, error)
}

type CreateChatbotInput struct {
	OwnerID     uint
	Name        string
	Description string
}

// ChatbotService manages the chatbot catalog and enforces ownership: every
// other operation resolves its chatbot through GetChatbot first.
type ChatbotService struct {
	bots ChatbotStore
}

func NewChatbotService(bots ChatbotStore) *ChatbotService {
	return &ChatbotService{bots: bots}
}

func (s *ChatbotService) CreateChatbot(input CreateChatbotInput) (*model.Chatbot, error) {
	name := strings.TrimSpace(input.Name)
	if input.OwnerID == 0 || name == "" {
		return nil, ErrInvalidInput
	}

	bot := &model.Chatbot{
		OwnerID:     input.OwnerID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.bots.Create(bot); err != nil {
		return nil, err
	}
	return bot, nil
}

func (s *ChatbotService) ListChatbots(ownerID uint) ([]model.Chatbot, error) {
	if ownerID == 0 {
		return nil, ErrInvalidInput
	}
	return s.bots.ListByOwnerID(ownerID)
}

// GetChatbot returns the chatbot only when the caller owns it.
func (s *ChatbotService) GetChatbot(ownerID, chatbotID uint) (*model.Chatbot, error) {
	if ownerID == 0 || chatbotID == 0 {
		return nil, ErrInvalidInput
	}
	bot, err := s.bots.GetByIDAndOwnerID(chatbotID, ownerID)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, ErrChatbotNotFound
	}
	return bot, nil
}
