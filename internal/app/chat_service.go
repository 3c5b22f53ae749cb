package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docubot/internal/ai"
	"docubot/internal/model"
	"docubot/internal/session"
	"docubot/internal/vectorindex"
)

// systemPromptTemplate grounds the answer in retrieved context and the
// running conversation memory.
const systemPromptTemplate = `You are a helpful AI assistant. Use the following pieces of context to answer the user's questions.
Always try to answer the question based on the context and the current conversation.
If the context given is not relevant to the question, and the question is general, just answer it based on your knowledge.
If the context given is not relevant to the question, and the question is specific, ask the user to be more specific.

When answering questions about tables, format the information clearly:
1. For simple lookups, present the specific cell values requested
2. For summarizing table data, organize information by rows or columns
3. When presenting tabular data, keep the original structure where appropriate
4. If the table has column headers, use them in your explanations

Context:
%s

Current conversation:
%s`

// SessionStore is the metadata-store slice for chat sessions.
type SessionStore interface {
	Create(session *model.ChatSession) error
	GetByIDAndChatbotID(id string, chatbotID uint) (*model.ChatSession, error)
	ListByChatbotID(chatbotID uint) ([]model.ChatSession, error)
	DeleteByIDAndChatbotID(id string, chatbotID uint) error
}

// MessageStore deletes a session's messages when the session goes away.
type MessageStore interface {
	DeleteBySessionID(sessionID string) error
}

// AsyncMessagePublisher enqueues chat messages for durable persistence.
type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.ChatMessage) error
}

// IndexLoader is the read side of the index lifecycle used per chat turn.
type IndexLoader interface {
	Load(ctx context.Context, owner, chatbotID string) (*vectorindex.Index, error)
	HasIndex(ctx context.Context, owner, chatbotID string) (bool, error)
}

// LLMClient performs one synchronous completion per turn.
type LLMClient interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

// QueryEmbedder embeds the user query for retrieval.
type QueryEmbedder interface {
	Embed(ctx context.Context, cfg ai.EmbeddingConfig, text string) ([]float32, error)
}

// RetrievalOptions tune the diversity-aware selection.
type RetrievalOptions struct {
	TopK       int
	FetchK     int
	LambdaMult float64
}

// ChatInput is one conversational turn request.
type ChatInput struct {
	OwnerID   uint
	ChatbotID uint
	SessionID string
	Query     string
}

// ChatResult is the generated answer plus source attributions.
type ChatResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

// ChatService executes conversational retrieval turns against a chatbot's
// persisted index.
type ChatService struct {
	sessions  SessionStore
	messages  MessageStore
	memory    *session.Manager
	publisher AsyncMessagePublisher
	indexes   IndexLoader
	llm       LLMClient
	embedder  QueryEmbedder
	llmCfg    ai.ChatConfig
	embedCfg  ai.EmbeddingConfig
	retrieval RetrievalOptions
}

func NewChatService(
	sessions SessionStore,
	messages MessageStore,
	memory *session.Manager,
	publisher AsyncMessagePublisher,
	indexes IndexLoader,
	llm LLMClient,
	embedder QueryEmbedder,
	llmCfg ai.ChatConfig,
	embedCfg ai.EmbeddingConfig,
	retrieval RetrievalOptions,
) *ChatService {
	if retrieval.TopK <= 0 {
		retrieval.TopK = 5
	}
	if retrieval.FetchK < retrieval.TopK {
		retrieval.FetchK = retrieval.TopK * 2
	}
	if retrieval.LambdaMult <= 0 || retrieval.LambdaMult > 1 {
		retrieval.LambdaMult = 0.7
	}
	return &ChatService{
		sessions:  sessions,
		messages:  messages,
		memory:    memory,
		publisher: publisher,
		indexes:   indexes,
		llm:       llm,
		embedder:  embedder,
		llmCfg:    llmCfg,
		embedCfg:  embedCfg,
		retrieval: retrieval,
	}
}

// Chat runs one retrieval turn. A chatbot with no persisted index is
// terminal: ErrNoIndexAvailable, and nothing is written. The user message
// is enqueued before generation so a later failure still leaves an
// accurate record of what was asked; failures after that point surface to
// the caller without retry.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	if input.OwnerID == 0 || input.ChatbotID == 0 || input.SessionID == "" {
		return nil, ErrInvalidInput
	}
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ErrMessageEmpty
	}
	if s.llmCfg.BaseURL == "" || s.llmCfg.Model == "" {
		return nil, ErrLLMConfig
	}

	sess, err := s.sessions.GetByIDAndChatbotID(input.SessionID, input.ChatbotID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	idx, err := s.indexes.Load(ctx, fmt.Sprint(input.OwnerID), fmt.Sprint(input.ChatbotID))
	if err != nil {
		if errors.Is(err, vectorindex.ErrNotFound) || errors.Is(err, vectorindex.ErrCorrupt) {
			return nil, ErrNoIndexAvailable
		}
		return nil, err
	}

	turns := s.memory.LoadMemory(ctx, input.ChatbotID, input.SessionID)

	userMessage := model.ChatMessage{
		ChatbotID: input.ChatbotID,
		SessionID: input.SessionID,
		Role:      model.RoleUser,
		Content:   query,
		CreatedAt: time.Now(),
	}
	s.memory.Invalidate(ctx, input.SessionID)
	if err := s.publisher.Publish(ctx, userMessage); err != nil {
		return nil, ErrMessageEnqueue
	}

	queryVector, err := s.embedder.Embed(ctx, s.embedCfg, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}
	hits := idx.SearchMMR(queryVector, s.retrieval.TopK, s.retrieval.FetchK, s.retrieval.LambdaMult)

	answer, err := s.llm.Complete(ctx, s.llmCfg, buildPrompt(hits, turns, query))
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "The model returned an empty response."
	}

	assistantMessage := model.ChatMessage{
		ChatbotID: input.ChatbotID,
		SessionID: input.SessionID,
		Role:      model.RoleAssistant,
		Content:   answer,
		CreatedAt: time.Now(),
	}
	s.memory.Invalidate(ctx, input.SessionID)
	if err := s.publisher.Publish(ctx, assistantMessage); err != nil {
		return nil, ErrMessageEnqueue
	}

	return &ChatResult{Answer: answer, Sources: sourceAttributions(hits)}, nil
}

// CreateSession requires that the chatbot already has a persisted index.
func (s *ChatService) CreateSession(ctx context.Context, ownerID, chatbotID uint) (*model.ChatSession, error) {
	if ownerID == 0 || chatbotID == 0 {
		return nil, ErrInvalidInput
	}

	has, err := s.indexes.HasIndex(ctx, fmt.Sprint(ownerID), fmt.Sprint(chatbotID))
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrNoIndexAvailable
	}

	sess := &model.ChatSession{
		ID:        uuid.NewString(),
		ChatbotID: chatbotID,
	}
	if err := s.sessions.Create(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *ChatService) ListSessions(chatbotID uint) ([]model.ChatSession, error) {
	if chatbotID == 0 {
		return nil, ErrInvalidInput
	}
	return s.sessions.ListByChatbotID(chatbotID)
}

func (s *ChatService) DeleteSession(ctx context.Context, chatbotID uint, sessionID string) error {
	if chatbotID == 0 || sessionID == "" {
		return ErrInvalidInput
	}
	sess, err := s.sessions.GetByIDAndChatbotID(sessionID, chatbotID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrSessionNotFound
	}
	if err := s.messages.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.sessions.DeleteByIDAndChatbotID(sessionID, chatbotID); err != nil {
		return err
	}
	s.memory.Invalidate(ctx, sessionID)
	return nil
}

// GetChatHistory returns the session's messages oldest first.
func (s *ChatService) GetChatHistory(ctx context.Context, chatbotID uint, sessionID string) ([]model.ChatMessage, error) {
	if chatbotID == 0 || sessionID == "" {
		return nil, ErrInvalidInput
	}
	sess, err := s.sessions.GetByIDAndChatbotID(sessionID, chatbotID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return s.memory.History(ctx, chatbotID, sessionID)
}

func buildPrompt(hits []vectorindex.Scored, turns []session.Turn, query string) []ai.ChatMessage {
	var contextBlock strings.Builder
	for i, hit := range hits {
		if i > 0 {
			contextBlock.WriteString("\n\n")
		}
		contextBlock.WriteString(hit.Record.Text)
	}

	var history strings.Builder
	for _, turn := range turns {
		fmt.Fprintf(&history, "%s: %s\n", turn.Role, turn.Content)
	}

	return []ai.ChatMessage{
		{
			Role:    "system",
			Content: fmt.Sprintf(systemPromptTemplate, contextBlock.String(), history.String()),
		},
		{
			Role:    "user",
			Content: query,
		},
	}
}

// sourceAttributions lists the distinct sources (with page numbers when
// present) of the retrieved chunks, in retrieval order.
func sourceAttributions(hits []vectorindex.Scored) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, hit := range hits {
		source := hit.Record.Metadata["source"]
		if source == "" {
			continue
		}
		if page := hit.Record.Metadata["page"]; page != "" {
			source = fmt.Sprintf("%s (page %s)", source, page)
		}
		if !seen[source] {
			seen[source] = true
			sources = append(sources, source)
		}
	}
	return sources
}
