package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docubot/internal/app"
	"docubot/internal/transport/http/response"
)

type ChatHandler struct {
	bots *app.ChatbotService
	chat *app.ChatService
}

type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func NewChatHandler(bots *app.ChatbotService, chat *app.ChatService) *ChatHandler {
	return &ChatHandler{bots: bots, chat: chat}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	userID, chatbotID, ok := resolveChatbot(c, h.bots)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chat.Chat(c.Request.Context(), app.ChatInput{
		OwnerID:   userID,
		ChatbotID: chatbotID,
		SessionID: req.SessionID,
		Query:     req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty), errors.Is(err, app.ErrLLMConfig):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrNoIndexAvailable):
			response.Error(c, http.StatusBadRequest, response.CodeNoIndex, err.Error())
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, app.ErrMessageEnqueue):
			response.Error(c, http.StatusServiceUnavailable, response.CodeInternalServer, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	userID, chatbotID, ok := resolveChatbot(c, h.bots)
	if !ok {
		return
	}

	session, err := h.chat.CreateSession(c.Request.Context(), userID, chatbotID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoIndexAvailable):
			response.Error(c, http.StatusBadRequest, response.CodeNoIndex, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create session failed")
		}
		return
	}

	response.OK(c, session)
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	_, chatbotID, ok := resolveChatbot(c, h.bots)
	if !ok {
		return
	}

	sessions, err := h.chat.ListSessions(chatbotID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list sessions failed")
		return
	}

	response.OK(c, sessions)
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	_, chatbotID, ok := resolveChatbot(c, h.bots)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session id")
		return
	}

	if err := h.chat.DeleteSession(c.Request.Context(), chatbotID, sessionID); err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete session failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_session_id": sessionID})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	_, chatbotID, ok := resolveChatbot(c, h.bots)
	if !ok {
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session_id")
		return
	}

	history, err := h.chat.GetChatHistory(c.Request.Context(), chatbotID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}

	response.OK(c, history)
}
