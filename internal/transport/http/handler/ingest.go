package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"docubot/internal/app"
	"docubot/internal/task"
	"docubot/internal/transport/http/response"
)

type IngestHandler struct {
	bots   *app.ChatbotService
	ingest *app.IngestService
	tasks  *task.Registry
}

func NewIngestHandler(bots *app.ChatbotService, ingest *app.IngestService, tasks *task.Registry) *IngestHandler {
	return &IngestHandler{bots: bots, ingest: ingest, tasks: tasks}
}

// Process dispatches an ingestion run for the chatbot in the background.
// The task id is deterministic per chatbot, so at most one run is in
// flight at a time; poll Status with the returned id.
func (h *IngestHandler) Process(c *gin.Context) {
	userID, chatbotID, ok := resolveChatbot(c, h.bots)
	if !ok {
		return
	}

	taskID := ingestTaskID(chatbotID)
	err := h.tasks.Submit(taskID, func() error {
		// The request context dies when the handler returns; the run
		// continues on its own.
		_, err := h.ingest.ProcessDocuments(context.Background(), userID, chatbotID)
		return err
	})
	if err != nil {
		if errors.Is(err, task.ErrAlreadyRunning) {
			response.Error(c, http.StatusConflict, response.CodeTaskConflict, "ingestion already running for this chatbot")
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "dispatch ingestion failed")
		}
		return
	}

	c.JSON(http.StatusAccepted, response.APIResponse{
		Code:    response.CodeOK,
		Message: "ok",
		Data:    gin.H{"task_id": taskID},
	})
}

func (h *IngestHandler) Status(c *gin.Context) {
	_, chatbotID, ok := resolveChatbot(c, h.bots)
	if !ok {
		return
	}

	status, found := h.tasks.Status(ingestTaskID(chatbotID))
	if !found {
		response.Error(c, http.StatusNotFound, response.CodeBadRequest, "no ingestion task for this chatbot")
		return
	}

	response.OK(c, status)
}

func ingestTaskID(chatbotID uint) string {
	return fmt.Sprintf("ingest-%d", chatbotID)
}
