package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docubot/internal/app"
	"docubot/internal/transport/http/response"
)

const maxUploadSize = 20 << 20 // 20 MB

type DocumentHandler struct {
	bots      *app.ChatbotService
	documents *app.DocumentService
}

func NewDocumentHandler(bots *app.ChatbotService, documents *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{bots: bots, documents: documents}
}

// Upload accepts a multipart form with "file" and registers it for the
// chatbot. The file is not indexed yet; a process call picks it up.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, chatbotID, ok := resolveChatbot(c, h.bots)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 20MB)")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	doc, err := h.documents.UploadDocument(c.Request.Context(), app.UploadDocumentInput{
		OwnerID:   userID,
		ChatbotID: chatbotID,
		FileName:  file.Filename,
		Data:      data,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrUnsupportedFileType):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload document failed")
		}
		return
	}

	response.OK(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	_, chatbotID, ok := resolveChatbot(c, h.bots)
	if !ok {
		return
	}

	docs, err := h.documents.ListDocuments(chatbotID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}

	response.OK(c, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, chatbotID, ok := resolveChatbot(c, h.bots)
	if !ok {
		return
	}

	docID, err := parseUintParam(c, "doc_id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.documents.DeleteDocument(c.Request.Context(), userID, chatbotID, docID); err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_document_id": docID})
}

// resolveChatbot authorizes the chatbot path parameter against the caller
// and writes the error response itself on failure.
func resolveChatbot(c *gin.Context, bots *app.ChatbotService) (userID, chatbotID uint, ok bool) {
	userID, ok = getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return 0, 0, false
	}

	chatbotID, err := parseUintParam(c, "id")
	if err != nil || chatbotID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chatbot id")
		return 0, 0, false
	}

	if _, err := bots.GetChatbot(userID, chatbotID); err != nil {
		if errors.Is(err, app.ErrChatbotNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeChatbotNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "resolve chatbot failed")
		}
		return 0, 0, false
	}

	return userID, chatbotID, true
}
