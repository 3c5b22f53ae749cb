package app

import (
	"context"
	"fmt"
	"path"
	"strings"

	"docubot/internal/extract"
	"docubot/internal/model"
)

// DocumentCatalog is the metadata-store slice for uploaded documents.
type DocumentCatalog interface {
	Create(doc *model.Document) error
	ListByChatbotID(chatbotID uint) ([]model.Document, error)
	GetByIDAndChatbotID(id, chatbotID uint) (*model.Document, error)
	DeleteByID(id uint) error
	MarkAllUnprocessed(chatbotID uint) error
}

// FileStore is the write side of the object store used for raw uploads.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, keys ...string) error
}

// IndexDropper removes a chatbot's persisted index pair.
type IndexDropper interface {
	Delete(ctx context.Context, owner, chatbotID string) error
}

type UploadDocumentInput struct {
	OwnerID   uint
	ChatbotID uint
	FileName  string
	Data      []byte
}

// DocumentService manages uploaded files: raw bytes in the object store,
// one metadata row per file. Deleting a document drops the chatbot's index
// pair and resets the processed flags, so the next ingestion rebuilds the
// index without the removed content.
type DocumentService struct {
	documents DocumentCatalog
	files     FileStore
	indexes   IndexDropper
}

func NewDocumentService(documents DocumentCatalog, files FileStore, indexes IndexDropper) *DocumentService {
	return &DocumentService{
		documents: documents,
		files:     files,
		indexes:   indexes,
	}
}

func (s *DocumentService) UploadDocument(ctx context.Context, input UploadDocumentInput) (*model.Document, error) {
	fileName := strings.TrimSpace(input.FileName)
	if input.OwnerID == 0 || input.ChatbotID == 0 || fileName == "" || len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}

	fileType := extract.DetectFileType(fileName)
	if fileType == extract.FileTypeUnsupported {
		return nil, ErrUnsupportedFileType
	}

	key := rawObjectKey(input.OwnerID, input.ChatbotID, fileName)
	if err := s.files.Upload(ctx, key, input.Data); err != nil {
		return nil, fmt.Errorf("upload document %s failed: %w", fileName, err)
	}

	doc := &model.Document{
		ChatbotID:  input.ChatbotID,
		FileName:   fileName,
		FileType:   fileType.String(),
		BucketPath: key,
	}
	if err := s.documents.Create(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) ListDocuments(chatbotID uint) ([]model.Document, error) {
	if chatbotID == 0 {
		return nil, ErrInvalidInput
	}
	return s.documents.ListByChatbotID(chatbotID)
}

// DeleteDocument removes the raw object and the metadata row, then forces
// a full reindex: the vector index cannot subtract a single document, so
// the pair is dropped and every remaining document is reset to
// unprocessed.
func (s *DocumentService) DeleteDocument(ctx context.Context, ownerID, chatbotID, documentID uint) error {
	if ownerID == 0 || chatbotID == 0 || documentID == 0 {
		return ErrInvalidInput
	}

	doc, err := s.documents.GetByIDAndChatbotID(documentID, chatbotID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}

	if err := s.files.Remove(ctx, doc.BucketPath); err != nil {
		return fmt.Errorf("remove document object failed: %w", err)
	}
	if err := s.documents.DeleteByID(doc.ID); err != nil {
		return err
	}

	if err := s.indexes.Delete(ctx, fmt.Sprint(ownerID), fmt.Sprint(chatbotID)); err != nil {
		return fmt.Errorf("drop index after document delete failed: %w", err)
	}
	return s.documents.MarkAllUnprocessed(chatbotID)
}

func rawObjectKey(ownerID, chatbotID uint, fileName string) string {
	return path.Join(fmt.Sprint(ownerID), fmt.Sprint(chatbotID), "raw", fileName)
}
