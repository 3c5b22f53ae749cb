package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"docubot/internal/chunk"
	"docubot/internal/extract"
	"docubot/internal/model"
	"docubot/internal/vectorindex"
)

// DocumentStore is the slice of the metadata store the ingestion pipeline
// touches: it reads unprocessed rows and flips the processed flag.
type DocumentStore interface {
	ListUnprocessedByChatbotID(chatbotID uint) ([]model.Document, error)
	MarkProcessed(ids []uint) error
	MarkAllUnprocessed(chatbotID uint) error
}

// FileFetcher downloads raw uploaded bytes from the object store.
type FileFetcher interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

// Chunker splits extracted segments by file-type strategy.
type Chunker interface {
	Split(segments []extract.Segment, fileType extract.FileType) []chunk.Chunk
}

// IndexManager owns the vector index lifecycle for a chatbot.
type IndexManager interface {
	CreateOrAppend(ctx context.Context, idx *vectorindex.Index, chunks []chunk.Chunk) (*vectorindex.Index, error)
	Persist(ctx context.Context, idx *vectorindex.Index, owner, chatbotID string) error
	Load(ctx context.Context, owner, chatbotID string) (*vectorindex.Index, error)
	HasIndex(ctx context.Context, owner, chatbotID string) (bool, error)
	Delete(ctx context.Context, owner, chatbotID string) error
}

// FailedRef records one document that could not be ingested. Per-document
// failures never abort the batch.
type FailedRef struct {
	DocumentID uint   `json:"document_id"`
	FileName   string `json:"file_name"`
	Reason     string `json:"reason"`
}

// IngestResult summarizes one ProcessDocuments call.
type IngestResult struct {
	ProcessedCount int         `json:"processed_count"`
	ChunkCount     int         `json:"chunk_count"`
	FailedRefs     []FailedRef `json:"failed_refs,omitempty"`
}

// IngestService runs the ingestion pipeline: unprocessed documents are
// fetched, extracted, chunked, embedded into the chatbot's index, and the
// index pair is persisted before any document is marked processed.
type IngestService struct {
	documents DocumentStore
	files     FileFetcher
	chunker   Chunker
	indexes   IndexManager
}

func NewIngestService(documents DocumentStore, files FileFetcher, chunker Chunker, indexes IndexManager) *IngestService {
	return &IngestService{
		documents: documents,
		files:     files,
		chunker:   chunker,
		indexes:   indexes,
	}
}

// ProcessDocuments ingests every unprocessed document of the chatbot.
// Documents are processed sequentially; the index is mutated once, after
// all extraction and chunking has finished. Embedding or storage failures
// abort without flipping any processed flag.
func (s *IngestService) ProcessDocuments(ctx context.Context, ownerID, chatbotID uint) (*IngestResult, error) {
	if ownerID == 0 || chatbotID == 0 {
		return nil, ErrInvalidInput
	}
	owner := fmt.Sprint(ownerID)
	bot := fmt.Sprint(chatbotID)

	docs, err := s.documents.ListUnprocessedByChatbotID(chatbotID)
	if err != nil {
		return nil, err
	}

	idx, err := s.loadExisting(ctx, owner, bot, chatbotID)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		// A rebuild may have reset processed flags; pick up the full set.
		docs, err = s.documents.ListUnprocessedByChatbotID(chatbotID)
		if err != nil {
			return nil, err
		}
	}
	if len(docs) == 0 {
		return nil, ErrNoUnprocessedDocuments
	}

	result := &IngestResult{}
	var indexed []uint
	var newChunks []chunk.Chunk

	for _, doc := range docs {
		data, err := s.files.Download(ctx, doc.BucketPath)
		if err != nil {
			log.Printf("ingest chatbot %d: download %s failed: %v", chatbotID, doc.FileName, err)
			result.FailedRefs = append(result.FailedRefs, failedRef(doc, err))
			continue
		}
		segments, err := extract.Extract(data, doc.FileName)
		if err != nil {
			log.Printf("ingest chatbot %d: extract %s failed: %v", chatbotID, doc.FileName, err)
			result.FailedRefs = append(result.FailedRefs, failedRef(doc, err))
			continue
		}
		newChunks = append(newChunks, s.chunker.Split(segments, extract.DetectFileType(doc.FileName))...)
		indexed = append(indexed, doc.ID)
	}

	if len(indexed) == 0 {
		return result, nil
	}

	idx, err = s.indexes.CreateOrAppend(ctx, idx, newChunks)
	if err != nil {
		return nil, fmt.Errorf("build index for chatbot %d: %w", chatbotID, err)
	}
	if err := s.indexes.Persist(ctx, idx, owner, bot); err != nil {
		return nil, fmt.Errorf("persist index for chatbot %d: %w", chatbotID, err)
	}
	if err := s.documents.MarkProcessed(indexed); err != nil {
		return nil, fmt.Errorf("mark documents processed: %w", err)
	}

	result.ProcessedCount = len(indexed)
	result.ChunkCount = len(newChunks)
	return result, nil
}

// loadExisting returns the chatbot's index, nil when none exists yet. A
// corrupt pair is removed and every document is reset to unprocessed so
// the index is rebuilt in full instead of repaired.
func (s *IngestService) loadExisting(ctx context.Context, owner, bot string, chatbotID uint) (*vectorindex.Index, error) {
	idx, err := s.indexes.Load(ctx, owner, bot)
	if err == nil {
		return idx, nil
	}
	if errors.Is(err, vectorindex.ErrNotFound) {
		return nil, nil
	}
	if errors.Is(err, vectorindex.ErrCorrupt) {
		log.Printf("ingest chatbot %d: corrupt index pair, forcing rebuild: %v", chatbotID, err)
		if err := s.indexes.Delete(ctx, owner, bot); err != nil {
			return nil, err
		}
		if err := s.documents.MarkAllUnprocessed(chatbotID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return nil, err
}

func failedRef(doc model.Document, err error) FailedRef {
	return FailedRef{DocumentID: doc.ID, FileName: doc.FileName, Reason: err.Error()}
}
