package app

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrChatbotNotFound        = errors.New("chatbot not found")
	ErrDocumentNotFound       = errors.New("document not found")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrSessionNotFound        = errors.New("session not found")
	ErrMessageEmpty           = errors.New("message content is empty")
	ErrMessageEnqueue         = errors.New("message enqueue failed")
	ErrLLMConfig              = errors.New("llm config is invalid")
	ErrNoIndexAvailable       = errors.New("no knowledge base for this chatbot; process documents first")
	ErrNoUnprocessedDocuments = errors.New("no unprocessed documents for this chatbot")
)
