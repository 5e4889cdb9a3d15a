package service

import "errors"

var (
	// ErrExtraction marks a document whose bytes could not be turned into text: a wrong or missing
	// password, a corrupt file, or a storage read failure. The document is marked failed.
	ErrExtraction = errors.New("extraction failed")
	// ErrPersistence marks a failed batch insert. Nothing from the document is committed.
	ErrPersistence = errors.New("persistence failed")

	ErrDocumentNotFound    = errors.New("document not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidQuery        = errors.New("invalid query")
	ErrUnsupportedFile     = errors.New("only PDF statements are supported")
	ErrFileTooLarge        = errors.New("file too large")
	ErrQueueClosed         = errors.New("ingestion queue is closed")
	ErrQueueFull           = errors.New("ingestion queue full")
	ErrClassifierDisabled  = errors.New("classifier disabled")
)
