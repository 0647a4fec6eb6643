package common

import (
	"fmt"

	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewChunkID derives a deterministic chunk ID from its document and
// ordinal. Re-ingesting a document therefore reuses the same chunk ids,
// which lets the vector store update vectors in place.
func NewChunkID(documentID string, ordinal int) string {
	return fmt.Sprintf("chk_%s_%04d", documentID, ordinal)
}

// NewSessionID generates a unique session ID with the "ses_" prefix
func NewSessionID() string {
	return "ses_" + uuid.New().String()
}
