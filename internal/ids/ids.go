// Package ids generates the opaque identifiers used across the pipeline
// and the content hash used for duplicate detection.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const (
	documentPrefix     = "doc_"
	conversationPrefix = "conv_"
	randomIDLength     = 12
)

// NewDocumentID returns a fresh document ID of the form "doc_<12 hex chars>".
func NewDocumentID() string {
	return documentPrefix + randomHex(randomIDLength)
}

// NewConversationID returns a fresh conversation ID of the form "conv_<12 hex chars>".
func NewConversationID() string {
	return conversationPrefix + randomHex(randomIDLength)
}

// NewRecordID returns a bare UUID, used for vector store records without a caller-supplied ID.
func NewRecordID() string {
	return uuid.New().String()
}

// ContentHash returns the lowercase hex SHA-256 of content. Two uploads with the
// same hash are the same document regardless of filename.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) string {
	s := strings.ReplaceAll(uuid.New().String(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
