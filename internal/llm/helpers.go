// In file: internal/llm/helpers.go

// Package llm contains the conversation model, the completion clients and the
// retrieval service the assistant searches course materials with.
package llm

import (
	"crypto/sha256"
	"encoding/hex"
)

// Vector is one embedded chunk as stored in the vector index.
type Vector struct {
	// ID is the unique identifier for the vector, a hash of its source and text.
	ID string `json:"id"`
	// Values is the embedding itself.
	Values []float32 `json:"values"`
	// Metadata holds the chunk text and its source file.
	Metadata map[string]interface{} `json:"metadata"`
}

// GenerateCacheKey creates a stable, fixed-length SHA256 hash of a string.
func GenerateCacheKey(text string) string {
	hasher := sha256.New()
	hasher.Write([]byte(text))
	return hex.EncodeToString(hasher.Sum(nil))
}
