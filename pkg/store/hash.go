package store

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// DocumentHash returns a stable content hash of a document. Two
// documents that are equal under [canvas.Document.Equal] hash the
// same, so the hash works as a cheap dirty check before a Put.
func DocumentHash(doc canvas.Document) (string, error) {
	data, err := canvas.Marshal(doc)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}
