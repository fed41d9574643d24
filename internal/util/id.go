package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a 32-character random hex identifier.
func NewID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
