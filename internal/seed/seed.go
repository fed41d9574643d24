// Package seed loads the initial note collection at process start. Loading
// is best-effort: a missing file, a missing key, a failed decrypt or a
// parse error all degrade to an empty timeline with a log line. The engine
// never writes back to this layer.
package seed

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"

	"careline/api/internal/store"
)

const nonceSize = 24

// LoadNotes reads the data file, decrypting with the key file when one is
// present and falling back to a plaintext JSON parse when decryption fails.
func LoadNotes(dataFile, keyFile string) ([]store.Note, error) {
	raw, err := os.ReadFile(dataFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}

	if key, ok := loadKey(keyFile); ok {
		if plain, ok := decrypt(raw, key); ok {
			raw = plain
		} else {
			// The file may predate encryption. Assume plaintext.
			log.Printf("seed: decryption failed for %s, assuming plaintext", dataFile)
		}
	}

	var notes []store.Note
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil, fmt.Errorf("parse notes: %w", err)
	}
	return notes, nil
}

// loadKey reads a base64-encoded 32-byte secretbox key.
func loadKey(keyFile string) (*[32]byte, bool) {
	if keyFile == "" {
		return nil, false
	}
	encoded, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
	if err != nil || len(decoded) != 32 {
		log.Printf("seed: invalid key file %s", keyFile)
		return nil, false
	}
	var key [32]byte
	copy(key[:], decoded)
	return &key, true
}

// decrypt opens a nonce-prefixed secretbox payload.
func decrypt(raw []byte, key *[32]byte) ([]byte, bool) {
	if len(raw) < nonceSize {
		return nil, false
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	return secretbox.Open(nil, raw[nonceSize:], &nonce, key)
}

// Encrypt seals notes into the nonce-prefixed payload format LoadNotes
// reads. Used by provisioning tooling and tests.
func Encrypt(notes []store.Note, key *[32]byte, nonce *[nonceSize]byte) ([]byte, error) {
	plain, err := json.Marshal(notes)
	if err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plain, nonce, key), nil
}
