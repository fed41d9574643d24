// Package redact strips PHI from text before it leaves the process toward
// the suggestion generator. It is never applied to stored or displayed
// content.
package redact

import (
	"regexp"
	"strings"
)

var (
	idPattern    = regexp.MustCompile(`\b\d{6,18}\b`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-\s]?\d{4}[-\s]?\d{4}\b`)
)

// Known synthetic names. Production would swap this for NER.
var names = []string{"John Doe", "Jane Smith", "Alice", "Bob"}

// PHI replaces identifier-like digit runs, phone-like patterns and the
// fixed name list with redaction markers.
func PHI(text string) string {
	text = idPattern.ReplaceAllString(text, "<REDACTED_ID>")
	text = phonePattern.ReplaceAllString(text, "<REDACTED_PHONE>")
	for _, name := range names {
		text = strings.ReplaceAll(text, name, "<REDACTED_NAME>")
	}
	return text
}
