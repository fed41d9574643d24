// Package search indexes note content for the timeline search endpoint.
// Meilisearch is preferred when configured and healthy; an in-process
// index serves as the fallback. Results carry note ids only - the caller
// re-applies visibility checks before exposing anything.
package search

// NoteRecord is the indexed projection of a note. No history, highlights
// or actions are indexed.
type NoteRecord struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	AuthorRole string `json:"authorRole"`
	Timestamp  string `json:"timestamp"`
}

// Query is a search request.
type Query struct {
	Text  string
	Limit int
}

// Result is a single hit.
type Result struct {
	ID        string `json:"id"`
	Snippet   string `json:"snippet"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// Response wraps the hits for one query.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}
