package search

import (
	"sort"
	"strings"
	"sync"
)

// MemoryIndex is the in-process fallback index: case-insensitive substring
// match over note content and type, most recent first.
type MemoryIndex struct {
	mu      sync.RWMutex
	records map[string]NoteRecord
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{records: make(map[string]NoteRecord)}
}

// IndexNote adds or updates a note record.
func (m *MemoryIndex) IndexNote(record NoteRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
}

// IndexNotes bulk-indexes records.
func (m *MemoryIndex) IndexNotes(records []NoteRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range records {
		m.records[record.ID] = record
	}
}

// DeleteAll drops every record.
func (m *MemoryIndex) DeleteAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]NoteRecord)
}

// Search scans the index for the query text.
func (m *MemoryIndex) Search(q Query) ([]Result, int) {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	if needle == "" {
		return []Result{}, 0
	}

	m.mu.RLock()
	var hits []NoteRecord
	for _, record := range m.records {
		if strings.Contains(strings.ToLower(record.Content), needle) ||
			strings.Contains(strings.ToLower(record.Type), needle) {
			hits = append(hits, record)
		}
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Timestamp > hits[j].Timestamp
	})

	total := len(hits)
	limit := q.Limit
	if limit == 0 {
		limit = 20
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			ID:        hit.ID,
			Snippet:   snippet(hit.Content, needle),
			Type:      hit.Type,
			Timestamp: hit.Timestamp,
		})
	}
	return results, total
}

// snippet returns a short window around the first match.
func snippet(content, needle string) string {
	lower := strings.ToLower(content)
	idx := strings.Index(lower, needle)
	if idx < 0 {
		idx = 0
	}
	start := idx - 40
	if start < 0 {
		start = 0
	}
	end := idx + len(needle) + 60
	if end > len(content) {
		end = len(content)
	}
	out := content[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(content) {
		out += "..."
	}
	return out
}
