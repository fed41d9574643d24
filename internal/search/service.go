package search

import "log"

// Service is the facade that tries Meilisearch first and falls back to the
// in-process index. Both indexes receive every write so the fallback stays
// warm across Meilisearch outages.
type Service struct {
	meili    *Meili
	fallback *MemoryIndex
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili, fallback *MemoryIndex) *Service {
	return &Service{meili: meili, fallback: fallback}
}

// Search tries Meilisearch if healthy, otherwise the in-process index.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to memory index: %v", err)
	}

	results, total := s.fallback.Search(q)
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexNote indexes a note (fire-and-forget to Meilisearch).
func (s *Service) IndexNote(record NoteRecord) {
	s.fallback.IndexNote(record)
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexNote(record); err != nil {
			log.Printf("search: index note %s: %v", record.ID, err)
		}
	}()
}

// IndexNotes bulk-indexes notes, used once at startup after the seed load.
func (s *Service) IndexNotes(records []NoteRecord) {
	s.fallback.IndexNotes(records)
	if s.meili == nil || !s.meili.Healthy() || len(records) == 0 {
		return
	}
	if err := s.meili.IndexNotes(records); err != nil {
		log.Printf("search: bulk index: %v", err)
	}
}

// Clear drops all indexed notes (timeline reset).
func (s *Service) Clear() {
	s.fallback.DeleteAll()
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteAll(); err != nil {
			log.Printf("search: clear index: %v", err)
		}
	}()
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
