package search

import (
	"fmt"
	"strings"
	"testing"
)

func TestMemoryIndexSearch(t *testing.T) {
	idx := NewMemoryIndex()
	idx.IndexNotes([]NoteRecord{
		{ID: "n1", Content: "Persistent cough for two weeks", Type: "staff_note", Timestamp: "2026-08-01 10:00"},
		{ID: "n2", Content: "Cough resolved after antibiotics", Type: "clinician_note", Timestamp: "2026-08-05 10:00"},
		{ID: "n3", Content: "Blood pressure stable", Type: "staff_note", Timestamp: "2026-08-03 10:00"},
	})

	results, total := idx.Search(Query{Text: "cough"})
	if total != 2 || len(results) != 2 {
		t.Fatalf("expected 2 hits, got %d/%d", len(results), total)
	}
	if results[0].ID != "n2" || results[1].ID != "n1" {
		t.Fatalf("hits must sort most recent first, got %s then %s", results[0].ID, results[1].ID)
	}

	// Type matches too.
	results, _ = idx.Search(Query{Text: "clinician_note"})
	if len(results) != 1 || results[0].ID != "n2" {
		t.Fatalf("type search failed: %+v", results)
	}

	// Case-insensitive.
	if _, total := idx.Search(Query{Text: "COUGH"}); total != 2 {
		t.Fatalf("search must be case-insensitive, got %d", total)
	}

	// Blank queries return nothing.
	if results, total := idx.Search(Query{Text: "   "}); total != 0 || len(results) != 0 {
		t.Fatal("blank queries must return no hits")
	}
}

func TestMemoryIndexLimit(t *testing.T) {
	idx := NewMemoryIndex()
	for i := 0; i < 30; i++ {
		idx.IndexNote(NoteRecord{
			ID:        fmt.Sprintf("n%02d", i),
			Content:   "cough",
			Timestamp: fmt.Sprintf("2026-08-01 %02d:00", i%24),
		})
	}

	results, total := idx.Search(Query{Text: "cough"})
	if total != 30 {
		t.Fatalf("total must count every hit, got %d", total)
	}
	if len(results) != 20 {
		t.Fatalf("default limit is 20, got %d", len(results))
	}

	results, _ = idx.Search(Query{Text: "cough", Limit: 5})
	if len(results) != 5 {
		t.Fatalf("explicit limit ignored, got %d", len(results))
	}
}

func TestMemoryIndexReindexReplacesRecord(t *testing.T) {
	idx := NewMemoryIndex()
	idx.IndexNote(NoteRecord{ID: "n1", Content: "original wording", Timestamp: "2026-08-01 10:00"})
	idx.IndexNote(NoteRecord{ID: "n1", Content: "edited wording", Timestamp: "2026-08-01 11:00"})

	if _, total := idx.Search(Query{Text: "original"}); total != 0 {
		t.Fatal("stale content must not match after reindex")
	}
	if _, total := idx.Search(Query{Text: "edited"}); total != 1 {
		t.Fatal("edited content must match")
	}
}

func TestSnippetWindowing(t *testing.T) {
	long := strings.Repeat("x", 100) + " cough " + strings.Repeat("y", 100)
	idx := NewMemoryIndex()
	idx.IndexNote(NoteRecord{ID: "n1", Content: long, Timestamp: "2026-08-01 10:00"})

	results, _ := idx.Search(Query{Text: "cough"})
	if len(results) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(results))
	}
	snip := results[0].Snippet
	if !strings.Contains(snip, "cough") {
		t.Fatalf("snippet must contain the match: %q", snip)
	}
	if !strings.HasPrefix(snip, "...") || !strings.HasSuffix(snip, "...") {
		t.Fatalf("mid-content snippets carry ellipses on both sides: %q", snip)
	}
	if len(snip) >= len(long) {
		t.Fatal("snippet must window the content")
	}

	short := "cough noted"
	idx.IndexNote(NoteRecord{ID: "n2", Content: short, Timestamp: "2026-08-02 10:00"})
	results, _ = idx.Search(Query{Text: "noted"})
	if results[0].Snippet != short {
		t.Fatalf("short content passes through whole, got %q", results[0].Snippet)
	}
}

func TestServiceFallsBackWithoutMeilisearch(t *testing.T) {
	svc := NewService(nil, NewMemoryIndex())
	svc.IndexNote(NoteRecord{ID: "n1", Content: "cough", Timestamp: "2026-08-01 10:00"})

	resp := svc.Search(Query{Text: "cough"})
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("fallback search failed: %+v", resp)
	}
	if resp.Query != "cough" {
		t.Fatalf("response must echo the query, got %q", resp.Query)
	}

	resp = svc.Search(Query{Text: "nothing here"})
	if resp.Results == nil {
		t.Fatal("empty results must serialize as an array, not null")
	}

	svc.Clear()
	if resp := svc.Search(Query{Text: "cough"}); resp.Total != 0 {
		t.Fatal("clear must empty the fallback index")
	}
}
