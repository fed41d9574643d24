package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"careline/api/internal/app"
	"careline/api/internal/config"
	"careline/api/internal/llm"
	"careline/api/internal/search"
	"careline/api/internal/seed"
	"careline/api/internal/store"
)

func main() {
	cfg := config.Load()

	records := store.NewMemory()
	notes, err := seed.LoadNotes(cfg.DataFile, cfg.KeyFile)
	if err != nil {
		log.Printf("WARNING: seed load failed, starting empty: %v", err)
	} else if len(notes) > 0 {
		records.Load(notes)
		log.Printf("Loaded %d notes from %s", len(notes), cfg.DataFile)
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, search.NewMemoryIndex())

	// Optional Redis cache in front of the suggestion generator
	var cache *llm.Cache
	if strings.TrimSpace(cfg.RedisURL) != "" {
		cache, err = llm.NewCache(cfg.RedisURL, cfg.SuggestionCacheTTL)
		if err != nil {
			log.Printf("WARNING: redis unavailable, suggestion cache disabled: %v", err)
		} else {
			defer cache.Close()
		}
	}

	var client *llm.Client
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		client = llm.NewClient(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey, cfg.LLMTimeout)
		log.Printf("Gemini configured.")
	} else {
		log.Printf("WARNING: GEMINI_API_KEY not set. AI features will fall back to basic simulation.")
	}
	suggest := llm.NewService(client, cache)

	service := app.New(cfg, records, suggest, searchService)

	// Warm the search index from the seed data.
	indexRecords := make([]search.NoteRecord, 0, len(notes))
	for i := range notes {
		indexRecords = append(indexRecords, search.NoteRecord{
			ID:         notes[i].ID,
			Content:    notes[i].Content,
			Type:       notes[i].Type,
			AuthorRole: string(notes[i].AuthorRole),
			Timestamp:  notes[i].Timestamp,
		})
	}
	searchService.IndexNotes(indexRecords)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Careline API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
