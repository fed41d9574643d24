package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Addr != ":5001" {
		t.Errorf("unexpected default addr %q", cfg.Addr)
	}
	if cfg.GeminiModel != "gemini-flash-latest" {
		t.Errorf("unexpected default model %q", cfg.GeminiModel)
	}
	if cfg.RedisURL != "" || cfg.MeiliURL != "" {
		t.Error("optional backends must default to disabled")
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Errorf("unexpected default timeout %v", cfg.LLMTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_ADDR", ":9999")
	t.Setenv("CARELINE_LLM_TIMEOUT_SECONDS", "5")
	t.Setenv("CARELINE_SUGGESTION_CACHE_TTL_SECONDS", "not a number")

	cfg := Load()
	if cfg.Addr != ":9999" {
		t.Errorf("env override ignored: %q", cfg.Addr)
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("timeout override ignored: %v", cfg.LLMTimeout)
	}
	if cfg.SuggestionCacheTTL != 86400*time.Second {
		t.Errorf("unparsable int must fall back to default, got %v", cfg.SuggestionCacheTTL)
	}
}
