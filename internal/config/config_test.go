package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DATA_DIR", "PROCESSED_DIR", "INDEX_PATH", "DOCUMENTS_PATH", "RAW_DIR",
		"PROGRAM_URLS", "RAG_TOP_K", "RECOMMEND_TOP_K", "RELEVANCE_THRESHOLD",
		"GENERATION_MODE", "OLLAMA_PULL_TIMEOUT", "CHUNK_SIZE", "CHUNK_OVERLAP",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.RAGTopK != 4 {
		t.Fatalf("expected default top k 4, got %d", cfg.RAGTopK)
	}
	if cfg.RecommendTopK != 6 {
		t.Fatalf("expected default recommend top k 6, got %d", cfg.RecommendTopK)
	}
	if cfg.RelevanceThreshold != 0.08 {
		t.Fatalf("expected default threshold 0.08, got %v", cfg.RelevanceThreshold)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 120 {
		t.Fatalf("unexpected chunking defaults %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.GenerationMode != GenerationAuto {
		t.Fatalf("expected auto generation mode, got %q", cfg.GenerationMode)
	}
	if cfg.OllamaPullTimeout != 300*time.Second {
		t.Fatalf("expected pull timeout 300s, got %s", cfg.OllamaPullTimeout)
	}
	if cfg.OllamaAnswerReserve != 60*time.Second || cfg.OllamaAnswerReserve >= cfg.QuestionTimeout {
		t.Fatalf("answer reserve %s must fit inside question timeout %s", cfg.OllamaAnswerReserve, cfg.QuestionTimeout)
	}
	if len(cfg.ProgramURLs) != 2 {
		t.Fatalf("expected two default program urls, got %v", cfg.ProgramURLs)
	}
	if want := filepath.Join("data", "processed", "documents.json"); cfg.DocumentsPath != want {
		t.Fatalf("expected documents path %q, got %q", want, cfg.DocumentsPath)
	}
}

func TestLoadDerivesPathsFromDataDir(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/assistant")
	t.Setenv("PROCESSED_DIR", "")
	t.Setenv("INDEX_PATH", "")
	t.Setenv("RAW_DIR", "")

	cfg := Load()
	if cfg.IndexPath != "/srv/assistant/processed/tfidf_index.bundle" {
		t.Fatalf("unexpected index path %q", cfg.IndexPath)
	}
	if cfg.RawDir != "/srv/assistant/raw" {
		t.Fatalf("unexpected raw dir %q", cfg.RawDir)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("PROGRAM_URLS", " https://a.example/x , ,https://a.example/y")
	t.Setenv("RELEVANCE_THRESHOLD", "0.12")
	t.Setenv("OLLAMA_PULL_TIMEOUT", "45")
	t.Setenv("OLLAMA_POLL_INTERVAL", "500ms")
	t.Setenv("RAG_TOP_K", "not-a-number")

	cfg := Load()
	if len(cfg.ProgramURLs) != 2 || cfg.ProgramURLs[1] != "https://a.example/y" {
		t.Fatalf("unexpected program urls %v", cfg.ProgramURLs)
	}
	if cfg.RelevanceThreshold != 0.12 {
		t.Fatalf("expected threshold override, got %v", cfg.RelevanceThreshold)
	}
	if cfg.OllamaPullTimeout != 45*time.Second {
		t.Fatalf("expected plain seconds to parse, got %s", cfg.OllamaPullTimeout)
	}
	if cfg.OllamaPollInterval != 500*time.Millisecond {
		t.Fatalf("expected duration string to parse, got %s", cfg.OllamaPollInterval)
	}
	if cfg.RAGTopK != 4 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.RAGTopK)
	}
}

func TestResolvedGenerationMode(t *testing.T) {
	cases := []struct {
		mode, key, want string
	}{
		{GenerationAuto, "sk-test", GenerationHosted},
		{GenerationAuto, "", GenerationOllama},
		{"bogus", "", GenerationOllama},
		{GenerationOff, "sk-test", GenerationOff},
		{GenerationOllama, "sk-test", GenerationOllama},
	}
	for _, tc := range cases {
		got := Config{GenerationMode: tc.mode, OpenAIAPIKey: tc.key}.ResolvedGenerationMode()
		if got != tc.want {
			t.Fatalf("mode=%q key=%q: expected %q, got %q", tc.mode, tc.key, tc.want, got)
		}
	}
}
