package config

import (
	"strings"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadWith(envMap(map[string]string{
		"OPENAI_API_KEY": "sk-test",
	}))
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Chunking.ChunkSize != 500 || cfg.Chunking.ChunkOverlap != 100 {
		t.Errorf("chunking = %d/%d, want 500/100", cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.SimilarityThreshold != 0.5 {
		t.Errorf("SimilarityThreshold = %f, want 0.5", cfg.Retrieval.SimilarityThreshold)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", cfg.OpenAI.APIKey)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	cfg, err := loadWith(envMap(map[string]string{
		"VOICERAG_OPENAI_API_KEY": "sk-override",
		"VOICERAG_PORT":           "9000",
		"VOICERAG_CHUNK_SIZE":     "256",
		"VOICERAG_CHUNK_OVERLAP":  "32",
		"VOICERAG_TOP_K":          "10",
	}))
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Chunking.ChunkSize != 256 || cfg.Chunking.ChunkOverlap != 32 {
		t.Errorf("chunking = %d/%d, want 256/32", cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	}
	if cfg.Retrieval.TopK != 10 {
		t.Errorf("TopK = %d, want 10", cfg.Retrieval.TopK)
	}
	if cfg.OpenAI.APIKey != "sk-override" {
		t.Errorf("APIKey = %q, want sk-override", cfg.OpenAI.APIKey)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	_, err := loadWith(envMap(nil))
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "OpenAI API key") {
		t.Errorf("error = %v, want mention of OpenAI API key", err)
	}
}

func TestLoad_RejectsOverlapNotSmallerThanChunkSize(t *testing.T) {
	_, err := loadWith(envMap(map[string]string{
		"OPENAI_API_KEY":         "sk-test",
		"VOICERAG_CHUNK_SIZE":    "100",
		"VOICERAG_CHUNK_OVERLAP": "100",
	}))
	if err == nil {
		t.Fatal("expected error for overlap >= chunk size")
	}
}
