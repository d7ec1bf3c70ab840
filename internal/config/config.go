package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Server    ServerConfig
	OpenAI    OpenAIConfig
	Chunking  ChunkingConfig
	Retrieval RetrievalConfig
	Storage   StorageConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	// Token, when non-empty, enables bearer auth on mutating endpoints.
	Token string
}

type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	EmbedModel      string
	ChatModel       string
	TranscribeModel string
}

type ChunkingConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

type RetrievalConfig struct {
	TopK                int
	SimilarityThreshold float64
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		OpenAI: OpenAIConfig{
			BaseURL:         "https://api.openai.com/v1",
			EmbedModel:      "text-embedding-3-small",
			ChatModel:       "gpt-4",
			TranscribeModel: "whisper-1",
		},
		Chunking: ChunkingConfig{
			ChunkSize:    500,
			ChunkOverlap: 100,
		},
		Retrieval: RetrievalConfig{
			TopK:                5,
			SimilarityThreshold: 0.5,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".voicerag"
	}
	return filepath.Join(home, ".voicerag")
}

// Load builds configuration from defaults and VOICERAG_* environment
// variables. The OpenAI API key is the only required value; it is read from
// VOICERAG_OPENAI_API_KEY with OPENAI_API_KEY as a fallback.
func Load() (Config, error) {
	return loadWith(os.Getenv)
}

func loadWith(getenv func(string) string) (Config, error) {
	cfg := defaults()

	applyEnvOverrides(&cfg, getenv)

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenAI API key. " +
			"Set it via environment variable VOICERAG_OPENAI_API_KEY or OPENAI_API_KEY")
	}
	if cfg.Chunking.ChunkOverlap >= cfg.Chunking.ChunkSize {
		return Config{}, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)",
			cfg.Chunking.ChunkOverlap, cfg.Chunking.ChunkSize)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	setString(&cfg.Server.Host, getenv("VOICERAG_HOST"))
	setInt(&cfg.Server.Port, getenv("VOICERAG_PORT"))
	setString(&cfg.Server.Token, getenv("VOICERAG_API_TOKEN"))

	setString(&cfg.OpenAI.APIKey, getenv("VOICERAG_OPENAI_API_KEY"))
	if cfg.OpenAI.APIKey == "" {
		setString(&cfg.OpenAI.APIKey, getenv("OPENAI_API_KEY"))
	}
	setString(&cfg.OpenAI.BaseURL, getenv("VOICERAG_OPENAI_BASE_URL"))
	setString(&cfg.OpenAI.EmbedModel, getenv("VOICERAG_EMBEDDING_MODEL"))
	setString(&cfg.OpenAI.ChatModel, getenv("VOICERAG_LLM_MODEL"))
	setString(&cfg.OpenAI.TranscribeModel, getenv("VOICERAG_TRANSCRIBE_MODEL"))

	setInt(&cfg.Chunking.ChunkSize, getenv("VOICERAG_CHUNK_SIZE"))
	setInt(&cfg.Chunking.ChunkOverlap, getenv("VOICERAG_CHUNK_OVERLAP"))

	setInt(&cfg.Retrieval.TopK, getenv("VOICERAG_TOP_K"))
	setFloat(&cfg.Retrieval.SimilarityThreshold, getenv("VOICERAG_SIMILARITY_THRESHOLD"))

	setString(&cfg.Storage.DataDir, getenv("VOICERAG_DATA_DIR"))
	setString(&cfg.Log.Level, getenv("VOICERAG_LOG_LEVEL"))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v string) {
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setFloat(dst *float64, v string) {
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}
