package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every process-wide setting. It is built once in main and
// handed to the components that need it.
type Config struct {
	Server    ServerConfig
	Gemini    GeminiConfig
	Embedding EmbeddingConfig
	Database  DatabaseConfig
	Model     ModelConfig
	Corpus    CorpusConfig
	Chroma    ChromaConfig
	Speech    SpeechConfig

	LogMode          string
	TempDir          string
	UnidocLicenseKey string
}

type ServerConfig struct {
	Port string
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	// UseReal turns the remote LLM stage on. When false the dispatcher
	// goes straight from the local model to the heuristic classifier.
	UseReal bool
}

type EmbeddingConfig struct {
	Backend     string // gemini, ollama or none
	Dim         int
	OllamaURL   string
	OllamaModel string
}

type DatabaseConfig struct {
	URL        string
	ChunkLimit int
}

type ModelConfig struct {
	// Path of an optional local rule model. Empty disables the stage; when
	// set, the local model answers every task it supports before Gemini.
	Path             string
	CategoryPriority []string
}

type CorpusConfig struct {
	DocumentsDir string
}

type ChromaConfig struct {
	URL        string
	Collection string
}

type SpeechConfig struct {
	Enabled bool
}

const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
	DefaultEmbeddingDim   = 768
	DefaultDatabaseURL    = "sqlite://law_ai_demo.db"
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultOllamaModel    = "nomic-embed-text:v1.5"
	DefaultChunkLimit     = 8
)

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	apiKey := firstEnv("GEMINI_API_KEY", "AI_API_KEY")

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8000"),
		},
		Gemini: GeminiConfig{
			APIKey:         apiKey,
			Model:          sanitizeModelName(getEnv("GEMINI_MODEL_NAME", DefaultGeminiModel)),
			EmbeddingModel: sanitizeModelName(getEnv("GEMINI_EMBEDDING_MODEL", DefaultEmbeddingModel)),
			UseReal:        getEnvBool("AI_LEGAL_USE_REAL", true),
		},
		Embedding: EmbeddingConfig{
			Backend:     strings.ToLower(getEnv("EMBEDDING_BACKEND", "gemini")),
			Dim:         getEnvInt("EMBEDDING_DIM", getEnvInt("PGVECTOR_DIM", DefaultEmbeddingDim)),
			OllamaURL:   strings.TrimRight(getEnv("OLLAMA_URL", DefaultOllamaURL), "/"),
			OllamaModel: getEnv("OLLAMA_EMBED_MODEL", DefaultOllamaModel),
		},
		Database: DatabaseConfig{
			URL:        getEnv("DATABASE_URL", DefaultDatabaseURL),
			ChunkLimit: getEnvInt("CHUNK_LIMIT", DefaultChunkLimit),
		},
		Model: ModelConfig{
			Path:             strings.TrimSpace(os.Getenv("MODEL_PATH")),
			CategoryPriority: splitList(os.Getenv("CATEGORY_PRIORITY")),
		},
		Corpus: CorpusConfig{
			DocumentsDir: strings.TrimSpace(os.Getenv("DOCUMENTS_DIR")),
		},
		Chroma: ChromaConfig{
			URL:        strings.TrimSpace(os.Getenv("CHROMA_URL")),
			Collection: getEnv("CHROMA_COLLECTION", "legal-documents"),
		},
		Speech: SpeechConfig{
			Enabled: getEnvBool("SPEECH_ENABLED", false),
		},
		LogMode:          getEnv("LOG_MODE", "dev"),
		TempDir:          strings.TrimSpace(os.Getenv("TMP_DIR")),
		UnidocLicenseKey: strings.TrimSpace(os.Getenv("UNIDOC_LICENSE_KEY")),
	}

	if cfg.Embedding.Dim <= 0 {
		cfg.Embedding.Dim = DefaultEmbeddingDim
	}
	if cfg.Database.ChunkLimit <= 0 {
		cfg.Database.ChunkLimit = DefaultChunkLimit
	}
	return cfg
}

// LLMEnabled reports whether the remote model stage may be attempted.
func (c *Config) LLMEnabled() bool {
	return c.Gemini.UseReal && c.Gemini.APIKey != ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := cleanKey(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// cleanKey strips whitespace and a single pair of surrounding quotes, which
// shows up when keys are pasted into .env files by hand.
func cleanKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// sanitizeModelName drops the "models/" resource prefix.
func sanitizeModelName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "models/")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
