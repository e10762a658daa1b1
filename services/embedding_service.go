package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math/rand/v2"
	"net/http"

	"github.com/itish2003/lawgic/logger"
	"google.golang.org/genai"
)

// Embedder is a live embedding backend. One call, no retries.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// EmbeddingService returns a vector for any text. When the live backend is
// missing or fails it returns a deterministic fallback vector, so callers
// always get exactly Dim() values.
type EmbeddingService struct {
	log     *logger.Logger
	backend Embedder
	dim     int
}

// NewEmbeddingService wraps backend, which may be nil.
func NewEmbeddingService(log *logger.Logger, backend Embedder, dim int) *EmbeddingService {
	if dim <= 0 {
		dim = 768
	}
	return &EmbeddingService{log: log.With("service", "EmbeddingService"), backend: backend, dim: dim}
}

func (s *EmbeddingService) Dim() int { return s.dim }

// Backend names the live backend, or "fallback" when none is configured.
func (s *EmbeddingService) Backend() string {
	if s.backend == nil {
		return "fallback"
	}
	return s.backend.Name()
}

// Embed returns the live embedding of text, or the fallback vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) []float32 {
	if s.backend == nil {
		return FallbackEmbedding(text, s.dim)
	}
	vec, err := s.backend.EmbedText(ctx, text)
	switch {
	case err != nil:
		s.log.Warn("live embedding failed, using fallback", "backend", s.backend.Name(), "error", err)
	case len(vec) != s.dim:
		s.log.Warn("live embedding has unexpected length, using fallback", "backend", s.backend.Name(), "got", len(vec), "want", s.dim)
	default:
		return vec
	}
	return FallbackEmbedding(text, s.dim)
}

// FallbackEmbedding derives dim pseudo-random values in [0,1) from the FNV-1a
// hash of text. Equal text gives a bit-identical vector.
func FallbackEmbedding(text string, dim int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float32, dim)
	for i := range out {
		out[i] = rng.Float32()
	}
	return out
}

// GeminiEmbedder embeds text with the Gemini embeddings API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model}
}

func (g *GeminiEmbedder) Name() string { return "gemini" }

func (g *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("gemini returned no embeddings")
	}
	return resp.Embeddings[0].Values, nil
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// OllamaEmbedder calls a local Ollama server's /api/embeddings endpoint.
type OllamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewOllamaEmbedder(client *http.Client, baseURL, model string) *OllamaEmbedder {
	if client == nil {
		client = http.DefaultClient
	}
	return &OllamaEmbedder{httpClient: client, baseURL: baseURL, model: model}
}

func (o *OllamaEmbedder) Name() string { return "ollama" }

func (o *OllamaEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(ollamaEmbedRequest{
		Model:  o.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama embedding api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}
	if len(ollamaResp.Embedding) == 0 {
		return nil, errors.New("ollama returned an empty embedding")
	}
	return ollamaResp.Embedding, nil
}
