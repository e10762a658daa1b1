package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Generator produces a JSON answer for a task from a remote model.
type Generator interface {
	Generate(ctx context.Context, task Task, lang, text string) (string, error)
	Model() string
}

const (
	geminiTemperature     = 0.1
	geminiMaxOutputTokens = 2048
)

// GeminiGenerator is a single-shot JSON generator backed by the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

func (g *GeminiGenerator) Model() string { return g.model }

func (g *GeminiGenerator) Generate(ctx context.Context, task Task, lang, text string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(text), &genai.GenerateContentConfig{
		SystemInstruction: GetSystemPrompt(task, lang),
		Temperature:       genai.Ptr[float32](geminiTemperature),
		MaxOutputTokens:   geminiMaxOutputTokens,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	return resp.Text(), nil
}
