// Package llm wraps the Gemini client behind a small JSON-generation
// interface so the strategies built on it stay testable without network
// access.
package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Generator produces a JSON document for a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) ([]byte, error)
}

// Gemini is the production Generator backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini generator for the given model. The API key
// comes from configuration, resolved from the environment by the caller.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// GenerateJSON asks the model for a JSON-only response and returns the raw
// document bytes.
func (g *Gemini) GenerateJSON(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("model %s returned an empty response", g.model)
	}
	return []byte(text), nil
}
