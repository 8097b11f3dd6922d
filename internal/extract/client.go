package extract

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

// DefaultModelName is used when no model is configured.
const DefaultModelName = "gemini-2.5-flash"

// Generator abstracts the model call so pipeline stages can be driven by
// a test double.
type Generator interface {
	Generate(ctx context.Context, prompt string, pages ...domain.Page) (string, error)
}

// GeminiGenerator sends prompts plus inline document bytes to the Gemini
// API. Credentials come from the environment (GEMINI_API_KEY).
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator for the given model name.
func NewGeminiGenerator(ctx context.Context, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, pages ...domain.Page) (string, error) {
	parts := []*genai.Part{{Text: prompt}}
	for _, p := range pages {
		mime := p.MIMEType
		if mime == "" {
			mime = "application/pdf"
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mime, Data: p.Data},
		})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
