package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/madhukiran/stylist-agent/internal/domain"
)

// GenerationParams carries the sampling knobs passed through to the model.
type GenerationParams struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

// GeminiClient implements domain.Generator on the Gemini API. The whole
// transcript is submitted as content turns; the persona lives in the first
// user turn rather than a system instruction, so the prompt matches what is
// persisted.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	params    GenerationParams
	stream    bool
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string, params GenerationParams, stream bool) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
		params:    params,
		stream:    stream,
	}, nil
}

// Generate implements domain.Generator. Any failure of the external call,
// an empty reply included, surfaces as a GenerationError so the caller
// aborts without committing the exchange.
func (g *GeminiClient) Generate(ctx context.Context, turns []domain.Turn) (domain.Turn, error) {
	contents := toContents(turns)
	cfg := g.generationConfig()

	var (
		text string
		err  error
	)
	if g.stream {
		text, err = g.generateStreamed(ctx, contents, cfg)
	} else {
		text, err = g.generateOnce(ctx, contents, cfg)
	}
	if err != nil {
		return domain.Turn{}, &domain.GenerationError{Err: err}
	}
	if text == "" {
		return domain.Turn{}, &domain.GenerationError{Err: fmt.Errorf("model returned empty text")}
	}

	return domain.TextTurn(domain.RoleModel, text), nil
}

func (g *GeminiClient) generateOnce(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return res.Text(), nil
}

// generateStreamed accumulates the chunk sequence, in order, into one final
// reply before returning; chunks are never exposed to the caller.
func (g *GeminiClient) generateStreamed(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	var sb strings.Builder
	for chunk, err := range g.client.Models.GenerateContentStream(ctx, g.modelName, contents, cfg) {
		if err != nil {
			return "", fmt.Errorf("gemini generate content stream: %w", err)
		}
		sb.WriteString(chunk.Text())
	}
	return sb.String(), nil
}

func (g *GeminiClient) generationConfig() *genai.GenerateContentConfig {
	temp := float32(g.params.Temperature)
	topP := float32(g.params.TopP)
	topK := float32(g.params.TopK)

	return &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		TopK:            &topK,
		MaxOutputTokens: int32(g.params.MaxOutputTokens),
	}
}

func toContents(turns []domain.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		var role genai.Role = genai.RoleUser
		if t.Role == domain.RoleModel {
			role = genai.RoleModel
		}

		parts := make([]*genai.Part, 0, len(t.Parts))
		for _, p := range t.Parts {
			if p.IsMedia() {
				parts = append(parts, genai.NewPartFromBytes(p.Data, p.MIMEType))
			} else {
				parts = append(parts, genai.NewPartFromText(p.Text))
			}
		}

		contents = append(contents, genai.NewContentFromParts(parts, role))
	}
	return contents
}
