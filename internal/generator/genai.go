package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// GenAI generates images through the official Gemini SDK.
type GenAI struct {
	client *genai.Client
	model  string
}

// NewGenAI creates an SDK-backed generator for the Gemini API backend.
func NewGenAI(ctx context.Context, apiKey, model string) (*GenAI, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return NewGenAIFromClient(client, model), nil
}

// NewGenAIFromClient wraps an existing SDK client.
func NewGenAIFromClient(client *genai.Client, model string) *GenAI {
	return &GenAI{client: client, model: orDefault(model)}
}

// Client returns the underlying SDK client.
func (g *GenAI) Client() *genai.Client {
	return g.client
}

// Generate requests TEXT and IMAGE modalities and returns the first inline image.
func (g *GenAI) Generate(ctx context.Context, req Request) (*Image, error) {
	start := time.Now()
	log.Info().
		Str("model", g.model).
		Int("prompt_length", len(req.Prompt)).
		Msg("Sending prompt to Gemini for image generation")

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: aspectOrSquare(req.AspectRatio)},
	})
	if err != nil {
		log.Error().Err(err).Str("model", g.model).Msg("Gemini image generation failed")
		return nil, fmt.Errorf("generate content: %w", err)
	}

	img := &Image{}
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part == nil {
					continue
				}
				if part.InlineData != nil && len(part.InlineData.Data) > 0 && img.Data == nil {
					img.Data = part.InlineData.Data
					img.MIMEType = part.InlineData.MIMEType
				}
				if part.Text != "" {
					img.Text += part.Text
				}
			}
		}
	}

	if len(img.Data) == 0 {
		log.Warn().Str("text", truncateString(img.Text, 200)).Msg("Gemini returned no image")
		return nil, fmt.Errorf("%w (text: %s)", ErrNoImage, truncateString(img.Text, 200))
	}
	if img.MIMEType == "" {
		img.MIMEType = "image/png"
	}

	log.Info().
		Int("output_bytes", len(img.Data)).
		Str("output_mime", img.MIMEType).
		Dur("duration", time.Since(start)).
		Msg("Gemini image generation complete")
	return img, nil
}
