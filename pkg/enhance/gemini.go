package enhance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultEncodePrompt = `You are an expert steganography assistant. Slightly enhance the provided image so it can conceal the hidden message while keeping the visual content unchanged and natural. Avoid adding any text overlays or obvious artifacts. Preserve aspect ratio and important details. Hidden message: "{{message}}".`

	defaultDecodePrompt = `You are a steganography decoder. Inspect the attached image and reveal any hidden message or secret text that has been encoded in the pixels. If you cannot find a hidden message, respond exactly with the word ` + NoMessageSentinel + `.`

	maxPromptChars = 2000
)

// GeminiConfig holds connection settings for the Gemini API. Endpoint
// overrides the SDK's base URL; empty means the public API.
type GeminiConfig struct {
	APIKey   string
	Model    string
	Endpoint string
	Client   *http.Client
}

// Gemini wraps a genai client bound to one model.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini validates cfg and returns a client.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key not configured")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.Client,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.Endpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model}, nil
}

// Enhance sends the image with an editing prompt and returns the first inline
// image of the first candidate.
func (g *Gemini) Enhance(ctx context.Context, image []byte, message, prompt string) ([]byte, error) {
	if prompt == "" {
		prompt = strings.ReplaceAll(defaultEncodePrompt, "{{message}}", message)
	}

	resp, err := g.generate(ctx, image, "image/png", truncate(prompt, maxPromptChars), "TEXT", "IMAGE")
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini response missing candidates")
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			return p.InlineData.Data, nil
		}
	}
	return nil, errors.New("gemini response missing inline image data")
}

// Reveal asks the model to read a hidden message. The sentinel answer, or no
// answer at all, maps to ErrNoMessage.
func (g *Gemini) Reveal(ctx context.Context, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}

	resp, err := g.generate(ctx, image, mimeType, defaultDecodePrompt, "TEXT")
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" || strings.Contains(strings.ToUpper(answer), NoMessageSentinel) {
		return "", ErrNoMessage
	}
	return answer, nil
}

func (g *Gemini) generate(ctx context.Context, image []byte, mimeType, prompt string, modalities ...string) (*genai.GenerateContentResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: modalities,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	return resp, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
