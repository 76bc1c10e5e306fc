package ai

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GenAIProvider implements Provider on top of the official Google GenAI SDK.
type GenAIProvider struct {
	client *genai.Client
	model  string
}

// GenAIOption configures the SDK client before it is created.
type GenAIOption func(*genai.ClientConfig)

// WithGenAIBaseURL points the SDK at a different endpoint (for testing).
func WithGenAIBaseURL(url string) GenAIOption {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = url
	}
}

// WithGenAIHTTPClient sets the HTTP client used by the SDK.
func WithGenAIHTTPClient(client *http.Client) GenAIOption {
	return func(c *genai.ClientConfig) {
		c.HTTPClient = client
	}
}

// NewGenAIProvider creates a Gemini provider backed by google.golang.org/genai.
func NewGenAIProvider(ctx context.Context, apiKey, model string, opts ...GenAIOption) (*GenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai: API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIProvider{client: client, model: model}, nil
}

func toGenAIParts(m Message) []*genai.Part {
	parts := make([]*genai.Part, 0, len(m.Images)+1)
	for _, img := range m.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	if m.Content != "" {
		parts = append(parts, genai.NewPartFromText(m.Content))
	}
	return parts
}

func (p *GenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	config := &genai.GenerateContentConfig{}
	var contents []*genai.Content
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			config.SystemInstruction = genai.NewContentFromParts(toGenAIParts(m), genai.RoleUser)
		case "assistant":
			contents = append(contents, genai.NewContentFromParts(toGenAIParts(m), genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromParts(toGenAIParts(m), genai.RoleUser))
		}
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("genai generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return CompletionResponse{}, ErrNoContent
	}

	out := CompletionResponse{Content: text, Model: model}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

func (p *GenAIProvider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.model, nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
