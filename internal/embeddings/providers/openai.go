package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"jobsonar/internal/config"
)

// OpenAIProvider calls an OpenAI-compatible /v1/embeddings endpoint.
// Any server speaking that wire format works, including local inference
// servers exposing sentence-transformer models.
type OpenAIProvider struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewOpenAIProvider creates a provider backed by an HTTP embeddings API
func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	endpoint := strings.TrimRight(cfg.Embeddings.Endpoint, "/")
	if endpoint == "" {
		endpoint = "https://api.openai.com"
	}

	return &OpenAIProvider{
		endpoint: endpoint,
		apiKey:   cfg.Embeddings.APIKey,
		model:    cfg.Embeddings.Model,
		client: &http.Client{
			Timeout: cfg.Embeddings.Timeout,
		},
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed computes the embedding vector for a text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	payload, err := json.Marshal(embeddingsRequest{
		Model: p.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/v1/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read embeddings response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed embeddingsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("embeddings endpoint error: %s", parsed.Error.Message)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embeddings endpoint returned no vectors")
	}

	return parsed.Data[0].Embedding, nil
}

// IsHealthy checks if the provider is available
func (p *OpenAIProvider) IsHealthy(ctx context.Context) error {
	_, err := p.Embed(ctx, "ping")
	return err
}

// GetProviderName returns the name of the provider
func (p *OpenAIProvider) GetProviderName() string {
	return "openai"
}
