package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// LocalProvider talks to a llama.cpp (or any OpenAI-compatible) embeddings
// endpoint. It is the self-hosted alternative to the OpenAI provider.
type LocalProvider struct {
	BaseURL    string
	APIKey     string
	Model      string
	vectorSize int
	client     *http.Client
}

// NewLocalProvider creates a provider against an OpenAI-compatible
// /v1/embeddings endpoint. vectorSize is the expected dimensionality; every
// returned vector is validated against it.
func NewLocalProvider(baseURL, apiKey, model string, vectorSize int) *LocalProvider {
	return &LocalProvider{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		vectorSize: vectorSize,
		client:     http.DefaultClient,
	}
}

// embeddingsRequest represents the request payload for the embeddings API.
type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingData represents a single embedding in the response.
type embeddingData struct {
	Embedding []float64 `json:"embedding"`
}

// embeddingsResponse represents the response from the embeddings API.
type embeddingsResponse struct {
	Data []embeddingData `json:"data"`
}

// EmbedDocuments generates embeddings for the given texts, one vector per
// input, in input order.
func (p *LocalProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}
	return p.embed(ctx, texts)
}

// EmbedQuery generates an embedding for a single search query.
// llama.cpp does not distinguish query-mode from document-mode embedding,
// so this shares the document path.
func (p *LocalProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Dimensions returns the configured vector size.
func (p *LocalProvider) Dimensions() int {
	return p.vectorSize
}

// Name identifies this provider in usage accounting.
func (p *LocalProvider) Name() string {
	return "local"
}

func (p *LocalProvider) embed(ctx context.Context, texts []string) ([][]float32, error) {
	url := fmt.Sprintf("%s/v1/embeddings", p.BaseURL)

	body, err := json.Marshal(embeddingsRequest{
		Model: p.Model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var embeddingsResp embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddingsResp.Data))
	}

	result := make([][]float32, len(embeddingsResp.Data))
	for i, data := range embeddingsResp.Data {
		if len(data.Embedding) != p.vectorSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), p.vectorSize)
		}
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}

	return result, nil
}
