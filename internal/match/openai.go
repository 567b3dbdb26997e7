package match

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
)

// OpenAISimilarity computes semantic similarity via the OpenAI /v1/embeddings
// endpoint: embed both documents in one request, return their cosine. The
// model behind it is a black box; callers bound calls with a context
// deadline and treat errors as "defer this pair".
type OpenAISimilarity struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAISimilarity creates a provider targeting the OpenAI API.
func NewOpenAISimilarity(baseURL, apiKey, embeddingModel string, httpClient *http.Client) *OpenAISimilarity {
	return &OpenAISimilarity{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      embeddingModel,
		httpClient: httpClient,
	}
}

// embeddingsRequest mirrors the OpenAI /v1/embeddings request body.
type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingsResponse mirrors the relevant fields of the OpenAI response.
type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Similarity embeds both documents and returns their cosine similarity
// mapped into [0,1].
func (p *OpenAISimilarity) Similarity(ctx context.Context, a, b string) (float64, error) {
	body, err := json.Marshal(embeddingsRequest{
		Model: p.model,
		Input: []string{a, b},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal embeddings request: %w", err)
	}

	url := p.baseURL + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("embeddings request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read embeddings response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("embeddings returned HTTP %d: %s", resp.StatusCode, string(respBytes))
	}

	var embResp embeddingsResponse
	if err := json.Unmarshal(respBytes, &embResp); err != nil {
		return 0, fmt.Errorf("parse embeddings response: %w", err)
	}

	if embResp.Error != nil {
		return 0, fmt.Errorf("embeddings error (%s): %s", embResp.Error.Type, embResp.Error.Message)
	}

	if len(embResp.Data) != 2 {
		return 0, fmt.Errorf("embeddings returned %d vectors, want 2", len(embResp.Data))
	}

	cos, err := cosine(embResp.Data[0].Embedding, embResp.Data[1].Embedding)
	if err != nil {
		return 0, err
	}

	// Embedding cosines live in [-1,1]; clamp the negative tail to 0 so
	// the scorer's contract of [0,1] holds.
	if cos < 0 {
		cos = 0
	}
	return math.Min(cos, 1), nil
}

func cosine(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimensions mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("zero-length embedding vector")
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
