package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Embeddings performs a blocking Embeddings API call.
func (c *Client) Embeddings(ctx context.Context, req EmbeddingsRequest) (*EmbeddingsResponse, error) {
	if len(req.Input) == 0 {
		return nil, errors.New("embeddings request requires input")
	}
	if req.Model == "" {
		req.Model = c.model
	}
	if info, ok := Lookup(req.Model); ok && !info.Supports(APITypeEmbeddings) {
		return nil, fmt.Errorf("model %s does not support embeddings", req.Model)
	}

	data, err := c.exec.Execute(ctx, c.baseURL+embeddingsPath, c.headers, req, c.timeout, c.maxRetries, c.baseDelay)
	if err != nil {
		return nil, err
	}

	var resp EmbeddingsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if len(resp.Data) != len(req.Input) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(resp.Data), len(req.Input))
	}
	return &resp, nil
}
