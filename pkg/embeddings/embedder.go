// Package embeddings computes text embeddings through the OpenAI
// Embeddings API, batching large inputs transparently.
package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/poemAI-ch/poemai-go/pkg/model/openai"
)

// maxBatchSize bounds how many inputs go into one API call.
const maxBatchSize = 100

// Embedder computes embedding vectors for text with a fixed model.
type Embedder struct {
	client *openai.Client
	model  string
	dims   int
}

// New builds an Embedder. The model must be embedding-capable when it is
// present in the catalog; unknown model names are accepted so
// OpenAI-compatible gateways keep working.
func New(client *openai.Client, model string) (*Embedder, error) {
	if client == nil {
		return nil, errors.New("embeddings: client is required")
	}
	if model == "" {
		return nil, errors.New("embeddings: model is required")
	}

	dims := 0
	if info, ok := openai.Lookup(model); ok {
		if !info.Supports(openai.APITypeEmbeddings) {
			return nil, fmt.Errorf("embeddings: model %s does not support embeddings", model)
		}
		dims = info.EmbeddingDimensions
	}
	return &Embedder{client: client, model: model, dims: dims}, nil
}

// Dimensions returns the vector width of the model, 0 when unknown.
func (e *Embedder) Dimensions() int { return e.dims }

// Embed computes the embedding vector of a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch computes embedding vectors for texts, splitting the input into
// API-sized batches. The returned slice is index-aligned with texts.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("embeddings: no input texts")
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := e.client.Embeddings(ctx, openai.EmbeddingsRequest{
			Model: e.model,
			Input: texts[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("embeddings: batch starting at %d: %w", start, err)
		}
		for _, item := range resp.Data {
			vectors = append(vectors, item.Embedding)
		}
	}
	return vectors, nil
}
