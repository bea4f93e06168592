package llm

import (
	"context"
	"fmt"
)

// QueryEmbedder adapts a provider's batch Embed call to the engine's
// single-query embedding seam.
type QueryEmbedder struct {
	Provider LLMProvider
}

// EmbedQuery embeds one text and returns its vector.
func (q QueryEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := q.Provider.Embed(ctx, EmbedRequest{Texts: []string{text}})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(resp.Embeddings))
	}
	return resp.Embeddings[0], nil
}
