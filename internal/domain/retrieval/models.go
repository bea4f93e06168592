// Package retrieval holds the immutable chunk index and the vector retriever.
// Chunks are loaded once at startup and never mutated, so the retriever is
// safe for unlimited concurrent readers.
package retrieval

import "time"

// EmbeddingDim is the expected width of every chunk/query embedding.
const EmbeddingDim = 384

// NoMatchScore is the TopScore sentinel for an empty retrieval result.
const NoMatchScore = -1.0

// Chunk is one immutable segment of knowledge-base text with its
// precomputed embedding and the tag of the source document it came from.
type Chunk struct {
	ID        string
	Text      string
	Embedding []float32 // unit-normalized
	SourceTag string
}

// Scored pairs a chunk with its similarity to the query.
type Scored struct {
	Chunk Chunk
	Score float64 // inner product on unit vectors, in [-1, 1]
}

// Result is an ordered retrieval outcome, descending by score.
type Result struct {
	Chunks   []Scored
	TopScore float64 // NoMatchScore when Chunks is empty
	Elapsed  time.Duration
}

// Empty reports whether no chunk passed the similarity filter.
func (r Result) Empty() bool {
	return len(r.Chunks) == 0
}
