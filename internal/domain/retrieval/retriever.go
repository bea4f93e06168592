// Package retrieval — brute-force vector retriever.
// Similarity is the inner product of unit-normalized vectors, computed against
// every chunk in the index. The index is small enough (hundreds of chunks)
// that a full scan beats any index structure.
package retrieval

import (
	"math"
	"sort"
	"time"
)

// Retriever scans the immutable chunk index for the nearest chunks.
type Retriever struct {
	chunks        []Chunk
	topK          int
	minSimilarity float64
}

// NewRetriever creates a Retriever over chunks. Embeddings are unit-normalized
// on load so inner product equals cosine similarity regardless of what the
// index file contains.
func NewRetriever(chunks []Chunk, topK int, minSimilarity float64) *Retriever {
	owned := make([]Chunk, len(chunks))
	copy(owned, chunks)
	for i := range owned {
		owned[i].Embedding = UnitNormalize(owned[i].Embedding)
	}
	return &Retriever{chunks: owned, topK: topK, minSimilarity: minSimilarity}
}

// Len returns the number of chunks in the index.
func (r *Retriever) Len() int {
	return len(r.chunks)
}

// Retrieve scores every chunk against queryVec, filters out scores below the
// minimum similarity, and returns the top-k of the remainder in descending
// score order. Ties keep the original index order (stable sort).
// An empty index or empty query vector yields an empty Result with
// TopScore = NoMatchScore.
func (r *Retriever) Retrieve(queryVec []float32) Result {
	start := time.Now()
	if len(r.chunks) == 0 || len(queryVec) == 0 {
		return Result{TopScore: NoMatchScore, Elapsed: time.Since(start)}
	}

	q := UnitNormalize(queryVec)

	scored := make([]Scored, 0, len(r.chunks))
	for _, c := range r.chunks {
		s := innerProduct(q, c.Embedding)
		if s < r.minSimilarity {
			continue
		}
		scored = append(scored, Scored{Chunk: c, Score: s})
	}

	// Stable: equal scores keep index order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > r.topK {
		scored = scored[:r.topK]
	}

	if len(scored) == 0 {
		return Result{TopScore: NoMatchScore, Elapsed: time.Since(start)}
	}
	return Result{Chunks: scored, TopScore: scored[0].Score, Elapsed: time.Since(start)}
}

// innerProduct computes the dot product of two equal-length vectors.
// Mismatched lengths score 0 (the chunk is effectively filtered out).
func innerProduct(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// UnitNormalize returns vec scaled to unit length.
// The zero vector is returned unchanged.
func UnitNormalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	inv := 1 / math.Sqrt(norm)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) * inv)
	}
	return out
}
