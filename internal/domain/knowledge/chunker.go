// Package knowledge builds the chunk index the retriever serves.
// Source documents are split into overlapping word windows, embedded
// and written to the sqlite index consumed at startup.
package knowledge

import "strings"

// Default chunking geometry, tuned for short knowledge-base articles.
const (
	DefaultChunkSize = 300
	DefaultOverlap   = 60
)

// Chunk splits text into overlapping word windows of at most chunkSize
// words. Consecutive windows share overlap words at their boundary, so
// a sentence cut by one window survives intact at the start of the
// next.
//
// Non-positive chunkSize falls back to DefaultChunkSize, and overlap is
// clamped into [0, chunkSize). Empty or whitespace-only input yields
// nil; input that fits one window comes back as a single chunk. Words
// are whitespace-separated (strings.Fields) and each chunk is its
// words rejoined with single spaces.
func Chunk(text string, chunkSize, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	if len(words) <= chunkSize {
		return []string{strings.Join(words, " ")}
	}

	stride := chunkSize - overlap
	chunks := make([]string, 0, (len(words)+stride-1)/stride)
	for start := 0; ; start += stride {
		end := start + chunkSize
		if end >= len(words) {
			// Last window absorbs the remaining tail.
			return append(chunks, strings.Join(words[start:], " "))
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
}
