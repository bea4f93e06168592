package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bytedent/assistant/internal/domain/retrieval"
	"github.com/bytedent/assistant/internal/infra/llm"
	"github.com/bytedent/assistant/internal/infra/sqlite"
)

// embedBatchSize bounds how many chunks go to the embedding backend
// per call.
const embedBatchSize = 16

// IngestService chunks source text, embeds it and writes the chunk
// index.
type IngestService struct {
	db        *sql.DB
	provider  llm.LLMProvider
	chunkSize int
	overlap   int
	log       *slog.Logger
}

// NewIngestService uses the default chunking geometry.
func NewIngestService(db *sql.DB, provider llm.LLMProvider, log *slog.Logger) *IngestService {
	if log == nil {
		log = slog.Default()
	}
	return &IngestService{
		db:        db,
		provider:  provider,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
		log:       log,
	}
}

// Ingest splits text into chunks, embeds them and appends them to the
// index under sourceTag. It returns the number of chunks written.
func (s *IngestService) Ingest(ctx context.Context, text, sourceTag string) (int, error) {
	if err := sqlite.CreateIndexSchema(ctx, s.db); err != nil {
		return 0, fmt.Errorf("ensure index schema: %w", err)
	}

	parts := Chunk(text, s.chunkSize, s.overlap)
	if len(parts) == 0 {
		return 0, nil
	}

	written := 0
	for start := 0; start < len(parts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(parts) {
			end = len(parts)
		}
		batch := parts[start:end]

		resp, err := s.provider.Embed(ctx, llm.EmbedRequest{Texts: batch})
		if err != nil {
			return written, fmt.Errorf("embed batch: %w", err)
		}
		if len(resp.Embeddings) != len(batch) {
			return written, fmt.Errorf("embed batch: expected %d embeddings, got %d", len(batch), len(resp.Embeddings))
		}

		for i, txt := range batch {
			chunk := retrieval.Chunk{
				ID:        uuid.NewString(),
				Text:      txt,
				Embedding: retrieval.UnitNormalize(resp.Embeddings[i]),
				SourceTag: sourceTag,
			}
			if err := sqlite.InsertChunk(ctx, s.db, chunk); err != nil {
				return written, fmt.Errorf("insert chunk: %w", err)
			}
			written++
		}
		s.log.Info("indexed batch", "source", sourceTag, "chunks", written, "total", len(parts))
	}
	return written, nil
}
