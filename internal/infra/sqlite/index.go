// Package sqlite — chunk-index loader.
// The ingestion pipeline writes one row per chunk into the `chunk` table with
// the embedding serialised as a JSON array (e.g. "[0.1,0.2,...]"). LoadChunks
// reads the whole table once at startup; after that the index lives in memory
// and the database is never touched again.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bytedent/assistant/internal/domain/retrieval"
)

// indexSchema is the chunk table layout the ingestion pipeline produces.
const indexSchema = `
CREATE TABLE IF NOT EXISTS chunk (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	embedding  TEXT NOT NULL,
	source_tag TEXT NOT NULL DEFAULT 'knowledge_base'
);`

// CreateIndexSchema creates the chunk table. Used by tests and by offline
// index-import tooling; the serving path never writes.
func CreateIndexSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, indexSchema); err != nil {
		return fmt.Errorf("sqlite: create index schema: %w", err)
	}
	return nil
}

// InsertChunk writes a single chunk row. Test/tooling helper.
func InsertChunk(ctx context.Context, db *sql.DB, c retrieval.Chunk) error {
	vec, err := json.Marshal(c.Embedding)
	if err != nil {
		return fmt.Errorf("sqlite: encode embedding for %q: %w", c.ID, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO chunk (id, text, embedding, source_tag) VALUES (?, ?, ?, ?)`,
		c.ID, c.Text, string(vec), c.SourceTag,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert chunk %q: %w", c.ID, err)
	}
	return nil
}

// LoadChunks reads the entire chunk table in insertion order.
// Rows with malformed embeddings are skipped rather than failing the load —
// a single bad row must not take down startup.
func LoadChunks(ctx context.Context, db *sql.DB) ([]retrieval.Chunk, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, text, embedding, source_tag FROM chunk ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load chunks: %w", err)
	}
	defer rows.Close()

	var chunks []retrieval.Chunk
	for rows.Next() {
		var (
			c       retrieval.Chunk
			vecJSON string
		)
		if scanErr := rows.Scan(&c.ID, &c.Text, &vecJSON, &c.SourceTag); scanErr != nil {
			return nil, fmt.Errorf("sqlite: scan chunk: %w", scanErr)
		}
		vec, decodeErr := decodeEmbedding(vecJSON)
		if decodeErr != nil {
			continue // skip malformed vectors
		}
		c.Embedding = retrieval.UnitNormalize(vec)
		chunks = append(chunks, c)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("sqlite: iterate chunks: %w", rowsErr)
	}
	return chunks, nil
}

// decodeEmbedding deserialises a JSON TEXT vector back to []float32.
// e.g. "[0.1,0.2,0.3]" → []float32{0.1, 0.2, 0.3}
func decodeEmbedding(jsonStr string) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal([]byte(jsonStr), &vec); err != nil {
		return nil, fmt.Errorf("decodeEmbedding: %w", err)
	}
	return vec, nil
}
