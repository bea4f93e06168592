// Tests for the chunk-index loader using a real in-memory SQLite DB.
package sqlite

import (
	"context"
	"database/sql"
	"math"
	"testing"

	"github.com/bytedent/assistant/internal/domain/retrieval"
)

// newTestIndex opens an in-memory DB with the chunk schema applied.
func newTestIndex(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck
	if schemaErr := CreateIndexSchema(context.Background(), db); schemaErr != nil {
		t.Fatalf("CreateIndexSchema failed: %v", schemaErr)
	}
	return db
}

func TestLoadChunks_RoundTrip(t *testing.T) {
	db := newTestIndex(t)
	ctx := context.Background()

	in := retrieval.Chunk{
		ID:        "c1",
		Text:      "CBCT is a cone beam computed tomography scan.",
		Embedding: []float32{3, 4, 0},
		SourceTag: "dental_kb",
	}
	if err := InsertChunk(ctx, db, in); err != nil {
		t.Fatalf("InsertChunk failed: %v", err)
	}

	chunks, err := LoadChunks(ctx, db)
	if err != nil {
		t.Fatalf("LoadChunks failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	got := chunks[0]
	if got.ID != "c1" || got.Text != in.Text || got.SourceTag != "dental_kb" {
		t.Errorf("unexpected chunk fields: %+v", got)
	}

	// Embeddings are unit-normalized on load: (3,4,0) → (0.6,0.8,0).
	var norm float64
	for _, v := range got.Embedding {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1.0) > 1e-6 {
		t.Errorf("expected unit-length embedding after load, norm %f", norm)
	}
}

func TestLoadChunks_PreservesInsertionOrder(t *testing.T) {
	db := newTestIndex(t)
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		c := retrieval.Chunk{ID: id, Text: "t", Embedding: []float32{1, 0}, SourceTag: "kb"}
		if err := InsertChunk(ctx, db, c); err != nil {
			t.Fatalf("InsertChunk %q failed: %v", id, err)
		}
	}

	chunks, err := LoadChunks(ctx, db)
	if err != nil {
		t.Fatalf("LoadChunks failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].ID != "first" || chunks[1].ID != "second" || chunks[2].ID != "third" {
		t.Errorf("order not preserved: %s, %s, %s", chunks[0].ID, chunks[1].ID, chunks[2].ID)
	}
}

func TestLoadChunks_SkipsMalformedEmbedding(t *testing.T) {
	db := newTestIndex(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx,
		`INSERT INTO chunk (id, text, embedding, source_tag) VALUES ('bad', 't', 'not-json', 'kb')`); err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}
	if err := InsertChunk(ctx, db, retrieval.Chunk{ID: "good", Text: "t", Embedding: []float32{1}, SourceTag: "kb"}); err != nil {
		t.Fatalf("InsertChunk failed: %v", err)
	}

	chunks, err := LoadChunks(ctx, db)
	if err != nil {
		t.Fatalf("LoadChunks failed: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ID != "good" {
		t.Errorf("expected only the well-formed chunk, got %d", len(chunks))
	}
}

func TestLoadChunks_EmptyTable(t *testing.T) {
	db := newTestIndex(t)

	chunks, err := LoadChunks(context.Background(), db)
	if err != nil {
		t.Fatalf("LoadChunks failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected empty slice, got %d chunks", len(chunks))
	}
}

func TestNewDB_MissingParentDir(t *testing.T) {
	_, err := NewDB("/nonexistent-dir-for-test/knowledge.db")
	if err == nil {
		t.Error("expected error for missing parent directory, got nil")
	}
}
