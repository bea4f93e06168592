// Knowledge index builder: chunks a source document, embeds the
// chunks and writes them to the SQLite index served by the assistant.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bytedent/assistant/internal/domain/knowledge"
	"github.com/bytedent/assistant/internal/infra/config"
	"github.com/bytedent/assistant/internal/infra/llm"
	"github.com/bytedent/assistant/internal/infra/sqlite"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("indexer", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	input := fs.String("input", "", "Path to the source document (required)")
	dbPath := fs.String("db", "", "Path to the SQLite index (default: INDEX_PATH)")
	source := fs.String("source", "", "Source tag stored with each chunk (default: input file name)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *input == "" {
		fmt.Fprintln(out, "error: -input is required") //nolint:errcheck
		return 2
	}

	if err := ingest(*input, *dbPath, *source, out); err != nil {
		fmt.Fprintln(out, "error:", err) //nolint:errcheck
		return 1
	}
	return 0
}

func ingest(input, dbPath, source string, out io.Writer) error {
	cfg := config.Load()
	if dbPath == "" {
		dbPath = cfg.IndexPath
	}
	if source == "" {
		source = input
	}

	text, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	db, err := sqlite.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer db.Close() //nolint:errcheck

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	provider := llm.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaEmbedModel, cfg.OllamaChatModel)
	svc := knowledge.NewIngestService(db, provider, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	n, err := svc.Ingest(ctx, string(text), source)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "indexed %d chunks from %s into %s\n", n, input, dbPath) //nolint:errcheck
	return nil
}
