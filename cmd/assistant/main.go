// ByteDent Assistant - RAG support chatbot
// Entry point: wires config, index, LLM provider and HTTP server.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedent/assistant/internal/api"
	"github.com/bytedent/assistant/internal/domain/chat"
	"github.com/bytedent/assistant/internal/domain/conversation"
	"github.com/bytedent/assistant/internal/domain/gate"
	"github.com/bytedent/assistant/internal/domain/generation"
	"github.com/bytedent/assistant/internal/domain/query"
	"github.com/bytedent/assistant/internal/domain/retrieval"
	"github.com/bytedent/assistant/internal/domain/smalltalk"
	"github.com/bytedent/assistant/internal/infra/cache"
	"github.com/bytedent/assistant/internal/infra/config"
	"github.com/bytedent/assistant/internal/infra/eventbus"
	"github.com/bytedent/assistant/internal/infra/llm"
	"github.com/bytedent/assistant/internal/infra/sqlite"
	"github.com/bytedent/assistant/internal/server"
	"github.com/bytedent/assistant/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("assistant", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	if err := serve(); err != nil {
		fmt.Fprintln(out, "error:", err) //nolint:errcheck
		return 1
	}
	return 0
}

func serve() error {
	cfg := config.Load()
	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting", "version", version.String())

	db, err := sqlite.NewDB(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	chunks, err := sqlite.LoadChunks(loadCtx, db)
	cancel()
	if err != nil {
		db.Close() //nolint:errcheck
		return fmt.Errorf("load index: %w", err)
	}
	log.Info("index loaded", "path", cfg.IndexPath, "chunks", len(chunks))

	provider, err := buildProvider(cfg)
	if err != nil {
		db.Close() //nolint:errcheck
		return err
	}

	engine, err := buildEngine(cfg, chunks, provider, log)
	if err != nil {
		db.Close() //nolint:errcheck
		return err
	}

	router := api.NewRouter(api.Deps{
		Engine:   engine,
		Provider: provider,
		Cfg:      cfg,
		Logger:   log,
	})

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Host
	srvCfg.Port = cfg.Port
	srv := server.NewServer(router, srvCfg, log)
	srv.OnClose(db.Close)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildProvider resolves the configured LLM backend through the
// provider router so additional backends only need a map entry.
func buildProvider(cfg config.Config) (llm.LLMProvider, error) {
	providers := map[string]llm.LLMProvider{
		"ollama": llm.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaEmbedModel, cfg.OllamaChatModel),
	}
	router := llm.NewRouter(providers, cfg.LLMProvider)
	return router.Route(context.Background())
}

func buildEngine(cfg config.Config, chunks []retrieval.Chunk, provider llm.LLMProvider, log *slog.Logger) (*chat.Engine, error) {
	normalizer, err := query.NewNormalizer()
	if err != nil {
		return nil, fmt.Errorf("build normalizer: %w", err)
	}
	g, err := gate.New(cfg.HandoffThreshold)
	if err != nil {
		return nil, fmt.Errorf("build gate: %w", err)
	}
	memory, err := conversation.NewMemory(cfg.MaxConversations, cfg.MaxTurns)
	if err != nil {
		return nil, fmt.Errorf("build memory: %w", err)
	}

	bus := eventbus.New()
	startAuditLogger(bus, log)

	return chat.NewEngine(chat.Options{
		Normalizer: normalizer,
		Retriever:  retrieval.NewRetriever(chunks, cfg.RetrievalTopK, cfg.MinSimilarity),
		Gate:       g,
		Embedder:   llm.QueryEmbedder{Provider: provider},
		Generator: generation.NewOrchestrator(provider, cfg.GenerationWorkers,
			cfg.GenerationTimeout, float32(cfg.Temperature), cfg.MaxNewTokens),
		Validator: generation.Validator{},
		SmallTalk: smalltalk.New(),
		Cache:     cache.New[chat.Result](cfg.CacheCapacity, cfg.CacheTTL),
		Memory:    memory,
		Metrics:   chat.NewMetrics(cfg.LowConfidenceThreshold),
		Bus:       bus,
		Logger:    log,

		MaxContextChars: cfg.MaxContextChars,
	}), nil
}

// startAuditLogger consumes escalation events off the bus and writes them to
// the structured log, one consumer goroutine per topic.
func startAuditLogger(bus *eventbus.Bus, log *slog.Logger) {
	for _, topic := range []string{chat.TopicHandoff, chat.TopicLowConfidence} {
		ch := bus.Subscribe(topic)
		go func(topic string, ch <-chan eventbus.Event) {
			for evt := range ch {
				if he, ok := evt.Payload.(chat.HandoffEvent); ok {
					log.Info("audit",
						"topic", topic,
						"request_id", he.RequestID,
						"conversation_id", he.ConversationID,
						"reason", he.Reason)
					continue
				}
				log.Info("audit", "topic", topic)
			}
		}(topic, ch)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func printHelp(out io.Writer) {
	helpText := `ByteDent Assistant - RAG support chatbot

Usage:
  assistant [options]

Options:
  --version    Show version information
  --help       Show this help message

Without options the server starts on HTTP_HOST:HTTP_PORT (default
0.0.0.0:8000) using the knowledge index at INDEX_PATH. See
internal/infra/config for the full environment variable list.

Examples:
  assistant --version
  HTTP_PORT=9000 assistant`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
