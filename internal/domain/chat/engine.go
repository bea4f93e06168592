package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/bytedent/assistant/internal/domain/conversation"
	"github.com/bytedent/assistant/internal/domain/gate"
	"github.com/bytedent/assistant/internal/domain/generation"
	"github.com/bytedent/assistant/internal/domain/query"
	"github.com/bytedent/assistant/internal/domain/retrieval"
	"github.com/bytedent/assistant/internal/infra/cache"
)

// Event topics published by the engine.
const (
	TopicHandoff       = "chat.handoff"
	TopicLowConfidence = "chat.low_confidence"
)

// User-facing messages for the handoff paths.
const (
	msgSpecialist = "I need to connect you with a support specialist who can better assist you with this request."
	msgTrouble    = "I'm having trouble processing your request. Let me connect you with support."
	msgVerify     = "I need to verify this information. Let me connect you with support."
)

// Embedder turns query text into a dense vector in the chunk-index
// embedding space.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator drafts a structured answer for a query against assembled
// context.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, contextText, queryText string) (*generation.Answer, error)
}

// Validator decides whether a drafted answer is safe to surface.
type Validator interface {
	Validate(ans *generation.Answer, query, contextText string) bool
}

// SmallTalker answers conversational queries without retrieval.
type SmallTalker interface {
	Match(query string) (string, bool)
}

// Publisher emits engine events for downstream consumers.
type Publisher interface {
	Publish(topic string, payload any)
}

// Request is one incoming chat message. RequestID is the transport's
// correlation id; the engine mints one when it is empty, so access
// logs and the response body agree on a single id.
type Request struct {
	Message        string
	ConversationID string
	RequestID      string
}

// HandoffEvent is the payload published on TopicHandoff.
type HandoffEvent struct {
	RequestID      string
	ConversationID string
	Reason         string
	Query          string
}

// Options wires the engine's collaborators. Normalizer, Retriever,
// Gate, Embedder, Generator, Validator, Cache, Memory and Metrics are
// required; SmallTalk and Bus are optional.
type Options struct {
	Normalizer *query.Normalizer
	Retriever  *retrieval.Retriever
	Gate       *gate.Gate
	Embedder   Embedder
	Generator  Generator
	Validator  Validator
	SmallTalk  SmallTalker
	Cache      *cache.ResponseCache[Result]
	Memory     *conversation.Memory
	Metrics    *Metrics
	Bus        Publisher
	Logger     *slog.Logger

	MaxContextChars int
}

// Engine is the answer-orchestration pipeline. It is built once at
// startup and shared by all request handlers.
type Engine struct {
	normalizer *query.Normalizer
	retriever  *retrieval.Retriever
	gate       *gate.Gate
	embedder   Embedder
	generator  Generator
	validator  Validator
	smalltalk  SmallTalker
	builder    *ContextBuilder
	cache      *cache.ResponseCache[Result]
	memory     *conversation.Memory
	metrics    *Metrics
	bus        Publisher
	log        *slog.Logger

	// Collapses concurrent identical queries into one retrieval and
	// generation pass.
	flight singleflight.Group
}

// coreOutcome is the shareable part of a pipeline run, before
// per-request identity and timing are attached.
type coreOutcome struct {
	kind          string
	message       string
	citations     []string
	handoffReason string
	stats         RetrievalStats
	cacheable     bool
}

// NewEngine assembles the pipeline.
func NewEngine(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		normalizer: opts.Normalizer,
		retriever:  opts.Retriever,
		gate:       opts.Gate,
		embedder:   opts.Embedder,
		generator:  opts.Generator,
		validator:  opts.Validator,
		smalltalk:  opts.SmallTalk,
		builder:    NewContextBuilder(opts.MaxContextChars),
		cache:      opts.Cache,
		memory:     opts.Memory,
		metrics:    opts.Metrics,
		bus:        opts.Bus,
		log:        log,
	}
}

// Handle runs one query through the pipeline. It always returns a
// terminal Result; failures inside the pipeline surface as handoffs,
// never as errors.
func (e *Engine) Handle(ctx context.Context, req Request) Result {
	start := time.Now()
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := e.log.With("request_id", requestID)

	if e.smalltalk != nil {
		if reply, ok := e.smalltalk.Match(req.Message); ok {
			res := e.finish(Result{
				Type:    KindAnswer,
				Message: reply,
				Retrieval: RetrievalStats{
					TopSimilarityScore: retrieval.NoMatchScore,
				},
			}, req, requestID, start)
			e.remember(req, res)
			e.record(res, req.Message, time.Since(start))
			return res
		}
	}

	normalized := e.normalizer.Normalize(req.Message)
	key := cache.Key(normalized, e.fingerprint(req.ConversationID))

	if cached, ok := e.cache.Get(key); ok {
		log.Info("cache hit", "conversation_id", req.ConversationID)
		res := e.finish(cached, req, requestID, start)
		e.remember(req, res)
		e.publishEvents(req, res)
		e.record(res, req.Message, time.Since(start))
		return res
	}

	v, _, _ := e.flight.Do(key, func() (any, error) {
		return e.run(ctx, req, normalized, log), nil
	})
	out := v.(coreOutcome)

	res := e.finish(Result{
		Type:          out.kind,
		Message:       out.message,
		Citations:     out.citations,
		HandoffReason: out.handoffReason,
		Retrieval:     out.stats,
	}, req, requestID, start)

	if out.cacheable {
		e.cache.Set(key, res)
	}
	e.remember(req, res)
	e.publishEvents(req, res)
	e.record(res, req.Message, time.Since(start))

	log.Info("chat completed",
		"type", res.Type,
		"handoff_reason", res.HandoffReason,
		"top_score", res.Retrieval.TopSimilarityScore,
		"duration_ms", res.ProcessingTimeMS)
	return res
}

// run executes retrieval, gating, generation and validation. The
// outcome is shared between concurrent identical requests.
func (e *Engine) run(ctx context.Context, req Request, normalized string, log *slog.Logger) coreOutcome {
	retRes := e.retrieve(ctx, normalized, log)
	stats := RetrievalStats{
		TopSimilarityScore: retRes.TopScore,
		ChunksRetrieved:    len(retRes.Chunks),
		RetrievalTimeMS:    float64(retRes.Elapsed) / float64(time.Millisecond),
	}

	if d := e.gate.Decide(retRes, req.Message); d.Handoff {
		return coreOutcome{
			kind:          KindHandoff,
			message:       msgSpecialist,
			handoffReason: d.Reason,
			stats:         stats,
		}
	}

	history := e.memory.History(req.ConversationID, 0)
	contextText := e.builder.Build(retRes, history)

	ans, err := e.generator.Generate(ctx, systemPrompt, contextText, normalized)
	if err != nil {
		log.Warn("generation failed", "error", err)
		return coreOutcome{
			kind:          KindHandoff,
			message:       msgTrouble,
			handoffReason: fmt.Sprintf("service_unavailable: %v", err),
			stats:         stats,
		}
	}

	if ans.Kind == "handoff" {
		reason := ans.HandoffReason
		if reason == "" {
			reason = "model_declined"
		}
		return coreOutcome{
			kind:          KindHandoff,
			message:       msgSpecialist,
			handoffReason: reason,
			stats:         stats,
		}
	}

	if !e.validator.Validate(ans, normalized, contextText) {
		log.Warn("validation rejected answer")
		return coreOutcome{
			kind:          KindHandoff,
			message:       msgVerify,
			handoffReason: "validation_failed",
			stats:         stats,
		}
	}

	return coreOutcome{
		kind:      KindAnswer,
		message:   ans.Message,
		citations: ans.Citations,
		stats:     stats,
		cacheable: true,
	}
}

// retrieve embeds the query and scans the index. Any failure is
// treated as an empty result so it flows into the gate as a
// low-similarity handoff.
func (e *Engine) retrieve(ctx context.Context, normalized string, log *slog.Logger) retrieval.Result {
	vec, err := e.embedder.EmbedQuery(ctx, normalized)
	if err != nil {
		log.Warn("query embedding failed", "error", err)
		return retrieval.Result{TopScore: retrieval.NoMatchScore}
	}
	return e.retriever.Retrieve(vec)
}

// fingerprint summarizes the recent conversation so cached responses
// stay scoped to conversational state.
func (e *Engine) fingerprint(conversationID string) []string {
	if conversationID == "" {
		return nil
	}
	turns := e.memory.History(conversationID, 2)
	out := make([]string, 0, len(turns)*2)
	for _, t := range turns {
		out = append(out, t.UserText, t.AssistantText)
	}
	return out
}

// finish stamps per-request identity and timing onto a result.
func (e *Engine) finish(res Result, req Request, requestID string, start time.Time) Result {
	res.RequestID = requestID
	res.ConversationID = req.ConversationID
	res.ProcessingTimeMS = float64(time.Since(start)) / float64(time.Millisecond)
	res.Timestamp = time.Now().UTC()
	return res
}

func (e *Engine) remember(req Request, res Result) {
	if req.ConversationID == "" {
		return
	}
	e.memory.AddTurn(req.ConversationID, req.Message, res.Message)
}

func (e *Engine) publishEvents(req Request, res Result) {
	if e.bus == nil {
		return
	}
	if res.Type == KindHandoff {
		e.bus.Publish(TopicHandoff, HandoffEvent{
			RequestID:      res.RequestID,
			ConversationID: req.ConversationID,
			Reason:         res.HandoffReason,
			Query:          req.Message,
		})
	}
	if res.Retrieval.ChunksRetrieved > 0 && res.Retrieval.TopSimilarityScore < e.metrics.threshold {
		e.bus.Publish(TopicLowConfidence, HandoffEvent{
			RequestID:      res.RequestID,
			ConversationID: req.ConversationID,
			Reason:         "low_confidence",
			Query:          req.Message,
		})
	}
}

func (e *Engine) record(res Result, rawQuery string, latency time.Duration) {
	e.metrics.Record(res, rawQuery, latency)
}

// MetricsSnapshot merges the request aggregates with cache and
// conversation occupancy.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	snap := e.metrics.Snapshot()
	snap.CacheHits, snap.CacheMisses = e.cache.Stats()
	snap.ActiveConversations = e.memory.Len()
	return snap
}

// IndexSize reports how many chunks the retriever holds.
func (e *Engine) IndexSize() int {
	return e.retriever.Len()
}
