// Router integration tests: full request flow through middleware,
// handlers and the engine.
package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedent/assistant/internal/domain/chat"
	"github.com/bytedent/assistant/internal/domain/conversation"
	"github.com/bytedent/assistant/internal/domain/gate"
	"github.com/bytedent/assistant/internal/domain/generation"
	"github.com/bytedent/assistant/internal/domain/query"
	"github.com/bytedent/assistant/internal/domain/retrieval"
	"github.com/bytedent/assistant/internal/infra/cache"
	"github.com/bytedent/assistant/internal/infra/config"
	"github.com/bytedent/assistant/internal/infra/llm"
)

const routeChunkText = "CBCT stands for cone beam computed tomography, a 3D imaging technique used in dental diagnostics to capture detailed views of teeth and bone."

type testProvider struct{}

func (testProvider) ChatCompletion(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{
		Content:    `{"type":"answer","message":"CBCT stands for cone beam computed tomography, a 3D imaging technique for detailed views of teeth and bone.","citations":["cone beam computed tomography"]}`,
		StopReason: "stop",
	}, nil
}

func (testProvider) Embed(_ context.Context, req llm.EmbedRequest) (*llm.EmbedResponse, error) {
	out := make([][]float32, len(req.Texts))
	for i := range req.Texts {
		vec := make([]float32, retrieval.EmbeddingDim)
		vec[0] = 1
		out[i] = vec
	}
	return &llm.EmbedResponse{Embeddings: out}, nil
}

func (testProvider) ModelInfo() llm.ModelMeta {
	return llm.ModelMeta{ID: "stub-chat", EmbedID: "stub-embed"}
}

func (testProvider) HealthCheck(context.Context) error { return nil }

func newTestRouter(t *testing.T, apiKey string) http.Handler {
	t.Helper()

	norm, err := query.NewNormalizer()
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	g, err := gate.New(0.30)
	if err != nil {
		t.Fatalf("gate.New: %v", err)
	}
	mem, err := conversation.NewMemory(100, 10)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}

	provider := testProvider{}
	vec := make([]float32, retrieval.EmbeddingDim)
	vec[0] = 1
	chunks := []retrieval.Chunk{{ID: "c1", Text: routeChunkText, Embedding: vec, SourceTag: "kb"}}

	engine := chat.NewEngine(chat.Options{
		Normalizer:      norm,
		Retriever:       retrieval.NewRetriever(chunks, 5, 0.25),
		Gate:            g,
		Embedder:        llm.QueryEmbedder{Provider: provider},
		Generator:       generation.NewOrchestrator(provider, 1, 5*time.Second, 0.1, 256),
		Validator:       generation.Validator{},
		Cache:           cache.New[chat.Result](100, time.Hour),
		Memory:          mem,
		Metrics:         chat.NewMetrics(0.5),
		MaxContextChars: 6000,
	})

	cfg := config.Load()
	cfg.APIKey = apiKey

	return NewRouter(Deps{
		Engine:   engine,
		Provider: provider,
		Cfg:      cfg,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestRouter_ChatEndToEnd(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"what is cbct"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"type":"answer"`) {
		t.Errorf("expected an answer, got %s", body)
	}
	if !strings.Contains(body, "cone beam computed tomography") {
		t.Errorf("expected citation in body, got %s", body)
	}
}

func TestRouter_SecurityHeadersOnEveryResponse(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("missing security header, got %q", got)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://app.bytedent.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("missing Access-Control-Allow-Origin on preflight")
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
		t.Errorf("expected POST in allowed methods, got %q", got)
	}
}

func TestRouter_CORSHeadersOnActualRequest(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("Origin", "https://app.bytedent.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("missing Access-Control-Allow-Origin on actual request")
	}
}

func TestRouter_APIKeyProtectsChatButNotProbes(t *testing.T) {
	router := newTestRouter(t, "sekrit")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("probes must stay public, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"hi there"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"what is cbct"}`))
	req.Header.Set("X-API-Key", "sekrit")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with key, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RequestIDSharedByHeaderAndBody(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"what is cbct"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	headerID := rec.Header().Get("X-Request-ID")
	if headerID == "" {
		t.Fatal("missing X-Request-ID response header")
	}
	if !strings.Contains(rec.Body.String(), `"request_id":"`+headerID+`"`) {
		t.Errorf("body request_id does not match X-Request-ID %q: %s", headerID, rec.Body.String())
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"what is cbct"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total_requests":1`) {
		t.Errorf("unexpected metrics body: %s", rec.Body.String())
	}
}

func TestRouter_PrometheusScrapeEndpoint(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("expected standard Go collector metrics in scrape output")
	}
}

func TestRouter_RootInfo(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "bytedent-assistant") {
		t.Errorf("unexpected root body %s", rec.Body.String())
	}
}
