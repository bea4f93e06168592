// Package generation drives the language model that drafts answers
// and validates its output before anything reaches a user. Model
// access is serialized through a bounded semaphore because the local
// decoder is not safe for concurrent decoding; queued callers share
// the same deadline as active ones.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/bytedent/assistant/internal/infra/llm"
)

// Answer is the structured result the model is instructed to emit. A
// Kind of "handoff" means the model declined to answer on its own.
type Answer struct {
	Kind             string   `json:"type"`
	Message          string   `json:"message"`
	Citations        []string `json:"citations"`
	UncertaintyFlags []string `json:"uncertainty_flags,omitempty"`
	HandoffReason    string   `json:"handoff_reason,omitempty"`
}

// Failure wraps any error out of the generation path so callers can
// convert it to a handoff instead of surfacing a crash.
type Failure struct {
	Stage string // "queue", "generate" or "parse"
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("generation %s: %v", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Orchestrator owns the generation semaphore and timeout discipline.
type Orchestrator struct {
	provider    llm.LLMProvider
	sem         *semaphore.Weighted
	timeout     time.Duration
	temperature float32
	maxTokens   int
}

// NewOrchestrator sizes the semaphore to the number of generation
// workers the model backend can serve at once, usually one.
func NewOrchestrator(provider llm.LLMProvider, workers int, timeout time.Duration, temperature float32, maxTokens int) *Orchestrator {
	if workers <= 0 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Orchestrator{
		provider:    provider,
		sem:         semaphore.NewWeighted(int64(workers)),
		timeout:     timeout,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Generate runs one model call for the query against the assembled
// context. The deadline covers both queueing and decoding; any error
// comes back as a *Failure.
func (o *Orchestrator) Generate(ctx context.Context, systemPrompt, contextText, queryText string) (*Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, &Failure{Stage: "queue", Err: err}
	}
	defer o.sem.Release(1)

	resp, err := o.provider.ChatCompletion(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, queryText)},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return nil, &Failure{Stage: "generate", Err: err}
	}

	ans, err := parseAnswer(resp.Content)
	if err != nil {
		return nil, &Failure{Stage: "parse", Err: err}
	}
	return ans, nil
}

// parseAnswer extracts the JSON object from raw model output, which
// may be wrapped in markdown code fences or surrounded by prose.
func parseAnswer(raw string) (*Answer, error) {
	text := raw
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var ans Answer
	if err := json.Unmarshal([]byte(text[start:end+1]), &ans); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	if ans.Kind != "answer" && ans.Kind != "handoff" {
		return nil, fmt.Errorf("model output has unknown type %q", ans.Kind)
	}
	return &ans, nil
}
