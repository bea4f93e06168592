// Package chat composes normalization, retrieval, gating, generation
// and validation into the answer-orchestration engine. The engine is
// process-wide shared state built once at startup; every request
// flows through the same pipeline and always terminates in either an
// answer or a handoff.
package chat

import "time"

// Result kinds.
const (
	KindAnswer  = "answer"
	KindHandoff = "handoff"
)

// RetrievalStats summarizes the retrieval step for one request.
type RetrievalStats struct {
	TopSimilarityScore float64 `json:"top_similarity_score"`
	ChunksRetrieved    int     `json:"chunks_retrieved"`
	RetrievalTimeMS    float64 `json:"retrieval_time_ms"`
}

// Result is the engine's terminal outcome for one query. Type is
// always KindAnswer or KindHandoff; an answer carries at least one
// citation and a handoff carries a reason.
type Result struct {
	Type             string         `json:"type"`
	Message          string         `json:"message"`
	Citations        []string       `json:"citations"`
	HandoffReason    string         `json:"handoff_reason,omitempty"`
	Retrieval        RetrievalStats `json:"retrieval"`
	RequestID        string         `json:"request_id"`
	ConversationID   string         `json:"conversation_id,omitempty"`
	ProcessingTimeMS float64        `json:"processing_time_ms"`
	Timestamp        time.Time      `json:"timestamp"`
}

// IsAnswer reports whether the result surfaces a validated answer.
func (r Result) IsAnswer() bool {
	return r.Type == KindAnswer
}
