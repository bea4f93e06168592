package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bytedent/assistant/internal/api/ctxkeys"
	"github.com/bytedent/assistant/internal/domain/chat"
)

// ChatService is the engine seam the handler depends on.
type ChatService interface {
	Handle(ctx context.Context, req chat.Request) chat.Result
}

// ChatHandler serves POST /api/v1/chat.
type ChatHandler struct {
	engine          ChatService
	maxMessageChars int
}

// NewChatHandler bounds individual messages to maxMessageChars; a
// non-positive bound falls back to 2000.
func NewChatHandler(engine ChatService, maxMessageChars int) *ChatHandler {
	if maxMessageChars <= 0 {
		maxMessageChars = 2000
	}
	return &ChatHandler{engine: engine, maxMessageChars: maxMessageChars}
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Chat validates the request and runs it through the engine. Input
// errors are rejected here, before the engine sees them, so they
// leave no trace in cache, memory or metrics.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(msg) > h.maxMessageChars {
		writeError(w, http.StatusRequestEntityTooLarge, "message too long")
		return
	}

	res := h.engine.Handle(r.Context(), chat.Request{
		Message:        msg,
		ConversationID: req.ConversationID,
		RequestID:      ctxkeys.Value(r.Context(), ctxkeys.RequestID),
	})
	writeJSON(w, http.StatusOK, res)
}
