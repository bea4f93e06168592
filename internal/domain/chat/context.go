package chat

import (
	"fmt"
	"strings"

	"github.com/bytedent/assistant/internal/domain/conversation"
	"github.com/bytedent/assistant/internal/domain/retrieval"
)

// ContextBuilder assembles the prompt context from retrieved chunks
// and conversation history under a character budget. Chunks are never
// truncated; only history yields when the budget is tight, oldest
// turns first.
type ContextBuilder struct {
	maxChars int
}

// NewContextBuilder sets the total character budget. A non-positive
// budget falls back to 6000.
func NewContextBuilder(maxChars int) *ContextBuilder {
	if maxChars <= 0 {
		maxChars = 6000
	}
	return &ContextBuilder{maxChars: maxChars}
}

// Build renders the context text. Retrieved chunks appear in rank
// order; history, when it fits, is prepended oldest-first.
func (b *ContextBuilder) Build(res retrieval.Result, history []conversation.Turn) string {
	chunkText := formatChunks(res)

	budget := b.maxChars - len(chunkText)
	historyText := formatHistory(history, budget)

	if historyText == "" {
		return chunkText
	}
	return historyText + "\n\n" + chunkText
}

func formatChunks(res retrieval.Result) string {
	if res.Empty() {
		return "[No relevant context found]"
	}
	parts := make([]string, len(res.Chunks))
	for i, s := range res.Chunks {
		parts[i] = fmt.Sprintf("[Context %d]\n%s", i+1, s.Chunk.Text)
	}
	return strings.Join(parts, "\n\n")
}

// formatHistory renders as many of the newest turns as fit in budget,
// still printed oldest-first. Whole turns are dropped, never split.
func formatHistory(history []conversation.Turn, budget int) string {
	if len(history) == 0 || budget <= 0 {
		return ""
	}

	rendered := make([]string, len(history))
	for i, t := range history {
		rendered[i] = fmt.Sprintf("User: %s\nAssistant: %s", t.UserText, t.AssistantText)
	}

	const header = "Previous conversation:\n"
	sep := len("\n")
	total := len(header)
	start := len(rendered)
	for i := len(rendered) - 1; i >= 0; i-- {
		need := len(rendered[i])
		if start < len(rendered) {
			need += sep
		}
		if total+need > budget {
			break
		}
		total += need
		start = i
	}
	if start == len(rendered) {
		return ""
	}
	return header + strings.Join(rendered[start:], "\n")
}
