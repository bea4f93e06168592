package generation

import "strings"

// Placeholder fragments that indicate template text leaked into the
// answer instead of real content.
var placeholderMarkers = []string{
	"[insert",
	"[your",
	"[placeholder",
	"{placeholder",
	"<answer>",
	"lorem ipsum",
	"[context",
	"tbd:",
}

// Phrases the model uses when it is not confident in its own answer.
var uncertaintyKeywords = []string{
	"i'm not sure",
	"i don't know",
	"unclear",
	"not enough information",
	"cannot determine",
	"insufficient context",
	"i apologize",
	"consult your dentist",
	"seek professional advice",
	"cannot diagnose",
}

// Words a "how" answer is expected to contain when it actually
// describes a procedure.
var processWords = []string{
	"step", "first", "then", "next", "click", "select", "open",
	"upload", "navigate", "go to", "follow", "process", "use",
}

const (
	minMessageChars    = 20
	minDefinitionChars = 60
)

// Validator is the post-generation quality gate. Zero value is ready
// to use.
type Validator struct{}

// Validate reports whether a drafted answer is safe to surface. The
// context must be the exact text handed to the model so citations can
// be checked verbatim.
func (Validator) Validate(ans *Answer, query, contextText string) bool {
	if ans == nil || ans.Kind != "answer" {
		return false
	}

	msg := strings.TrimSpace(ans.Message)
	if len(msg) < minMessageChars {
		return false
	}

	lower := strings.ToLower(msg)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	for _, kw := range uncertaintyKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	if len(ans.UncertaintyFlags) > 0 {
		return false
	}

	if len(ans.Citations) == 0 {
		return false
	}
	for _, c := range ans.Citations {
		if c == "" || !strings.Contains(contextText, c) {
			return false
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if strings.HasPrefix(q, "how") && !containsAny(lower, processWords) {
		return false
	}
	if strings.HasPrefix(q, "what is") && len(msg) < minDefinitionChars {
		return false
	}
	return true
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
