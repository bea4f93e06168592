// Package smalltalk answers greetings and other conversational
// queries directly, so they never reach retrieval or the model. The
// pattern groups are checked in a fixed order; the first matching
// group picks the reply.
package smalltalk

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
)

type group struct {
	patterns []*regexp.Regexp
	replies  []string
}

var greetingReplies = []string{
	"Hello! I'm the ByteDent AI assistant. How can I help you with dental imaging or dental health questions today?",
	"Hi there! Welcome to ByteDent. I'm here to answer your questions about dental imaging, CBCT scans, and dental procedures. What would you like to know?",
	"Greetings! I'm your ByteDent dental AI assistant. Feel free to ask me anything about dental imaging, treatments, or the ByteDent platform!",
	"Hey! Nice to meet you. I'm here to help with questions about dental imaging, dental health, and the ByteDent platform. What can I help you with?",
}

var howAreYouReplies = []string{
	"I'm doing great, thank you for asking! I'm ready to help you with any questions about dental imaging or dental health. How can I assist you today?",
	"I'm functioning perfectly and ready to help! What dental questions do you have for me?",
	"I'm doing well! More importantly, how can I help you today with your dental imaging or dental health questions?",
}

var thanksReplies = []string{
	"You're very welcome! Feel free to ask if you have any more questions about dental imaging or dental health.",
	"Happy to help! Don't hesitate to reach out if you need anything else.",
	"My pleasure! I'm always here if you have more questions about ByteDent or dental topics.",
	"Glad I could help! Feel free to ask if you have any other questions.",
}

var goodbyeReplies = []string{
	"Goodbye! Take care, and feel free to come back anytime you have dental imaging questions.",
	"See you later! Stay healthy, and don't hesitate to reach out if you need help with ByteDent.",
	"Have a great day! Remember, I'm here whenever you need information about dental imaging or dental health.",
	"Take care! Come back anytime you have questions about dental imaging or the ByteDent platform.",
}

var nameReplies = []string{
	"I'm the ByteDent AI Assistant! I help answer questions about dental imaging, CBCT scans, dental procedures, and the ByteDent platform. You can just call me ByteDent!",
}

var ageReplies = []string{
	"I'm a newly developed AI assistant, created in 2026 by the ByteDent development team! While I'm relatively new, I'm built on advanced AI technology and dental knowledge to give you accurate information.",
}

var creatorReplies = []string{
	"I was created by the ByteDent development team to help users understand dental imaging and get the most out of the platform!",
}

var purposeReplies = []string{
	"My purpose is to assist with questions about dental imaging, dental procedures, and the ByteDent platform! I can explain what CBCT and panoramic X-rays are, describe dental conditions and treatments, and guide you through uploading and analyzing dental images in the app.",
}

var capabilityReplies = []string{
	"I can explain dental imaging (CBCT, panoramic X-rays), answer questions about dental conditions and treatments, and guide you through the ByteDent app workflow. For specific medical advice, pricing, or personal diagnoses, I'll connect you with a human specialist. What would you like to know?",
}

// Handler answers conversational queries from a fixed pattern table.
// It is immutable after construction and safe for concurrent use.
type Handler struct {
	groups []group
	mu     sync.Mutex
	rand   *rand.Rand
	now    func() time.Time
}

// New compiles the pattern table.
func New() *Handler {
	h := &Handler{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
	}
	h.groups = []group{
		{compile(
			`\b(hi|hello|hey|greetings|good morning|good afternoon|good evening)\b`,
			`^(hi|hello|hey)[\s!.]*$`,
		), greetingReplies},
		{compile(
			`how (are|r) (you|u)`,
			`how'?s it going`,
			`how is it going`,
			`what'?s up`,
			`how do you do`,
		), howAreYouReplies},
		{compile(
			`\b(thank you|thanks|thank u|thx|appreciate)\b`,
			`\b(grateful|gratitude)\b`,
		), thanksReplies},
		{compile(
			`\b(bye|goodbye|see you|farewell|take care)\b`,
			`\b(have a (good|great|nice) day)\b`,
		), goodbyeReplies},
		{compile(`(what is|what'?s) (your|ur) name`), nameReplies},
		{compile(`how old are you`, `(what'?s|whats) your age`), ageReplies},
		{compile(`who (created|made|built|developed) you`), creatorReplies},
		{compile(`(what do you do|what are you for|what'?s your purpose)`), purposeReplies},
		{compile(`(what can you do|what can you help with|how can you help|what are your capabilities)`), capabilityReplies},
	}
	return h
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Match reports whether the query is conversational and, if so,
// returns a canned reply. Greetings get a time-of-day prefix.
func (h *Handler) Match(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}

	for i, g := range h.groups {
		for _, re := range g.patterns {
			if re.MatchString(q) {
				reply := h.pick(g.replies)
				if i == 0 {
					reply = h.timeGreeting() + reply
				}
				return reply, true
			}
		}
	}
	return "", false
}

func (h *Handler) pick(replies []string) string {
	h.mu.Lock()
	idx := h.rand.Intn(len(replies))
	h.mu.Unlock()
	return replies[idx]
}

func (h *Handler) timeGreeting() string {
	switch hour := h.now().Hour(); {
	case hour >= 5 && hour < 12:
		return "Good morning! "
	case hour >= 12 && hour < 18:
		return "Good afternoon! "
	default:
		return "Good evening! "
	}
}
