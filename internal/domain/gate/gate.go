// Package gate decides whether a query can be answered from the
// knowledge base or must be handed off to live support. The decision
// is an ordered rule list evaluated first-match-wins: retrieval
// quality first, then restricted-topic keyword sets.
package gate

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/bytedent/assistant/internal/domain/retrieval"
	"gopkg.in/yaml.v3"
)

// ReasonLowSimilarity labels handoffs caused by weak or empty
// retrieval rather than a restricted topic.
const ReasonLowSimilarity = "low_similarity"

//go:embed categories.yaml
var categoriesYAML []byte

type categoryFile struct {
	Categories []category `yaml:"categories"`
}

type category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Decision is the gate's verdict for one query. When Handoff is true,
// Reason carries either ReasonLowSimilarity or the restricted
// category name that matched.
type Decision struct {
	Handoff bool
	Reason  string
}

// Gate is immutable after construction and safe for concurrent use.
type Gate struct {
	threshold  float64
	categories []category
}

// New loads the embedded restricted-category table. threshold is the
// minimum top retrieval score below which every query is handed off.
func New(threshold float64) (*Gate, error) {
	var f categoryFile
	if err := yaml.Unmarshal(categoriesYAML, &f); err != nil {
		return nil, fmt.Errorf("parse restricted categories: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("restricted category table is empty")
	}
	return &Gate{threshold: threshold, categories: f.Categories}, nil
}

// Decide evaluates the rule list for one query. rawQuery is matched
// case-insensitively against the keyword sets; the retrieval result
// decides the similarity rule.
func (g *Gate) Decide(res retrieval.Result, rawQuery string) Decision {
	if res.Empty() || res.TopScore < g.threshold {
		return Decision{Handoff: true, Reason: ReasonLowSimilarity}
	}

	lower := strings.ToLower(rawQuery)
	for _, c := range g.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				return Decision{Handoff: true, Reason: c.Name}
			}
		}
	}
	return Decision{}
}
