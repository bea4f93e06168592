// Package query normalizes incoming user queries before retrieval.
// Normalization is a pure text transform: lowercasing, whitespace
// collapsing, misspelling correction and abbreviation expansion. The
// transform is idempotent, so a normalized query passes through
// unchanged.
package query

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var tablesYAML []byte

type tables struct {
	Corrections   map[string]string `yaml:"corrections"`
	Abbreviations map[string]string `yaml:"abbreviations"`
}

// Normalizer applies the correction and abbreviation tables to raw
// query text. It is immutable after construction and safe for
// concurrent use.
type Normalizer struct {
	corrections []correction
	expansions  []expansion
}

type correction struct {
	from string
	to   string
}

type expansion struct {
	// Matches the bare abbreviation or one already carrying its
	// parenthetical expansion, which keeps the rewrite idempotent.
	pattern *regexp.Regexp
	replace string
}

// NewNormalizer loads the embedded tables.
func NewNormalizer() (*Normalizer, error) {
	var t tables
	if err := yaml.Unmarshal(tablesYAML, &t); err != nil {
		return nil, fmt.Errorf("parse normalization tables: %w", err)
	}

	n := &Normalizer{}

	for from, to := range t.Corrections {
		n.corrections = append(n.corrections, correction{from: from, to: to})
	}
	// Longer entries first so multi-word corrections win over any
	// single-word entry they overlap with.
	sort.Slice(n.corrections, func(i, j int) bool {
		a, b := n.corrections[i], n.corrections[j]
		if len(a.from) != len(b.from) {
			return len(a.from) > len(b.from)
		}
		return a.from < b.from
	})

	abbrs := make([]string, 0, len(t.Abbreviations))
	for abbr := range t.Abbreviations {
		abbrs = append(abbrs, abbr)
	}
	sort.Strings(abbrs)
	for _, abbr := range abbrs {
		full := t.Abbreviations[abbr]
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(abbr) + `\b(?: \(` + regexp.QuoteMeta(full) + `\))?`)
		if err != nil {
			return nil, fmt.Errorf("compile abbreviation pattern %q: %w", abbr, err)
		}
		n.expansions = append(n.expansions, expansion{
			pattern: re,
			replace: abbr + " (" + full + ")",
		})
	}
	return n, nil
}

// Normalize lowercases text, collapses runs of whitespace, applies the
// correction table longest-match-first and expands known abbreviations
// by appending their parenthetical form.
func (n *Normalizer) Normalize(text string) string {
	out := strings.ToLower(text)
	out = strings.Join(strings.Fields(out), " ")

	for _, c := range n.corrections {
		out = strings.ReplaceAll(out, c.from, c.to)
	}
	for _, e := range n.expansions {
		out = e.pattern.ReplaceAllString(out, e.replace)
	}
	return out
}
