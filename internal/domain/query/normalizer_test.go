// Unit tests for query normalization.
package query

import "testing"

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer()
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	return n
}

func TestNormalize_LowercasesAndCollapsesWhitespace(t *testing.T) {
	n := newTestNormalizer(t)

	got := n.Normalize("  How   DO\tI upload\n a scan  ")
	want := "how do i upload a scan"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_AppliesCorrections(t *testing.T) {
	n := newTestNormalizer(t)

	cases := []struct {
		in   string
		want string
	}{
		{"my teath hurt", "my teeth hurt"},
		{"i have a tooth ache", "i have a toothache"},
		{"upload an x ray image", "upload an x-ray image"},
		{"ask my denist about floride", "ask my dentist about fluoride"},
	}
	for _, c := range cases {
		if got := n.Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestNormalize_MultiWordCorrectionBeatsSingleWord(t *testing.T) {
	n := newTestNormalizer(t)

	// "tooth ache" must be joined before any single-word rule could
	// touch either token separately.
	got := n.Normalize("TOOTH  ACHE after extraction")
	want := "toothache after extraction"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_ExpandsAbbreviations(t *testing.T) {
	n := newTestNormalizer(t)

	got := n.Normalize("does the report cover RCT findings")
	want := "does the report cover rct (root canal treatment) findings"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_AbbreviationBoundaries(t *testing.T) {
	n := newTestNormalizer(t)

	// "oh" expands as a standalone token only, never inside a word.
	got := n.Normalize("oh no, my ohio clinic")
	want := "oh (oral hygiene) no, my ohio clinic"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newTestNormalizer(t)

	inputs := []string{
		"What does a CBCT scan show about my TMJ?",
		"teath ache and floride questions",
		"perio charting for opg review",
		"already plain text",
		"",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\n  once:  %q\n  twice: %q", in, once, twice)
		}
	}
}
