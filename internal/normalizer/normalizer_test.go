package normalizer

import "testing"

func TestNormalizeWhitespace(t *testing.T) {
	n := Default()
	cases := map[string]string{
		"a  b":     "a b",
		"a\tb":     "a b",
		"a\nb\r c": "a b c",
		"a     b":  "a b",
	}
	for input, want := range cases {
		if got := n.Normalize(input); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeDiacritics(t *testing.T) {
	n := Default()
	cases := map[string]string{
		"čřáä": "craa",
		"ß":    "s",
		"naïve": "naive",
		"Köln":  "Koln",
	}
	for input, want := range cases {
		if got := n.Normalize(input); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizePreservesRuneCountAfterCharFold(t *testing.T) {
	n := Default()
	input := "café"
	folded := n.replaceChars(input)
	if len([]rune(folded)) != len([]rune(input)) {
		t.Fatalf("char-fold phase changed rune count: %q -> %q", input, folded)
	}
}
