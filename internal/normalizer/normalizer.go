// Package normalizer applies deterministic text normalization ahead of
// tokenization: string-level whitespace collapsing (which may shorten the
// text) followed by a rune-count-preserving diacritic/ligature fold.
package normalizer

import "strings"

// Normalizer holds the ordered string replacements and the per-character
// fold table applied by Normalize. A zero-value Normalizer has neither: it
// only collapses runs of spaces.
type Normalizer struct {
	stringReplacements []replacement
	charTable          map[rune]rune
}

type replacement struct {
	old, new string
}

// New builds a Normalizer from explicit string replacements (each applied
// to the whole text, in order) and a rune fold table. Runs of spaces are
// always collapsed after the replacements, whatever they are.
func New(stringReplacements [][2]string, charTable map[rune]rune) *Normalizer {
	n := &Normalizer{
		charTable: charTable,
	}
	for _, r := range stringReplacements {
		n.stringReplacements = append(n.stringReplacements, replacement{old: r[0], new: r[1]})
	}
	return n
}

// Default returns the standard Normalizer: whitespace collapsing (tabs,
// newlines, carriage returns to space, then repeated spaces to one) plus a
// fold table for Latin diacritics and German/Nordic ligatures to ASCII.
func Default() *Normalizer {
	return New(defaultStringReplacements(), defaultCharTable())
}

// Normalize applies replace_strings then replace_chars, in that order. The
// string-replacement phase may change length (whitespace collapsing); the
// char-fold phase is rune-for-rune and preserves rune count, which is what
// lets callers keep byte positions meaningful across that second phase.
func (n *Normalizer) Normalize(text string) string {
	return n.replaceChars(n.replaceStrings(text))
}

func (n *Normalizer) replaceStrings(text string) string {
	for _, r := range n.stringReplacements {
		text = strings.ReplaceAll(text, r.old, r.new)
	}
	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	return text
}

func (n *Normalizer) replaceChars(text string) string {
	if n.charTable == nil || len(n.charTable) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if folded, ok := n.charTable[r]; ok {
			b.WriteRune(folded)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func defaultStringReplacements() [][2]string {
	return [][2]string{
		{"\t", " "},
		{"\n", " "},
		{"\r", " "},
	}
}

// defaultCharTable folds common Latin diacritics and German/Nordic
// ligatures to their closest ASCII equivalent.
func defaultCharTable() map[rune]rune {
	return map[rune]rune{
		'á': 'a', 'à': 'a', 'â': 'a', 'ä': 'a', 'ã': 'a', 'å': 'a', 'ā': 'a',
		'Á': 'A', 'À': 'A', 'Â': 'A', 'Ä': 'A', 'Ã': 'A', 'Å': 'A', 'Ā': 'A',
		'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e', 'ě': 'e',
		'É': 'E', 'È': 'E', 'Ê': 'E', 'Ë': 'E', 'Ē': 'E', 'Ě': 'E',
		'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i',
		'Í': 'I', 'Ì': 'I', 'Î': 'I', 'Ï': 'I', 'Ī': 'I',
		'ó': 'o', 'ò': 'o', 'ô': 'o', 'ö': 'o', 'õ': 'o', 'ō': 'o',
		'Ó': 'O', 'Ò': 'O', 'Ô': 'O', 'Ö': 'O', 'Õ': 'O', 'Ō': 'O',
		'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u',
		'Ú': 'U', 'Ù': 'U', 'Û': 'U', 'Ü': 'U', 'Ū': 'U',
		'ý': 'y', 'ÿ': 'y', 'Ý': 'Y',
		'ñ': 'n', 'Ñ': 'N',
		'ç': 'c', 'Ç': 'C', 'č': 'c', 'Č': 'C', 'ć': 'c', 'Ć': 'C',
		'ř': 'r', 'Ř': 'R',
		'š': 's', 'Š': 'S', 'ß': 's',
		'ž': 'z', 'Ž': 'Z', 'ź': 'z', 'Ź': 'Z', 'ż': 'z', 'Ż': 'Z',
		'ł': 'l', 'Ł': 'L',
		'ø': 'o', 'Ø': 'O', 'æ': 'a', 'Æ': 'A',
		'đ': 'd', 'Đ': 'D', 'ď': 'd', 'Ď': 'D',
		'ť': 't', 'Ť': 'T',
		'ň': 'n', 'Ň': 'N',
	}
}
