package wordmatch

import "testing"

func TestExactMatch(t *testing.T) {
	m := New(DefaultConfig())
	m.AddWord("batman", 1)
	if !m.MatchesExactOrLD1("batman", 1) {
		t.Error("expected exact match")
	}
	if m.MatchesExactOrLD1("batman", 2) {
		t.Error("doc 2 was never indexed")
	}
}

func TestLD1Substitution(t *testing.T) {
	m := New(DefaultConfig())
	m.AddWord("batman", 1)
	if !m.MatchesExactOrLD1("batmen", 1) {
		t.Error("expected LD1 substitution match batman/batmen")
	}
}

func TestLD1Deletion(t *testing.T) {
	m := New(DefaultConfig())
	m.AddWord("batman", 1) // query is shorter by one char (deletion from indexed word)
	if !m.MatchesExactOrLD1("batma", 1) {
		t.Error("expected LD1 deletion match batman/batma")
	}
}

func TestLD1Insertion(t *testing.T) {
	m := New(DefaultConfig())
	m.AddWord("batma", 1) // indexed word is shorter; query has one extra char
	if !m.MatchesExactOrLD1("batman", 1) {
		t.Error("expected LD1 insertion-direction match batma/batman")
	}
}

func TestLD1RespectsSizeWindow(t *testing.T) {
	cfg := Config{MinExact: 2, MaxExact: 50, MinLD1: 4, MaxLD1: 20}
	m := New(cfg)
	m.AddWord("cat", 1) // length 3, below MinLD1
	if m.MatchesExactOrLD1("cats", 1) {
		t.Error("short words below MinLD1 should not fuzzy-match")
	}
}

func TestAffixMatchLongestFirst(t *testing.T) {
	m := New(DefaultConfig())
	m.AddWord("redemption", 1)
	length, ok := m.MatchAffix("redemptionist", 1)
	if !ok {
		t.Fatal("expected an affix match")
	}
	if length < 4 {
		t.Fatalf("expected a meaningfully long prefix match, got %d", length)
	}
}

func TestAffixNoMatch(t *testing.T) {
	m := New(DefaultConfig())
	m.AddWord("redemption", 1)
	if _, ok := m.MatchAffix("zzzzzzzzzz", 1); ok {
		t.Error("expected no affix match for unrelated word")
	}
}

func TestDeletionVariantsDeduped(t *testing.T) {
	v := deletionVariants([]rune("aaa"))
	if len(v) != 1 || v[0] != "aa" {
		t.Fatalf("expected single deduped variant 'aa', got %v", v)
	}
}
