package term

import "testing"

func TestCountTermUsageCountsDistinctDocs(t *testing.T) {
	c := New()
	c.CountTermUsage("cat", 1, false)
	c.CountTermUsage("cat", 1, false) // same doc again: should not double-count
	c.CountTermUsage("cat", 2, false)
	tm, ok := c.GetTerm("cat")
	if !ok {
		t.Fatal("expected term to exist")
	}
	if tm.DocumentFrequency != 2 {
		t.Fatalf("expected document frequency 2, got %d", tm.DocumentFrequency)
	}
}

func TestFastInsertDoesNotIncrementFrequency(t *testing.T) {
	c := New()
	c.CountTermUsage("dog", 1, true)
	tm, _ := c.GetTerm("dog")
	if tm.DocumentFrequency != 0 {
		t.Fatalf("fast insert should not bump document frequency, got %d", tm.DocumentFrequency)
	}
}

func TestAllTermsStableOrder(t *testing.T) {
	c := New()
	for _, text := range []string{"z", "a", "m"} {
		c.CountTermUsage(text, 0, false)
	}
	first := c.AllTerms()
	second := c.AllTerms()
	for i := range first {
		if first[i].Text != second[i].Text {
			t.Fatalf("AllTerms order not stable: %v vs %v", first, second)
		}
	}
	if first[0].Text != "z" || first[1].Text != "a" || first[2].Text != "m" {
		t.Fatalf("expected insertion order, got %v", first)
	}
}

func TestIsStopTerm(t *testing.T) {
	tm := &Term{DocumentFrequency: 10}
	if tm.IsStopTerm(20) {
		t.Error("10 should not exceed limit 20")
	}
	if !tm.IsStopTerm(5) {
		t.Error("10 should exceed limit 5")
	}
}
