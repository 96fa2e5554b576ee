package segment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/infidex/infidex/internal/document"
	"github.com/infidex/infidex/internal/term"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Documents: []DocumentRecord{
			{
				ID:            0,
				Key:           42,
				IndexedText:   "batman returns",
				ClientInfo:    "client-a",
				SegmentNumber: 0,
				Boundaries: []document.FieldBoundary{
					{Position: 0, WeightClass: document.WeightHigh},
				},
			},
			{ID: 1, Key: 43, IndexedText: "superman flies", SegmentNumber: 0, Deleted: true},
		},
		Terms: []TermRecord{
			{
				Text:              "ba",
				DocumentFrequency: 1,
				Postings:          []term.Posting{{DocID: 0, Weight: 200}},
			},
		},
		WordMatcher: &WordMatcherSnapshot{
			Exact:  WordIndex{"batman": {0}},
			LD1:    WordIndex{"atman": {0}},
			Prefix: WordIndex{"batm": {0}},
			Suffix: WordIndex{"tman": {0}},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.infidex")
	want := sampleSnapshot()

	if err := Save(path, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(got.Documents) != len(want.Documents) {
		t.Fatalf("expected %d documents, got %d", len(want.Documents), len(got.Documents))
	}
	if got.Documents[0].Key != 42 || got.Documents[0].IndexedText != "batman returns" {
		t.Fatalf("unexpected document 0: %+v", got.Documents[0])
	}
	if !got.Documents[1].Deleted {
		t.Fatal("expected document 1 to round-trip as deleted")
	}
	if len(got.Documents[0].Boundaries) != 1 || got.Documents[0].Boundaries[0].WeightClass != document.WeightHigh {
		t.Fatalf("unexpected boundaries: %+v", got.Documents[0].Boundaries)
	}
	if len(got.Terms) != 1 || got.Terms[0].Text != "ba" || got.Terms[0].Postings[0].Weight != 200 {
		t.Fatalf("unexpected terms: %+v", got.Terms)
	}
	if got.WordMatcher == nil || len(got.WordMatcher.Exact) != 1 {
		t.Fatalf("unexpected word matcher snapshot: %+v", got.WordMatcher)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.infidex")
	if err := Save(path, sampleSnapshot()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	data[5] ^= 0xFF // corrupt a byte inside the magic tag region
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("rewriting corrupted file: %v", err)
	}

	if _, err := Load(path); err != ErrInvalidFormat {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.infidex")); err == nil {
		t.Fatal("expected an error loading a nonexistent file")
	}
}

func TestSaveIsByteExactAcrossRuns(t *testing.T) {
	snap := sampleSnapshot()
	snap.WordMatcher = &WordMatcherSnapshot{
		Exact: WordIndex{
			"zebra":   {2},
			"apple":   {0},
			"mango":   {1},
			"batman":  {0, 3},
			"captain": {4},
		},
	}

	pathA := filepath.Join(t.TempDir(), "a.infidex")
	pathB := filepath.Join(t.TempDir(), "b.infidex")
	if err := Save(pathA, snap); err != nil {
		t.Fatalf("save a failed: %v", err)
	}
	if err := Save(pathB, snap); err != nil {
		t.Fatalf("save b failed: %v", err)
	}

	dataA, err := os.ReadFile(pathA)
	if err != nil {
		t.Fatalf("reading a: %v", err)
	}
	dataB, err := os.ReadFile(pathB)
	if err != nil {
		t.Fatalf("reading b: %v", err)
	}
	if len(dataA) != len(dataB) {
		t.Fatalf("expected identical file sizes, got %d and %d", len(dataA), len(dataB))
	}
	for i := range dataA {
		if dataA[i] != dataB[i] {
			t.Fatalf("byte mismatch at offset %d: %x vs %x", i, dataA[i], dataB[i])
		}
	}
}

func TestSaveLoadEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.infidex")
	if err := Save(path, Snapshot{}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got.Documents) != 0 || len(got.Terms) != 0 || got.WordMatcher != nil {
		t.Fatalf("expected empty snapshot, got %+v", got)
	}
}
