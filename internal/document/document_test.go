package document

import "testing"

func TestAddAssignsDenseIDs(t *testing.T) {
	c := New()
	for i := 0; i < 5; i++ {
		d := c.Add(&Stored{Key: int64(i)})
		if d.ID != int32(i) {
			t.Fatalf("expected id %d, got %d", i, d.ID)
		}
	}
	if c.Count() != 5 {
		t.Fatalf("expected count 5, got %d", c.Count())
	}
}

func TestSegmentGrouping(t *testing.T) {
	c := New()
	c.Add(&Stored{Key: 42, SegmentNumber: 0})
	c.Add(&Stored{Key: 42, SegmentNumber: 1})
	c.Add(&Stored{Key: 99, SegmentNumber: 0})

	first, ok := c.GetByKey(42)
	if !ok || first.SegmentNumber != 0 {
		t.Fatalf("expected lowest-numbered segment, got %+v", first)
	}
	all := c.GetAllByKey(42)
	if len(all) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(all))
	}
	if all[0].SegmentNumber != 0 || all[1].SegmentNumber != 1 {
		t.Fatalf("expected segments in order, got %+v", all)
	}
}

func TestDeleteTombstonesWithoutRenumbering(t *testing.T) {
	c := New()
	a := c.Add(&Stored{Key: 1})
	c.Add(&Stored{Key: 2})
	if !c.Delete(a.ID) {
		t.Fatal("expected delete to succeed")
	}
	if c.Count() != 2 {
		t.Fatalf("count should remain 2 after tombstone, got %d", c.Count())
	}
	if c.LiveCount() != 1 {
		t.Fatalf("live count should be 1, got %d", c.LiveCount())
	}
	doc, ok := c.Get(a.ID)
	if !ok || !doc.Deleted {
		t.Fatal("expected tombstoned document to remain retrievable and marked deleted")
	}
}

func TestWeightAt(t *testing.T) {
	s := &Stored{
		Boundaries: []FieldBoundary{
			{Position: 0, WeightClass: WeightHigh},
			{Position: 10, WeightClass: WeightLow},
		},
	}
	if s.WeightAt(0) != WeightHigh {
		t.Error("position 0 should be High")
	}
	if s.WeightAt(5) != WeightHigh {
		t.Error("position 5 should still be High")
	}
	if s.WeightAt(10) != WeightLow {
		t.Error("position 10 should be Low")
	}
	if s.WeightAt(100) != WeightLow {
		t.Error("position past last boundary should be Low")
	}
}
