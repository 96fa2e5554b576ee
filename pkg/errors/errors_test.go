package errors

import (
	"errors"
	"testing"
)

func TestAppErrorWrapsSentinel(t *testing.T) {
	err := New(ErrInvalidFormat, KindInvalidFormat, "bad magic tag")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatal("expected AppError to wrap ErrInvalidFormat")
	}
	if err.Error() == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestKindOfPrefersAppErrorKind(t *testing.T) {
	err := New(ErrCancelled, KindCancelled, "build aborted")
	if KindOf(err) != KindCancelled {
		t.Fatalf("expected KindCancelled, got %v", KindOf(err))
	}
}

func TestKindOfFallsBackToSentinelMatch(t *testing.T) {
	if KindOf(ErrOutOfMemory) != KindOutOfMemory {
		t.Fatalf("expected KindOutOfMemory for a bare sentinel")
	}
	if KindOf(errors.New("unrelated")) != KindUnknown {
		t.Fatal("expected KindUnknown for an unrelated error")
	}
}
