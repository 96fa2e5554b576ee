package logger

import (
	"context"
	"testing"
)

func TestWithRequestIDRoundTrips(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	l := FromContext(ctx)
	if l == nil {
		t.Fatal("expected a non-nil logger")
	}
}

func TestWithComponentReturnsLogger(t *testing.T) {
	if WithComponent("vector") == nil {
		t.Fatal("expected a non-nil logger")
	}
}

func TestSetupDoesNotPanic(t *testing.T) {
	Setup("debug", "json")
	Setup("info", "text")
}
