package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "idempotency", "reserve", "conditional insert failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"idempotency", "reserve", "conditional insert failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "store", "ping", "", errors.New("io"))
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		marker   error
		expected string
	}{
		{services.ErrValidation, "validation"},
		{services.ErrUnsupported, "unsupported"},
		{services.ErrConfiguration, "configuration"},
		{services.ErrNotFound, "not_found"},
		{services.ErrTransient, "transient"},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "component", "op", "msg", nil)
		if kind := services.Kind(err); kind != tc.expected {
			t.Fatalf("Kind(%v) = %q, want %q", tc.marker, kind, tc.expected)
		}
	}
	if kind := services.Kind(nil); kind != "" {
		t.Fatalf("expected empty kind for nil error, got %q", kind)
	}
	if kind := services.Kind(errors.New("plain")); kind != "unknown" {
		t.Fatalf("expected unknown kind for untagged error, got %q", kind)
	}
}

func TestRetryable(t *testing.T) {
	if services.Retryable(services.Wrap(services.ErrValidation, "x", "y", "z", nil)) {
		t.Fatal("validation errors must not be retryable")
	}
	if !services.Retryable(services.Wrap(services.ErrTransient, "x", "y", "z", nil)) {
		t.Fatal("transient errors must be retryable")
	}
	if services.Retryable(nil) {
		t.Fatal("nil error is not retryable")
	}
}
