package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"mkvsubs/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "extract", "track", "ffmpeg failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extract", "track", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestCategory(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrNotFound, "resolve", "", "", nil), "not_found"},
		{services.Wrap(services.ErrValidation, "extract", "", "", nil), "validation"},
		{fmt.Errorf("outer: %w", services.ErrTimeout), "timeout"},
		{services.ErrOutputLimit, "output_limit"},
		{services.ErrExternalTool, "external_tool"},
		{errors.New("plain"), "internal"},
	}
	for _, tc := range cases {
		if got := services.Category(tc.err); got != tc.want {
			t.Fatalf("Category(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestRecoverable(t *testing.T) {
	if !services.Recoverable(services.Wrap(services.ErrNotFound, "resolve", "", "", nil)) {
		t.Fatal("expected not found to be recoverable")
	}
	if services.Recoverable(services.ErrTimeout) {
		t.Fatal("expected timeout to be terminal")
	}
}
