package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNavErrMapsDeadlineToTimeout(t *testing.T) {
	err := navErr("https://docs.google.com/document/d/abc", context.DeadlineExceeded)
	if !errors.Is(err, ErrNavigationTimeout) {
		t.Fatalf("deadline exceeded should map to ErrNavigationTimeout, got %v", err)
	}
}

func TestNavErrMapsWrappedDeadline(t *testing.T) {
	wrapped := fmt.Errorf("wait load: %w", context.DeadlineExceeded)
	if err := navErr("doc", wrapped); !errors.Is(err, ErrNavigationTimeout) {
		t.Fatalf("wrapped deadline should map to ErrNavigationTimeout, got %v", err)
	}
}

func TestNavErrPassesOtherErrorsThrough(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	err := navErr("doc", cause)
	if errors.Is(err, ErrNavigationTimeout) {
		t.Fatalf("unrelated error must not become a timeout: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("underlying cause should stay wrapped, got %v", err)
	}
}
