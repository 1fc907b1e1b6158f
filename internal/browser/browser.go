// Package browser drives the automated evidence-capture browser session.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNavigationTimeout is returned when a page does not load within the
// configured navigation timeout.
var ErrNavigationTimeout = errors.New("navigation timed out")

// Driver abstracts the browser so the search loop can run against a real
// Chrome session or a test double.
type Driver interface {
	// Start launches or connects to the browser and opens the session page.
	Start(ctx context.Context) error

	// Navigate loads a URL, bounded by the navigation timeout.
	Navigate(ctx context.Context, url string) error

	// FindInPage opens the native find bar and types the query.
	FindInPage(ctx context.Context, text string) error

	// ClearFind dismisses the find bar so the next query starts clean.
	ClearFind(ctx context.Context) error

	// Screenshot captures the visible viewport as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close shuts the session down. Safe to call more than once.
	Close() error
}

// Config configures the browser session.
type Config struct {
	Headless          bool
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
}
