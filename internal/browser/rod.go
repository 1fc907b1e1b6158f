package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Session drives a Chrome instance through rod. It owns one page; evidence
// capture is sequential so a single page is all a run needs.
type Session struct {
	cfg      Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// NewSession creates an unstarted browser session.
func NewSession(cfg Config) *Session {
	return &Session{cfg: cfg}
}

// Start launches Chrome, connects, and opens the working page with the
// configured viewport.
func (s *Session) Start(ctx context.Context) error {
	if s.browser != nil {
		return nil
	}

	s.launcher = launcher.New().Headless(s.cfg.Headless)
	controlURL, err := s.launcher.Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		return fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.ViewportWidth,
		Height:            s.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		page.Close()
		browser.Close()
		return fmt.Errorf("set viewport: %w", err)
	}

	s.browser = browser
	s.page = page
	return nil
}

// Navigate loads a URL and waits for the load event, bounded by the
// navigation timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx).Timeout(s.cfg.NavigationTimeout)
	if err := page.Navigate(url); err != nil {
		return navErr(url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return navErr(url, err)
	}
	return nil
}

func navErr(url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("navigate %s: %w", url, ErrNavigationTimeout)
	}
	return fmt.Errorf("navigate %s: %w", url, err)
}

// FindInPage opens the browser's find bar and types the query so matches
// are highlighted in the captured viewport.
func (s *Session) FindInPage(ctx context.Context, text string) error {
	page := s.page.Context(ctx)
	kb := page.Keyboard

	if err := kb.Press(input.ControlLeft); err != nil {
		return fmt.Errorf("open find bar: %w", err)
	}
	if err := kb.Type(input.KeyF); err != nil {
		kb.Release(input.ControlLeft)
		return fmt.Errorf("open find bar: %w", err)
	}
	if err := kb.Release(input.ControlLeft); err != nil {
		return fmt.Errorf("open find bar: %w", err)
	}

	if err := page.InsertText(text); err != nil {
		return fmt.Errorf("type search text: %w", err)
	}
	return nil
}

// ClearFind dismisses the find bar.
func (s *Session) ClearFind(ctx context.Context) error {
	if err := s.page.Context(ctx).Keyboard.Type(input.Escape); err != nil {
		return fmt.Errorf("dismiss find bar: %w", err)
	}
	return nil
}

// Screenshot captures the visible viewport as PNG bytes.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	data, err := s.page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return data, nil
}

// Close shuts the page and browser down. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	if s.page != nil {
		err = s.page.Close()
		s.page = nil
	}
	if s.browser != nil {
		if cerr := s.browser.Close(); err == nil {
			err = cerr
		}
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
		s.launcher = nil
	}
	return err
}

var _ Driver = (*Session)(nil)
