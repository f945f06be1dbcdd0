package render

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/time/rate"
)

// Browser renders pages in a headless Chromium driven by Playwright. The
// browser is expensive to start and cheap to reuse, so it is launched on the
// first Render and kept until Close. Render calls are serialized.
type Browser struct {
	opts    Options
	limiter *rate.Limiter

	mu       sync.Mutex
	started  bool
	startErr error
	pw       *playwright.Playwright
	browser  playwright.Browser
	bctx     playwright.BrowserContext
}

// NewBrowser returns a Browser that has not started yet.
func NewBrowser(opts Options) *Browser {
	opts = opts.withDefaults()
	return &Browser{opts: opts, limiter: newLimiter(opts.Rate)}
}

// start launches Playwright and Chromium once. A failed launch is remembered
// so later items fail fast instead of relaunching.
func (b *Browser) start() error {
	if b.started {
		return b.startErr
	}
	b.started = true

	b.opts.Log.Debugf("Starting headless browser")
	pw, err := playwright.Run()
	if err != nil {
		b.startErr = fmt.Errorf("could not start playwright: %w", err)
		return b.startErr
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     []string{"--no-sandbox", "--disable-dev-shm-usage"},
	}
	if b.opts.ExecutablePath != "" {
		launch.ExecutablePath = playwright.String(b.opts.ExecutablePath)
	}
	if b.opts.Proxy != "" {
		launch.Proxy = &playwright.Proxy{Server: b.opts.Proxy}
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		b.startErr = fmt.Errorf("could not launch chromium: %w", err)
		return b.startErr
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(b.opts.UserAgent),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		b.startErr = fmt.Errorf("could not create browser context: %w", err)
		return b.startErr
	}

	b.pw, b.browser, b.bctx = pw, browser, bctx
	return nil
}

func (b *Browser) Render(ctx context.Context, pageURL string) (string, error) {
	if strings.TrimSpace(pageURL) == "" {
		return "", ErrNoURL
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := b.start(); err != nil {
		return "", err
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	page, err := b.bctx.NewPage()
	if err != nil {
		return "", fmt.Errorf("could not open page: %w", err)
	}
	defer page.Close()

	b.opts.Log.Debugf("Navigating to %s", pageURL)
	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(b.opts.Timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", pageURL, err)
	}

	settle(page, b.opts, b.opts.Log)

	content, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("reading content of %s: %w", pageURL, err)
	}
	return content, nil
}

// Close shuts the browser down. It is safe to call on a browser that never
// started.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pw == nil {
		return nil
	}

	var firstErr error
	if err := b.bctx.Close(); err != nil {
		firstErr = err
	}
	if err := b.browser.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := b.pw.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	b.pw, b.browser, b.bctx = nil, nil, nil
	return firstErr
}
