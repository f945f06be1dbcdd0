package render

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// pageWaiter is the part of playwright.Page used while settling.
type pageWaiter interface {
	WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error
	WaitForSelector(selector string, options ...playwright.PageWaitForSelectorOptions) (playwright.ElementHandle, error)
	WaitForTimeout(timeout float64)
}

// settle waits for lazily loaded content. The idle strategy waits for the
// network to go quiet (and for the ready selector, if any), bounded by
// opts.Settle; when that wait fails, the rest of the settle delay is slept
// instead. The fixed strategy always sleeps the full delay.
func settle(page pageWaiter, opts Options, log Logger) {
	if opts.Settle <= 0 {
		return
	}

	if opts.SettleStrategy == SettleFixed {
		page.WaitForTimeout(ms(opts.Settle))
		return
	}

	start := time.Now()
	err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(ms(opts.Settle)),
	})
	if err == nil && opts.ReadySelector != "" {
		remaining := opts.Settle - time.Since(start)
		if remaining <= 0 {
			remaining = time.Millisecond
		}
		_, err = page.WaitForSelector(opts.ReadySelector, playwright.PageWaitForSelectorOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: playwright.Float(ms(remaining)),
		})
	}
	if err == nil {
		return
	}

	log.Debugf("Page did not settle, falling back to fixed delay: %v", err)
	if remaining := opts.Settle - time.Since(start); remaining > 0 {
		page.WaitForTimeout(ms(remaining))
	}
}

func ms(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
