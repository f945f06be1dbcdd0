package render

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// HTTP renders pages with a plain GET. It does not run scripts, so content
// injected client-side is missing; there is nothing to settle.
type HTTP struct {
	client    *retryablehttp.Client
	limiter   *rate.Limiter
	userAgent string
	log       Logger
}

// NewHTTP builds an HTTP renderer from opts.
func NewHTTP(opts Options) (*HTTP, error) {
	opts = opts.withDefaults()

	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = opts.Retries
	client.HTTPClient.Timeout = opts.Timeout

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		client.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return &HTTP{
		client:    client,
		limiter:   newLimiter(opts.Rate),
		userAgent: opts.UserAgent,
		log:       opts.Log,
	}, nil
}

func (h *HTTP) Render(ctx context.Context, pageURL string) (string, error) {
	if strings.TrimSpace(pageURL) == "" {
		return "", ErrNoURL
	}
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*")
	req.Header.Set("Accept-Language", "en")

	h.log.Debugf("GET %s", pageURL)
	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: %d for %s", ErrHTTPStatus, resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body of %s: %w", pageURL, err)
	}
	return string(body), nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	h.client.HTTPClient.CloseIdleConnections()
	return nil
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}
