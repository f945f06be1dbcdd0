// Package render fetches product pages and returns their rendered HTML.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	EngineBrowser = "browser"
	EngineHTTP    = "http"

	SettleIdle  = "idle"
	SettleFixed = "fixed"

	DefaultSettle    = 5 * time.Second
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

var (
	ErrNoURL         = errors.New("no url to render")
	ErrHTTPStatus    = errors.New("unexpected http status")
	ErrUnknownEngine = errors.New("unknown render engine")
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// NopLogger silently discards all messages.
type NopLogger struct{}

func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}
func (NopLogger) Debugf(string, ...interface{}) {}

// Renderer turns a URL into rendered HTML. Implementations are not required
// to be safe for concurrent use; a batch uses one Renderer sequentially and
// closes it when done.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
	Close() error
}

// Options configures a Renderer.
type Options struct {
	Engine string

	// Settle bounds how long to wait after navigation for client-side
	// content to finish loading.
	Settle         time.Duration
	SettleStrategy string
	// ReadySelector, if set, is waited for after the page settles.
	ReadySelector string

	Timeout        time.Duration
	UserAgent      string
	ExecutablePath string
	Proxy          string

	// Retries is only used by the http engine. Zero means a failed fetch
	// is not retried.
	Retries int
	// Rate is the maximum number of fetches per second. Zero disables pacing.
	Rate float64

	Log Logger
}

func (o Options) withDefaults() Options {
	o.Engine = strings.ToLower(strings.TrimSpace(o.Engine))
	if o.Engine == "" {
		o.Engine = EngineBrowser
	}
	if o.Settle < 0 {
		o.Settle = 0
	}
	o.SettleStrategy = strings.ToLower(strings.TrimSpace(o.SettleStrategy))
	if o.SettleStrategy == "" {
		o.SettleStrategy = SettleIdle
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.Log == nil {
		o.Log = NopLogger{}
	}
	return o
}

// Open returns a Renderer for the configured engine. The browser engine is
// started lazily on the first Render call, so opening is cheap; the caller
// must Close the renderer once the batch is finished.
func Open(opts Options) (Renderer, error) {
	opts = opts.withDefaults()
	switch opts.SettleStrategy {
	case SettleIdle, SettleFixed:
	default:
		return nil, fmt.Errorf("invalid settle strategy %q (want %s or %s)", opts.SettleStrategy, SettleIdle, SettleFixed)
	}

	switch opts.Engine {
	case EngineBrowser:
		return NewBrowser(opts), nil
	case EngineHTTP:
		return NewHTTP(opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, opts.Engine)
	}
}
