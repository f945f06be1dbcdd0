package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
)

func TestOpen(t *testing.T) {
	r, err := Open(Options{Engine: "HTTP"})
	if err != nil {
		t.Fatalf("Open(http): %v", err)
	}
	if _, ok := r.(*HTTP); !ok {
		t.Fatalf("expected *HTTP renderer, got %T", r)
	}
	r.Close()

	r, err = Open(Options{})
	if err != nil {
		t.Fatalf("Open(default): %v", err)
	}
	if _, ok := r.(*Browser); !ok {
		t.Fatalf("expected default engine to be the browser, got %T", r)
	}
	// Never started, so closing must not try to talk to playwright.
	if err := r.Close(); err != nil {
		t.Fatalf("Close on unstarted browser: %v", err)
	}

	if _, err := Open(Options{Engine: "carrier-pigeon"}); !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
	if _, err := Open(Options{Engine: EngineHTTP, SettleStrategy: "whenever"}); err == nil {
		t.Fatal("expected invalid settle strategy to fail")
	}
}

func TestHTTPRender(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/ok":
			if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
				t.Errorf("unexpected user agent %q", ua)
			}
			w.Write([]byte("<html><body><h1>Magnesium</h1></body></html>"))
		case "/missing":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	h, err := NewHTTP(Options{UserAgent: "test-agent", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	defer h.Close()
	ctx := context.Background()

	body, err := h.Render(ctx, srv.URL+"/ok")
	if err != nil {
		t.Fatalf("Render(/ok): %v", err)
	}
	if !strings.Contains(body, "Magnesium") {
		t.Fatalf("unexpected body: %q", body)
	}

	if _, err := h.Render(ctx, srv.URL+"/missing"); !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("expected ErrHTTPStatus for 404, got %v", err)
	}

	atomic.StoreInt32(&hits, 0)
	if _, err := h.Render(ctx, srv.URL+"/boom"); err == nil {
		t.Fatal("expected error for 500")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected a single attempt without retries, got %d", n)
	}

	if _, err := h.Render(ctx, "  "); !errors.Is(err, ErrNoURL) {
		t.Fatalf("expected ErrNoURL, got %v", err)
	}
}

func TestHTTPRenderCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	h, err := NewHTTP(Options{Rate: 1})
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Render(ctx, srv.URL); err == nil {
		t.Fatal("expected cancelled context to fail the fetch")
	}
}

type fakeWaiter struct {
	loadErr     error
	selectorErr error
	selectors   []string
	timeouts    []float64
}

func (f *fakeWaiter) WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error {
	return f.loadErr
}

func (f *fakeWaiter) WaitForSelector(selector string, options ...playwright.PageWaitForSelectorOptions) (playwright.ElementHandle, error) {
	f.selectors = append(f.selectors, selector)
	return nil, f.selectorErr
}

func (f *fakeWaiter) WaitForTimeout(timeout float64) {
	f.timeouts = append(f.timeouts, timeout)
}

func TestSettle(t *testing.T) {
	base := Options{Settle: 2 * time.Second}.withDefaults()

	t.Run("fixed sleeps the whole delay", func(t *testing.T) {
		w := &fakeWaiter{}
		opts := base
		opts.SettleStrategy = SettleFixed
		settle(w, opts, NopLogger{})
		if len(w.timeouts) != 1 || w.timeouts[0] != 2000 {
			t.Fatalf("unexpected timeouts: %v", w.timeouts)
		}
	})

	t.Run("idle page needs no fallback", func(t *testing.T) {
		w := &fakeWaiter{}
		settle(w, base, NopLogger{})
		if len(w.timeouts) != 0 || len(w.selectors) != 0 {
			t.Fatalf("unexpected waits: timeouts=%v selectors=%v", w.timeouts, w.selectors)
		}
	})

	t.Run("ready selector is awaited", func(t *testing.T) {
		w := &fakeWaiter{}
		opts := base
		opts.ReadySelector = "#specs"
		settle(w, opts, NopLogger{})
		if len(w.selectors) != 1 || w.selectors[0] != "#specs" {
			t.Fatalf("expected selector wait, got %v", w.selectors)
		}
	})

	t.Run("failed idle wait falls back to remaining delay", func(t *testing.T) {
		w := &fakeWaiter{loadErr: errors.New("timeout")}
		settle(w, base, NopLogger{})
		if len(w.timeouts) != 1 || w.timeouts[0] <= 0 || w.timeouts[0] > 2000 {
			t.Fatalf("unexpected fallback timeouts: %v", w.timeouts)
		}
	})

	t.Run("zero delay does nothing", func(t *testing.T) {
		w := &fakeWaiter{loadErr: errors.New("timeout")}
		opts := base
		opts.Settle = 0
		settle(w, opts, NopLogger{})
		if len(w.timeouts) != 0 {
			t.Fatalf("unexpected timeouts: %v", w.timeouts)
		}
	})
}
