package audit

import (
	"context"
	"strings"

	"github.com/prodaudit/prodaudit/pkg/extract"
	"github.com/prodaudit/prodaudit/pkg/render"
)

// Logger is the logging interface the batch driver writes to.
type Logger = render.Logger

// BatchConfig holds everything RunBatch needs.
type BatchConfig struct {
	// Renderer is owned by the batch: RunBatch closes it before returning.
	Renderer render.Renderer
	Builder  *Builder
	Log      Logger // optional; nil = no logging

	// OnItemDone is called after each item, in queue order, with the item's
	// zero-based position. Nil = no callback.
	OnItemDone func(index, total int, item Item, rec Record)
}

// RunBatch audits items one at a time, in order, and returns exactly one
// record per item. A failed fetch or parse degrades that item's record to
// the fallback form and never stops the batch.
func RunBatch(ctx context.Context, items []Item, cfg BatchConfig) []Record {
	log := cfg.Log
	if log == nil {
		log = render.NopLogger{}
	}
	builder := cfg.Builder
	if builder == nil {
		builder = NewBuilder("")
	}
	if cfg.Renderer != nil {
		defer func() {
			if err := cfg.Renderer.Close(); err != nil {
				log.Warnf("Could not release renderer: %v", err)
			}
		}()
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		log.Infof("Scanning item %d/%d: %s", i+1, len(items), item.Title)
		rec := auditItem(ctx, cfg.Renderer, builder, item, log)
		records = append(records, rec)
		if cfg.OnItemDone != nil {
			cfg.OnItemDone(i, len(items), item, rec)
		}
	}
	return records
}

func auditItem(ctx context.Context, r render.Renderer, b *Builder, item Item, log Logger) Record {
	if strings.TrimSpace(item.URL) == "" {
		log.Debugf("No URL for %q, guessing from title", item.Title)
		return b.Unfetched(item)
	}
	if r == nil {
		log.Warnf("No renderer configured, falling back for %s", item.URL)
		return b.Fallback(item)
	}

	content, err := r.Render(ctx, item.URL)
	if err != nil {
		log.Warnf("Failed to fetch %s: %v", item.URL, err)
		return b.Fallback(item)
	}

	page, err := extract.ParseHTML(content)
	if err != nil {
		log.Warnf("Failed to parse %s: %v", item.URL, err)
		return b.Fallback(item)
	}

	return b.Build(item, page)
}
