// Package detect implements the update detection algorithm: deciding whether
// a freshly fetched news item is new for a (tenant, title) pair and advancing
// the last-seen record when it is.
package detect

import (
	"context"
	"fmt"
	"log/slog"

	"steamwatch/internal/model"
	"steamwatch/internal/storage"
)

// Gateway returns the most recent news item for a title, or nil when the
// feed has no entries.
type Gateway interface {
	LatestNews(ctx context.Context, appID string) (*model.NewsItem, error)
}

// Detector classifies fetched news items as new or duplicate.
//
// The change signal is byte-for-byte title equality with the stored record.
// This tolerates feeds that republish the same link with updated metadata and
// avoids parsing source timestamps, at the cost of misclassifying an
// edited-in-place title or two distinct updates that share one. That
// approximation is accepted, not worked around.
type Detector struct {
	store   storage.Store
	gateway Gateway
	log     *slog.Logger
}

// New creates a Detector.
func New(store storage.Store, gateway Gateway, log *slog.Logger) *Detector {
	return &Detector{store: store, gateway: gateway, log: log}
}

// Evaluate fetches the latest news item for entry and decides whether it is
// new for the tenant. A new item is recorded as last seen before it is
// returned, so a later delivery failure cannot cause a repeat announcement.
// A nil result means there is nothing to announce: the feed was empty or
// unreachable (retried next sweep), or the item was already seen.
func (d *Detector) Evaluate(ctx context.Context, entry model.WatchEntry) (*model.NewsItem, error) {
	item, err := d.gateway.LatestNews(ctx, entry.AppID)
	if err != nil {
		d.log.Debug("fetch news",
			"tenant", entry.Tenant, "app_id", entry.AppID, "error", err)
		return nil, nil
	}
	if item == nil {
		return nil, nil
	}

	last, err := d.store.GetLastSeen(ctx, entry.Tenant, entry.AppID)
	if err != nil {
		return nil, fmt.Errorf("load last seen: %w", err)
	}
	if last != nil && last.Title == item.Title {
		return nil, nil
	}

	if err := d.store.SetLastSeen(ctx, entry.Tenant, entry.AppID, *item); err != nil {
		return nil, fmt.Errorf("record last seen: %w", err)
	}
	return item, nil
}
