// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"steamwatch/internal/model"
)

// Store is the interface for all persistence operations. State is partitioned
// by tenant across three independent namespaces: the watch set, the last-seen
// news items, and the notification channel assignments.
type Store interface {
	// AddWatch registers appID under tenant. It reports false without error
	// when the title is already watched.
	AddWatch(ctx context.Context, tenant, appID, displayName string) (bool, error)
	// RemoveWatch deletes the watch entry and its last-seen record. It
	// reports false when the entry did not exist.
	RemoveWatch(ctx context.Context, tenant, appID string) (bool, error)
	// ListWatches returns tenant's watch entries in insertion order.
	ListWatches(ctx context.Context, tenant string) ([]model.WatchEntry, error)
	// ListWatchedTenants returns every tenant that has at least one watch
	// entry, ordered by when the tenant first appeared.
	ListWatchedTenants(ctx context.Context) ([]string, error)

	// GetLastSeen returns the last announced item for (tenant, appID), or
	// nil when the title has never been observed.
	GetLastSeen(ctx context.Context, tenant, appID string) (*model.NewsItem, error)
	// SetLastSeen records item as the most recent announced update.
	SetLastSeen(ctx context.Context, tenant, appID string, item model.NewsItem) error

	// SetChannel assigns the notification channel for tenant, replacing any
	// previous assignment.
	SetChannel(ctx context.Context, tenant, channelID string) error
	// GetChannel returns tenant's channel, or "" when none is assigned.
	GetChannel(ctx context.Context, tenant string) (string, error)

	Close() error
}
