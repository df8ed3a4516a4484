// Package watch implements per-tenant management of the watched title set.
package watch

import (
	"context"
	"strings"

	"steamwatch/internal/model"
	"steamwatch/internal/storage"
)

// Registry provides add, remove and list operations over a tenant's watched
// titles. Negative lookups are reported as outcome values, not errors.
type Registry struct {
	store storage.Store
}

// New creates a Registry on top of the given store.
func New(store storage.Store) *Registry {
	return &Registry{store: store}
}

// Removed describes a watch entry deleted by Remove.
type Removed struct {
	AppID       string
	DisplayName string
}

// Add registers appID under tenant. It reports false when the title was
// already watched; re-adding is a no-op, never an error.
func (r *Registry) Add(ctx context.Context, tenant, appID, displayName string) (bool, error) {
	return r.store.AddWatch(ctx, tenant, appID, displayName)
}

// Remove deletes the first watched title matching query: an exact app ID
// match wins, otherwise query is matched case-insensitively as a substring of
// each display name in store order. Returns nil when nothing matches.
//
// Substring matching keeps the first hit even when several display names
// share the query, so a short query can remove a different title than the
// user intended.
func (r *Registry) Remove(ctx context.Context, tenant, query string) (*Removed, error) {
	entries, err := r.store.ListWatches(ctx, tenant)
	if err != nil {
		return nil, err
	}

	match := findMatch(entries, query)
	if match == nil {
		return nil, nil
	}

	removed, err := r.store.RemoveWatch(ctx, tenant, match.AppID)
	if err != nil {
		return nil, err
	}
	if !removed {
		// Deleted concurrently between the list and the delete.
		return nil, nil
	}
	return &Removed{AppID: match.AppID, DisplayName: match.DisplayName}, nil
}

// List returns tenant's watch entries in store order.
func (r *Registry) List(ctx context.Context, tenant string) ([]model.WatchEntry, error) {
	return r.store.ListWatches(ctx, tenant)
}

func findMatch(entries []model.WatchEntry, query string) *model.WatchEntry {
	for i := range entries {
		if entries[i].AppID == query {
			return &entries[i]
		}
	}
	lowered := strings.ToLower(query)
	for i := range entries {
		if strings.Contains(strings.ToLower(entries[i].DisplayName), lowered) {
			return &entries[i]
		}
	}
	return nil
}
