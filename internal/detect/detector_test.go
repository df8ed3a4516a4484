package detect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"steamwatch/internal/model"
	"steamwatch/internal/storage"
)

type stubGateway struct {
	item  *model.NewsItem
	err   error
	calls int
}

func (g *stubGateway) LatestNews(_ context.Context, _ string) (*model.NewsItem, error) {
	g.calls++
	return g.item, g.err
}

func newTestDetector(t *testing.T, gw Gateway) (*Detector, *storage.SQLite) {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, gw, log), store
}

var entry = model.WatchEntry{Tenant: "t1", AppID: "42", DisplayName: "Game"}

func TestDetectorNewOnFirstSight(t *testing.T) {
	ctx := context.Background()
	item := &model.NewsItem{Title: "v1", Link: "https://example.com/v1", PublishedAt: "Tue, 10 Jun 2025 17:03:12 +0000"}
	d, store := newTestDetector(t, &stubGateway{item: item})

	got, err := d.Evaluate(ctx, entry)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if diff := cmp.Diff(item, got); diff != "" {
		t.Errorf("first sight should be classified new (-want +got):\n%s", diff)
	}

	stored, err := store.GetLastSeen(ctx, "t1", "42")
	if err != nil {
		t.Fatalf("get last seen: %v", err)
	}
	if diff := cmp.Diff(item, stored); diff != "" {
		t.Errorf("last seen should be recorded (-want +got):\n%s", diff)
	}

	// The same item is a duplicate from now on.
	got, err = d.Evaluate(ctx, entry)
	if err != nil {
		t.Fatalf("re-evaluate: %v", err)
	}
	if got != nil {
		t.Errorf("expected duplicate after first sight, got %+v", got)
	}
}

func TestDetectorNoDuplicate(t *testing.T) {
	ctx := context.Background()
	item := &model.NewsItem{Title: "A", Link: "https://example.com/a"}
	d, store := newTestDetector(t, &stubGateway{item: item})

	if err := store.SetLastSeen(ctx, "t1", "42", *item); err != nil {
		t.Fatalf("seed last seen: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := d.Evaluate(ctx, entry)
		if err != nil {
			t.Fatalf("evaluate %d: %v", i, err)
		}
		if got != nil {
			t.Fatalf("evaluate %d: expected duplicate, got %+v", i, got)
		}
	}

	stored, err := store.GetLastSeen(ctx, "t1", "42")
	if err != nil {
		t.Fatalf("get last seen: %v", err)
	}
	if diff := cmp.Diff(item, stored); diff != "" {
		t.Errorf("last seen must not change on duplicates (-want +got):\n%s", diff)
	}
}

func TestDetectorNewOnChange(t *testing.T) {
	ctx := context.Background()
	v2 := &model.NewsItem{Title: "B", Link: "https://example.com/b", PublishedAt: "Wed, 11 Jun 2025 08:00:00 +0000"}
	d, store := newTestDetector(t, &stubGateway{item: v2})

	if err := store.SetLastSeen(ctx, "t1", "42", model.NewsItem{Title: "A"}); err != nil {
		t.Fatalf("seed last seen: %v", err)
	}

	got, err := d.Evaluate(ctx, entry)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if diff := cmp.Diff(v2, got); diff != "" {
		t.Errorf("changed title should be classified new (-want +got):\n%s", diff)
	}

	stored, err := store.GetLastSeen(ctx, "t1", "42")
	if err != nil {
		t.Fatalf("get last seen: %v", err)
	}
	if diff := cmp.Diff(v2, stored); diff != "" {
		t.Errorf("last seen should advance to the new item (-want +got):\n%s", diff)
	}
}

func TestDetectorSkipsEmptyFeed(t *testing.T) {
	ctx := context.Background()
	d, store := newTestDetector(t, &stubGateway{item: nil})

	got, err := d.Evaluate(ctx, entry)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != nil {
		t.Errorf("expected nothing to announce for empty feed, got %+v", got)
	}

	stored, err := store.GetLastSeen(ctx, "t1", "42")
	if err != nil {
		t.Fatalf("get last seen: %v", err)
	}
	if stored != nil {
		t.Errorf("empty feed must not create a last-seen record, got %+v", stored)
	}
}

func TestDetectorSkipsGatewayError(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{err: errors.New("boom")}
	d, store := newTestDetector(t, gw)

	got, err := d.Evaluate(ctx, entry)
	if err != nil {
		t.Fatalf("gateway failure must not surface as an error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nothing to announce on gateway failure, got %+v", got)
	}

	stored, err := store.GetLastSeen(ctx, "t1", "42")
	if err != nil {
		t.Fatalf("get last seen: %v", err)
	}
	if stored != nil {
		t.Errorf("gateway failure must not change state, got %+v", stored)
	}
	if gw.calls != 1 {
		t.Errorf("expected exactly one fetch, got %d", gw.calls)
	}
}
