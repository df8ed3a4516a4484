package steam

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"steamwatch/internal/model"
)

type mockTransport struct {
	mu         sync.Mutex
	body       string
	statusCode int
	err        error
	requests   []string
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req.URL.String())
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func (m *mockTransport) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func loadFixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

func TestLatestNews(t *testing.T) {
	xml := loadFixture(t, "../../testdata/steam_news.xml")
	feed := NewNewsFeed(&mockTransport{body: xml, statusCode: 200})

	got, err := feed.LatestNews(context.Background(), "975370")
	if err != nil {
		t.Fatalf("latest news: %v", err)
	}

	want := &model.NewsItem{
		Title:       "Patch 51.01 is live!",
		Link:        "https://store.steampowered.com/news/app/975370/view/5124019",
		PublishedAt: "Tue, 10 Jun 2025 17:03:12 +0000",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("news item mismatch (-want +got):\n%s", diff)
	}
}

func TestLatestNewsEmptyFeed(t *testing.T) {
	emptyFeed := `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`
	feed := NewNewsFeed(&mockTransport{body: emptyFeed, statusCode: 200})

	got, err := feed.LatestNews(context.Background(), "975370")
	if err != nil {
		t.Fatalf("latest news: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for empty feed, got %+v", got)
	}
}

func TestLatestNewsRetriesTransportErrors(t *testing.T) {
	transport := &mockTransport{err: errors.New("connection reset")}
	feed := NewNewsFeed(transport)

	_, err := feed.LatestNews(context.Background(), "975370")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	// Initial attempt plus two retries.
	if got := transport.requestCount(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestLatestNewsBadStatus(t *testing.T) {
	feed := NewNewsFeed(&mockTransport{body: "nope", statusCode: 503})

	_, err := feed.LatestNews(context.Background(), "975370")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestResolve(t *testing.T) {
	body := `{"total":2,"items":[{"type":"app","name":"Dwarf Fortress","id":975370},{"type":"app","name":"Dwarf Fortress Soundtrack","id":2268870}]}`
	transport := &mockTransport{body: body, statusCode: 200}
	r := NewResolver(transport)

	got, err := r.Resolve(context.Background(), "dwarf fortress")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	want := &App{ID: "975370", Name: "Dwarf Fortress"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolved app mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveNoResults(t *testing.T) {
	r := NewResolver(&mockTransport{body: `{"total":0,"items":[]}`, statusCode: 200})

	got, err := r.Resolve(context.Background(), "no such game")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for empty search result, got %+v", got)
	}
}

func TestResolveBadJSON(t *testing.T) {
	r := NewResolver(&mockTransport{body: "<html>busy</html>", statusCode: 200})

	if _, err := r.Resolve(context.Background(), "dwarf"); err == nil {
		t.Fatal("expected error for malformed search response")
	}
}
