// Package steam implements the Steam storefront collaborators: the per-app
// news feed and the title search API.
package steam

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sethvargo/go-retry"

	"steamwatch/internal/model"
)

const newsFeedURL = "https://store.steampowered.com/feeds/news/app/%s/"

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewsFeed fetches the per-app Steam news RSS feed.
type NewsFeed struct {
	client HTTPClient
}

// NewNewsFeed creates a NewsFeed with the given HTTP client.
func NewNewsFeed(client HTTPClient) *NewsFeed {
	return &NewsFeed{client: client}
}

// LatestNews returns the most recent news item for appID, or nil when the
// feed has no entries. Transient HTTP failures are retried with a short
// capped backoff before the error is returned.
func (n *NewsFeed) LatestNews(ctx context.Context, appID string) (*model.NewsItem, error) {
	var body []byte
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		b, err := fetchBody(ctx, n.client, fmt.Sprintf(newsFeedURL, url.PathEscape(appID)))
		if err != nil {
			return retry.RetryableError(err)
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch news feed: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse news feed: %w", err)
	}
	if len(feed.Items) == 0 {
		return nil, nil
	}

	item := feed.Items[0]
	return &model.NewsItem{
		Title:       item.Title,
		Link:        item.Link,
		PublishedAt: item.Published,
	}, nil
}

func fetchBody(ctx context.Context, client HTTPClient, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "SteamWatchBot/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
