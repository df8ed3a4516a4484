package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

const storeSearchURL = "https://store.steampowered.com/api/storesearch/"

// App is a Steam title resolved from a free-text search.
type App struct {
	ID   string
	Name string
}

// Resolver maps a human-typed game name to a Steam app ID via the storefront
// search API.
type Resolver struct {
	client HTTPClient
}

// NewResolver creates a Resolver with the given HTTP client.
func NewResolver(client HTTPClient) *Resolver {
	return &Resolver{client: client}
}

// Resolve returns the best match for name, or nil when the search has no
// results.
func (r *Resolver) Resolve(ctx context.Context, name string) (*App, error) {
	q := url.Values{}
	q.Set("term", name)
	q.Set("l", "english")
	q.Set("cc", "US")

	body, err := fetchBody(ctx, r.client, storeSearchURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("search store: %w", err)
	}

	var result struct {
		Total int `json:"total"`
		Items []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode search result: %w", err)
	}
	if result.Total == 0 || len(result.Items) == 0 {
		return nil, nil
	}

	top := result.Items[0]
	return &App{
		ID:   strconv.FormatInt(top.ID, 10),
		Name: top.Name,
	}, nil
}
