package bot

import (
	"fmt"
	"strings"

	"steamwatch/internal/model"
)

// FormatUpdate formats a new-update notification as a chat message.
func FormatUpdate(n model.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has a new update!\n\n", n.DisplayName)
	b.WriteString(n.Item.Title)
	if n.Item.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(n.Item.Link)
	}
	if n.Item.PublishedAt != "" {
		b.WriteString("\n")
		b.WriteString(n.Item.PublishedAt)
	}
	return b.String()
}

// FormatLatest formats an ad-hoc latest-news lookup.
func FormatLatest(name string, item model.NewsItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Latest update for %s:\n\n", name)
	b.WriteString(item.Title)
	if item.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Link)
	}
	if item.PublishedAt != "" {
		b.WriteString("\n")
		b.WriteString(item.PublishedAt)
	}
	return b.String()
}

// FormatWatchList formats a tenant's watched games for display.
func FormatWatchList(entries []model.WatchEntry) string {
	var b strings.Builder
	b.WriteString("Watched games:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s (App ID %s)", e.DisplayName, e.AppID)
	}
	return b.String()
}
