// Package model defines the domain types used across the application.
package model

import "time"

// WatchEntry is a single watched Steam title inside one tenant's watch set.
type WatchEntry struct {
	Tenant      string
	AppID       string
	DisplayName string
	CreatedAt   time.Time
}

// NewsItem is one entry from a title's news feed.
//
// PublishedAt is the timestamp string exactly as the feed provided it. It is
// displayed verbatim and never reparsed, so locale or format quirks in the
// source cannot break detection.
type NewsItem struct {
	Title       string
	Link        string
	PublishedAt string
}

// ChannelAssignment maps a tenant to the chat that receives its notifications.
type ChannelAssignment struct {
	Tenant    string
	ChannelID string
}

// Notification is an update event routed to a tenant's channel.
type Notification struct {
	Tenant      string
	AppID       string
	DisplayName string
	Item        NewsItem
}
