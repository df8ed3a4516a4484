package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"steamwatch/internal/model"
	"steamwatch/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Store backed by a SQLite database. Every logical
// read-modify-write is a single statement or transaction, so concurrent
// command handlers and the background sweep cannot lose updates to the same
// (tenant, namespace) pair.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// AddWatch registers appID under tenant. The conflict clause makes the
// duplicate check and the insert a single atomic step.
func (s *SQLite) AddWatch(ctx context.Context, tenant, appID, displayName string) (bool, error) {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO watches (tenant, app_id, display_name, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(tenant, app_id) DO NOTHING`,
		tenant, appID, displayName, now,
	)
	if err != nil {
		return false, fmt.Errorf("insert watch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// RemoveWatch deletes the watch entry and prunes its last-seen record in one
// transaction.
func (s *SQLite) RemoveWatch(ctx context.Context, tenant, appID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM last_seen WHERE tenant = ? AND app_id = ?`, tenant, appID); err != nil {
		return false, fmt.Errorf("delete last_seen: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM watches WHERE tenant = ? AND app_id = ?`, tenant, appID)
	if err != nil {
		return false, fmt.Errorf("delete watch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return n > 0, nil
}

// ListWatches returns tenant's watch entries in insertion order.
func (s *SQLite) ListWatches(ctx context.Context, tenant string) ([]model.WatchEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tenant, app_id, display_name, created_at
		 FROM watches WHERE tenant = ? ORDER BY rowid`, tenant,
	)
	if err != nil {
		return nil, fmt.Errorf("query watches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.WatchEntry
	for rows.Next() {
		var e model.WatchEntry
		var created string
		if err := rows.Scan(&e.Tenant, &e.AppID, &e.DisplayName, &created); err != nil {
			return nil, fmt.Errorf("scan watch: %w", err)
		}
		e.CreatedAt, _ = time.Parse(timeLayout, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListWatchedTenants returns every tenant with at least one watch entry.
func (s *SQLite) ListWatchedTenants(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tenant FROM watches GROUP BY tenant ORDER BY MIN(rowid)`,
	)
	if err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tenants []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// GetLastSeen returns the last announced item for (tenant, appID), or nil
// when the title has never been observed.
func (s *SQLite) GetLastSeen(ctx context.Context, tenant, appID string) (*model.NewsItem, error) {
	var item model.NewsItem
	err := s.db.QueryRowContext(ctx,
		`SELECT title, link, published_at FROM last_seen WHERE tenant = ? AND app_id = ?`,
		tenant, appID,
	).Scan(&item.Title, &item.Link, &item.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan last_seen: %w", err)
	}
	return &item, nil
}

// SetLastSeen records item as the most recent announced update for
// (tenant, appID), replacing any previous record.
func (s *SQLite) SetLastSeen(ctx context.Context, tenant, appID string, item model.NewsItem) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO last_seen (tenant, app_id, title, link, published_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(tenant, app_id) DO UPDATE SET
		   title = excluded.title,
		   link = excluded.link,
		   published_at = excluded.published_at,
		   updated_at = excluded.updated_at`,
		tenant, appID, item.Title, item.Link, item.PublishedAt, now,
	)
	if err != nil {
		return fmt.Errorf("upsert last_seen: %w", err)
	}
	return nil
}

// SetChannel assigns the notification channel for tenant. Last writer wins.
func (s *SQLite) SetChannel(ctx context.Context, tenant, channelID string) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO channels (tenant, channel_id, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(tenant) DO UPDATE SET
		   channel_id = excluded.channel_id,
		   updated_at = excluded.updated_at`,
		tenant, channelID, now,
	)
	if err != nil {
		return fmt.Errorf("upsert channel: %w", err)
	}
	return nil
}

// GetChannel returns tenant's channel, or "" when none is assigned.
func (s *SQLite) GetChannel(ctx context.Context, tenant string) (string, error) {
	var channelID string
	err := s.db.QueryRowContext(ctx,
		`SELECT channel_id FROM channels WHERE tenant = ?`, tenant,
	).Scan(&channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("scan channel: %w", err)
	}
	return channelID, nil
}
