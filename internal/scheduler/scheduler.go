// Package scheduler drives the periodic sweep over all tenants and their
// watched titles.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"steamwatch/internal/detect"
	"steamwatch/internal/model"
	"steamwatch/internal/storage"
)

// Dispatcher delivers one update notification to a channel.
type Dispatcher interface {
	Deliver(ctx context.Context, channelID string, n model.Notification) error
}

// Options configures the sweep cadence and per-call timeouts.
type Options struct {
	Interval        time.Duration
	FetchTimeout    time.Duration
	DispatchTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 10 * time.Minute
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 30 * time.Second
	}
	if o.DispatchTimeout <= 0 {
		o.DispatchTimeout = 10 * time.Second
	}
	return o
}

// Scheduler runs a fixed-period sweep that evaluates every watched title and
// routes new updates to the Dispatcher.
type Scheduler struct {
	store      storage.Store
	detector   *detect.Detector
	dispatcher Dispatcher
	log        *slog.Logger
	opts       Options
}

// New creates a Scheduler.
func New(store storage.Store, det *detect.Detector, disp Dispatcher, log *slog.Logger, opts Options) *Scheduler {
	return &Scheduler{
		store:      store,
		detector:   det,
		dispatcher: disp,
		log:        log,
		opts:       opts.withDefaults(),
	}
}

// Run performs an immediate sweep, then sweeps on the configured interval
// until ctx is cancelled. A tick that fires while a sweep is still in flight
// is skipped; two sweeps never run concurrently.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: s.log})))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.opts.Interval), func() {
		s.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	s.Sweep(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Sweep runs one full pass over every tenant that has watched titles.
// Detection always runs so the last-seen record advances; dispatch is skipped
// for tenants without a channel assignment.
func (s *Scheduler) Sweep(ctx context.Context) {
	tenants, err := s.store.ListWatchedTenants(ctx)
	if err != nil {
		s.log.Error("list tenants", "error", err)
		return
	}

	for _, tenant := range tenants {
		if ctx.Err() != nil {
			return
		}
		s.sweepTenant(ctx, tenant)
	}
}

func (s *Scheduler) sweepTenant(ctx context.Context, tenant string) {
	entries, err := s.store.ListWatches(ctx, tenant)
	if err != nil {
		s.log.Error("list watches", "tenant", tenant, "error", err)
		return
	}

	channelID, err := s.store.GetChannel(ctx, tenant)
	if err != nil {
		s.log.Error("load channel", "tenant", tenant, "error", err)
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		s.processEntry(ctx, entry, channelID)
	}
}

// processEntry evaluates a single watched title. Failures are isolated here:
// one broken title never aborts the rest of the sweep.
func (s *Scheduler) processEntry(ctx context.Context, entry model.WatchEntry, channelID string) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	item, err := s.detector.Evaluate(fetchCtx, entry)
	cancel()
	if err != nil {
		s.log.Error("evaluate title",
			"tenant", entry.Tenant, "app_id", entry.AppID, "error", err)
		return
	}
	if item == nil {
		return
	}

	if channelID == "" {
		s.log.Debug("no channel assigned, update recorded without dispatch",
			"tenant", entry.Tenant, "app_id", entry.AppID)
		return
	}

	n := model.Notification{
		Tenant:      entry.Tenant,
		AppID:       entry.AppID,
		DisplayName: entry.DisplayName,
		Item:        *item,
	}
	dispatchCtx, cancel := context.WithTimeout(ctx, s.opts.DispatchTimeout)
	err = s.dispatcher.Deliver(dispatchCtx, channelID, n)
	cancel()
	if err != nil {
		// The last-seen record already advanced; a failed delivery counts as
		// announced rather than being retried as a duplicate.
		s.log.Error("deliver notification",
			"tenant", entry.Tenant, "app_id", entry.AppID,
			"channel_id", channelID, "error", err)
		return
	}

	s.log.Info("update announced",
		"tenant", entry.Tenant, "app_id", entry.AppID, "title", item.Title)
}

// cronLogger adapts slog to the cron.Logger interface. Skipped-tick notices
// arrive through Info and are kept at debug level.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
