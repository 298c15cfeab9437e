package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-celebrations/internal/config"
)

// DirectorySource lists organisation users, already de-paginated,
// for the given domains in order.
type DirectorySource interface {
	ListUsers(ctx context.Context, domains []string) ([]UserRecord, error)
}

// RosterSource lists the chat workspace members.
type RosterSource interface {
	ListMembers(ctx context.Context) ([]MemberRecord, error)
}

// Deliverer posts one message to a chat channel.
type Deliverer interface {
	Deliver(ctx context.Context, channel, text string) error
}

// Reporter receives the diagnostic emitted when a run has nothing to announce.
type Reporter interface {
	NoNotices(ctx context.Context, target time.Time, text string)
}

// LogReporter reports the empty-run diagnostic through slog.
type LogReporter struct{}

// NoNotices logs text at info level.
func (LogReporter) NoNotices(ctx context.Context, target time.Time, text string) {
	slog.InfoContext(ctx, text,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyTarget, target.Format(config.DateFormatDay),
	)
}

// RunConfig contains the resolved values of one run.
type RunConfig struct {
	AnniversaryFeedURL string
	BirthdayFeedURL    string
	FeedUser           string
	FeedPass           string

	// OffsetDays moves the target date: today + OffsetDays.
	OffsetDays int

	DirectoryDomains []string
	Channel          string

	// StrictSummaries aborts the run on a malformed summary instead of skipping the event.
	StrictSummaries bool

	// DryRun renders notices without delivering them.
	DryRun bool
}

// Pipeline wires the collaborators of a run. All fields except Reporter are required.
type Pipeline struct {
	Clock     Clock
	Fetcher   Fetcher
	Directory DirectorySource
	Roster    RosterSource
	Sink      Deliverer
	Formatter *Formatter
	Reporter  Reporter
}

// Run fetches both feeds, reconciles the selected events with the directory
// and the roster, and delivers one notice per event in feed order
// (anniversaries first). Stages run sequentially without retries.
//
// Feed, directory and roster failures abort the run before anything is sent.
// A failed delivery is logged and the remaining notices are still sent.
// When no event matches, the Reporter receives the diagnostic and nothing is posted.
func (p *Pipeline) Run(ctx context.Context, cfg RunConfig) ([]Notice, error) {
	if p.Clock == nil || p.Fetcher == nil || p.Directory == nil || p.Roster == nil || p.Sink == nil || p.Formatter == nil {
		return nil, errors.New(config.ErrSourceMissing)
	}

	start := time.Now()
	target := TargetDate(p.Clock.Now(), cfg.OffsetDays)
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyTarget, target.Format(config.DateFormatDay),
	)
	log.InfoContext(ctx, config.MsgRunStarted)

	// 1. Feeds
	var events []CelebrationEvent
	feeds := []struct {
		kind Kind
		url  string
	}{
		{Anniversary, cfg.AnniversaryFeedURL},
		{Birthday, cfg.BirthdayFeedURL},
	}
	for _, feed := range feeds {
		selected, err := p.collect(ctx, feed.kind, feed.url, target, cfg)
		if err != nil {
			return nil, err
		}
		events = append(events, selected...)
	}

	// 2. Directory
	users, err := p.Directory.ListUsers(ctx, cfg.DirectoryDomains)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	// 3. Roster
	members, err := p.Roster.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRosterUnavailable, err)
	}

	// 4. Enrich & format
	enriched := Reconcile(events, BuildDirectory(users))
	notices := p.Formatter.FormatAll(enriched, BuildRoster(members))

	// 5. Deliver
	if len(notices) == 0 {
		reporter := p.Reporter
		if reporter == nil {
			reporter = LogReporter{}
		}
		reporter.NoNotices(ctx, target, p.Formatter.NoNotices())
		return notices, nil
	}

	failed := p.deliver(ctx, cfg, notices)

	log.InfoContext(ctx, config.MsgRunFinished,
		config.LogKeyNotices, len(notices),
		config.LogKeyFailed, failed,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return notices, nil
}

// collect downloads one feed and gathers its events for target.
func (p *Pipeline) collect(ctx context.Context, kind Kind, feedURL string, target time.Time, cfg RunConfig) ([]CelebrationEvent, error) {
	body, err := p.Fetcher.Fetch(ctx, feedURL, cfg.FeedUser, cfg.FeedPass)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFeedUnavailable, kind, err)
	}
	defer func() { _ = body.Close() }()

	var events []CelebrationEvent
	for e, err := range ParseFeed(body, kind, target) {
		if err == nil {
			events = append(events, e)
			continue
		}

		var malformed *MalformedSummaryError
		if errors.As(err, &malformed) && !cfg.StrictSummaries {
			slog.WarnContext(ctx, config.MsgSkippedSummary,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyKind, kind.String(),
				config.LogKeySummary, malformed.Summary,
			)
			continue
		}
		return nil, err
	}
	return events, nil
}

// deliver sends every notice in order and returns how many failed.
func (p *Pipeline) deliver(ctx context.Context, cfg RunConfig, notices []Notice) int {
	failed := 0
	for _, n := range notices {
		if cfg.DryRun {
			slog.InfoContext(ctx, config.MsgNoticeDryRun,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyChannel, cfg.Channel,
				config.LogKeySummary, n.Text,
			)
			continue
		}

		if err := p.Sink.Deliver(ctx, cfg.Channel, n.Text); err != nil {
			failed++
			slog.WarnContext(ctx, config.MsgDeliveryFailed,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyChannel, cfg.Channel,
				config.LogKeyError, fmt.Errorf("%w: %w", ErrDeliveryFailed, err),
			)
			continue
		}
		slog.DebugContext(ctx, config.MsgNoticeSent,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyChannel, cfg.Channel,
		)
	}
	return failed
}
