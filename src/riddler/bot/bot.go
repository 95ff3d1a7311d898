package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riddlerbot/riddler/src/riddler/components"
	"github.com/riddlerbot/riddler/src/riddler/components/pipeline"
	"github.com/riddlerbot/riddler/src/riddler/components/trustnet"
	"github.com/riddlerbot/riddler/src/riddler/data"
	"github.com/riddlerbot/riddler/src/riddler/types"
	"github.com/riddlerbot/riddler/src/x"
)

const sinceCheckpoint = "search_since_id"

// Config wires the bot's collaborators.
type Config struct {
	DB           *gorm.DB
	XClient      *x.Client
	Trusted      *trustnet.Provider
	Pipeline     *pipeline.Pipeline
	SearchQuery  string
	UserCooldown time.Duration
}

// Bot runs the poll passes: fetch one batch, drive the pipeline, reply.
type Bot struct {
	cfg         Config
	rateLimiter *components.RateLimiter
	started     time.Time

	processed atomic.Int64
	replied   atomic.Int64
	skipped   atomic.Int64

	mu       sync.Mutex
	lastPoll time.Time
}

func New(cfg Config) *Bot {
	return &Bot{
		cfg:         cfg,
		rateLimiter: components.NewRateLimiter(cfg.UserCooldown),
		started:     time.Now(),
	}
}

// Poll runs one full pass. Per-trigger faults are logged and skipped; only a
// failure to fetch the batch itself aborts the pass, and only this pass.
func (b *Bot) Poll(ctx context.Context) error {
	b.mu.Lock()
	b.lastPoll = time.Now()
	b.mu.Unlock()

	sinceID := data.LoadCheckpoint(b.cfg.DB, sinceCheckpoint)

	batch, err := b.cfg.XClient.SearchRecent(ctx, b.cfg.SearchQuery, sinceID)
	if err != nil {
		if errors.Is(err, x.ErrRateLimited) {
			log.Printf("bot: search rate limited, will retry next pass")
			return nil
		}
		return fmt.Errorf("fetch batch: %w", err)
	}

	outcomes := b.cfg.Pipeline.Process(batch)
	log.Printf("bot: batch of %d posts produced %d outcomes", len(batch.Data), len(outcomes))

	for _, outcome := range outcomes {
		b.processed.Add(1)
		if err := b.handleOutcome(ctx, outcome); err != nil {
			log.Printf("bot: trigger %s: %v", outcome.Event.TriggerID, err)
		}
	}

	if batch.Meta.NewestID != "" {
		if err := data.SaveCheckpoint(b.cfg.DB, sinceCheckpoint, batch.Meta.NewestID); err != nil {
			log.Printf("bot: save checkpoint: %v", err)
		}
	}
	return nil
}

func (b *Bot) handleOutcome(ctx context.Context, outcome pipeline.Outcome) error {
	event := outcome.Event

	if data.TriggerAnswered(b.cfg.DB, event.TriggerID) {
		b.skipped.Add(1)
		return nil
	}

	if !b.rateLimiter.CanUse(event.RequesterID) {
		b.skipped.Add(1)
		log.Printf("bot: requester %s on cooldown (%s left), skipping trigger %s",
			event.RequesterID, b.rateLimiter.TimeUntilNext(event.RequesterID).Round(time.Second), event.TriggerID)
		return data.MarkTriggerAnswered(b.cfg.DB, event.TriggerID)
	}

	replyID, err := b.cfg.XClient.PostReply(ctx, outcome.Report, event.ReplyTarget)
	if err != nil {
		return fmt.Errorf("post reply: %w", err)
	}
	b.replied.Add(1)
	log.Printf("bot: replied %s to trigger %s (@%s scored %d, %s)",
		replyID, event.TriggerID, event.ParentAuthor.Username, outcome.Result.Total, outcome.Result.Tier)

	if err := data.MarkTriggerAnswered(b.cfg.DB, event.TriggerID); err != nil {
		log.Printf("bot: mark trigger answered: %v", err)
	}

	analysis := &types.Analysis{
		ID:           uuid.NewString(),
		TriggerID:    event.TriggerID,
		ParentID:     event.ParentID,
		AuthorID:     event.ParentAuthor.ID,
		AuthorHandle: event.ParentAuthor.Username,
		Score:        outcome.Result.Total,
		Tier:         string(outcome.Result.Tier),
		Report:       outcome.Report,
		CreatedAt:    time.Now().UTC(),
	}
	if err := data.SaveAnalysis(b.cfg.DB, analysis); err != nil {
		log.Printf("bot: save analysis: %v", err)
	}
	return nil
}

// RefreshTrusted reloads the trusted network snapshot. A fetch failure keeps
// the last good snapshot in place and never blocks analysis.
func (b *Bot) RefreshTrusted(ctx context.Context) error {
	if err := b.cfg.Trusted.Refresh(ctx); err != nil {
		log.Printf("bot: trusted list refresh failed, keeping %d ids: %v", b.cfg.Trusted.Size(), err)
		return err
	}
	log.Printf("bot: trusted list refreshed, %d ids", b.cfg.Trusted.Size())
	return nil
}

// Status accessors for the webserver.

func (b *Bot) Uptime() time.Duration { return time.Since(b.started) }

func (b *Bot) LastPoll() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastPoll
}

func (b *Bot) ProcessedCount() int64 { return b.processed.Load() }
func (b *Bot) RepliedCount() int64   { return b.replied.Load() }
func (b *Bot) SkippedCount() int64   { return b.skipped.Load() }
func (b *Bot) TrustedSize() int      { return b.cfg.Trusted.Size() }
