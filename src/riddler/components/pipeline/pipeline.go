package pipeline

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/riddlerbot/riddler/src/riddler/components/scoring"
	"github.com/riddlerbot/riddler/src/riddler/components/signals"
	"github.com/riddlerbot/riddler/src/x"
)

// ErrMissingData reports a trigger whose parent post or author profile did
// not arrive in the batch. The trigger is skipped; the batch continues.
var ErrMissingData = errors.New("pipeline: missing data")

// TriggerEvent pairs one trigger reply with the resolved subject of analysis.
// Created from one batch, consumed in the same pass, never persisted.
type TriggerEvent struct {
	TriggerID    string
	RequesterID  string
	ParentID     string
	ParentAuthor signals.AccountRecord
	ReplyTarget  string
}

// Outcome is one fully processed trigger: the event, the score, and the
// rendered reply text.
type Outcome struct {
	Event  TriggerEvent
	Result scoring.Result
	Report string
}

// SignalSource derives a signal bundle from an account snapshot.
type SignalSource interface {
	Extract(signals.AccountRecord) signals.Bundle
}

// Scorer folds a bundle into a score result.
type Scorer interface {
	Score(signals.Bundle) scoring.Result
}

// Renderer turns a result into outbound reply text.
type Renderer interface {
	Render(scoring.Result, string) string
}

// Config wires the pipeline stages together.
type Config struct {
	TriggerPhrase string
	BotUserID     string
	Extractor     SignalSource
	Engine        Scorer
	Renderer      Renderer
}

// Pipeline drives one analysis pass over a batch: trigger detection, parent
// resolution, signal extraction, scoring, and rendering. A single trigger
// failing to resolve is skipped, never fatal to the batch.
type Pipeline struct {
	cfg    Config
	phrase string
}

func New(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		phrase: strings.ToLower(cfg.TriggerPhrase),
	}
}

// Process walks the batch once and returns one outcome per resolvable
// trigger. Triggers sharing a parent author reuse the score computed for the
// first one; signals are never extracted twice for the same account.
func (p *Pipeline) Process(batch *x.SearchResponse) []Outcome {
	if batch == nil || len(batch.Data) == 0 {
		return nil
	}

	type cached struct {
		result scoring.Result
		report string
	}
	byAuthor := make(map[string]cached)

	var outcomes []Outcome
	for _, trigger := range batch.Data {
		if trigger.AuthorID == p.cfg.BotUserID && p.cfg.BotUserID != "" {
			continue
		}
		if !strings.Contains(strings.ToLower(trigger.Text), p.phrase) {
			continue
		}

		event, err := resolve(trigger, batch)
		if err != nil {
			log.Printf("pipeline: skipping trigger %s: %v", trigger.ID, err)
			continue
		}
		author := event.ParentAuthor

		entry, ok := byAuthor[author.ID]
		if !ok {
			bundle := p.cfg.Extractor.Extract(author)
			result := p.cfg.Engine.Score(bundle)
			entry = cached{
				result: result,
				report: p.cfg.Renderer.Render(result, author.Username),
			}
			byAuthor[author.ID] = entry
		}

		outcomes = append(outcomes, Outcome{
			Event:  event,
			Result: entry.result,
			Report: entry.report,
		})
	}
	return outcomes
}

// resolve pairs one trigger with its parent post's author, all from data the
// batch already carries. No network calls happen past this point.
func resolve(trigger x.Tweet, batch *x.SearchResponse) (TriggerEvent, error) {
	parentID, ok := trigger.RepliedTo()
	if !ok {
		return TriggerEvent{}, fmt.Errorf("%w: not a reply", ErrMissingData)
	}

	parent := batch.TweetByID(parentID)
	if parent == nil {
		return TriggerEvent{}, fmt.Errorf("%w: parent %s not in batch", ErrMissingData, parentID)
	}

	author := batch.UserByID(parent.AuthorID)
	if author == nil {
		return TriggerEvent{}, fmt.Errorf("%w: author of parent %s not in batch", ErrMissingData, parentID)
	}

	return TriggerEvent{
		TriggerID:    trigger.ID,
		RequesterID:  trigger.AuthorID,
		ParentID:     parentID,
		ParentAuthor: ConvertUser(author, batch),
		ReplyTarget:  trigger.ID,
	}, nil
}
