package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riddlerbot/riddler/src/riddler/components/report"
	"github.com/riddlerbot/riddler/src/riddler/components/scoring"
	"github.com/riddlerbot/riddler/src/riddler/components/signals"
	"github.com/riddlerbot/riddler/src/x"
)

// countingExtractor wraps the real extractor to observe dedupe behaviour.
type countingExtractor struct {
	inner *signals.Extractor
	calls int
}

func (c *countingExtractor) Extract(rec signals.AccountRecord) signals.Bundle {
	c.calls++
	return c.inner.Extract(rec)
}

func newTestPipeline(t *testing.T) (*Pipeline, *countingExtractor) {
	t.Helper()
	extractor := &countingExtractor{inner: signals.NewExtractor(nil)}
	p := New(Config{
		TriggerPhrase: "riddle me this",
		BotUserID:     "bot-1",
		Extractor:     extractor,
		Engine:        scoring.NewEngine(scoring.DefaultConfig()),
		Renderer:      report.NewRenderer(280),
	})
	return p, extractor
}

func triggerTweet(id, authorID, parentID string) x.Tweet {
	return x.Tweet{
		ID:       id,
		Text:     "Riddle me this, is this account legit?",
		AuthorID: authorID,
		ReferencedTweets: []x.ReferencedTweet{
			{Type: "replied_to", ID: parentID},
		},
	}
}

func sampleBatch() *x.SearchResponse {
	return &x.SearchResponse{
		Data: []x.Tweet{
			triggerTweet("t1", "asker-1", "p1"),
			triggerTweet("t2", "asker-2", "p1"),
		},
		Includes: x.Includes{
			Tweets: []x.Tweet{
				{ID: "p1", AuthorID: "target-1", Text: "big announcement", CreatedAt: "2026-07-30T10:00:00Z"},
			},
			Users: []x.User{
				{
					ID:        "target-1",
					Username:  "target",
					Name:      "Target Account",
					CreatedAt: "2020-01-01T00:00:00Z",
					Verified:  true,
					PublicMetrics: &x.UserMetrics{
						FollowersCount: 500,
						FollowingCount: 400,
						TweetCount:     3000,
					},
				},
			},
		},
		Meta: x.SearchMeta{NewestID: "t2", ResultCount: 2},
	}
}

func TestProcessDeduplicatesByAuthor(t *testing.T) {
	p, extractor := newTestPipeline(t)

	outcomes := p.Process(sampleBatch())
	require.Len(t, outcomes, 2)

	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, outcomes[0].Result, outcomes[1].Result)
	assert.Equal(t, outcomes[0].Report, outcomes[1].Report)

	// Each outcome still addresses its own trigger.
	assert.Equal(t, "t1", outcomes[0].Event.ReplyTarget)
	assert.Equal(t, "t2", outcomes[1].Event.ReplyTarget)
	assert.Equal(t, "asker-1", outcomes[0].Event.RequesterID)
}

func TestProcessSkipsUnresolvableTriggers(t *testing.T) {
	p, extractor := newTestPipeline(t)

	batch := &x.SearchResponse{
		Data: []x.Tweet{
			// Parent tweet absent from the includes.
			triggerTweet("t1", "asker-1", "ghost"),
			// Not a reply at all.
			{ID: "t2", AuthorID: "asker-2", Text: "riddle me this"},
			// Parent present but its author profile is missing.
			triggerTweet("t3", "asker-3", "p2"),
		},
		Includes: x.Includes{
			Tweets: []x.Tweet{{ID: "p2", AuthorID: "unknown-user"}},
		},
	}

	outcomes := p.Process(batch)
	assert.Empty(t, outcomes)
	assert.Zero(t, extractor.calls)
}

func TestProcessIgnoresOwnPostsAndOtherText(t *testing.T) {
	p, _ := newTestPipeline(t)

	batch := sampleBatch()
	batch.Data = append(batch.Data,
		x.Tweet{ID: "t9", AuthorID: "bot-1", Text: "riddle me this", ReferencedTweets: []x.ReferencedTweet{{Type: "replied_to", ID: "p1"}}},
		x.Tweet{ID: "t10", AuthorID: "asker-9", Text: "unrelated chatter", ReferencedTweets: []x.ReferencedTweet{{Type: "replied_to", ID: "p1"}}},
	)

	outcomes := p.Process(batch)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.NotEqual(t, "t9", o.Event.TriggerID)
		assert.NotEqual(t, "t10", o.Event.TriggerID)
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	p, _ := newTestPipeline(t)

	assert.Nil(t, p.Process(nil))
	assert.Nil(t, p.Process(&x.SearchResponse{}))
}

func TestProcessScoresResolvedAccount(t *testing.T) {
	p, _ := newTestPipeline(t)

	outcomes := p.Process(sampleBatch())
	require.Len(t, outcomes, 2)

	res := outcomes[0].Result
	// Old, verified, balanced-ratio account lands in the trustworthy tier.
	assert.Equal(t, scoring.TierLikelyTrustworthy, res.Tier)
	assert.Contains(t, outcomes[0].Report, "@target")
}

func TestConvertUserDegradesPerField(t *testing.T) {
	rec := ConvertUser(&x.User{
		ID:        "u1",
		Username:  "someone",
		CreatedAt: "not-a-timestamp",
	}, nil)

	assert.Nil(t, rec.CreatedAt)
	assert.Nil(t, rec.Followers)
	assert.Equal(t, "someone", rec.Username)

	bundle := signals.NewExtractor(nil).Extract(rec)
	assert.True(t, bundle.Empty())
}
