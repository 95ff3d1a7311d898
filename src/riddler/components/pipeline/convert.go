package pipeline

import (
	"time"

	"github.com/riddlerbot/riddler/src/riddler/components/signals"
	"github.com/riddlerbot/riddler/src/x"
)

// ConvertUser is the validation boundary between the loosely shaped API
// payload and the typed AccountRecord the rest of the pipeline operates on.
// An unparseable field leaves its record slot nil so only the derived signal
// is lost.
func ConvertUser(u *x.User, batch *x.SearchResponse) signals.AccountRecord {
	rec := signals.AccountRecord{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.Name,
		Bio:         u.Description,
		Verified:    u.Verified,
	}

	if ts := u.ParsedCreatedAt(); !ts.IsZero() {
		created := ts
		rec.CreatedAt = &created
	}

	if m := u.PublicMetrics; m != nil {
		followers := m.FollowersCount
		following := m.FollowingCount
		rec.Followers = &followers
		rec.Following = &following
		rec.Activity.PostCount = m.TweetCount
	}

	if batch != nil {
		rec.Activity.OriginalPosts, rec.Activity.Reposts, rec.Activity.LastActiveAt =
			activityFromBatch(batch.AuthoredBy(u.ID))
	}

	return rec
}

// activityFromBatch summarizes whatever of the author's posts the batch
// happened to include. The counts are a sample, not a full history, which is
// all the single-fetch pipeline has to work with.
func activityFromBatch(tweets []x.Tweet) (originals, reposts int, lastActive *time.Time) {
	for _, t := range tweets {
		if t.IsRepost() {
			reposts++
		} else {
			originals++
		}
		if ts := t.ParsedCreatedAt(); !ts.IsZero() {
			if lastActive == nil || ts.After(*lastActive) {
				stamp := ts
				lastActive = &stamp
			}
		}
	}
	return originals, reposts, lastActive
}
