package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSet map[string]struct{}

func (s staticSet) IsMember(id string) bool {
	_, ok := s[id]
	return ok
}

func testNow() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func newTestExtractor(trusted staticSet) *Extractor {
	e := NewExtractor(trusted)
	e.now = testNow
	return e
}

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestExtractAccountAge(t *testing.T) {
	e := newTestExtractor(nil)

	b := e.Extract(AccountRecord{
		ID:        "1",
		CreatedAt: timePtr(testNow().AddDate(0, 0, -100)),
	})
	require.True(t, b.HasAge)
	assert.Equal(t, 100, b.AccountAgeDays)

	// A creation timestamp in the future clamps to zero rather than going
	// negative.
	b = e.Extract(AccountRecord{
		ID:        "1",
		CreatedAt: timePtr(testNow().AddDate(0, 0, 3)),
	})
	require.True(t, b.HasAge)
	assert.Equal(t, 0, b.AccountAgeDays)

	b = e.Extract(AccountRecord{ID: "1"})
	assert.False(t, b.HasAge)
}

func TestExtractFollowerRatio(t *testing.T) {
	e := newTestExtractor(nil)

	tests := []struct {
		name      string
		followers *int
		following *int
		wantRatio float64
		wantHas   bool
	}{
		{"balanced", intPtr(200), intPtr(100), 2, true},
		{"zero following treated as one", intPtr(50), intPtr(0), 50, true},
		{"no audience at all", intPtr(0), intPtr(0), 0, true},
		{"metrics absent", nil, nil, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := e.Extract(AccountRecord{ID: "1", Followers: tc.followers, Following: tc.following})
			assert.Equal(t, tc.wantHas, b.HasRatio)
			if tc.wantHas {
				assert.InDelta(t, tc.wantRatio, b.FollowerRatio, 1e-9)
			}
		})
	}
}

func TestExtractBioFlags(t *testing.T) {
	e := newTestExtractor(nil)

	tests := []struct {
		name string
		bio  string
		want []FlagKind
	}{
		{"clean bio", "Software engineer. Espresso enthusiast.", nil},
		{"single promo keyword is not enough", "Running a free giveaway this week!", nil},
		{"promo spam", "Free giveaway! Use my promo code for a limited offer.", []FlagKind{FlagPromoSpam}},
		{"crypto marker", "Join our airdrop today", []FlagKind{FlagCryptoScam}},
		{"shortener link", "All my stuff: bit.ly/get-rich", []FlagKind{FlagSuspiciousLink}},
		{
			"flags co-occur",
			"Guaranteed returns! Free giveaway, promo code inside: tinyurl.com/x",
			[]FlagKind{FlagPromoSpam, FlagCryptoScam, FlagSuspiciousLink},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := e.Extract(AccountRecord{ID: "1", Bio: tc.bio})
			assert.Equal(t, tc.want, b.BioFlags)
		})
	}
}

func TestExtractEngagement(t *testing.T) {
	e := newTestExtractor(nil)

	// Metrics present but silent account: engagement is zero, not an error.
	b := e.Extract(AccountRecord{
		ID:        "1",
		Followers: intPtr(10),
		Following: intPtr(10),
	})
	require.True(t, b.HasEngagement)
	assert.Zero(t, b.Engagement)

	// Daily poster with only original posts saturates both components.
	b = e.Extract(AccountRecord{
		ID:        "1",
		CreatedAt: timePtr(testNow().AddDate(0, 0, -100)),
		Followers: intPtr(10),
		Following: intPtr(10),
		Activity:  Activity{PostCount: 100, OriginalPosts: 2, Reposts: 0},
	})
	require.True(t, b.HasEngagement)
	assert.InDelta(t, 1.0, b.Engagement, 1e-9)

	// Half reposts pull the original-share component down.
	b = e.Extract(AccountRecord{
		ID:        "1",
		CreatedAt: timePtr(testNow().AddDate(0, 0, -100)),
		Followers: intPtr(10),
		Following: intPtr(10),
		Activity:  Activity{PostCount: 100, OriginalPosts: 1, Reposts: 1},
	})
	assert.InDelta(t, 0.8, b.Engagement, 1e-9)
}

func TestExtractTrustedMembership(t *testing.T) {
	e := newTestExtractor(staticSet{"42": {}})

	assert.True(t, e.Extract(AccountRecord{ID: "42"}).TrustedMember)
	assert.False(t, e.Extract(AccountRecord{ID: "7"}).TrustedMember)
}

func TestEmptyRecordYieldsEmptyBundle(t *testing.T) {
	e := newTestExtractor(nil)

	b := e.Extract(AccountRecord{ID: "1"})
	assert.True(t, b.Empty())

	b = e.Extract(AccountRecord{ID: "1", Verified: true})
	assert.False(t, b.Empty())
}
