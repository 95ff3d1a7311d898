package signals

import (
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// MembershipChecker answers trusted-network lookups against the current
// snapshot. Implemented by trustnet.Provider.
type MembershipChecker interface {
	IsMember(id string) bool
}

// Extractor derives a Bundle from an AccountRecord. Pure with respect to the
// record: the only external input is the trusted-set membership lookup.
type Extractor struct {
	trusted   MembershipChecker
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewExtractor(trusted MembershipChecker) *Extractor {
	return &Extractor{
		trusted:   trusted,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

var (
	promoKeywords = []string{
		"follow back", "dm for promo", "cheap followers", "buy followers",
		"free giveaway", "promo code", "limited offer", "100% free",
	}
	cryptoKeywords = []string{
		"airdrop", "guaranteed returns", "pump group", "double your",
		"send eth", "send btc", "wallet drainer", "passive income daily",
	}
	shortlinkPattern = regexp.MustCompile(`(?i)\b(bit\.ly|tinyurl\.com|cutt\.ly|rb\.gy|is\.gd)/\S+`)
	bareHTTPPattern  = regexp.MustCompile(`(?i)\bhttp://\S+`)
)

// Extract computes every signal independently; a field missing from the
// record withholds that one signal and nothing else.
func (e *Extractor) Extract(rec AccountRecord) Bundle {
	b := Bundle{Verified: rec.Verified}

	if rec.CreatedAt != nil {
		days := int(e.now().Sub(*rec.CreatedAt).Hours() / 24)
		if days < 0 {
			days = 0
		}
		b.AccountAgeDays = days
		b.HasAge = true
	}

	if rec.Followers != nil && rec.Following != nil {
		following := *rec.Following
		if following < 1 {
			following = 1
		}
		b.FollowerRatio = float64(*rec.Followers) / float64(following)
		b.HasRatio = true
	}

	b.BioFlags = e.bioFlags(rec.Bio)

	// Public metrics present means activity counts are trustworthy even at zero.
	if rec.Followers != nil || rec.Activity.PostCount > 0 {
		b.Engagement = engagementScore(rec, b)
		b.HasEngagement = true
	}

	if e.trusted != nil && rec.ID != "" {
		b.TrustedMember = e.trusted.IsMember(rec.ID)
	}

	return b
}

// bioFlags runs the fixed pattern checks over the sanitized bio text.
// Flags are independent and may co-occur.
func (e *Extractor) bioFlags(bio string) []FlagKind {
	if strings.TrimSpace(bio) == "" {
		return nil
	}
	clean := strings.ToLower(e.sanitizer.Sanitize(bio))

	var flags []FlagKind
	if countHits(clean, promoKeywords) >= 2 {
		flags = append(flags, FlagPromoSpam)
	}
	if countHits(clean, cryptoKeywords) >= 1 {
		flags = append(flags, FlagCryptoScam)
	}
	if shortlinkPattern.MatchString(clean) || bareHTTPPattern.MatchString(clean) {
		flags = append(flags, FlagSuspiciousLink)
	}
	return flags
}

func countHits(text string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return hits
}

// engagementScore blends posting cadence against account age with the share
// of original posts, bounded to [0,1]. No recent activity scores zero.
func engagementScore(rec AccountRecord, b Bundle) float64 {
	if rec.Activity.PostCount == 0 {
		return 0
	}

	frequency := 0.0
	if b.HasAge && b.AccountAgeDays > 0 {
		postsPerWeek := float64(rec.Activity.PostCount) / float64(b.AccountAgeDays) * 7
		frequency = postsPerWeek / 7
		if frequency > 1 {
			frequency = 1
		}
	}

	originalShare := 1.0
	if total := rec.Activity.OriginalPosts + rec.Activity.Reposts; total > 0 {
		originalShare = float64(rec.Activity.OriginalPosts) / float64(total)
	}

	score := 0.6*frequency + 0.4*originalShare
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
