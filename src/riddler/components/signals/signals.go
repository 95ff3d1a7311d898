package signals

import (
	"time"
)

// FlagKind identifies one bio risk pattern.
type FlagKind string

const (
	FlagPromoSpam      FlagKind = "promo_spam"
	FlagCryptoScam     FlagKind = "crypto_scam"
	FlagSuspiciousLink FlagKind = "suspicious_link"
)

// Activity summarizes the recent posting behaviour visible in one batch.
type Activity struct {
	PostCount     int
	OriginalPosts int
	Reposts       int
	LastActiveAt  *time.Time
}

// AccountRecord is an immutable snapshot of one account, built once at the
// API conversion boundary. Optional fields are pointers so a missing value
// degrades only the signal derived from it.
type AccountRecord struct {
	ID          string
	Username    string
	DisplayName string
	CreatedAt   *time.Time
	Followers   *int
	Following   *int
	Bio         string
	Verified    bool
	Activity    Activity
}

// Bundle holds the typed signals derived from one AccountRecord. Built once
// per analysis and never mutated afterwards.
type Bundle struct {
	AccountAgeDays int
	HasAge         bool

	FollowerRatio float64
	HasRatio      bool

	Verified      bool
	TrustedMember bool

	BioFlags []FlagKind

	Engagement    float64
	HasEngagement bool
}

// Empty reports whether no usable signal could be derived, e.g. a suspended
// account whose record carried nothing beyond an ID.
func (b Bundle) Empty() bool {
	return !b.HasAge && !b.HasRatio && !b.HasEngagement &&
		!b.Verified && !b.TrustedMember && len(b.BioFlags) == 0
}
