package scoring

import (
	"fmt"

	"github.com/riddlerbot/riddler/src/riddler/components/signals"
)

// RiskTier is the final classification derived from the total score.
type RiskTier string

const (
	TierLikelyTrustworthy  RiskTier = "LIKELY_TRUSTWORTHY"
	TierProceedWithCaution RiskTier = "PROCEED_WITH_CAUTION"
	TierHighRisk           RiskTier = "HIGH_RISK"
)

// FactorKind names one scoring rule family.
type FactorKind string

const (
	FactorAccountAge     FactorKind = "account_age"
	FactorFollowerRatio  FactorKind = "follower_ratio"
	FactorVerified       FactorKind = "verified"
	FactorTrustedNetwork FactorKind = "trusted_network"
	FactorBioFlags       FactorKind = "bio_flags"
	FactorEngagement     FactorKind = "engagement"
	FactorMissingData    FactorKind = "missing_data"
)

// Factor is one contribution to the total score.
type Factor struct {
	Kind        FactorKind
	Points      int
	Explanation string
}

// Result is the immutable outcome of one scoring pass.
type Result struct {
	Total   int
	Factors []Factor
	Tier    RiskTier
}

// Config carries every weight and threshold the rule table uses. Deployments
// override individual fields on top of DefaultConfig.
type Config struct {
	MatureAgeDays      int
	EstablishedAgeDays int
	NewAgeDays         int
	MatureAgePoints    int
	EstablishedPoints  int
	NewAgePoints       int

	BalancedRatioMin    float64
	BalancedRatioMax    float64
	FarmRatioMin        float64
	BalancedRatioPoints int
	FarmRatioPoints     int

	VerifiedPoints int
	TrustedPoints  int

	BioFlagPoints int
	BioFlagFloor  int

	EngagementThreshold float64
	EngagementPoints    int

	TrustworthyMin int
	CautionMin     int
}

func DefaultConfig() Config {
	return Config{
		MatureAgeDays:      365,
		EstablishedAgeDays: 90,
		NewAgeDays:         30,
		MatureAgePoints:    2,
		EstablishedPoints:  1,
		NewAgePoints:       -1,

		BalancedRatioMin:    0.1,
		BalancedRatioMax:    10,
		FarmRatioMin:        100,
		BalancedRatioPoints: 1,
		FarmRatioPoints:     -1,

		VerifiedPoints: 2,
		TrustedPoints:  3,

		BioFlagPoints: -1,
		BioFlagFloor:  -2,

		EngagementThreshold: 0.5,
		EngagementPoints:    1,

		TrustworthyMin: 5,
		CautionMin:     3,
	}
}

// rule evaluates one row of the table. ok=false means the rule has nothing
// to say about this bundle and contributes no factor.
type rule func(cfg Config, b signals.Bundle) (Factor, bool)

// Rule order fixes the factor listing; the total is a plain sum and does not
// depend on it.
var rules = []rule{
	ageRule,
	ratioRule,
	verifiedRule,
	trustedRule,
	bioFlagRule,
	engagementRule,
}

// Engine scores signal bundles against the rule table. Stateless and
// deterministic: the same bundle always yields the same result.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Score folds the bundle through the rule table. A bundle with no usable
// signals still produces a result: total zero with one explanatory factor.
func (e *Engine) Score(b signals.Bundle) Result {
	if b.Empty() {
		return Result{
			Total: 0,
			Factors: []Factor{{
				Kind:        FactorMissingData,
				Points:      0,
				Explanation: "no profile data available for this account",
			}},
			Tier: e.tierFor(0),
		}
	}

	var (
		total   int
		factors []Factor
	)
	for _, r := range rules {
		f, ok := r(e.cfg, b)
		if !ok {
			continue
		}
		total += f.Points
		factors = append(factors, f)
	}

	return Result{Total: total, Factors: factors, Tier: e.tierFor(total)}
}

func (e *Engine) tierFor(total int) RiskTier {
	switch {
	case total >= e.cfg.TrustworthyMin:
		return TierLikelyTrustworthy
	case total >= e.cfg.CautionMin:
		return TierProceedWithCaution
	default:
		return TierHighRisk
	}
}

func ageRule(cfg Config, b signals.Bundle) (Factor, bool) {
	if !b.HasAge {
		return Factor{}, false
	}
	switch {
	case b.AccountAgeDays >= cfg.MatureAgeDays:
		return Factor{FactorAccountAge, cfg.MatureAgePoints,
			fmt.Sprintf("account is %d days old", b.AccountAgeDays)}, true
	case b.AccountAgeDays >= cfg.EstablishedAgeDays:
		return Factor{FactorAccountAge, cfg.EstablishedPoints,
			fmt.Sprintf("account is %d days old", b.AccountAgeDays)}, true
	case b.AccountAgeDays < cfg.NewAgeDays:
		return Factor{FactorAccountAge, cfg.NewAgePoints,
			fmt.Sprintf("account is only %d days old", b.AccountAgeDays)}, true
	}
	return Factor{}, false
}

func ratioRule(cfg Config, b signals.Bundle) (Factor, bool) {
	if !b.HasRatio {
		return Factor{}, false
	}
	switch {
	case b.FollowerRatio >= cfg.BalancedRatioMin && b.FollowerRatio <= cfg.BalancedRatioMax:
		return Factor{FactorFollowerRatio, cfg.BalancedRatioPoints,
			fmt.Sprintf("balanced follower ratio (%.1f)", b.FollowerRatio)}, true
	case b.FollowerRatio > cfg.FarmRatioMin:
		return Factor{FactorFollowerRatio, cfg.FarmRatioPoints,
			fmt.Sprintf("one-directional follower ratio (%.0f)", b.FollowerRatio)}, true
	}
	return Factor{}, false
}

func verifiedRule(cfg Config, b signals.Bundle) (Factor, bool) {
	if !b.Verified {
		return Factor{}, false
	}
	return Factor{FactorVerified, cfg.VerifiedPoints, "verified account"}, true
}

func trustedRule(cfg Config, b signals.Bundle) (Factor, bool) {
	if !b.TrustedMember {
		return Factor{}, false
	}
	return Factor{FactorTrustedNetwork, cfg.TrustedPoints, "member of the trusted network"}, true
}

func bioFlagRule(cfg Config, b signals.Bundle) (Factor, bool) {
	n := len(b.BioFlags)
	if n == 0 {
		return Factor{}, false
	}
	points := n * cfg.BioFlagPoints
	if points < cfg.BioFlagFloor {
		points = cfg.BioFlagFloor
	}
	return Factor{FactorBioFlags, points,
		fmt.Sprintf("%d risk pattern(s) in bio", n)}, true
}

func engagementRule(cfg Config, b signals.Bundle) (Factor, bool) {
	if !b.HasEngagement || b.Engagement < cfg.EngagementThreshold {
		return Factor{}, false
	}
	return Factor{FactorEngagement, cfg.EngagementPoints,
		fmt.Sprintf("healthy engagement (%.1f)", b.Engagement)}, true
}
