package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/riddlerbot/riddler/src/riddler/components/scoring"
)

const (
	defaultLimit = 280
	maxFactors   = 3
	caveat       = "Heuristic check, not identity verification."
)

// Renderer turns a score result into the outbound reply text, bounded to the
// platform length limit.
type Renderer struct {
	limit int
}

func NewRenderer(limit int) *Renderer {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Renderer{limit: limit}
}

func tierEmoji(tier scoring.RiskTier) string {
	switch tier {
	case scoring.TierLikelyTrustworthy:
		return "🟢"
	case scoring.TierProceedWithCaution:
		return "🟡"
	default:
		return "🔴"
	}
}

func tierLabel(tier scoring.RiskTier) string {
	switch tier {
	case scoring.TierLikelyTrustworthy:
		return "Likely trustworthy"
	case scoring.TierProceedWithCaution:
		return "Proceed with caution"
	default:
		return "High risk"
	}
}

// Render builds the report: tier line, top factors by absolute point weight
// (ties keep rule order), and the caveat. When over budget it drops the
// lowest-weight factors first and only then truncates, never mid-word.
func (r *Renderer) Render(res scoring.Result, handle string) string {
	factors := topFactors(res.Factors, maxFactors)

	for {
		msg := r.compose(res, handle, factors)
		if utf8.RuneCountInString(msg) <= r.limit {
			return msg
		}
		if len(factors) == 0 {
			return truncateWords(msg, r.limit)
		}
		factors = factors[:len(factors)-1]
	}
}

func (r *Renderer) compose(res scoring.Result, handle string, factors []scoring.Factor) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s: @%s scores %+d", tierEmoji(res.Tier), tierLabel(res.Tier), handle, res.Total)
	for _, f := range factors {
		fmt.Fprintf(&sb, "\n%+d %s", f.Points, f.Explanation)
	}
	sb.WriteString("\n")
	sb.WriteString(caveat)
	return sb.String()
}

// topFactors orders by |points| descending; sort stability preserves the
// rule-evaluation order for equal weights.
func topFactors(factors []scoring.Factor, n int) []scoring.Factor {
	sorted := make([]scoring.Factor, len(factors))
	copy(sorted, factors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return abs(sorted[i].Points) > abs(sorted[j].Points)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// truncateWords cuts at the last whole word that fits the rune budget.
func truncateWords(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := runes[:limit]
	if idx := strings.LastIndexAny(string(cut), " \n"); idx > 0 {
		return strings.TrimRight(string(cut)[:idx], " \n")
	}
	return string(cut)
}
