package aggregate

import (
	"sort"
	"strings"

	"perks-dashboard-api/internal/models"
)

// priorityCategories are the category slug substrings that push a perk
// into the top featured tier regardless of its parsed value.
var priorityCategories = []string{"cloud", "infrastructure", "developer", "payment", "finance"}

// Similarity weights. Deal type is the strongest signal, then shared
// taxonomy, then landing in the same coarse value bucket.
const (
	weightDealType        = 3
	weightSharedCategory  = 2
	weightInvestmentLevel = 2
	weightValueBucket     = 1
)

// FeaturedPerks picks up to limit active perks for the dashboard
// hero strip. Priority-category perks rank ahead of everything else;
// within a tier, higher parsed value wins (missing value counts as 0).
// Returned records are copies with Featured set; the input list is
// never mutated.
func FeaturedPerks(perks []models.Perk, limit int) []models.Perk {
	if limit <= 0 {
		return nil
	}

	active := make([]models.Perk, 0, len(perks))
	for _, p := range perks {
		if p.Status == models.StatusActive {
			active = append(active, p)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		pi, pj := isPriorityCategory(active[i].Category.Slug), isPriorityCategory(active[j].Category.Slug)
		if pi != pj {
			return pi
		}
		return amountOf(active[i]) > amountOf(active[j])
	})

	if len(active) > limit {
		active = active[:limit]
	}

	out := make([]models.Perk, len(active))
	for i, p := range active {
		p.Featured = true
		out[i] = p
	}
	return out
}

// RecommendedPerks picks up to limit active perks not in excludeIDs,
// keeping at most one perk per category slug in original list order so
// the recommendations stay diverse.
func RecommendedPerks(perks []models.Perk, excludeIDs []string, limit int) []models.Perk {
	if limit <= 0 {
		return nil
	}

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	seenCategories := make(map[string]bool)
	var out []models.Perk
	for _, p := range perks {
		if p.Status != models.StatusActive || excluded[p.ID] {
			continue
		}
		if seenCategories[p.Category.Slug] {
			continue
		}
		seenCategories[p.Category.Slug] = true

		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

// SimilarPerks scores every perk in the pool against the target and
// returns the top limit matches by score descending. Candidates from
// the target's own vendor are excluded. The sort is stable: ties keep
// original list order, so the displayed ordering is deterministic.
func SimilarPerks(target models.Perk, pool []models.Perk, limit int) []models.Perk {
	if limit <= 0 {
		return nil
	}

	type scored struct {
		perk  models.Perk
		score int
	}

	var candidates []scored
	for _, p := range pool {
		if p.ID == target.ID || p.Provider.ID == target.Provider.ID {
			continue
		}
		if s := similarityScore(target, p); s > 0 {
			candidates = append(candidates, scored{perk: p, score: s})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]models.Perk, len(candidates))
	for i, c := range candidates {
		out[i] = c.perk
	}
	return out
}

func similarityScore(target, candidate models.Perk) int {
	score := 0

	if target.DealType != "" && strings.EqualFold(target.DealType, candidate.DealType) {
		score += weightDealType
	}
	if sharesAny(target.OfferCategories, candidate.OfferCategories) {
		score += weightSharedCategory
	}
	if sharesAny(target.InvestmentLevels, candidate.InvestmentLevels) {
		score += weightInvestmentLevel
	}
	if valueBucket(amountOf(target)) == valueBucket(amountOf(candidate)) {
		score += weightValueBucket
	}

	return score
}

// valueBucket places an estimated value into one of four coarse
// buckets: <$1k, $1k-10k, $10k-100k, >=$100k.
func valueBucket(amount float64) int {
	switch {
	case amount < 1_000:
		return 0
	case amount < 10_000:
		return 1
	case amount < 100_000:
		return 2
	default:
		return 3
	}
}

func sharesAny(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[strings.ToLower(s)] = true
	}
	for _, s := range b {
		if set[strings.ToLower(s)] {
			return true
		}
	}
	return false
}

func isPriorityCategory(slug string) bool {
	for _, keyword := range priorityCategories {
		if strings.Contains(slug, keyword) {
			return true
		}
	}
	return false
}

func amountOf(p models.Perk) float64 {
	if p.Value.Amount == nil {
		return 0
	}
	return *p.Value.Amount
}
