package aggregate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"perks-dashboard-api/internal/models"
)

// NoDataSentinel is returned when the perk set carries no parsed value
// at all. The UI special-cases this literal and suppresses the
// "in savings" clause entirely.
const NoDataSentinel = "No data"

// TotalValue sums the parsed value of every active perk. Perks without
// a parsed amount contribute 0. Summation uses decimal arithmetic so
// large catalogs do not accumulate float drift.
func TotalValue(perks []models.Perk) decimal.Decimal {
	total := decimal.Zero
	for _, p := range perks {
		if p.Status != models.StatusActive || p.Value.Amount == nil {
			continue
		}
		total = total.Add(decimal.NewFromFloat(*p.Value.Amount))
	}
	return total
}

// FormatTotalValue renders a total as "$X.YM+" at or above one
// million, "$XK+" at or above one thousand, "$X+" above zero, and the
// "No data" sentinel otherwise. The tier is chosen from the raw sum
// first, then the displayed figure is rounded half-up to the tier's
// precision: 2500 renders as "$3K+" and 999999 as "$1000K+". The
// millions tier always shows one decimal place, so exactly one million
// is "$1.0M+".
func FormatTotalValue(total decimal.Decimal) string {
	million := decimal.NewFromInt(1_000_000)
	thousand := decimal.NewFromInt(1_000)

	switch {
	case total.GreaterThanOrEqual(million):
		return fmt.Sprintf("$%sM+", total.Div(million).StringFixed(1))
	case total.GreaterThanOrEqual(thousand):
		return fmt.Sprintf("$%sK+", total.Div(thousand).Round(0))
	case total.GreaterThan(decimal.Zero):
		return fmt.Sprintf("$%s+", total.Round(0))
	default:
		return NoDataSentinel
	}
}

// Stats computes the dashboard aggregate figures over the full
// (unpaginated-equivalent) perk set.
func Stats(perks []models.Perk) models.DashboardStats {
	active := 0
	for _, p := range perks {
		if p.Status == models.StatusActive {
			active++
		}
	}

	return models.DashboardStats{
		TotalPerks:  len(perks),
		ActivePerks: active,
		TotalValue:  FormatTotalValue(TotalValue(perks)),
	}
}

// Categories derives the category list, with per-category perk counts,
// from an already-normalized perk set. The upstream API offers no
// server-side aggregation, so counts are computed here.
func Categories(perks []models.Perk) []models.Category {
	counts := make(map[string]int)
	bySlug := make(map[string]models.PerkCategory)
	var order []string

	for _, p := range perks {
		slug := p.Category.Slug
		if _, seen := bySlug[slug]; !seen {
			bySlug[slug] = p.Category
			order = append(order, slug)
		}
		counts[slug]++
	}

	out := make([]models.Category, 0, len(order))
	for _, slug := range order {
		c := bySlug[slug]
		out = append(out, models.Category{
			ID:        c.ID,
			Name:      c.Name,
			Slug:      slug,
			PerkCount: counts[slug],
		})
	}
	return out
}
