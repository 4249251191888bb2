package normalize

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"perks-dashboard-api/internal/models"
)

// Fallback literals supplied whenever the source field is missing.
// Downstream code relies on these fields being non-empty and never
// branches on nil/empty.
const (
	FallbackTitle       = "Untitled Perk"
	FallbackProvider    = "Unknown Provider"
	FallbackDescription = "No description available."
	FallbackValue       = "Special offer available"

	UncategorizedName = "Uncategorized"

	shortDescriptionLimit = 160
)

// categoryNamespace makes derived category/provider ids deterministic
// across processes.
var categoryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("perks-dashboard-api/categories"))

var (
	numberPattern   = regexp.MustCompile(`[0-9][0-9,]*`)
	nonSlugPattern  = regexp.MustCompile(`[^a-z0-9]+`)
	expirationForms = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"}
)

// GenerateSlug lowercases text, collapses every run of non-alphanumeric
// characters into a single hyphen and trims leading/trailing hyphens.
// If nothing survives, the fallback id is returned verbatim so routing
// always has a stable non-empty identifier.
func GenerateSlug(text, fallbackID string) string {
	slug := strings.ToLower(text)
	slug = nonSlugPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return fallbackID
	}
	return slug
}

// ParseValue extracts a PerkValue from the upstream free-text discount
// string. The first run of digits (commas stripped) becomes the
// amount; classification precedence is percentage, then credits, then
// custom. When no numeric substring is found, Amount stays nil.
func ParseValue(raw, discountType string) models.PerkValue {
	description := strings.TrimSpace(raw)
	if description == "" {
		description = FallbackValue
	}

	v := models.PerkValue{
		Type:        models.ValueCustom,
		Description: description,
	}

	if m := numberPattern.FindString(raw); m != "" {
		if amount, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64); err == nil {
			v.Amount = &amount
		}
	}

	lowerRaw := strings.ToLower(raw)
	lowerType := strings.ToLower(discountType)

	switch {
	case strings.Contains(raw, "%") || strings.Contains(lowerType, "percent"):
		v.Type = models.ValuePercentage
	case strings.Contains(raw, "$") || strings.Contains(lowerRaw, "credit") || strings.Contains(lowerType, "credit"):
		v.Type = models.ValueCredits
		if v.Amount != nil {
			v.Currency = "USD"
		}
	}

	return v
}

// ParseStatus derives a perk's lifecycle state at the given instant.
// An explicit inactive flag always wins; otherwise an expiration date
// strictly before now marks the perk expired. The result is never
// cached independently of re-normalization, so re-evaluating the same
// record later can legitimately flip it.
func ParseStatus(active *bool, expiresAt *time.Time, now time.Time) models.PerkStatus {
	if active != nil && !*active {
		return models.StatusExpired
	}
	if expiresAt != nil && expiresAt.Before(now) {
		return models.StatusExpired
	}
	return models.StatusActive
}

// ParseRedemptionType picks exactly one redemption channel: a promo
// code wins over a redemption URL, which wins over contact.
func ParseRedemptionType(promoCode, redemptionURL string) models.RedemptionType {
	switch {
	case strings.TrimSpace(promoCode) != "":
		return models.RedeemCode
	case strings.TrimSpace(redemptionURL) != "":
		return models.RedeemLink
	default:
		return models.RedeemContact
	}
}

// Perk maps one raw upstream offer into the stable internal shape,
// evaluated at the given instant.
func Perk(raw models.RawOffer, now time.Time) models.Perk {
	id := raw.ID.String()

	logMissingFields(id, raw)

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = FallbackTitle
	}

	providerName := strings.TrimSpace(raw.CompanyName)
	if providerName == "" {
		providerName = FallbackProvider
	}

	description := strings.TrimSpace(raw.Description)
	if description == "" {
		description = FallbackDescription
	}

	expiresAt := parseExpiration(raw.ExpirationDate)

	valueText := raw.DiscountValue
	if strings.TrimSpace(valueText) == "" {
		valueText = raw.EstimatedValue
	}

	redemptionType := ParseRedemptionType(raw.PromoCode, raw.RedemptionURL)
	redemption := models.Redemption{
		Type:         redemptionType,
		Instructions: strings.TrimSpace(raw.RedemptionInstructions),
	}
	switch redemptionType {
	case models.RedeemCode:
		redemption.Code = strings.TrimSpace(raw.PromoCode)
	case models.RedeemLink:
		redemption.URL = strings.TrimSpace(raw.RedemptionURL)
	}
	if redemption.Instructions == "" {
		redemption.Instructions = defaultInstructions(redemptionType)
	}

	providerID := raw.CompanyID.String()
	if providerID == "" {
		providerID = deterministicID(providerName)
	}

	return models.Perk{
		ID:               id,
		Slug:             GenerateSlug(title, id),
		Title:            title,
		ShortDescription: truncate(description, shortDescriptionLimit),
		FullDescription:  description,
		Category:         Category(raw.Category),
		Provider: models.PerkProvider{
			ID:      providerID,
			Name:    providerName,
			Logo:    raw.CompanyLogo,
			Website: raw.CompanyWebsite,
		},
		Value:            ParseValue(valueText, raw.DiscountType),
		Status:           ParseStatus(raw.Active, expiresAt, now),
		Redemption:       redemption,
		ExpiresAt:        expiresAt,
		DealType:         strings.TrimSpace(raw.DealType),
		OfferCategories:  names(raw.OfferCategories),
		InvestmentLevels: names(raw.InvestmentLevels),
	}
}

// Category derives a stable category from the upstream free-text
// category field. An absent value maps to "Uncategorized".
func Category(name string) models.PerkCategory {
	name = strings.TrimSpace(name)
	if name == "" {
		name = UncategorizedName
	}

	slug := GenerateSlug(name, "uncategorized")

	return models.PerkCategory{
		ID:   deterministicID(slug),
		Name: name,
		Slug: slug,
	}
}

// deterministicID derives a stable id from a name, for upstream
// records that carry none of their own.
func deterministicID(seed string) string {
	return uuid.NewSHA1(categoryNamespace, []byte(seed)).String()
}

// parseExpiration tolerates the handful of date layouts the upstream
// API has been observed to emit.
func parseExpiration(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range expirationForms {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// truncate shortens text to at most limit runes, breaking on the last
// word boundary that fits.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " .,;:") + "..."
}

func names(items []models.RawNamed) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if name := strings.TrimSpace(item.Name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func defaultInstructions(t models.RedemptionType) string {
	switch t {
	case models.RedeemCode:
		return "Use the code at checkout."
	case models.RedeemLink:
		return "Follow the link to claim this offer."
	default:
		return "Contact the vendor to redeem this offer."
	}
}

// logMissingFields emits a server-side-only diagnostic when a raw
// record lacks fields the dashboard relies on. Never surfaced in any
// API response.
func logMissingFields(id string, raw models.RawOffer) {
	var missing []string
	if strings.TrimSpace(raw.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(raw.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(raw.CompanyName) == "" {
		missing = append(missing, "company_name")
	}
	if len(missing) > 0 {
		log.Printf("normalize: offer %s missing fields: %s", id, strings.Join(missing, ", "))
	}
}
