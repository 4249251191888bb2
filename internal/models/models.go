package models

import "time"

// ValueType classifies what kind of benefit a perk carries.
type ValueType string

const (
	ValuePercentage ValueType = "percentage"
	ValueCredits    ValueType = "credits"
	ValueCustom     ValueType = "custom"
)

// PerkStatus is the derived lifecycle state of a perk.
type PerkStatus string

const (
	StatusActive  PerkStatus = "active"
	StatusExpired PerkStatus = "expired"
)

// RedemptionType says how a founder redeems a perk.
type RedemptionType string

const (
	RedeemCode    RedemptionType = "code"
	RedeemLink    RedemptionType = "link"
	RedeemContact RedemptionType = "contact"
)

// PerkValue is the parsed monetary shape of a perk's benefit.
// Amount is nil when no numeric substring could be extracted from the
// upstream free-text value; callers must not assume it is present.
type PerkValue struct {
	Type        ValueType `json:"type"`
	Amount      *float64  `json:"amount,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	Description string    `json:"description"`
}

// PerkCategory is derived 1:1 from the upstream free-text category field.
type PerkCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PerkProvider identifies the vendor behind a perk.
type PerkProvider struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Logo    string `json:"logo,omitempty"`
	Website string `json:"website,omitempty"`
}

// Redemption describes how a perk is claimed. Exactly one type is
// selected even when the raw record carries multiple signals.
type Redemption struct {
	Type         RedemptionType `json:"type"`
	Code         string         `json:"code,omitempty"`
	URL          string         `json:"url,omitempty"`
	Instructions string         `json:"instructions"`
}

// Perk is the stable internal representation of an upstream offer.
// Title, Slug, ShortDescription and Value.Description are always
// non-empty; the normalizer supplies fallbacks when the source field
// is missing.
type Perk struct {
	ID               string       `json:"id"`
	Slug             string       `json:"slug"`
	Title            string       `json:"title"`
	ShortDescription string       `json:"shortDescription"`
	FullDescription  string       `json:"fullDescription"`
	Category         PerkCategory `json:"category"`
	Provider         PerkProvider `json:"provider"`
	Value            PerkValue    `json:"value"`
	Status           PerkStatus   `json:"status"`
	Redemption       Redemption   `json:"redemption"`
	ExpiresAt        *time.Time   `json:"expiresAt,omitempty"`
	Featured         bool         `json:"featured"`

	// Retained upstream attributes used by the similarity scorer.
	DealType         string   `json:"dealType,omitempty"`
	OfferCategories  []string `json:"offerCategories,omitempty"`
	InvestmentLevels []string `json:"investmentLevels,omitempty"`

	// Raw echoes the upstream record before normalization. Populated
	// only for the admin view; never serialized for founders.
	Raw *RawOffer `json:"raw,omitempty"`
}

// EmployeeRange is a vendor head-count range; either bound may be
// absent independently of the other.
type EmployeeRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// VendorClient is one client reference on a vendor profile.
type VendorClient struct {
	Name     string `json:"name"`
	Logo     string `json:"logo,omitempty"`
	Verified bool   `json:"verified"`
}

// VendorContact is a contact person on a vendor profile. Phone is
// stripped by the normalizer for the non-admin view.
type VendorContact struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Vendor is the stable internal representation of a vendor profile.
type Vendor struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Logo         string          `json:"logo,omitempty"`
	Description  string          `json:"description"`
	Story        string          `json:"story,omitempty"` // sanitized plain text
	Website      string          `json:"website,omitempty"`
	LinkedIn     string          `json:"linkedin,omitempty"`
	Twitter      string          `json:"twitter,omitempty"`
	Employees    EmployeeRange   `json:"employees"`
	FoundedYear  *int            `json:"foundedYear,omitempty"`
	Services     []string        `json:"services"`
	Industries   []string        `json:"industries"`
	VendorGroups []string        `json:"vendorGroups"`
	Clients      []VendorClient  `json:"clients,omitempty"`
	Contacts     []VendorContact `json:"contacts,omitempty"`
}

// Category is a perk category together with the number of perks
// currently filed under it. The count is computed client-side; the
// upstream API offers no aggregation.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	PerkCount int    `json:"perkCount"`
}

// Pagination mirrors the upstream cursor envelope. Next and Previous
// are opaque URLs to be passed back through the cursor parameter.
type Pagination struct {
	Count    int     `json:"count"`
	Next     *string `json:"next,omitempty"`
	Previous *string `json:"previous,omitempty"`
}

// PerkPage is one page of perks plus its pagination cursor.
type PerkPage struct {
	Data       []Perk     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// VendorPage is one page of vendors plus its pagination cursor.
type VendorPage struct {
	Data       []Vendor   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// DashboardStats are the aggregate figures shown on the dashboard
// landing page. TotalValue is pre-formatted; the literal "No data" is
// a sentinel the UI special-cases.
type DashboardStats struct {
	TotalPerks  int    `json:"totalPerks"`
	ActivePerks int    `json:"activePerks"`
	TotalValue  string `json:"totalValue"`
}

// HealthStatus is the cached result of the upstream health probe.
type HealthStatus struct {
	Status    string    `json:"status"` // "ok" or "degraded"
	Upstream  bool      `json:"upstream"`
	CheckedAt time.Time `json:"checkedAt"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
