package models

import "encoding/json"

// RawNamed is a {id, name} pair as the upstream API returns it for
// offer categories and investment levels.
type RawNamed struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// RawOffer is a deal record exactly as the GetProven API returns it.
// Field names are externally controlled and may change without notice;
// nothing outside the normalizer should touch these.
type RawOffer struct {
	ID                     json.Number `json:"id"`
	Title                  string      `json:"title"`
	Description            string      `json:"description"`
	CompanyID              json.Number `json:"company_id"`
	CompanyName            string      `json:"company_name"`
	CompanyLogo            string      `json:"company_logo"`
	CompanyWebsite         string      `json:"company_website"`
	Category               string      `json:"category"`
	DealType               string      `json:"deal_type"`
	DiscountValue          string      `json:"discount_value"`
	DiscountType           string      `json:"discount_type"`
	EstimatedValue         string      `json:"estimated_value"`
	Active                 *bool       `json:"active"`
	ExpirationDate         string      `json:"expiration_date"`
	PromoCode              string      `json:"promo_code"`
	RedemptionURL          string      `json:"redemption_url"`
	RedemptionInstructions string      `json:"redemption_instructions"`
	OfferCategories        []RawNamed  `json:"offer_categories"`
	InvestmentLevels       []RawNamed  `json:"investment_levels"`
}

// RawOfferList is the upstream paginated envelope for offers.
// Next and Previous are opaque cursor URLs and must be followed
// verbatim, never reconstructed.
type RawOfferList struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []RawOffer `json:"results"`
}

// RawVendor is a vendor profile record as the upstream API returns it.
type RawVendor struct {
	ID           json.Number `json:"id"`
	Name         string      `json:"name"`
	Logo         string      `json:"logo"`
	Description  string      `json:"description"`
	Story        string      `json:"story"` // HTML
	Website      string      `json:"website"`
	LinkedIn     string      `json:"linkedin_url"`
	Twitter      string      `json:"twitter_url"`
	EmployeesMin *int        `json:"employees_min"`
	EmployeesMax *int        `json:"employees_max"`
	FoundedYear  *int        `json:"founded_year"`
	Services     []RawNamed  `json:"services"`
	Industries   []RawNamed  `json:"industries"`
	VendorGroups []RawNamed  `json:"vendor_groups"`
}

// RawVendorList is the upstream paginated envelope for vendors.
type RawVendorList struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []RawVendor `json:"results"`
}

// RawVendorClient is a single client reference on a vendor profile.
type RawVendorClient struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Logo     string      `json:"logo"`
	Verified bool        `json:"verified"`
}

// RawVendorContact is a contact person attached to a vendor profile.
type RawVendorContact struct {
	ID    json.Number `json:"id"`
	Name  string      `json:"name"`
	Role  string      `json:"role"`
	Email string      `json:"email"`
	Phone string      `json:"phone"`
}

// RawCategory is a category record from the upstream categories endpoint.
type RawCategory struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}
