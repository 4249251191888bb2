package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"perks-dashboard-api/internal/models"
)

// publicContactRoles are the role keywords a non-admin caller is
// allowed to see on a vendor profile. Matching is substring-based on
// the lowercased role.
var publicContactRoles = []string{"sales", "account", "partner", "support", "success"}

// Vendor maps a raw vendor profile plus its sub-resources into the
// stable internal shape. When admin is false, contacts are filtered to
// customer-facing roles and their phone numbers are stripped.
func Vendor(raw models.RawVendor, clients []models.RawVendorClient, contacts []models.RawVendorContact, admin bool) models.Vendor {
	id := raw.ID.String()

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = FallbackProvider
	}

	description := strings.TrimSpace(raw.Description)
	if description == "" {
		description = FallbackDescription
	}

	return models.Vendor{
		ID:           id,
		Name:         name,
		Slug:         GenerateSlug(name, id),
		Logo:         raw.Logo,
		Description:  description,
		Story:        StripHTML(raw.Story),
		Website:      raw.Website,
		LinkedIn:     raw.LinkedIn,
		Twitter:      raw.Twitter,
		Employees:    models.EmployeeRange{Min: raw.EmployeesMin, Max: raw.EmployeesMax},
		FoundedYear:  raw.FoundedYear,
		Services:     names(raw.Services),
		Industries:   names(raw.Industries),
		VendorGroups: names(raw.VendorGroups),
		Clients:      vendorClients(clients),
		Contacts:     vendorContacts(contacts, admin),
	}
}

// StripHTML reduces an upstream HTML fragment (vendor stories arrive
// as HTML) to whitespace-normalized plain text. Unparseable input
// falls back to the raw string.
func StripHTML(html string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}

	// Adjacent tags would otherwise concatenate their text nodes with
	// no separator ("<h1>a</h1><p>b</p>" -> "ab").
	separated := strings.ReplaceAll(html, "><", "> <")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(separated))
	if err != nil {
		return html
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

func vendorClients(raw []models.RawVendorClient) []models.VendorClient {
	if len(raw) == 0 {
		return nil
	}
	out := make([]models.VendorClient, 0, len(raw))
	for _, c := range raw {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		out = append(out, models.VendorClient{
			Name:     name,
			Logo:     c.Logo,
			Verified: c.Verified,
		})
	}
	return out
}

// vendorContacts role-filters and redacts contacts for the non-admin
// view. Admin callers get the list untouched.
func vendorContacts(raw []models.RawVendorContact, admin bool) []models.VendorContact {
	if len(raw) == 0 {
		return nil
	}

	out := make([]models.VendorContact, 0, len(raw))
	for _, c := range raw {
		contact := models.VendorContact{
			Name:  strings.TrimSpace(c.Name),
			Role:  strings.TrimSpace(c.Role),
			Email: strings.TrimSpace(c.Email),
			Phone: strings.TrimSpace(c.Phone),
		}
		if contact.Name == "" {
			continue
		}

		if !admin {
			if !publicRole(contact.Role) {
				continue
			}
			contact.Phone = ""
		}

		out = append(out, contact)
	}
	return out
}

func publicRole(role string) bool {
	lower := strings.ToLower(role)
	for _, keyword := range publicContactRoles {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
