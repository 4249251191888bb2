package getproven

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"perks-dashboard-api/internal/models"
)

// DefaultBaseURL is the production GetProven API root.
const DefaultBaseURL = "https://api.getproven.com/v1"

// ListFilters are the optional query parameters accepted by the list
// endpoints. Zero values are omitted from the query string entirely,
// never sent as empty strings.
type ListFilters struct {
	Search          string
	Category        string
	InvestmentLevel string
	Ordering        string
}

// Client is a thin authenticated wrapper around the GetProven catalog
// API. It performs a single attempt per call: no retries, no backoff,
// no timeout beyond whatever the underlying http.Client provides.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client for the given API root. An empty apiKey is
// a ConfigurationError: the caller should treat it as fatal rather
// than retrying per request.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, &ConfigurationError{Missing: "PROVEN_API_KEY"}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}, nil
}

// ListOffers fetches one page of deal records.
func (c *Client) ListOffers(ctx context.Context, page, pageSize int, filters ListFilters) (*models.RawOfferList, error) {
	u := c.listURL("/deals/", page, pageSize, filters)

	var list models.RawOfferList
	if err := c.get(ctx, u, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListVendors fetches one page of vendor profiles.
func (c *Client) ListVendors(ctx context.Context, page, pageSize int, filters ListFilters) (*models.RawVendorList, error) {
	u := c.listURL("/vendors/", page, pageSize, filters)

	var list models.RawVendorList
	if err := c.get(ctx, u, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListCategories fetches the category reference list. The endpoint is
// not paginated upstream.
func (c *Client) ListCategories(ctx context.Context) ([]models.RawCategory, error) {
	var categories []models.RawCategory
	if err := c.get(ctx, c.baseURL+"/categories/", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetVendor fetches a single vendor profile by upstream id.
func (c *Client) GetVendor(ctx context.Context, id string) (*models.RawVendor, error) {
	var vendor models.RawVendor
	if err := c.get(ctx, c.baseURL+"/vendors/"+url.PathEscape(id)+"/", &vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// VendorClients fetches the client references attached to a vendor.
func (c *Client) VendorClients(ctx context.Context, id string) ([]models.RawVendorClient, error) {
	var clients []models.RawVendorClient
	if err := c.get(ctx, c.baseURL+"/vendors/"+url.PathEscape(id)+"/clients/", &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// VendorContacts fetches the contact people attached to a vendor.
func (c *Client) VendorContacts(ctx context.Context, id string) ([]models.RawVendorContact, error) {
	var contacts []models.RawVendorContact
	if err := c.get(ctx, c.baseURL+"/vendors/"+url.PathEscape(id)+"/contacts/", &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// FollowNextOffers fetches an opaque pagination cursor returned in a
// previous offer list response. The cursor may encode filter and sort
// state the client does not otherwise track, so it is requested
// verbatim with the same auth header, never reconstructed from query
// parameters. Cursors pointing outside the configured API root are
// rejected.
func (c *Client) FollowNextOffers(ctx context.Context, nextURL string) (*models.RawOfferList, error) {
	if err := c.checkCursor(nextURL); err != nil {
		return nil, err
	}

	var list models.RawOfferList
	if err := c.get(ctx, nextURL, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// FollowNextVendors is FollowNextOffers for the vendor list endpoint.
func (c *Client) FollowNextVendors(ctx context.Context, nextURL string) (*models.RawVendorList, error) {
	if err := c.checkCursor(nextURL); err != nil {
		return nil, err
	}

	var list models.RawVendorList
	if err := c.get(ctx, nextURL, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Ping performs a minimal authenticated request to verify the upstream
// API is reachable. Used by the health check.
func (c *Client) Ping(ctx context.Context) error {
	var list models.RawOfferList
	return c.get(ctx, c.baseURL+"/deals/?page_size=1", &list)
}

// listURL builds a list endpoint URL, omitting any unset filter.
func (c *Client) listURL(path string, page, pageSize int, filters ListFilters) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.Category != "" {
		q.Set("offer_categories", filters.Category)
	}
	if filters.InvestmentLevel != "" {
		q.Set("investment_levels", filters.InvestmentLevel)
	}
	if filters.Ordering != "" {
		q.Set("ordering", filters.Ordering)
	}

	u := c.baseURL + path
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// checkCursor ensures an opaque cursor URL stays within the configured
// API root, so a tampered cursor cannot turn the client into an open
// proxy.
func (c *Client) checkCursor(cursor string) error {
	if cursor == "" {
		return &UpstreamHTTPError{StatusCode: http.StatusBadRequest, Detail: "empty pagination cursor"}
	}
	if !strings.HasPrefix(cursor, c.baseURL) {
		return &UpstreamHTTPError{
			StatusCode: http.StatusBadRequest,
			Detail:     fmt.Sprintf("pagination cursor outside API root: %s", cursor),
		}
	}
	return nil
}

// get performs a single authenticated GET and decodes the JSON body
// into out.
func (c *Client) get(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &TransportError{Err: err}
	}

	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}

// errorFromResponse turns a non-2xx response into an UpstreamHTTPError,
// preferring the upstream JSON error body and degrading to the HTTP
// status text when the body is not parseable.
func (c *Client) errorFromResponse(resp *http.Response) error {
	detail := http.StatusText(resp.StatusCode)

	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Detail != "" {
			detail = body.Detail
		} else if body.Error != "" {
			detail = body.Error
		}
	}

	return &UpstreamHTTPError{StatusCode: resp.StatusCode, Detail: detail}
}
