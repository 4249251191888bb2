package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"perks-dashboard-api/internal/cache"
	"perks-dashboard-api/internal/events"
	"perks-dashboard-api/internal/features"
	"perks-dashboard-api/internal/getproven"
	"perks-dashboard-api/internal/models"
	"perks-dashboard-api/internal/service"
)

// stubCatalog answers a fixed offer list. unavailable switches every
// call to a transport failure.
type stubCatalog struct {
	offers      []models.RawOffer
	unavailable bool
}

func (s *stubCatalog) ListOffers(ctx context.Context, page, pageSize int, filters getproven.ListFilters) (*models.RawOfferList, error) {
	if s.unavailable {
		return nil, &getproven.TransportError{Err: errors.New("upstream down")}
	}
	return &models.RawOfferList{Count: len(s.offers), Results: s.offers}, nil
}

func (s *stubCatalog) FollowNextOffers(ctx context.Context, nextURL string) (*models.RawOfferList, error) {
	return s.ListOffers(ctx, 1, 20, getproven.ListFilters{})
}

func (s *stubCatalog) ListVendors(ctx context.Context, page, pageSize int, filters getproven.ListFilters) (*models.RawVendorList, error) {
	if s.unavailable {
		return nil, &getproven.TransportError{Err: errors.New("upstream down")}
	}
	return &models.RawVendorList{}, nil
}

func (s *stubCatalog) FollowNextVendors(ctx context.Context, nextURL string) (*models.RawVendorList, error) {
	return s.ListVendors(ctx, 1, 20, getproven.ListFilters{})
}

func (s *stubCatalog) ListCategories(ctx context.Context) ([]models.RawCategory, error) {
	return nil, nil
}

func (s *stubCatalog) GetVendor(ctx context.Context, id string) (*models.RawVendor, error) {
	if id == "404" {
		return nil, &getproven.UpstreamHTTPError{StatusCode: 404, Detail: "not found"}
	}
	return &models.RawVendor{ID: json.Number(id), Name: "Acme Cloud"}, nil
}

func (s *stubCatalog) VendorClients(ctx context.Context, id string) ([]models.RawVendorClient, error) {
	return nil, nil
}

func (s *stubCatalog) VendorContacts(ctx context.Context, id string) ([]models.RawVendorContact, error) {
	return []models.RawVendorContact{
		{Name: "Ann", Role: "Sales Lead", Email: "ann@acme.test", Phone: "+1 555 0100"},
		{Name: "Bob", Role: "CEO", Email: "bob@acme.test"},
	}, nil
}

func (s *stubCatalog) Ping(ctx context.Context) error {
	if s.unavailable {
		return &getproven.TransportError{Err: errors.New("upstream down")}
	}
	return nil
}

func newTestRouter(catalog service.Catalog, adminView bool) chi.Router {
	ff := features.NewManager()
	ff.Register(features.FeatureAdminView, adminView, "")
	svc := service.New(catalog, cache.NewInMemoryCache(), events.NewManager(false), ff, service.Options{})
	h := NewHandler(svc, ff)

	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func doRequest(t *testing.T, router chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Expected JSON content type, got %q", ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
}

func testOffers() []models.RawOffer {
	return []models.RawOffer{
		{
			ID:            json.Number("12"),
			Title:         "50% off Datadog",
			Description:   "Half price monitoring for a year.",
			CompanyID:     json.Number("7"),
			CompanyName:   "Datadog",
			Category:      "Cloud Monitoring",
			DiscountValue: "50% off",
		},
		{
			ID:            json.Number("13"),
			Title:         "AWS Activate Credits",
			Description:   "Startup credits for the usual suspects.",
			CompanyID:     json.Number("8"),
			CompanyName:   "AWS",
			Category:      "Cloud Hosting",
			DiscountValue: "$5,000 credits",
		},
	}
}

func TestListPerksEndpoint(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, false)

	rec := doRequest(t, router, "/api/perks?page=1&page_size=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Data       []models.Perk     `json:"data"`
			Pagination models.Pagination `json:"pagination"`
		} `json:"data"`
		Degraded bool `json:"degraded"`
	}
	decodeBody(t, rec, &body)

	if !body.Success || body.Degraded {
		t.Errorf("Expected clean success envelope, got %+v", body)
	}
	if len(body.Data.Data) != 2 || body.Data.Pagination.Count != 2 {
		t.Errorf("Unexpected page: %+v", body.Data)
	}
	if body.Data.Data[0].Slug != "50-off-datadog" {
		t.Errorf("Unexpected slug: %q", body.Data.Data[0].Slug)
	}
}

func TestListPerksEndpoint_UpstreamDownStays200(t *testing.T) {
	router := newTestRouter(&stubCatalog{unavailable: true}, false)

	rec := doRequest(t, router, "/api/perks")
	if rec.Code != http.StatusOK {
		t.Fatalf("List endpoints must stay 200 on upstream failure, got %d", rec.Code)
	}

	var body struct {
		Success  bool `json:"success"`
		Degraded bool `json:"degraded"`
		Data     struct {
			Data []models.Perk `json:"data"`
		} `json:"data"`
	}
	decodeBody(t, rec, &body)

	if !body.Success || !body.Degraded {
		t.Errorf("Expected degraded success envelope, got %+v", body)
	}
	if body.Data.Data == nil || len(body.Data.Data) != 0 {
		t.Errorf("Expected empty data array, got %+v", body.Data.Data)
	}
}

func TestListPerksEndpoint_InvalidPageSize(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, false)

	rec := doRequest(t, router, "/api/perks?page_size=9999")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	var body models.ErrorResponse
	decodeBody(t, rec, &body)
	if body.Error == "" {
		t.Error("Expected an error message in the envelope")
	}
}

func TestGetPerkEndpoint_NotFound(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, false)

	rec := doRequest(t, router, "/api/perks/no-such-perk")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}

	var body struct {
		Success bool              `json:"success"`
		Error   *service.APIError `json:"error"`
	}
	decodeBody(t, rec, &body)

	if body.Success {
		t.Error("Expected failure envelope")
	}
	if body.Error == nil || body.Error.Code != service.CodeNotFound {
		t.Errorf("Expected NOT_FOUND code, got %+v", body.Error)
	}
}

func TestGetPerkEndpoint_BySlug(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, false)

	rec := doRequest(t, router, "/api/perks/aws-activate-credits")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data models.Perk `json:"data"`
	}
	decodeBody(t, rec, &body)
	if body.Data.ID != "13" {
		t.Errorf("Expected perk 13, got %q", body.Data.ID)
	}
}

func TestFeaturedEndpoint_BadLimit(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, false)

	rec := doRequest(t, router, "/api/perks/featured?limit=banana")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a non-numeric limit, got %d", rec.Code)
	}
}

func TestSimilarEndpoint(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, false)

	rec := doRequest(t, router, "/api/perks/12/similar")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestVendorEndpoint_FiltersContacts(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, true)

	rec := doRequest(t, router, "/api/vendors/7")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data models.Vendor `json:"data"`
	}
	decodeBody(t, rec, &body)

	if len(body.Data.Contacts) != 1 || body.Data.Contacts[0].Name != "Ann" {
		t.Fatalf("Expected only the sales contact, got %+v", body.Data.Contacts)
	}
	if body.Data.Contacts[0].Phone != "" {
		t.Error("Founder view must not expose phone numbers")
	}

	rec = doRequest(t, router, "/api/admin/vendors/7")
	decodeBody(t, rec, &body)
	if len(body.Data.Contacts) != 2 {
		t.Errorf("Admin view must keep all contacts, got %+v", body.Data.Contacts)
	}
	if body.Data.Contacts[0].Phone != "+1 555 0100" {
		t.Error("Admin view must keep phone numbers")
	}
}

func TestVendorEndpoint_NotFound(t *testing.T) {
	router := newTestRouter(&stubCatalog{}, false)

	rec := doRequest(t, router, "/api/vendors/404")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestAdminRoutes_HiddenWhenFlagOff(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, false)

	for _, path := range []string{"/api/admin/perks", "/api/admin/vendors/7"} {
		rec := doRequest(t, router, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404 with the flag off, got %d", path, rec.Code)
		}
	}
}

func TestAdminRoutes_ServedWhenFlagOn(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, true)

	rec := doRequest(t, router, "/api/admin/perks")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with the flag on, got %d", rec.Code)
	}
}

func TestAdminPerks_CarryRawRecords(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, true)

	var body struct {
		Data struct {
			Data []models.Perk `json:"data"`
		} `json:"data"`
	}

	rec := doRequest(t, router, "/api/perks")
	decodeBody(t, rec, &body)
	if body.Data.Data[0].Raw != nil {
		t.Error("Founder payload must not include raw records")
	}

	rec = doRequest(t, router, "/api/admin/perks")
	decodeBody(t, rec, &body)
	if body.Data.Data[0].Raw == nil {
		t.Fatal("Admin payload must include raw records")
	}
	if body.Data.Data[0].Raw.CompanyName != "Datadog" {
		t.Errorf("Raw record mismatch: %+v", body.Data.Data[0].Raw)
	}
}

func TestDashboardStatsEndpoint(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, false)

	rec := doRequest(t, router, "/api/dashboard/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Data models.DashboardStats `json:"data"`
	}
	decodeBody(t, rec, &body)

	if body.Data.TotalPerks != 2 || body.Data.ActivePerks != 2 {
		t.Errorf("Unexpected counts: %+v", body.Data)
	}
	if body.Data.TotalValue != "$5K+" {
		t.Errorf("Expected $5K+, got %q", body.Data.TotalValue)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubCatalog{}, false)

	rec := doRequest(t, router, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var status models.HealthStatus
	decodeBody(t, rec, &status)
	if status.Status != "ok" || !status.Upstream {
		t.Errorf("Unexpected health payload: %+v", status)
	}
}

func TestHealthEndpoint_UpstreamDown(t *testing.T) {
	router := newTestRouter(&stubCatalog{unavailable: true}, false)

	rec := doRequest(t, router, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	router := newTestRouter(&stubCatalog{offers: testOffers()}, false)

	rec := doRequest(t, router, "/api/categories")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Data []models.Category `json:"data"`
	}
	decodeBody(t, rec, &body)
	if len(body.Data) != 2 {
		t.Errorf("Expected 2 categories, got %+v", body.Data)
	}
}
