package service

import (
	"context"
	"log"
	"sync"
	"time"

	"perks-dashboard-api/internal/aggregate"
	"perks-dashboard-api/internal/cache"
	"perks-dashboard-api/internal/events"
	"perks-dashboard-api/internal/features"
	"perks-dashboard-api/internal/getproven"
	"perks-dashboard-api/internal/models"
	"perks-dashboard-api/internal/normalize"
)

// Catalog is the upstream surface the facade consumes. Satisfied by
// *getproven.Client in production and by fakes in tests.
type Catalog interface {
	ListOffers(ctx context.Context, page, pageSize int, filters getproven.ListFilters) (*models.RawOfferList, error)
	FollowNextOffers(ctx context.Context, nextURL string) (*models.RawOfferList, error)
	ListVendors(ctx context.Context, page, pageSize int, filters getproven.ListFilters) (*models.RawVendorList, error)
	FollowNextVendors(ctx context.Context, nextURL string) (*models.RawVendorList, error)
	ListCategories(ctx context.Context) ([]models.RawCategory, error)
	GetVendor(ctx context.Context, id string) (*models.RawVendor, error)
	VendorClients(ctx context.Context, id string) ([]models.RawVendorClient, error)
	VendorContacts(ctx context.Context, id string) ([]models.RawVendorContact, error)
	Ping(ctx context.Context) error
}

const healthCacheKey = "health:upstream"

// Options tune the facade. The zero value is usable; defaults are
// filled in by New.
type Options struct {
	// FullPageSize is the page size used when an operation needs the
	// whole catalog client-side (aggregates, slug lookup).
	FullPageSize int
	// HealthTTL bounds staleness of the cached upstream health probe.
	HealthTTL time.Duration
	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time
}

// Service is the only entry point the HTTP layer depends on. It
// orchestrates client, normalizer and aggregation and translates every
// failure into the uniform Result envelope.
//
// Policy, asserted by tests: list fetches degrade to an empty-result
// success so the UI renders an empty state instead of an error banner;
// single-record fetches DO propagate NOT_FOUND and FETCH_ERROR.
type Service struct {
	catalog      Catalog
	cache        cache.Cache
	events       *events.Manager
	features     *features.Manager
	fullPageSize int
	healthTTL    time.Duration
	now          func() time.Time
}

// New creates a service facade.
func New(catalog Catalog, c cache.Cache, ev *events.Manager, ff *features.Manager, opts Options) *Service {
	if opts.FullPageSize <= 0 {
		opts.FullPageSize = 200
	}
	if opts.HealthTTL <= 0 {
		opts.HealthTTL = 30 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Service{
		catalog:      catalog,
		cache:        c,
		events:       ev,
		features:     ff,
		fullPageSize: opts.FullPageSize,
		healthTTL:    opts.HealthTTL,
		now:          opts.Clock,
	}
}

// ListPerks returns one page of normalized perks. When cursor is set
// it is followed verbatim (load-more mode); otherwise a fresh page is
// requested with the given filters. The admin view attaches the raw
// upstream record to every perk. Failures degrade to an empty page.
func (s *Service) ListPerks(ctx context.Context, page, pageSize int, filters getproven.ListFilters, cursor string, admin bool) Result[models.PerkPage] {
	started := s.now()

	var (
		list *models.RawOfferList
		err  error
	)
	if cursor != "" {
		list, err = s.catalog.FollowNextOffers(ctx, cursor)
	} else {
		list, err = s.catalog.ListOffers(ctx, page, pageSize, filters)
	}
	if err != nil {
		log.Printf("service: list perks degraded: %v", err)
		s.events.PublishCatalogDegraded(ctx, "list_perks", err.Error())
		return degraded(emptyPerkPage())
	}

	now := s.now()
	perks := make([]models.Perk, 0, len(list.Results))
	for i, raw := range list.Results {
		p := normalize.Perk(raw, now)
		if admin {
			p.Raw = &list.Results[i]
		}
		perks = append(perks, p)
	}

	s.events.PublishCatalogFetched(ctx, "list_perks", len(perks), s.now().Sub(started))

	return ok(models.PerkPage{
		Data: perks,
		Pagination: models.Pagination{
			Count:    list.Count,
			Next:     list.Next,
			Previous: list.Previous,
		},
	})
}

// GetPerk finds a single perk by upstream id or derived slug within
// the fetched set. Unlike list operations, failures here propagate:
// NOT_FOUND when no record matches, FETCH_ERROR on transport failure.
func (s *Service) GetPerk(ctx context.Context, idOrSlug string) Result[models.Perk] {
	perks, err := s.fullPerkSet(ctx)
	if err != nil {
		log.Printf("service: get perk %q: %v", idOrSlug, err)
		return fetchError[models.Perk]("failed to fetch perk")
	}

	for _, p := range perks {
		if p.ID == idOrSlug || p.Slug == idOrSlug {
			return ok(p)
		}
	}

	return notFound[models.Perk]("perk not found")
}

// FeaturedPerks returns the top perks for the dashboard hero strip.
// Failures degrade to an empty list.
func (s *Service) FeaturedPerks(ctx context.Context, limit int) Result[[]models.Perk] {
	perks, err := s.fullPerkSet(ctx)
	if err != nil {
		log.Printf("service: featured perks degraded: %v", err)
		s.events.PublishCatalogDegraded(ctx, "featured_perks", err.Error())
		return degraded([]models.Perk{})
	}

	return ok(aggregate.FeaturedPerks(perks, limit))
}

// RecommendedPerks returns category-diverse active perks excluding the
// given ids (typically the already-shown featured set). Failures
// degrade to an empty list.
func (s *Service) RecommendedPerks(ctx context.Context, excludeIDs []string, limit int) Result[[]models.Perk] {
	perks, err := s.fullPerkSet(ctx)
	if err != nil {
		log.Printf("service: recommended perks degraded: %v", err)
		s.events.PublishCatalogDegraded(ctx, "recommended_perks", err.Error())
		return degraded([]models.Perk{})
	}

	return ok(aggregate.RecommendedPerks(perks, excludeIDs, limit))
}

// SimilarPerks scores the catalog against the perk identified by
// idOrSlug. The target lookup follows single-record semantics; the
// scoring itself cannot fail.
func (s *Service) SimilarPerks(ctx context.Context, idOrSlug string, limit int) Result[[]models.Perk] {
	perks, err := s.fullPerkSet(ctx)
	if err != nil {
		log.Printf("service: similar perks %q: %v", idOrSlug, err)
		return fetchError[[]models.Perk]("failed to fetch perks")
	}

	var target *models.Perk
	for i := range perks {
		if perks[i].ID == idOrSlug || perks[i].Slug == idOrSlug {
			target = &perks[i]
			break
		}
	}
	if target == nil {
		return notFound[[]models.Perk]("perk not found")
	}

	return ok(aggregate.SimilarPerks(*target, perks, limit))
}

// ListCategories derives the category list with client-side perk
// counts, merged with the upstream category reference so empty
// categories still appear. Failures degrade to an empty list.
func (s *Service) ListCategories(ctx context.Context) Result[[]models.Category] {
	perks, err := s.fullPerkSet(ctx)
	if err != nil {
		log.Printf("service: list categories degraded: %v", err)
		s.events.PublishCatalogDegraded(ctx, "list_categories", err.Error())
		return degraded([]models.Category{})
	}

	categories := aggregate.Categories(perks)

	// The reference endpoint is best-effort: a failure only means
	// empty categories are missing from the merged list.
	if raw, err := s.catalog.ListCategories(ctx); err != nil {
		log.Printf("service: category reference fetch failed: %v", err)
	} else {
		categories = mergeReferenceCategories(categories, raw)
	}

	return ok(categories)
}

// ListVendors returns one page of normalized vendor profiles. Contact
// and client sub-resources are not fetched for list views. Failures
// degrade to an empty page.
func (s *Service) ListVendors(ctx context.Context, page, pageSize int, filters getproven.ListFilters, cursor string) Result[models.VendorPage] {
	var (
		list *models.RawVendorList
		err  error
	)
	if cursor != "" {
		list, err = s.catalog.FollowNextVendors(ctx, cursor)
	} else {
		list, err = s.catalog.ListVendors(ctx, page, pageSize, filters)
	}
	if err != nil {
		log.Printf("service: list vendors degraded: %v", err)
		s.events.PublishCatalogDegraded(ctx, "list_vendors", err.Error())
		return degraded(emptyVendorPage())
	}

	vendors := make([]models.Vendor, 0, len(list.Results))
	for _, raw := range list.Results {
		vendors = append(vendors, normalize.Vendor(raw, nil, nil, false))
	}

	return ok(models.VendorPage{
		Data: vendors,
		Pagination: models.Pagination{
			Count:    list.Count,
			Next:     list.Next,
			Previous: list.Previous,
		},
	})
}

// GetVendor assembles a vendor detail view. Profile, clients and
// contacts are independent upstream resources and are fetched
// concurrently, then joined. The profile fetch follows single-record
// semantics; failed sub-resources degrade to empty lists.
func (s *Service) GetVendor(ctx context.Context, id string, admin bool) Result[models.Vendor] {
	var (
		wg       sync.WaitGroup
		vendor   *models.RawVendor
		clients  []models.RawVendorClient
		contacts []models.RawVendorContact

		vendorErr, clientsErr, contactsErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		vendor, vendorErr = s.catalog.GetVendor(ctx, id)
	}()
	go func() {
		defer wg.Done()
		clients, clientsErr = s.catalog.VendorClients(ctx, id)
	}()
	go func() {
		defer wg.Done()
		contacts, contactsErr = s.catalog.VendorContacts(ctx, id)
	}()
	wg.Wait()

	if vendorErr != nil {
		log.Printf("service: get vendor %q: %v", id, vendorErr)
		if upstreamNotFound(vendorErr) {
			return notFound[models.Vendor]("vendor not found")
		}
		return fetchError[models.Vendor]("failed to fetch vendor")
	}

	if clientsErr != nil {
		log.Printf("service: vendor %q clients degraded: %v", id, clientsErr)
		clients = nil
	}
	if contactsErr != nil {
		log.Printf("service: vendor %q contacts degraded: %v", id, contactsErr)
		contacts = nil
	}

	return ok(normalize.Vendor(*vendor, clients, contacts, admin))
}

// Dashboard computes the aggregate dashboard figures over the full
// active perk set. Failures degrade to zeroed stats with the "No data"
// sentinel.
func (s *Service) Dashboard(ctx context.Context) Result[models.DashboardStats] {
	perks, err := s.fullPerkSet(ctx)
	if err != nil {
		log.Printf("service: dashboard stats degraded: %v", err)
		s.events.PublishCatalogDegraded(ctx, "dashboard_stats", err.Error())
		return degraded(models.DashboardStats{TotalValue: aggregate.NoDataSentinel})
	}

	return ok(aggregate.Stats(perks))
}

// Health probes the upstream API, caching the result for HealthTTL so
// a dashboard full of polling browsers cannot hammer the catalog. The
// cache write is last-write-wins; staleness within the TTL is
// acceptable by design.
func (s *Service) Health(ctx context.Context) models.HealthStatus {
	if s.features.IsEnabled(features.FeatureHealthCache) {
		var cached models.HealthStatus
		if err := cache.GetJSON(ctx, s.cache, healthCacheKey, &cached); err == nil {
			s.events.PublishHealthChecked(ctx, cached.Upstream, true)
			return cached
		}
	}

	status := models.HealthStatus{
		Status:    "ok",
		Upstream:  true,
		CheckedAt: s.now(),
	}
	if err := s.catalog.Ping(ctx); err != nil {
		log.Printf("service: upstream health probe failed: %v", err)
		status.Status = "degraded"
		status.Upstream = false
	}

	if s.features.IsEnabled(features.FeatureHealthCache) {
		if err := cache.SetJSON(ctx, s.cache, healthCacheKey, status, s.healthTTL); err != nil {
			log.Printf("service: health cache write failed: %v", err)
		}
	}

	s.events.PublishHealthChecked(ctx, status.Upstream, false)
	return status
}

// fullPerkSet fetches the catalog with the large configured page size
// and normalizes it. The upstream API has no server-side aggregation,
// so derived views scan the whole set client-side.
func (s *Service) fullPerkSet(ctx context.Context) ([]models.Perk, error) {
	list, err := s.catalog.ListOffers(ctx, 1, s.fullPageSize, getproven.ListFilters{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	perks := make([]models.Perk, 0, len(list.Results))
	for _, raw := range list.Results {
		perks = append(perks, normalize.Perk(raw, now))
	}
	return perks, nil
}

// mergeReferenceCategories appends upstream reference categories that
// have no perks yet, preserving derived ones (which carry counts).
func mergeReferenceCategories(derived []models.Category, reference []models.RawCategory) []models.Category {
	seen := make(map[string]bool, len(derived))
	for _, c := range derived {
		seen[c.Slug] = true
	}

	for _, raw := range reference {
		c := normalize.Category(raw.Name)
		if seen[c.Slug] {
			continue
		}
		seen[c.Slug] = true
		derived = append(derived, models.Category{
			ID:   c.ID,
			Name: c.Name,
			Slug: c.Slug,
		})
	}
	return derived
}

func upstreamNotFound(err error) bool {
	if httpErr, ok := err.(*getproven.UpstreamHTTPError); ok {
		return httpErr.StatusCode == 404
	}
	return false
}

func emptyPerkPage() models.PerkPage {
	return models.PerkPage{Data: []models.Perk{}}
}

func emptyVendorPage() models.VendorPage {
	return models.VendorPage{Data: []models.Vendor{}}
}
