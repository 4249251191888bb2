package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perks-dashboard-api/internal/features"
	"perks-dashboard-api/internal/getproven"
	"perks-dashboard-api/internal/models"
	"perks-dashboard-api/internal/service"
	"perks-dashboard-api/internal/validation"
)

// Default limits for the derived perk rails.
const (
	defaultFeaturedLimit    = 6
	defaultRecommendedLimit = 8
	defaultSimilarLimit     = 4
)

// Handler provides HTTP handlers for the dashboard API.
type Handler struct {
	service  *service.Service
	features *features.Manager
}

// NewHandler creates a new handler instance.
func NewHandler(svc *service.Service, ff *features.Manager) *Handler {
	return &Handler{service: svc, features: ff}
}

// Routes mounts every founder-facing and admin route on the router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/perks", func(r chi.Router) {
			r.Get("/", h.ListPerks)
			r.Get("/featured", h.FeaturedPerks)
			r.Get("/recommended", h.RecommendedPerks)
			r.Get("/{idOrSlug}", h.GetPerk)
			r.Get("/{idOrSlug}/similar", h.SimilarPerks)
		})

		r.Get("/categories", h.ListCategories)

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", h.ListVendors)
			r.Get("/{id}", h.GetVendor)
		})

		r.Get("/dashboard/stats", h.DashboardStats)

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdminView)
			r.Get("/perks", h.ListPerksAdmin)
			r.Get("/vendors/{id}", h.GetVendorAdmin)
		})
	})

	r.Get("/health", h.Health)
}

// ListPerks handles GET /api/perks: the founder view.
// A cursor parameter switches to load-more mode: the opaque upstream
// cursor is followed verbatim and all other filters are ignored.
func (h *Handler) ListPerks(w http.ResponseWriter, r *http.Request) {
	h.listPerks(w, r, false)
}

// ListPerksAdmin handles GET /api/admin/perks: each perk additionally
// carries the raw upstream record.
func (h *Handler) ListPerksAdmin(w http.ResponseWriter, r *http.Request) {
	h.listPerks(w, r, true)
}

func (h *Handler) listPerks(w http.ResponseWriter, r *http.Request, admin bool) {
	q := r.URL.Query()

	page, err := validation.ParsePage(q.Get("page"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := validation.ParsePageSize(q.Get("page_size"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ordering, err := validation.ValidateOrdering(q.Get("ordering"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filters := getproven.ListFilters{
		Search:          validation.SanitizeString(q.Get("search")),
		Category:        validation.SanitizeString(q.Get("category")),
		InvestmentLevel: validation.SanitizeString(q.Get("investment_level")),
		Ordering:        ordering,
	}
	cursor := validation.SanitizeString(q.Get("cursor"))

	h.respondResult(w, h.service.ListPerks(r.Context(), page, pageSize, filters, cursor, admin))
}

// GetPerk handles GET /api/perks/{idOrSlug}.
func (h *Handler) GetPerk(w http.ResponseWriter, r *http.Request) {
	idOrSlug := validation.SanitizeString(chi.URLParam(r, "idOrSlug"))
	if idOrSlug == "" {
		h.respondError(w, http.StatusBadRequest, "perk id or slug is required")
		return
	}

	h.respondResult(w, h.service.GetPerk(r.Context(), idOrSlug))
}

// FeaturedPerks handles GET /api/perks/featured.
func (h *Handler) FeaturedPerks(w http.ResponseWriter, r *http.Request) {
	limit, err := validation.ParseLimit(r.URL.Query().Get("limit"), defaultFeaturedLimit)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondResult(w, h.service.FeaturedPerks(r.Context(), limit))
}

// RecommendedPerks handles GET /api/perks/recommended. The exclude
// parameter is a comma-separated id list, typically the featured rail.
func (h *Handler) RecommendedPerks(w http.ResponseWriter, r *http.Request) {
	limit, err := validation.ParseLimit(r.URL.Query().Get("limit"), defaultRecommendedLimit)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	excludeIDs := validation.ParseExcludeIDs(r.URL.Query().Get("exclude"))

	h.respondResult(w, h.service.RecommendedPerks(r.Context(), excludeIDs, limit))
}

// SimilarPerks handles GET /api/perks/{idOrSlug}/similar.
func (h *Handler) SimilarPerks(w http.ResponseWriter, r *http.Request) {
	idOrSlug := validation.SanitizeString(chi.URLParam(r, "idOrSlug"))
	if idOrSlug == "" {
		h.respondError(w, http.StatusBadRequest, "perk id or slug is required")
		return
	}
	limit, err := validation.ParseLimit(r.URL.Query().Get("limit"), defaultSimilarLimit)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondResult(w, h.service.SimilarPerks(r.Context(), idOrSlug, limit))
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.respondResult(w, h.service.ListCategories(r.Context()))
}

// ListVendors handles GET /api/vendors.
func (h *Handler) ListVendors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := validation.ParsePage(q.Get("page"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := validation.ParsePageSize(q.Get("page_size"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filters := getproven.ListFilters{
		Search: validation.SanitizeString(q.Get("search")),
	}
	cursor := validation.SanitizeString(q.Get("cursor"))

	h.respondResult(w, h.service.ListVendors(r.Context(), page, pageSize, filters, cursor))
}

// GetVendor handles GET /api/vendors/{id}: the founder view, with
// contacts role-filtered and phone numbers stripped.
func (h *Handler) GetVendor(w http.ResponseWriter, r *http.Request) {
	h.getVendor(w, r, false)
}

// GetVendorAdmin handles GET /api/admin/vendors/{id}: the unfiltered
// view.
func (h *Handler) GetVendorAdmin(w http.ResponseWriter, r *http.Request) {
	h.getVendor(w, r, true)
}

func (h *Handler) getVendor(w http.ResponseWriter, r *http.Request, admin bool) {
	id := validation.SanitizeString(chi.URLParam(r, "id"))
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "vendor id is required")
		return
	}

	h.respondResult(w, h.service.GetVendor(r.Context(), id, admin))
}

// DashboardStats handles GET /api/dashboard/stats.
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	h.respondResult(w, h.service.Dashboard(r.Context()))
}

// Health handles GET /health with the cached upstream probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.service.Health(r.Context())

	code := http.StatusOK
	if !status.Upstream {
		code = http.StatusServiceUnavailable
	}
	h.respondJSON(w, code, status)
}

// requireAdminView gates admin routes behind the admin_view feature
// flag. Gated-off routes answer 404 rather than 403 so the admin
// surface is not discoverable.
func (h *Handler) requireAdminView(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.features.IsEnabled(features.FeatureAdminView) {
			h.respondError(w, http.StatusNotFound, "not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// respondResult writes a facade Result with its embedded status code.
func (h *Handler) respondResult(w http.ResponseWriter, result interface{ StatusCode() int }) {
	h.respondJSON(w, result.StatusCode(), result)
}

// respondJSON sends a JSON response with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response with the given status code and message.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
