// cigars.go implements the public cigar endpoints. Listing is filter-driven:
// sub-Premium keys must narrow the search by at least one attribute before the
// catalog answers.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cigardb/cigardb/internal/api/httperr"
	"github.com/cigardb/cigardb/internal/config"
	"github.com/cigardb/cigardb/internal/db/models"
	"github.com/cigardb/cigardb/internal/db/repositories"
	"github.com/cigardb/cigardb/internal/middleware"
	"github.com/cigardb/cigardb/internal/moderation"
)

// CigarHandlers serves the /cigars routes
type CigarHandlers struct {
	cigars *repositories.CigarRepository
	svc    *moderation.Service
	cfg    *config.Config
}

// NewCigarHandlers creates the cigar handler set
func NewCigarHandlers(cigars *repositories.CigarRepository, svc *moderation.Service, cfg *config.Config) *CigarHandlers {
	return &CigarHandlers{cigars: cigars, svc: svc, cfg: cfg}
}

// cigarFilters builds the repository filter set from the request query
func cigarFilters(c *gin.Context) repositories.CigarFilters {
	return repositories.CigarFilters{
		Brand:     optional(c, "brand"),
		Name:      optional(c, "name"),
		Country:   optional(c, "country"),
		Vitola:    optional(c, "vitola"),
		Color:     optional(c, "color"),
		Strength:  optional(c, "strength"),
		Wrapper:   optional(c, "wrappers"),
		Binder:    optional(c, "binders"),
		Filler:    optional(c, "fillers"),
		SortField: c.Query("sort_field"),
		SortDesc:  c.Query("sort_direction") == "desc",
	}
}

// hasFilter reports whether at least one searchable attribute was supplied
func hasFilter(f repositories.CigarFilters) bool {
	for _, v := range []*string{f.Brand, f.Name, f.Country, f.Vitola, f.Color, f.Strength, f.Wrapper, f.Binder, f.Filler} {
		if v != nil {
			return true
		}
	}
	return false
}

// List returns approved cigars matching the query filters
func (h *CigarHandlers) List(c *gin.Context) {
	p, err := resolvePagination(c, h.cfg)
	if err != nil {
		httperr.Render(c, err)
		return
	}

	filters := cigarFilters(c)

	// An unfiltered scan of the full catalog is a Premium feature
	key := middleware.AccessKeyFrom(c)
	if !hasFilter(filters) && (key == nil || !key.AccessLevel.IsPremium()) {
		httperr.Render(c, httperr.MissingParameter("You must supply at least one field."))
		return
	}

	cigars, total, err := h.cigars.ListCigars(c.Request.Context(), filters, p.PageSize, p.Offset)
	if err != nil {
		httperr.Render(c, httperr.Internal(err))
		return
	}

	renderPage(c, p, cigars, total)
}

// Get returns a single approved cigar by ID
func (h *CigarHandlers) Get(c *gin.Context) {
	cigar, err := h.cigars.GetCigarByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Render(c, httperr.Internal(err))
		return
	}
	if cigar == nil || cigar.Status != models.StatusApproved {
		httperr.Render(c, httperr.NotFound("Cigar not found."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cigar})
}

// Create submits a new cigar against an existing brand
func (h *CigarHandlers) Create(c *gin.Context) {
	key := middleware.AccessKeyFrom(c)

	outcome, err := h.svc.SubmitCreate(c.Request.Context(), models.EntityCigar, key.AccessLevel, collectFields(c))
	if err != nil {
		httperr.Render(c, err)
		return
	}

	renderOutcome(c, outcome)
}

// Update submits changes to an approved cigar
func (h *CigarHandlers) Update(c *gin.Context) {
	key := middleware.AccessKeyFrom(c)

	fields := collectFields(c)
	if len(fields) == 0 {
		httperr.Render(c, httperr.MissingParameter("You must supply at least one field."))
		return
	}

	outcome, err := h.svc.SubmitUpdate(c.Request.Context(), models.EntityCigar, key.AccessLevel, key.ID, c.Param("id"), fields)
	if err != nil {
		httperr.Render(c, err)
		return
	}

	renderOutcome(c, outcome)
}

// Delete submits a cigar removal
func (h *CigarHandlers) Delete(c *gin.Context) {
	key := middleware.AccessKeyFrom(c)

	outcome, err := h.svc.SubmitDelete(c.Request.Context(), models.EntityCigar, key.AccessLevel, key.ID, c.Param("id"), c.Query("reason"))
	if err != nil {
		httperr.Render(c, err)
		return
	}

	renderOutcome(c, outcome)
}
