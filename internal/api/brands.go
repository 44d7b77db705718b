// brands.go implements the public brand endpoints: filtered listing, lookup,
// and the three moderated mutations.
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

// BrandHandlers serves the /brands routes
type BrandHandlers struct {
	brands *repositories.BrandRepository
	svc    *moderation.Service
	cfg    *config.Config
}

// NewBrandHandlers creates the brand handler set
func NewBrandHandlers(brands *repositories.BrandRepository, svc *moderation.Service, cfg *config.Config) *BrandHandlers {
	return &BrandHandlers{brands: brands, svc: svc, cfg: cfg}
}

// List returns approved brands matching the query filters
func (h *BrandHandlers) List(c *gin.Context) {
	p, err := resolvePagination(c, h.cfg)
	if err != nil {
		httperr.Render(c, err)
		return
	}

	filters := repositories.BrandFilters{
		Name:      optional(c, "name"),
		Country:   optional(c, "country"),
		SortField: c.Query("sort_field"),
		SortDesc:  c.Query("sort_direction") == "desc",
	}

	brands, total, err := h.brands.ListBrands(c.Request.Context(), filters, p.PageSize, p.Offset)
	if err != nil {
		httperr.Render(c, httperr.Internal(err))
		return
	}

	renderPage(c, p, brands, total)
}

// Get returns a single approved brand by ID
func (h *BrandHandlers) Get(c *gin.Context) {
	brand, err := h.brands.GetBrandByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Render(c, httperr.Internal(err))
		return
	}
	if brand == nil || brand.Status != models.StatusApproved {
		httperr.Render(c, httperr.NotFound("Brand not found."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": brand})
}

// Create submits a new brand. Moderator submissions are approved immediately;
// everything else lands in the create queue.
func (h *BrandHandlers) Create(c *gin.Context) {
	key := middleware.AccessKeyFrom(c)

	outcome, err := h.svc.SubmitCreate(c.Request.Context(), models.EntityBrand, key.AccessLevel, collectFields(c))
	if err != nil {
		httperr.Render(c, err)
		return
	}

	renderOutcome(c, outcome)
}

// Update submits changes to an approved brand
func (h *BrandHandlers) Update(c *gin.Context) {
	key := middleware.AccessKeyFrom(c)

	fields := collectFields(c)
	if len(fields) == 0 {
		httperr.Render(c, httperr.MissingParameter("You must supply at least one field."))
		return
	}

	outcome, err := h.svc.SubmitUpdate(c.Request.Context(), models.EntityBrand, key.AccessLevel, key.ID, c.Param("id"), fields)
	if err != nil {
		httperr.Render(c, err)
		return
	}

	renderOutcome(c, outcome)
}

// Delete submits a brand removal
func (h *BrandHandlers) Delete(c *gin.Context) {
	key := middleware.AccessKeyFrom(c)

	outcome, err := h.svc.SubmitDelete(c.Request.Context(), models.EntityBrand, key.AccessLevel, key.ID, c.Param("id"), c.Query("reason"))
	if err != nil {
		httperr.Render(c, err)
		return
	}

	renderOutcome(c, outcome)
}

// renderOutcome writes a moderation outcome as the standard mutation envelope
func renderOutcome(c *gin.Context, outcome *moderation.Outcome) {
	body := gin.H{"message": outcome.Message}
	if outcome.ID != "" {
		body["data"] = gin.H{"id": outcome.ID}
	}
	c.JSON(outcome.Status, body)
}
