// moderation.go implements the moderator queue endpoints under /moderate.
// Each queue is listed oldest-first; a PUT approves the queued item and a
// DELETE denies it, optionally recording reviewer notes.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cigardb/cigardb/internal/api/httperr"
	"github.com/cigardb/cigardb/internal/db/models"
	"github.com/cigardb/cigardb/internal/moderation"
)

// ModerationHandlers serves the /moderate routes
type ModerationHandlers struct {
	svc *moderation.Service
}

// NewModerationHandlers creates the moderation handler set
func NewModerationHandlers(svc *moderation.Service) *ModerationHandlers {
	return &ModerationHandlers{svc: svc}
}

// ListBrandCreates returns brands awaiting creation review
func (h *ModerationHandlers) ListBrandCreates(c *gin.Context) {
	brands, err := h.svc.ListCreateQueueBrands(c.Request.Context())
	if err != nil {
		httperr.Render(c, httperr.Internal(err))
		return
	}
	renderQueue(c, brands)
}

// ListCigarCreates returns cigars awaiting creation review
func (h *ModerationHandlers) ListCigarCreates(c *gin.Context) {
	cigars, err := h.svc.ListCreateQueueCigars(c.Request.Context())
	if err != nil {
		httperr.Render(c, httperr.Internal(err))
		return
	}
	renderQueue(c, cigars)
}

// ListRequests returns the pending update or delete requests for one entity
// type and kind
func (h *ModerationHandlers) ListRequests(entityType models.EntityType, kind models.RequestKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := h.svc.ListRequestQueue(c.Request.Context(), entityType, kind)
		if err != nil {
			httperr.Render(c, httperr.Internal(err))
			return
		}
		renderQueue(c, requests)
	}
}

// ApproveCreate approves a queued entity creation
func (h *ModerationHandlers) ApproveCreate(entityType models.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome, err := h.svc.ApproveCreate(c.Request.Context(), entityType, c.Param("id"))
		if err != nil {
			httperr.Render(c, err)
			return
		}
		renderOutcome(c, outcome)
	}
}

// DenyCreate denies a queued entity creation. Denying a brand also denies
// every cigar queued under that brand name.
func (h *ModerationHandlers) DenyCreate(entityType models.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome, err := h.svc.DenyCreate(c.Request.Context(), entityType, c.Param("id"), optional(c, "notes"))
		if err != nil {
			httperr.Render(c, err)
			return
		}
		renderOutcome(c, outcome)
	}
}

// ApproveRequest approves a pending update or delete request and applies it
// to the target entity
func (h *ModerationHandlers) ApproveRequest(c *gin.Context) {
	outcome, err := h.svc.ApproveRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Render(c, err)
		return
	}
	renderOutcome(c, outcome)
}

// DenyRequest denies a pending update or delete request, leaving the target
// entity untouched
func (h *ModerationHandlers) DenyRequest(c *gin.Context) {
	outcome, err := h.svc.DenyRequest(c.Request.Context(), c.Param("id"), optional(c, "notes"))
	if err != nil {
		httperr.Render(c, err)
		return
	}
	renderOutcome(c, outcome)
}

// renderQueue writes a moderation queue listing, or the canonical empty-result
// error when the queue is clear
func renderQueue[T any](c *gin.Context, items []T) {
	if len(items) == 0 {
		httperr.Render(c, httperr.NotFound("No records found!"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
