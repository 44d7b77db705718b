// domains.go exposes the controlled vocabularies so clients can populate
// pickers and validate input before submitting.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cigardb/cigardb/internal/api/httperr"
	"github.com/cigardb/cigardb/internal/vocab"
)

// DomainHandlers serves the vocabulary routes
type DomainHandlers struct {
	vocab *vocab.Store
}

// NewDomainHandlers creates the vocabulary handler set
func NewDomainHandlers(store *vocab.Store) *DomainHandlers {
	return &DomainHandlers{vocab: store}
}

// List returns every controlled vocabulary and its current value set
func (h *DomainHandlers) List(c *gin.Context) {
	domains, err := h.vocab.Get(c.Request.Context())
	if err != nil {
		httperr.Render(c, httperr.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": domains})
}
