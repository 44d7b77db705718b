// params.go holds the query-parameter plumbing shared by the brand and cigar
// handlers: field collection for submissions and tier-aware pagination.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cigardb/cigardb/internal/api/httperr"
	"github.com/cigardb/cigardb/internal/config"
	"github.com/cigardb/cigardb/internal/middleware"
	"github.com/cigardb/cigardb/internal/validation"
)

// reservedParams are query parameters with protocol meaning. They are never
// treated as entity fields.
var reservedParams = map[string]bool{
	"api_key":        true,
	"page":           true,
	"reason":         true,
	"notes":          true,
	"sort_field":     true,
	"sort_direction": true,
}

// collectFields turns the request's query parameters into a submission field
// map. List attributes are split on commas; everything else stays a string.
// Unknown field names pass through untouched and are rejected by validation.
func collectFields(c *gin.Context) validation.Fields {
	fields := validation.Fields{}
	for name, values := range c.Request.URL.Query() {
		if reservedParams[name] || len(values) == 0 {
			continue
		}
		if validation.IsListField(name) {
			fields[name] = validation.NormalizeList(values[0])
		} else {
			fields[name] = values[0]
		}
	}
	return fields
}

// pagination is the resolved paging window for a list request
type pagination struct {
	Page     int
	PageSize int // 0 means unlimited
	Offset   int
}

// resolvePagination reads the 1-based page parameter and applies the tier
// policy: sub-Premium keys page through results, Premium and above get the
// full set in one response.
func resolvePagination(c *gin.Context, cfg *config.Config) (*pagination, error) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, httperr.InvalidValue("The page parameter is invalid.")
		}
		page = parsed
	}

	pageSize := 0
	if key := middleware.AccessKeyFrom(c); key == nil || !key.AccessLevel.IsPremium() {
		pageSize = cfg.API.PageSize
	}

	return &pagination{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}, nil
}

// numberOfPages computes the page count for a result set
func (p *pagination) numberOfPages(total int) int {
	if total == 0 {
		return 0
	}
	if p.PageSize <= 0 {
		return 1
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// renderPage writes the list envelope, or the canonical empty-result error
// when nothing matched.
func renderPage[T any](c *gin.Context, p *pagination, items []T, total int) {
	if len(items) == 0 {
		httperr.Render(c, httperr.NotFound("No records found!"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"numberOfPages": p.numberOfPages(total),
		"currentPage":   p.Page,
		"data":          items,
	})
}

// optional returns a pointer to the query parameter value, or nil when the
// parameter is absent or empty
func optional(c *gin.Context, name string) *string {
	if v := c.Query(name); v != "" {
		return &v
	}
	return nil
}
