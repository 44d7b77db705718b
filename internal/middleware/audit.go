// audit.go provides Gin middleware that records authenticated operations to
// the audit log, with optional shipping to external audit destinations.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cigardb/cigardb/internal/audit"
	"github.com/cigardb/cigardb/internal/config"
	"github.com/cigardb/cigardb/internal/db/models"
	"github.com/cigardb/cigardb/internal/db/repositories"
	"github.com/cigardb/cigardb/internal/safego"
)

// AuditMiddleware logs authenticated actions to the database only
func AuditMiddleware(auditRepo *repositories.AuditRepository, logger *slog.Logger) gin.HandlerFunc {
	return AuditMiddlewareWithShipper(auditRepo, nil, nil, logger)
}

// AuditMiddlewareWithShipper logs authenticated actions and ships them to
// external destinations. The entry is written after the response, on a
// background goroutine, so audit persistence never adds latency to the
// request path.
func AuditMiddlewareWithShipper(auditRepo *repositories.AuditRepository, shipper audit.Shipper, auditCfg *config.AuditConfig, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "OPTIONS" {
			return
		}

		logReadOps := auditCfg != nil && auditCfg.LogReadOperations
		logFailedReqs := auditCfg != nil && auditCfg.LogFailedRequests

		isReadOp := c.Request.Method == "GET"
		isFailed := c.Writer.Status() >= 400

		// Default behavior: only log write operations
		if isReadOp && !logReadOps {
			return
		}
		if isFailed && !logFailedReqs {
			return
		}

		path := c.Request.URL.Path
		entry := &models.AuditLog{
			Action:    auditAction(c.Request.Method, path),
			CreatedAt: time.Now(),
		}

		ipAddress := c.ClientIP()
		if ipAddress != "" {
			entry.IPAddress = &ipAddress
		}

		if key := AccessKeyFrom(c); key != nil {
			keyID := key.ID
			level := int(key.AccessLevel)
			entry.APIKey = &keyID
			entry.AccessLevel = &level
		}

		if rt := resourceTypeFor(path); rt != "" {
			entry.ResourceType = &rt
		}
		if id := c.Param("id"); id != "" {
			resourceID := id
			entry.ResourceID = &resourceID
		}

		statusCode := c.Writer.Status()
		entry.StatusCode = &statusCode
		entry.Metadata = map[string]interface{}{
			"status_code": statusCode,
			"query":       sanitizedQuery(c),
		}
		if reqID, ok := c.Get(RequestIDKey); ok {
			entry.Metadata["request_id"] = reqID
		}

		safego.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if auditRepo != nil {
				if err := auditRepo.CreateAuditLog(ctx, entry); err != nil {
					logger.Error("failed to write audit log", "action", entry.Action, "error", err)
				}
			}

			if shipper != nil {
				shipped := &audit.LogEntry{
					Timestamp:    entry.CreatedAt,
					Action:       entry.Action,
					ResourceType: deref(entry.ResourceType),
					ResourceID:   deref(entry.ResourceID),
					AccessKeyID:  deref(entry.APIKey),
					IPAddress:    ipAddress,
					StatusCode:   statusCode,
					Metadata:     entry.Metadata,
				}
				if err := shipper.Ship(ctx, shipped); err != nil {
					logger.Error("failed to ship audit log", "action", entry.Action, "error", err)
				}
			}
		})
	}
}

// auditAction names the recorded action. Moderation resolutions get explicit
// names; everything else is the method and path.
func auditAction(method, path string) string {
	if strings.Contains(path, "/moderate/") {
		switch method {
		case "PUT":
			return "moderation.approved"
		case "DELETE":
			return "moderation.denied"
		case "GET":
			return "moderation.queue_viewed"
		}
	}
	return fmt.Sprintf("%s %s", method, path)
}

// resourceTypeFor maps a request path to the audit resource type
func resourceTypeFor(path string) string {
	switch {
	case strings.Contains(path, "Requests"):
		return "request"
	case strings.Contains(path, "/brands"):
		return "brand"
	case strings.Contains(path, "/cigars"):
		return "cigar"
	case strings.Contains(path, "/cigarDomainValues"):
		return "vocabulary"
	}
	return ""
}

// sanitizedQuery returns the request query parameters minus the credential
func sanitizedQuery(c *gin.Context) map[string]string {
	out := make(map[string]string)
	for name, values := range c.Request.URL.Query() {
		if name == "api_key" || len(values) == 0 {
			continue
		}
		out[name] = values[0]
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
