// Package middleware provides Gin HTTP middleware for authentication, quota
// enforcement, burst throttling, security headers, metrics, and audit logging.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Security → RequestID → Metrics → Throttle → Auth → Audit → Handler
//
// Security headers run first so they appear on all responses including errors.
// The burst throttle runs before auth so abusive clients are rejected before
// any database work. Auth resolves the access key and charges the daily quota;
// audit logging runs last so the recorded entries carry the resolved identity.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cigardb/cigardb/internal/api/httperr"
	"github.com/cigardb/cigardb/internal/config"
	"github.com/cigardb/cigardb/internal/db/models"
	"github.com/cigardb/cigardb/internal/db/repositories"
	"github.com/cigardb/cigardb/internal/telemetry"
)

// ContextKeyAccessKey is the gin context key under which the resolved
// access key is stored for downstream handlers.
const ContextKeyAccessKey = "access_key"

// AccessKeyFrom returns the access key resolved by AuthMiddleware, or nil
// when the request never passed through it.
func AccessKeyFrom(c *gin.Context) *models.AccessKey {
	v, ok := c.Get(ContextKeyAccessKey)
	if !ok {
		return nil
	}
	key, ok := v.(*models.AccessKey)
	if !ok {
		return nil
	}
	return key
}

// AuthMiddleware resolves the api_key query parameter against the access_keys
// table. Authentication and quota accounting are a single atomic UPDATE: the
// repository charges the key's rolling-window counter as part of the lookup,
// so every authenticated request is counted exactly once regardless of
// outcome. The daily limit is enforced only for keys below the Premium tier.
func AuthMiddleware(keys *repositories.AccessKeyRepository, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.Query("api_key")
		if apiKey == "" {
			httperr.Render(c, httperr.MissingParameter("API key missing."))
			return
		}

		key, err := keys.Authenticate(c.Request.Context(), apiKey, cfg.API.WindowDuration())
		if err != nil {
			httperr.Render(c, httperr.Internal(err))
			return
		}
		if key == nil {
			httperr.Render(c, httperr.Unauthorized("You are not authorized!"))
			return
		}

		if !key.AccessLevel.IsPremium() && key.RequestCount > cfg.API.DailyLimit {
			telemetry.QuotaRejectionsTotal.Inc()
			httperr.Render(c, httperr.QuotaExceeded(fmt.Sprintf(
				"You have exceeded the limit of %d requests per day. Upgrade to a Premium plan for unrestricted access.",
				cfg.API.DailyLimit)))
			return
		}

		c.Set(ContextKeyAccessKey, key)
		c.Next()
	}
}

// RequireModerator rejects requests whose access key is below the moderator
// tier. It must be registered after AuthMiddleware.
func RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := AccessKeyFrom(c)
		if key == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "You are not authorized!"})
			return
		}
		if !key.AccessLevel.IsModerator() {
			httperr.Render(c, httperr.Forbidden("You are not authorized!"))
			return
		}
		c.Next()
	}
}
