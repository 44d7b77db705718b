package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cigardb/cigardb/internal/audit"
	"github.com/cigardb/cigardb/internal/config"
	"github.com/cigardb/cigardb/internal/db/models"
)

// captureShipper collects shipped entries on a channel so tests can wait for
// the async audit goroutine.
type captureShipper struct {
	entries chan *audit.LogEntry
}

func newCaptureShipper() *captureShipper {
	return &captureShipper{entries: make(chan *audit.LogEntry, 10)}
}

func (s *captureShipper) Ship(ctx context.Context, entry *audit.LogEntry) error {
	s.entries <- entry
	return nil
}

func (s *captureShipper) Close() error { return nil }

// waitForEntry returns the next shipped entry or fails the test
func (s *captureShipper) waitForEntry(t *testing.T) *audit.LogEntry {
	t.Helper()
	select {
	case entry := <-s.entries:
		return entry
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit entry")
		return nil
	}
}

// assertNoEntry verifies nothing was shipped within a short window
func (s *captureShipper) assertNoEntry(t *testing.T) {
	t.Helper()
	select {
	case entry := <-s.entries:
		t.Fatalf("unexpected audit entry: %+v", entry)
	case <-time.After(100 * time.Millisecond):
	}
}

func newAuditRouter(shipper audit.Shipper, cfg *config.AuditConfig, status int) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(func(c *gin.Context) {
		c.Set(ContextKeyAccessKey, &models.AccessKey{ID: "key-1", AccessLevel: models.LevelModerator})
	})
	r.Use(AuditMiddlewareWithShipper(nil, shipper, cfg, slog.Default()))

	handler := func(c *gin.Context) { c.Status(status) }
	r.GET("/brands", handler)
	r.PUT("/brands/:id", handler)
	r.PUT("/moderate/brandsCreateRequests/:id", handler)
	r.DELETE("/moderate/cigarsUpdateRequests/:id", handler)
	return r
}

func performAudited(r *gin.Engine, method, target string) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
}

func TestAuditMiddleware_RecordsWriteOperation(t *testing.T) {
	shipper := newCaptureShipper()
	r := newAuditRouter(shipper, nil, http.StatusOK)

	performAudited(r, http.MethodPut, "/brands/brand-1?api_key=secret&name=Padron")

	entry := shipper.waitForEntry(t)
	assert.Equal(t, "PUT /brands/brand-1", entry.Action)
	assert.Equal(t, "brand", entry.ResourceType)
	assert.Equal(t, "brand-1", entry.ResourceID)
	assert.Equal(t, "key-1", entry.AccessKeyID)
	assert.Equal(t, http.StatusOK, entry.StatusCode)
}

func TestAuditMiddleware_NamesModerationActions(t *testing.T) {
	shipper := newCaptureShipper()
	r := newAuditRouter(shipper, nil, http.StatusOK)

	performAudited(r, http.MethodPut, "/moderate/brandsCreateRequests/req-1?api_key=secret")
	entry := shipper.waitForEntry(t)
	assert.Equal(t, "moderation.approved", entry.Action)
	assert.Equal(t, "request", entry.ResourceType)

	performAudited(r, http.MethodDelete, "/moderate/cigarsUpdateRequests/req-2?api_key=secret")
	entry = shipper.waitForEntry(t)
	assert.Equal(t, "moderation.denied", entry.Action)
}

func TestAuditMiddleware_SkipsReadsByDefault(t *testing.T) {
	shipper := newCaptureShipper()
	r := newAuditRouter(shipper, nil, http.StatusOK)

	performAudited(r, http.MethodGet, "/brands?api_key=secret")
	shipper.assertNoEntry(t)
}

func TestAuditMiddleware_LogsReadsWhenConfigured(t *testing.T) {
	shipper := newCaptureShipper()
	cfg := &config.AuditConfig{Enabled: true, LogReadOperations: true}
	r := newAuditRouter(shipper, cfg, http.StatusOK)

	performAudited(r, http.MethodGet, "/brands?api_key=secret")
	entry := shipper.waitForEntry(t)
	assert.Equal(t, "GET /brands", entry.Action)
}

func TestAuditMiddleware_SkipsFailuresByDefault(t *testing.T) {
	shipper := newCaptureShipper()
	r := newAuditRouter(shipper, nil, http.StatusConflict)

	performAudited(r, http.MethodPut, "/brands/brand-1?api_key=secret")
	shipper.assertNoEntry(t)
}

func TestAuditMiddleware_LogsFailuresWhenConfigured(t *testing.T) {
	shipper := newCaptureShipper()
	cfg := &config.AuditConfig{Enabled: true, LogFailedRequests: true}
	r := newAuditRouter(shipper, cfg, http.StatusConflict)

	performAudited(r, http.MethodPut, "/brands/brand-1?api_key=secret")
	entry := shipper.waitForEntry(t)
	assert.Equal(t, http.StatusConflict, entry.StatusCode)
}

func TestAuditMiddleware_StripsCredentialFromMetadata(t *testing.T) {
	shipper := newCaptureShipper()
	r := newAuditRouter(shipper, nil, http.StatusOK)

	performAudited(r, http.MethodPut, "/brands/brand-1?api_key=secret&name=Padron")

	entry := shipper.waitForEntry(t)
	query, ok := entry.Metadata["query"].(map[string]string)
	require.True(t, ok)
	assert.NotContains(t, query, "api_key")
	assert.Equal(t, "Padron", query["name"])
}
