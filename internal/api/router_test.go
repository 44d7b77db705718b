package api

import (
	"net/http"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cigardb/cigardb/internal/db/models"
)

var authKeyCols = []string{
	"id", "api_key", "user_id", "name", "description",
	"access_level", "request_count", "window_started_at", "created_at",
}

func authKeyRow(level models.AccessLevel, count int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(authKeyCols).
		AddRow("key-1", "cdb_testkey", nil, "test key", nil, int(level), count, now, now)
}

// newFullRouter builds the complete router over sqlmock without Redis, with
// the throttle and audit shipping switched off so request flows stay
// deterministic.
func newFullRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r, bg, err := NewRouter(testConfig(), db, nil, testLogger())
	require.NoError(t, err)
	t.Cleanup(bg.Shutdown)

	return r, mock
}

func TestRouter_Health(t *testing.T) {
	r, _ := newFullRouter(t)

	w := doRequest(r, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
}

func TestRouter_Ready(t *testing.T) {
	r, _ := newFullRouter(t)

	w := doRequest(r, http.MethodGet, "/ready")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready":true`)
}

func TestRouter_Version(t *testing.T) {
	r, _ := newFullRouter(t)

	w := doRequest(r, http.MethodGet, "/version")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), Version)
}

func TestRouter_MissingAPIKey(t *testing.T) {
	r, _ := newFullRouter(t)

	w := doRequest(r, http.MethodGet, "/brands")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "API key missing."}`, w.Body.String())
}

func TestRouter_UnknownAPIKey(t *testing.T) {
	r, mock := newFullRouter(t)

	mock.ExpectQuery("UPDATE access_keys").
		WithArgs("cdb_nope", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(authKeyCols))

	w := doRequest(r, http.MethodGet, "/brands?api_key=cdb_nope")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message": "You are not authorized!"}`, w.Body.String())
	assertExpectations(t, mock)
}

func TestRouter_QuotaExceeded(t *testing.T) {
	r, mock := newFullRouter(t)

	mock.ExpectQuery("UPDATE access_keys").
		WithArgs("cdb_testkey", sqlmock.AnyArg()).
		WillReturnRows(authKeyRow(models.LevelDeveloper, 501))

	w := doRequest(r, http.MethodGet, "/brands?api_key=cdb_testkey")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "You have exceeded the limit of 500 requests per day.")
	assertExpectations(t, mock)
}

func TestRouter_PremiumBypassesQuota(t *testing.T) {
	r, mock := newFullRouter(t)

	mock.ExpectQuery("UPDATE access_keys").
		WithArgs("cdb_testkey", sqlmock.AnyArg()).
		WillReturnRows(authKeyRow(models.LevelPremium, 100000))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(countRow(1))
	mock.ExpectQuery("SELECT id, name, country").
		WillReturnRows(brandRow("brand-1", models.StatusApproved))

	w := doRequest(r, http.MethodGet, "/brands?api_key=cdb_testkey")

	assert.Equal(t, http.StatusOK, w.Code)
	assertExpectations(t, mock)
}

func TestRouter_BrandListEndToEnd(t *testing.T) {
	r, mock := newFullRouter(t)

	mock.ExpectQuery("UPDATE access_keys").
		WithArgs("cdb_testkey", sqlmock.AnyArg()).
		WillReturnRows(authKeyRow(models.LevelDeveloper, 1))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(countRow(1))
	mock.ExpectQuery("SELECT id, name, country").
		WillReturnRows(brandRow("brand-1", models.StatusApproved))

	w := doRequest(r, http.MethodGet, "/brands?api_key=cdb_testkey")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"numberOfPages":1`)
	assertExpectations(t, mock)
}

func TestRouter_DomainValues(t *testing.T) {
	r, mock := newFullRouter(t)

	mock.ExpectQuery("UPDATE access_keys").
		WithArgs("cdb_testkey", sqlmock.AnyArg()).
		WillReturnRows(authKeyRow(models.LevelDeveloper, 1))
	mock.ExpectQuery("FROM attribute_domains").
		WillReturnRows(domainRows().
			AddRow(models.VocabStrength, []byte(`["Mild", "Medium", "Full"]`), time.Now()))

	w := doRequest(r, http.MethodGet, "/cigarDomainValues?api_key=cdb_testkey")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"strength"`)
	assert.Contains(t, w.Body.String(), "Medium")
	assertExpectations(t, mock)
}

func TestRouter_ModeratorGate(t *testing.T) {
	r, mock := newFullRouter(t)

	mock.ExpectQuery("UPDATE access_keys").
		WithArgs("cdb_testkey", sqlmock.AnyArg()).
		WillReturnRows(authKeyRow(models.LevelPremium, 1))

	w := doRequest(r, http.MethodGet, "/moderate/brandsCreateRequests?api_key=cdb_testkey")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message": "You are not authorized!"}`, w.Body.String())
	assertExpectations(t, mock)
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	r, _ := newFullRouter(t)

	w := doRequest(r, http.MethodGet, "/health")

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_SecurityHeaders(t *testing.T) {
	r, _ := newFullRouter(t)

	w := doRequest(r, http.MethodGet, "/health")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRouter_NoRoute(t *testing.T) {
	r, _ := newFullRouter(t)

	w := doRequest(r, http.MethodGet, "/nope")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

