package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cigardb/cigardb/internal/db/models"
)

func TestListBrands_DeveloperIsPaginated(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(string(models.StatusApproved)).
		WillReturnRows(countRow(120))
	mock.ExpectQuery("SELECT id, name, country").
		WithArgs(string(models.StatusApproved), 50, 0).
		WillReturnRows(brandRow("brand-1", models.StatusApproved))

	w := doRequest(r, http.MethodGet, "/brands")

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		NumberOfPages int               `json:"numberOfPages"`
		CurrentPage   int               `json:"currentPage"`
		Data          []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.NumberOfPages)
	assert.Equal(t, 1, body.CurrentPage)
	assert.Len(t, body.Data, 1)

	assertExpectations(t, mock)
}

func TestListBrands_SecondPageOffsets(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(string(models.StatusApproved)).
		WillReturnRows(countRow(120))
	mock.ExpectQuery("SELECT id, name, country").
		WithArgs(string(models.StatusApproved), 50, 50).
		WillReturnRows(brandRow("brand-51", models.StatusApproved))

	w := doRequest(r, http.MethodGet, "/brands?page=2")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"currentPage":2`)
	assertExpectations(t, mock)
}

func TestListBrands_PremiumIsUnlimited(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelPremium))

	// No LIMIT clause for Premium, so only the status argument is bound.
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(string(models.StatusApproved)).
		WillReturnRows(countRow(120))
	mock.ExpectQuery("SELECT id, name, country").
		WithArgs(string(models.StatusApproved)).
		WillReturnRows(brandRow("brand-1", models.StatusApproved))

	w := doRequest(r, http.MethodGet, "/brands")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"numberOfPages":1`)
	assertExpectations(t, mock)
}

func TestListBrands_InvalidPage(t *testing.T) {
	r, _ := newHandlerRouter(t, testKey(models.LevelDeveloper))

	w := doRequest(r, http.MethodGet, "/brands?page=zero")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "The page parameter is invalid."}`, w.Body.String())
}

func TestListBrands_NoMatches(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(string(models.StatusApproved)).
		WillReturnRows(countRow(0))
	mock.ExpectQuery("SELECT id, name, country").
		WithArgs(string(models.StatusApproved), 50, 0).
		WillReturnRows(emptyBrandRows())

	w := doRequest(r, http.MethodGet, "/brands")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message": "No records found!"}`, w.Body.String())
}

func TestGetBrand_Approved(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	mock.ExpectQuery("FROM brands WHERE id").
		WithArgs("brand-1").
		WillReturnRows(brandRow("brand-1", models.StatusApproved))

	w := doRequest(r, http.MethodGet, "/brands/brand-1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Padron"`)
	assertExpectations(t, mock)
}

func TestGetBrand_PendingIsHidden(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	mock.ExpectQuery("FROM brands WHERE id").
		WithArgs("brand-1").
		WillReturnRows(brandRow("brand-1", models.StatusCreatePending))

	w := doRequest(r, http.MethodGet, "/brands/brand-1")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message": "Brand not found."}`, w.Body.String())
	assertExpectations(t, mock)
}

func TestCreateBrand_DeveloperQueued(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	expectEmptyDomains(mock)
	mock.ExpectExec("INSERT INTO brands").
		WillReturnResult(sqlmockResult(1))

	w := doRequest(r, http.MethodPost, "/brands?name=Fuente&country=Dominican+Republic")

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "The brand has been created and is awaiting approval.")
	assert.Contains(t, w.Body.String(), `"id"`)
	assertExpectations(t, mock)
}

func TestCreateBrand_ModeratorAppliesDirectly(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelModerator))

	expectEmptyDomains(mock)
	mock.ExpectExec("INSERT INTO brands").
		WillReturnResult(sqlmockResult(1))

	w := doRequest(r, http.MethodPost, "/brands?name=Fuente")

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "The brand has been processed.")
	assertExpectations(t, mock)
}

func TestCreateBrand_UnknownField(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	expectEmptyDomains(mock)

	w := doRequest(r, http.MethodPost, "/brands?name=Fuente&tastiness=high")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "The field tastiness is invalid."}`, w.Body.String())
	assertExpectations(t, mock)
}

func TestUpdateBrand_RequiresAField(t *testing.T) {
	r, _ := newHandlerRouter(t, testKey(models.LevelDeveloper))

	w := doRequest(r, http.MethodPut, "/brands/brand-1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "You must supply at least one field."}`, w.Body.String())
}

func TestUpdateBrand_DeveloperQueuesRequest(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	expectEmptyDomains(mock)
	mock.ExpectQuery("FROM brands WHERE id").
		WithArgs("brand-1").
		WillReturnRows(brandRow("brand-1", models.StatusApproved))
	mock.ExpectExec("INSERT INTO pending_requests").
		WillReturnResult(sqlmockResult(1))

	w := doRequest(r, http.MethodPut, "/brands/brand-1?country=Honduras")

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "The update has been submitted and is awaiting approval.")
	assertExpectations(t, mock)
}

func TestUpdateBrand_TargetMustBeApproved(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	expectEmptyDomains(mock)
	mock.ExpectQuery("FROM brands WHERE id").
		WithArgs("brand-1").
		WillReturnRows(brandRow("brand-1", models.StatusDeleted))

	w := doRequest(r, http.MethodPut, "/brands/brand-1?country=Honduras")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message": "Brand not found."}`, w.Body.String())
	assertExpectations(t, mock)
}

func TestUpdateBrand_ModeratorAppliesDirectly(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelModerator))

	expectEmptyDomains(mock)
	mock.ExpectQuery("FROM brands WHERE id").
		WithArgs("brand-1").
		WillReturnRows(brandRow("brand-1", models.StatusApproved))
	mock.ExpectExec("UPDATE brands").
		WillReturnResult(sqlmockResult(1))

	w := doRequest(r, http.MethodPut, "/brands/brand-1?country=Honduras")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The brand has been processed.")
	assertExpectations(t, mock)
}

func TestDeleteBrand_RequiresReason(t *testing.T) {
	r, _ := newHandlerRouter(t, testKey(models.LevelDeveloper))

	w := doRequest(r, http.MethodDelete, "/brands/brand-1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "You must provide a reason."}`, w.Body.String())
}

func TestDeleteBrand_DeveloperQueuesRequest(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	mock.ExpectQuery("FROM brands WHERE id").
		WithArgs("brand-1").
		WillReturnRows(brandRow("brand-1", models.StatusApproved))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(countRow(0))
	mock.ExpectExec("INSERT INTO pending_requests").
		WillReturnResult(sqlmockResult(1))

	w := doRequest(r, http.MethodDelete, "/brands/brand-1?reason=duplicate+entry")

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "The delete request has been submitted and is awaiting approval.")
	assertExpectations(t, mock)
}

func TestDeleteBrand_DuplicateRequestConflicts(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	mock.ExpectQuery("FROM brands WHERE id").
		WithArgs("brand-1").
		WillReturnRows(brandRow("brand-1", models.StatusApproved))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(countRow(1))

	w := doRequest(r, http.MethodDelete, "/brands/brand-1?reason=duplicate+entry")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message": "A delete request for this brand is already awaiting review."}`, w.Body.String())
	assertExpectations(t, mock)
}

func TestDeleteBrand_ModeratorDeletesDirectly(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelModerator))

	mock.ExpectQuery("FROM brands WHERE id").
		WithArgs("brand-1").
		WillReturnRows(brandRow("brand-1", models.StatusApproved))
	mock.ExpectExec("UPDATE brands").
		WillReturnResult(sqlmockResult(1))

	w := doRequest(r, http.MethodDelete, "/brands/brand-1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The brand has been processed.")
	assertExpectations(t, mock)
}
