package api

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cigardb/cigardb/internal/db/models"
)

func TestListCigars_UnfilteredNeedsPremium(t *testing.T) {
	r, _ := newHandlerRouter(t, testKey(models.LevelDeveloper))

	w := doRequest(r, http.MethodGet, "/cigars")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "You must supply at least one field."}`, w.Body.String())
}

func TestListCigars_FilteredDeveloper(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(string(models.StatusApproved), "%Anniversary%").
		WillReturnRows(countRow(1))
	mock.ExpectQuery("SELECT id, brand, name").
		WithArgs(string(models.StatusApproved), "%Anniversary%", 50, 0).
		WillReturnRows(cigarRow("cigar-1", models.StatusApproved))

	w := doRequest(r, http.MethodGet, "/cigars?name=Anniversary")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"numberOfPages":1`)
	assert.Contains(t, w.Body.String(), "1964 Anniversary")
	assertExpectations(t, mock)
}

func TestListCigars_WrapperFilterUsesContainment(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(string(models.StatusApproved), "Connecticut").
		WillReturnRows(countRow(1))
	mock.ExpectQuery("SELECT id, brand, name").
		WithArgs(string(models.StatusApproved), "Connecticut", 50, 0).
		WillReturnRows(cigarRow("cigar-1", models.StatusApproved))

	w := doRequest(r, http.MethodGet, "/cigars?wrappers=Connecticut")

	require.Equal(t, http.StatusOK, w.Code)
	assertExpectations(t, mock)
}

func TestListCigars_UnfilteredPremium(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelPremium))

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(string(models.StatusApproved)).
		WillReturnRows(countRow(2))
	mock.ExpectQuery("SELECT id, brand, name").
		WithArgs(string(models.StatusApproved)).
		WillReturnRows(cigarRow("cigar-1", models.StatusApproved))

	w := doRequest(r, http.MethodGet, "/cigars")

	require.Equal(t, http.StatusOK, w.Code)
	assertExpectations(t, mock)
}

func TestGetCigar_NotFound(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	mock.ExpectQuery("FROM cigars WHERE id").
		WithArgs("cigar-404").
		WillReturnError(sql.ErrNoRows)

	w := doRequest(r, http.MethodGet, "/cigars/cigar-404")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message": "Cigar not found."}`, w.Body.String())
	assertExpectations(t, mock)
}

func TestCreateCigar_UnknownBrand(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	expectEmptyDomains(mock)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("Nonexistent", string(models.StatusApproved), string(models.StatusCreatePending)).
		WillReturnRows(countRow(0))

	w := doRequest(r, http.MethodPost, "/cigars?brand=Nonexistent&name=Robusto")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "please create the brand first")
	assertExpectations(t, mock)
}

func TestCreateCigar_DeveloperQueued(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	expectEmptyDomains(mock)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("Padron", string(models.StatusApproved), string(models.StatusCreatePending)).
		WillReturnRows(countRow(1))
	mock.ExpectExec("INSERT INTO cigars").
		WillReturnResult(sqlmockResult(1))

	w := doRequest(r, http.MethodPost, "/cigars?brand=Padron&name=Robusto&wrappers=Connecticut,Habano")

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "The cigar has been created and is awaiting approval.")
	assertExpectations(t, mock)
}

func TestCreateCigar_VocabularyViolation(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	mock.ExpectQuery("FROM attribute_domains").
		WillReturnRows(domainRows().
			AddRow(models.VocabStrength, []byte(`["Mild", "Medium", "Full"]`), time.Now()))

	w := doRequest(r, http.MethodPost, "/cigars?brand=Padron&name=Robusto&strength=Overwhelming")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "The field strength is invalid."}`, w.Body.String())
	assertExpectations(t, mock)
}

func TestUpdateCigar_DeveloperQueuesRequest(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelDeveloper))

	expectEmptyDomains(mock)
	mock.ExpectQuery("FROM cigars WHERE id").
		WithArgs("cigar-1").
		WillReturnRows(cigarRow("cigar-1", models.StatusApproved))
	mock.ExpectExec("INSERT INTO pending_requests").
		WillReturnResult(sqlmockResult(1))

	w := doRequest(r, http.MethodPut, "/cigars/cigar-1?strength=Medium")

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "The update has been submitted and is awaiting approval.")
	assertExpectations(t, mock)
}

func TestDeleteCigar_ModeratorConflictOnConcurrentChange(t *testing.T) {
	r, mock := newHandlerRouter(t, testKey(models.LevelModerator))

	mock.ExpectQuery("FROM cigars WHERE id").
		WithArgs("cigar-1").
		WillReturnRows(cigarRow("cigar-1", models.StatusApproved))
	mock.ExpectExec("UPDATE cigars").
		WillReturnResult(sqlmockResult(0))

	w := doRequest(r, http.MethodDelete, "/cigars/cigar-1")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message": "The cigar could not be deleted; it changed state concurrently."}`, w.Body.String())
	assertExpectations(t, mock)
}
