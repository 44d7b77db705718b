package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/cigardb/cigardb/internal/db/models"
)

// ---------------------------------------------------------------------------
// Column definitions
// ---------------------------------------------------------------------------

var pendingRequestCols = []string{
	"id", "kind", "target_type", "target_id", "submitted_by_key",
	"submitted_at", "status", "payload", "moderator_notes", "resolved_at",
}

// ---------------------------------------------------------------------------
// Row builders
// ---------------------------------------------------------------------------

var samplePayload = []byte(`{"country":"Honduras"}`)

func samplePendingRequestRow() *sqlmock.Rows {
	target := "brand-1"
	return sqlmock.NewRows(pendingRequestCols).
		AddRow("req-1", "update", "brand", &target, "cdb_abc123",
			time.Now(), "pending", samplePayload, nil, nil)
}

func emptyPendingRequestRow() *sqlmock.Rows {
	return sqlmock.NewRows(pendingRequestCols)
}

func newPendingRequestRepo(t *testing.T) (*PendingRequestRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPendingRequestRepository(db), mock
}

// ---------------------------------------------------------------------------
// CreateRequest
// ---------------------------------------------------------------------------

func TestCreateRequest_Success(t *testing.T) {
	repo, mock := newPendingRequestRepo(t)
	mock.ExpectExec("INSERT INTO pending_requests").
		WillReturnResult(sqlmock.NewResult(1, 1))

	target := "brand-1"
	req := &models.PendingRequest{
		Kind:           models.KindUpdate,
		TargetType:     models.EntityBrand,
		TargetID:       &target,
		SubmittedByKey: "cdb_abc123",
		Payload:        models.Payload{"country": "Honduras"},
	}
	if err := repo.CreateRequest(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ID == "" {
		t.Error("expected generated ID")
	}
	if req.Status != models.RequestPending {
		t.Errorf("Status = %s, want pending", req.Status)
	}
}

func TestCreateRequest_DBError(t *testing.T) {
	repo, mock := newPendingRequestRepo(t)
	mock.ExpectExec("INSERT INTO pending_requests").
		WillReturnError(errDB)

	req := &models.PendingRequest{Kind: models.KindDelete, TargetType: models.EntityCigar}
	if err := repo.CreateRequest(context.Background(), req); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// GetRequestByID
// ---------------------------------------------------------------------------

func TestGetRequestByID_Found(t *testing.T) {
	repo, mock := newPendingRequestRepo(t)
	mock.ExpectQuery("SELECT.*FROM pending_requests.*WHERE id").
		WithArgs("req-1").
		WillReturnRows(samplePendingRequestRow())

	req, err := repo.GetRequestByID(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req == nil {
		t.Fatal("expected request, got nil")
	}
	if req.Kind != models.KindUpdate {
		t.Errorf("Kind = %s, want update", req.Kind)
	}
	if req.Payload["country"] != "Honduras" {
		t.Errorf("Payload country = %v, want Honduras", req.Payload["country"])
	}
}

func TestGetRequestByID_NotFound(t *testing.T) {
	repo, mock := newPendingRequestRepo(t)
	mock.ExpectQuery("SELECT.*FROM pending_requests.*WHERE id").
		WillReturnRows(emptyPendingRequestRow())

	req, err := repo.GetRequestByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req != nil {
		t.Errorf("expected nil request, got %+v", req)
	}
}

// ---------------------------------------------------------------------------
// ListPendingRequests
// ---------------------------------------------------------------------------

func TestListPendingRequests(t *testing.T) {
	repo, mock := newPendingRequestRepo(t)
	mock.ExpectQuery("SELECT.*FROM pending_requests.*WHERE target_type.*AND kind.*AND status").
		WithArgs(string(models.EntityBrand), string(models.KindUpdate), string(models.RequestPending)).
		WillReturnRows(samplePendingRequestRow())

	requests, err := repo.ListPendingRequests(context.Background(), models.EntityBrand, models.KindUpdate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requests) != 1 {
		t.Errorf("len(requests) = %d, want 1", len(requests))
	}
}

// ---------------------------------------------------------------------------
// HasPendingRequestForTarget
// ---------------------------------------------------------------------------

func TestHasPendingRequestForTarget(t *testing.T) {
	repo, mock := newPendingRequestRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM pending_requests").
		WillReturnRows(countRow(1))

	has, err := repo.HasPendingRequestForTarget(context.Background(), "brand-1", models.KindUpdate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Error("expected pending request to exist")
	}
}

func TestHasPendingRequestForTarget_None(t *testing.T) {
	repo, mock := newPendingRequestRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM pending_requests").
		WillReturnRows(countRow(0))

	has, err := repo.HasPendingRequestForTarget(context.Background(), "brand-1", models.KindDelete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Error("expected no pending request")
	}
}

// ---------------------------------------------------------------------------
// ResolveRequest
// ---------------------------------------------------------------------------

func TestResolveRequest_Wins(t *testing.T) {
	repo, mock := newPendingRequestRepo(t)
	mock.ExpectExec("UPDATE pending_requests.*WHERE id.*AND status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.ResolveRequest(context.Background(), "req-1", models.RequestApproved, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected resolution to win")
	}
}

func TestResolveRequest_AlreadyResolved(t *testing.T) {
	repo, mock := newPendingRequestRepo(t)
	mock.ExpectExec("UPDATE pending_requests.*WHERE id.*AND status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.ResolveRequest(context.Background(), "req-1", models.RequestDenied, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected resolution to lose when request already resolved")
	}
}
