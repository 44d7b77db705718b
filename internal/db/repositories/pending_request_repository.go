// pending_request_repository.go implements PendingRequestRepository, providing database
// queries for the update/delete moderation queue and its guarded resolution.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/cigardb/cigardb/internal/db/models"
)

// PendingRequestRepository handles pending request database operations
type PendingRequestRepository struct {
	db *sql.DB
}

// NewPendingRequestRepository creates a new PendingRequestRepository
func NewPendingRequestRepository(db *sql.DB) *PendingRequestRepository {
	return &PendingRequestRepository{db: db}
}

const pendingRequestColumns = `id, kind, target_type, target_id, submitted_by_key, submitted_at, status, payload, moderator_notes, resolved_at`

func scanPendingRequest(row interface{ Scan(...interface{}) error }) (*models.PendingRequest, error) {
	req := &models.PendingRequest{}
	err := row.Scan(
		&req.ID,
		&req.Kind,
		&req.TargetType,
		&req.TargetID,
		&req.SubmittedByKey,
		&req.SubmittedAt,
		&req.Status,
		&req.Payload,
		&req.ModeratorNotes,
		&req.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// CreateRequest inserts a new pending request
func (r *PendingRequestRepository) CreateRequest(ctx context.Context, req *models.PendingRequest) error {
	req.ID = uuid.New().String()
	req.SubmittedAt = time.Now()
	req.Status = models.RequestPending

	query := `
		INSERT INTO pending_requests (id, kind, target_type, target_id, submitted_by_key, submitted_at, status, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.Kind,
		req.TargetType,
		req.TargetID,
		req.SubmittedByKey,
		req.SubmittedAt,
		req.Status,
		req.Payload,
	)

	return err
}

// GetRequestByID retrieves a pending request by ID
func (r *PendingRequestRepository) GetRequestByID(ctx context.Context, requestID string) (*models.PendingRequest, error) {
	query := `SELECT ` + pendingRequestColumns + ` FROM pending_requests WHERE id = $1`

	req, err := scanPendingRequest(r.db.QueryRowContext(ctx, query, requestID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListPendingRequests retrieves the unresolved requests of one queue (target
// type plus kind), oldest first.
func (r *PendingRequestRepository) ListPendingRequests(ctx context.Context, targetType models.EntityType, kind models.RequestKind) ([]*models.PendingRequest, error) {
	query := `
		SELECT ` + pendingRequestColumns + `
		FROM pending_requests
		WHERE target_type = $1 AND kind = $2 AND status = $3
		ORDER BY submitted_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, targetType, kind, models.RequestPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*models.PendingRequest, 0)
	for rows.Next() {
		req, err := scanPendingRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// HasPendingRequestForTarget reports whether an unresolved request of the
// given kind already targets the entity. Used to reject duplicate submissions.
func (r *PendingRequestRepository) HasPendingRequestForTarget(ctx context.Context, targetID string, kind models.RequestKind) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM pending_requests
		WHERE target_id = $1 AND kind = $2 AND status = $3
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, targetID, kind, models.RequestPending).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ResolveRequest moves a request from pending to the given resolution, guarded
// on its current status so only one moderator wins. Returns false when the
// request was already resolved (or does not exist).
func (r *PendingRequestRepository) ResolveRequest(ctx context.Context, requestID string, resolution models.RequestStatus, notes *string) (bool, error) {
	query := `
		UPDATE pending_requests
		SET status = $2, moderator_notes = COALESCE($3, moderator_notes), resolved_at = $4
		WHERE id = $1 AND status = $5
	`

	result, err := r.db.ExecContext(ctx, query, requestID, resolution, notes, time.Now(), models.RequestPending)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
