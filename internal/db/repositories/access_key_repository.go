// access_key_repository.go implements AccessKeyRepository, providing database queries for
// access key lookup, creation, and atomic per-request quota accounting.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/cigardb/cigardb/internal/db/models"
)

// AccessKeyRepository handles access key database operations
type AccessKeyRepository struct {
	db *sql.DB
}

// NewAccessKeyRepository creates a new AccessKeyRepository
func NewAccessKeyRepository(db *sql.DB) *AccessKeyRepository {
	return &AccessKeyRepository{db: db}
}

// Authenticate looks up a key and charges one request against its quota window
// in a single statement. If the window has lapsed the counter restarts at 1,
// otherwise it increments; the returned row reflects the post-charge state.
// Concurrent calls for the same key serialize on the row, so the counter never
// loses an increment. Returns (nil, nil) when the key does not exist.
func (r *AccessKeyRepository) Authenticate(ctx context.Context, apiKey string, window time.Duration) (*models.AccessKey, error) {
	cutoff := time.Now().Add(-window)

	query := `
		UPDATE access_keys
		SET request_count = CASE WHEN window_started_at <= $2 THEN 1 ELSE request_count + 1 END,
		    window_started_at = CASE WHEN window_started_at <= $2 THEN NOW() ELSE window_started_at END
		WHERE api_key = $1
		RETURNING id, api_key, user_id, name, description, access_level, request_count, window_started_at, created_at
	`

	key := &models.AccessKey{}
	err := r.db.QueryRowContext(ctx, query, apiKey, cutoff).Scan(
		&key.ID,
		&key.APIKey,
		&key.UserID,
		&key.Name,
		&key.Description,
		&key.AccessLevel,
		&key.RequestCount,
		&key.WindowStartedAt,
		&key.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return key, nil
}

// CreateAccessKey creates a new access key
func (r *AccessKeyRepository) CreateAccessKey(ctx context.Context, key *models.AccessKey) error {
	key.ID = uuid.New().String()
	key.CreatedAt = time.Now()
	key.WindowStartedAt = key.CreatedAt

	query := `
		INSERT INTO access_keys (id, api_key, user_id, name, description, access_level, request_count, window_started_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		key.ID,
		key.APIKey,
		key.UserID,
		key.Name,
		key.Description,
		key.AccessLevel,
		key.RequestCount,
		key.WindowStartedAt,
		key.CreatedAt,
	)

	return err
}

// GetByAPIKey retrieves an access key without touching its quota counter
func (r *AccessKeyRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.AccessKey, error) {
	query := `
		SELECT id, api_key, user_id, name, description, access_level, request_count, window_started_at, created_at
		FROM access_keys
		WHERE api_key = $1
	`

	key := &models.AccessKey{}
	err := r.db.QueryRowContext(ctx, query, apiKey).Scan(
		&key.ID,
		&key.APIKey,
		&key.UserID,
		&key.Name,
		&key.Description,
		&key.AccessLevel,
		&key.RequestCount,
		&key.WindowStartedAt,
		&key.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return key, nil
}

// ListByUser retrieves all access keys belonging to a user
func (r *AccessKeyRepository) ListByUser(ctx context.Context, userID string) ([]*models.AccessKey, error) {
	query := `
		SELECT id, api_key, user_id, name, description, access_level, request_count, window_started_at, created_at
		FROM access_keys
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]*models.AccessKey, 0)
	for rows.Next() {
		key := &models.AccessKey{}
		err := rows.Scan(
			&key.ID,
			&key.APIKey,
			&key.UserID,
			&key.Name,
			&key.Description,
			&key.AccessLevel,
			&key.RequestCount,
			&key.WindowStartedAt,
			&key.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// Delete revokes an access key
func (r *AccessKeyRepository) Delete(ctx context.Context, keyID string) error {
	query := `DELETE FROM access_keys WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, keyID)
	return err
}
