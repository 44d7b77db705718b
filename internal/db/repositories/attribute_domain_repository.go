// attribute_domain_repository.go implements AttributeDomainRepository, providing database
// queries for the controlled vocabulary value sets.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/cigardb/cigardb/internal/db/models"
)

// AttributeDomainRepository handles attribute domain database operations
type AttributeDomainRepository struct {
	db *sql.DB
}

// NewAttributeDomainRepository creates a new AttributeDomainRepository
func NewAttributeDomainRepository(db *sql.DB) *AttributeDomainRepository {
	return &AttributeDomainRepository{db: db}
}

// GetDomain retrieves one vocabulary by name
func (r *AttributeDomainRepository) GetDomain(ctx context.Context, name string) (*models.AttributeDomain, error) {
	query := `SELECT name, val_set, updated_at FROM attribute_domains WHERE name = $1`

	domain := &models.AttributeDomain{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&domain.Name, &domain.ValSet, &domain.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return domain, nil
}

// GetAllDomains retrieves every vocabulary as a name-to-values map
func (r *AttributeDomainRepository) GetAllDomains(ctx context.Context) (models.DomainSet, error) {
	query := `SELECT name, val_set, updated_at FROM attribute_domains ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := models.DomainSet{}
	for rows.Next() {
		domain := &models.AttributeDomain{}
		if err := rows.Scan(&domain.Name, &domain.ValSet, &domain.UpdatedAt); err != nil {
			return nil, err
		}
		set[domain.Name] = domain.ValSet
	}

	return set, rows.Err()
}

// UpsertDomain creates or replaces a vocabulary's value set
func (r *AttributeDomainRepository) UpsertDomain(ctx context.Context, domain *models.AttributeDomain) error {
	domain.UpdatedAt = time.Now()

	query := `
		INSERT INTO attribute_domains (name, val_set, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET val_set = EXCLUDED.val_set, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, domain.Name, domain.ValSet, domain.UpdatedAt)
	return err
}
