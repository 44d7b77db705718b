// brand_repository.go implements BrandRepository, providing database queries for brand
// creation, filtered catalog listing, and guarded status transitions.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cigardb/cigardb/internal/db/models"
)

// BrandRepository handles brand database operations
type BrandRepository struct {
	db *sql.DB
}

// NewBrandRepository creates a new BrandRepository
func NewBrandRepository(db *sql.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// BrandFilters contains optional filters for listing brands. SortField is
// checked against the sortable column set; anything else falls back to name.
type BrandFilters struct {
	Name      *string
	Country   *string
	SortField string
	SortDesc  bool
}

var brandSortColumns = map[string]string{
	"name":       "name",
	"country":    "country",
	"updated_at": "updated_at",
}

const brandColumns = `id, name, country, founding_date, logo, address, lat, lng, status, moderator_notes, updated_at`

func scanBrand(row interface{ Scan(...interface{}) error }) (*models.Brand, error) {
	brand := &models.Brand{}
	err := row.Scan(
		&brand.ID,
		&brand.Name,
		&brand.Country,
		&brand.FoundingDate,
		&brand.Logo,
		&brand.Address,
		&brand.Lat,
		&brand.Lng,
		&brand.Status,
		&brand.ModeratorNotes,
		&brand.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return brand, nil
}

// CreateBrand inserts a new brand row with the given status
func (r *BrandRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	brand.ID = uuid.New().String()
	brand.UpdatedAt = time.Now()

	query := `
		INSERT INTO brands (id, name, country, founding_date, logo, address, lat, lng, status, moderator_notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		brand.ID,
		brand.Name,
		brand.Country,
		brand.FoundingDate,
		brand.Logo,
		brand.Address,
		brand.Lat,
		brand.Lng,
		brand.Status,
		brand.ModeratorNotes,
		brand.UpdatedAt,
	)

	return err
}

// GetBrandByID retrieves a brand by ID regardless of status
func (r *BrandRepository) GetBrandByID(ctx context.Context, brandID string) (*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE id = $1`

	brand, err := scanBrand(r.db.QueryRowContext(ctx, query, brandID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return brand, nil
}

// GetApprovedBrandByName retrieves an approved brand by its exact name
func (r *BrandRepository) GetApprovedBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE name = $1 AND status = $2`

	brand, err := scanBrand(r.db.QueryRowContext(ctx, query, name, models.StatusApproved))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return brand, nil
}

// ListBrands retrieves approved brands matching the filters, with pagination.
// Returns the page of rows and the total match count. A limit <= 0 disables
// the LIMIT clause.
func (r *BrandRepository) ListBrands(ctx context.Context, filters BrandFilters, limit, offset int) ([]*models.Brand, int, error) {
	return r.listByStatus(ctx, models.StatusApproved, filters, limit, offset)
}

// ListBrandsByStatus retrieves brands in the given status, oldest first. Used
// by the moderation queue for create_pending rows.
func (r *BrandRepository) ListBrandsByStatus(ctx context.Context, status models.EntityStatus) ([]*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE status = $1 ORDER BY updated_at ASC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := make([]*models.Brand, 0)
	for rows.Next() {
		brand, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		brands = append(brands, brand)
	}

	return brands, rows.Err()
}

func (r *BrandRepository) listByStatus(ctx context.Context, status models.EntityStatus, filters BrandFilters, limit, offset int) ([]*models.Brand, int, error) {
	countQuery := `SELECT COUNT(*) FROM brands WHERE status = $1`
	query := `SELECT ` + brandColumns + ` FROM brands WHERE status = $1`

	args := []interface{}{status}
	paramIndex := 2

	if filters.Name != nil {
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, paramIndex)
		query += fmt.Sprintf(` AND name ILIKE $%d`, paramIndex)
		args = append(args, "%"+*filters.Name+"%")
		paramIndex++
	}

	if filters.Country != nil {
		countQuery += fmt.Sprintf(` AND country = $%d`, paramIndex)
		query += fmt.Sprintf(` AND country = $%d`, paramIndex)
		args = append(args, *filters.Country)
		paramIndex++
	}

	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	orderCol := "name"
	if col, ok := brandSortColumns[filters.SortField]; ok {
		orderCol = col
	}
	direction := "ASC"
	if filters.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, orderCol, direction)
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	brands := make([]*models.Brand, 0)
	for rows.Next() {
		brand, err := scanBrand(rows)
		if err != nil {
			return nil, 0, err
		}
		brands = append(brands, brand)
	}

	return brands, total, rows.Err()
}

// UpdateBrandFields overwrites the editable fields of a brand and refreshes
// updated_at. Status and moderator notes are not touched here; those move only
// through UpdateBrandStatus.
func (r *BrandRepository) UpdateBrandFields(ctx context.Context, brand *models.Brand) error {
	brand.UpdatedAt = time.Now()

	query := `
		UPDATE brands
		SET name = $2, country = $3, founding_date = $4, logo = $5, address = $6, lat = $7, lng = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		brand.ID,
		brand.Name,
		brand.Country,
		brand.FoundingDate,
		brand.Logo,
		brand.Address,
		brand.Lat,
		brand.Lng,
		brand.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateBrandStatus moves a brand from one status to another, guarded on the
// current status so concurrent moderators cannot both win. Returns false when
// the row was not in the expected status (or does not exist).
func (r *BrandRepository) UpdateBrandStatus(ctx context.Context, brandID string, from, to models.EntityStatus, notes *string) (bool, error) {
	query := `
		UPDATE brands
		SET status = $3, moderator_notes = COALESCE($4, moderator_notes), updated_at = $5
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.ExecContext(ctx, query, brandID, from, to, notes, time.Now())
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// BrandNameUsable reports whether the name resolves to an approved or
// create_pending brand. Cigars may be submitted against a brand that is
// itself still in the queue, so both statuses count.
func (r *BrandRepository) BrandNameUsable(ctx context.Context, name string) (bool, error) {
	query := `SELECT COUNT(*) FROM brands WHERE name = $1 AND status IN ($2, $3)`

	var count int
	err := r.db.QueryRowContext(ctx, query, name, models.StatusApproved, models.StatusCreatePending).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
