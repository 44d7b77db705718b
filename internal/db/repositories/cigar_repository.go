// cigar_repository.go implements CigarRepository, providing database queries for cigar
// creation, filtered catalog listing, guarded status transitions, and the brand-denial
// cascade over pending cigars.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cigardb/cigardb/internal/db/models"
)

// CigarRepository handles cigar database operations
type CigarRepository struct {
	db *sql.DB
}

// NewCigarRepository creates a new CigarRepository
func NewCigarRepository(db *sql.DB) *CigarRepository {
	return &CigarRepository{db: db}
}

// CigarFilters contains optional filters for listing cigars. The list-valued
// attributes (wrapper, binder, filler) match when the value appears anywhere
// in the stored array.
type CigarFilters struct {
	Brand     *string
	Name      *string
	Country   *string
	Vitola    *string
	Color     *string
	Strength  *string
	Wrapper   *string
	Binder    *string
	Filler    *string
	SortField string
	SortDesc  bool
}

var cigarSortColumns = map[string]string{
	"brand":      "brand",
	"name":       "name",
	"country":    "country",
	"vitola":     "vitola",
	"strength":   "strength",
	"updated_at": "updated_at",
}

const cigarColumns = `id, brand, name, length, ring_gauge, vitola, color, country, wrappers, binders, fillers, strength, year_introduced, status, moderator_notes, updated_at`

func scanCigar(row interface{ Scan(...interface{}) error }) (*models.Cigar, error) {
	cigar := &models.Cigar{}
	err := row.Scan(
		&cigar.ID,
		&cigar.Brand,
		&cigar.Name,
		&cigar.Length,
		&cigar.RingGauge,
		&cigar.Vitola,
		&cigar.Color,
		&cigar.Country,
		&cigar.Wrappers,
		&cigar.Binders,
		&cigar.Fillers,
		&cigar.Strength,
		&cigar.YearIntroduced,
		&cigar.Status,
		&cigar.ModeratorNotes,
		&cigar.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cigar, nil
}

// CreateCigar inserts a new cigar row with the given status
func (r *CigarRepository) CreateCigar(ctx context.Context, cigar *models.Cigar) error {
	cigar.ID = uuid.New().String()
	cigar.UpdatedAt = time.Now()

	query := `
		INSERT INTO cigars (id, brand, name, length, ring_gauge, vitola, color, country, wrappers, binders, fillers, strength, year_introduced, status, moderator_notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		cigar.ID,
		cigar.Brand,
		cigar.Name,
		cigar.Length,
		cigar.RingGauge,
		cigar.Vitola,
		cigar.Color,
		cigar.Country,
		cigar.Wrappers,
		cigar.Binders,
		cigar.Fillers,
		cigar.Strength,
		cigar.YearIntroduced,
		cigar.Status,
		cigar.ModeratorNotes,
		cigar.UpdatedAt,
	)

	return err
}

// GetCigarByID retrieves a cigar by ID regardless of status
func (r *CigarRepository) GetCigarByID(ctx context.Context, cigarID string) (*models.Cigar, error) {
	query := `SELECT ` + cigarColumns + ` FROM cigars WHERE id = $1`

	cigar, err := scanCigar(r.db.QueryRowContext(ctx, query, cigarID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cigar, nil
}

// ListCigars retrieves approved cigars matching the filters, with pagination.
// Returns the page of rows and the total match count. A limit <= 0 disables
// the LIMIT clause.
func (r *CigarRepository) ListCigars(ctx context.Context, filters CigarFilters, limit, offset int) ([]*models.Cigar, int, error) {
	countQuery := `SELECT COUNT(*) FROM cigars WHERE status = $1`
	query := `SELECT ` + cigarColumns + ` FROM cigars WHERE status = $1`

	args := []interface{}{models.StatusApproved}
	paramIndex := 2

	addEquals := func(column string, value *string) {
		if value == nil {
			return
		}
		countQuery += fmt.Sprintf(` AND %s = $%d`, column, paramIndex)
		query += fmt.Sprintf(` AND %s = $%d`, column, paramIndex)
		args = append(args, *value)
		paramIndex++
	}

	// JSONB array containment: matches when the value is an element of the
	// stored list.
	addContains := func(column string, value *string) {
		if value == nil {
			return
		}
		countQuery += fmt.Sprintf(` AND %s @> to_jsonb(ARRAY[$%d::text])`, column, paramIndex)
		query += fmt.Sprintf(` AND %s @> to_jsonb(ARRAY[$%d::text])`, column, paramIndex)
		args = append(args, *value)
		paramIndex++
	}

	addEquals("brand", filters.Brand)
	if filters.Name != nil {
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, paramIndex)
		query += fmt.Sprintf(` AND name ILIKE $%d`, paramIndex)
		args = append(args, "%"+*filters.Name+"%")
		paramIndex++
	}
	addEquals("country", filters.Country)
	addEquals("vitola", filters.Vitola)
	addEquals("color", filters.Color)
	addEquals("strength", filters.Strength)
	addContains("wrappers", filters.Wrapper)
	addContains("binders", filters.Binder)
	addContains("fillers", filters.Filler)

	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	orderClause := ` ORDER BY brand ASC, name ASC`
	if col, ok := cigarSortColumns[filters.SortField]; ok {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}
		orderClause = fmt.Sprintf(` ORDER BY %s %s, name ASC`, col, direction)
	}
	query += orderClause
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cigars := make([]*models.Cigar, 0)
	for rows.Next() {
		cigar, err := scanCigar(rows)
		if err != nil {
			return nil, 0, err
		}
		cigars = append(cigars, cigar)
	}

	return cigars, total, rows.Err()
}

// ListCigarsByStatus retrieves cigars in the given status, oldest first. Used
// by the moderation queue for create_pending rows.
func (r *CigarRepository) ListCigarsByStatus(ctx context.Context, status models.EntityStatus) ([]*models.Cigar, error) {
	query := `SELECT ` + cigarColumns + ` FROM cigars WHERE status = $1 ORDER BY updated_at ASC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cigars := make([]*models.Cigar, 0)
	for rows.Next() {
		cigar, err := scanCigar(rows)
		if err != nil {
			return nil, err
		}
		cigars = append(cigars, cigar)
	}

	return cigars, rows.Err()
}

// UpdateCigarFields overwrites the editable fields of a cigar and refreshes
// updated_at. Status and moderator notes move only through UpdateCigarStatus.
func (r *CigarRepository) UpdateCigarFields(ctx context.Context, cigar *models.Cigar) error {
	cigar.UpdatedAt = time.Now()

	query := `
		UPDATE cigars
		SET brand = $2, name = $3, length = $4, ring_gauge = $5, vitola = $6, color = $7, country = $8,
		    wrappers = $9, binders = $10, fillers = $11, strength = $12, year_introduced = $13, updated_at = $14
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		cigar.ID,
		cigar.Brand,
		cigar.Name,
		cigar.Length,
		cigar.RingGauge,
		cigar.Vitola,
		cigar.Color,
		cigar.Country,
		cigar.Wrappers,
		cigar.Binders,
		cigar.Fillers,
		cigar.Strength,
		cigar.YearIntroduced,
		cigar.UpdatedAt,
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

// UpdateCigarStatus moves a cigar from one status to another, guarded on the
// current status so concurrent moderators cannot both win. Returns false when
// the row was not in the expected status (or does not exist).
func (r *CigarRepository) UpdateCigarStatus(ctx context.Context, cigarID string, from, to models.EntityStatus, notes *string) (bool, error) {
	query := `
		UPDATE cigars
		SET status = $3, moderator_notes = COALESCE($4, moderator_notes), updated_at = $5
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.ExecContext(ctx, query, cigarID, from, to, notes, time.Now())
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// DenyPendingCigarsByBrand denies every create_pending cigar naming the given
// brand. Runs when a brand creation is denied, so cigars submitted against the
// rejected brand do not linger in the queue. Returns the number of cigars
// denied.
func (r *CigarRepository) DenyPendingCigarsByBrand(ctx context.Context, brandName string, notes *string) (int64, error) {
	query := `
		UPDATE cigars
		SET status = $3, moderator_notes = COALESCE($4, moderator_notes), updated_at = $5
		WHERE brand = $1 AND status = $2
	`

	result, err := r.db.ExecContext(ctx, query, brandName, models.StatusCreatePending, models.StatusDenied, notes, time.Now())
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
