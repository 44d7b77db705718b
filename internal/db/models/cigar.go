package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is a []string stored as a JSONB array. It implements
// driver.Valuer and sql.Scanner so cigars' wrapper/binder/filler lists round-trip
// through lib/pq without per-call marshalling in the repositories.
type StringList []string

// Value implements driver.Valuer
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *StringList) Scan(src interface{}) error {
	if src == nil {
		*s = StringList{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	return json.Unmarshal(raw, s)
}

// Cigar represents a cigar in the catalog. Brand is a denormalized brand name
// string, not a foreign key; the moderation layer enforces that it resolves to
// an existing brand at creation time.
type Cigar struct {
	ID             string       `db:"id" json:"id"`
	Brand          string       `db:"brand" json:"brand"`
	Name           string       `db:"name" json:"name"`
	Length         *float64     `db:"length" json:"length,omitempty"`
	RingGauge      *int         `db:"ring_gauge" json:"ring_gauge,omitempty"`
	Vitola         string       `db:"vitola" json:"vitola,omitempty"`
	Color          string       `db:"color" json:"color,omitempty"`
	Country        string       `db:"country" json:"country,omitempty"`
	Wrappers       StringList   `db:"wrappers" json:"wrappers"`
	Binders        StringList   `db:"binders" json:"binders"`
	Fillers        StringList   `db:"fillers" json:"fillers"`
	Strength       string       `db:"strength" json:"strength,omitempty"`
	YearIntroduced *time.Time   `db:"year_introduced" json:"year_introduced,omitempty"`
	Status         EntityStatus `db:"status" json:"status"`
	ModeratorNotes *string      `db:"moderator_notes" json:"moderator_notes,omitempty"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}
