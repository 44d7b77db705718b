package models

import "time"

// Brand represents a cigar brand in the catalog.
type Brand struct {
	ID             string       `db:"id" json:"id"`
	Name           string       `db:"name" json:"name"`
	Country        string       `db:"country" json:"country,omitempty"`
	FoundingDate   *time.Time   `db:"founding_date" json:"founding_date,omitempty"`
	Logo           string       `db:"logo" json:"logo,omitempty"`
	Address        string       `db:"address" json:"address,omitempty"`
	Lat            *float64     `db:"lat" json:"lat,omitempty"`
	Lng            *float64     `db:"lng" json:"lng,omitempty"`
	Status         EntityStatus `db:"status" json:"status"`
	ModeratorNotes *string      `db:"moderator_notes" json:"moderator_notes,omitempty"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}
