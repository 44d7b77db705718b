package models

import "time"

// AccessKey represents an API key and its quota state. The key itself is
// stored as an opaque string and looked up directly: quota accounting updates
// the same row on every authenticated request, so the lookup column and the
// counter live together and the whole authenticate step is one UPDATE.
type AccessKey struct {
	ID              string      `db:"id" json:"id"`
	APIKey          string      `db:"api_key" json:"api_key"`
	UserID          *string     `db:"user_id" json:"user_id,omitempty"`
	Name            string      `db:"name" json:"name"`
	Description     *string     `db:"description" json:"description,omitempty"`
	AccessLevel     AccessLevel `db:"access_level" json:"access_level"`
	RequestCount    int         `db:"request_count" json:"request_count"`
	WindowStartedAt time.Time   `db:"window_started_at" json:"window_started_at"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}
