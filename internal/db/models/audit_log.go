package models

import "time"

// AuditLog records one authenticated action against the API. Entries are
// written asynchronously after the response is sent and are never deleted.
type AuditLog struct {
	ID           string                 `db:"id" json:"id"`
	APIKey       *string                `db:"api_key" json:"api_key,omitempty"`
	AccessLevel  *int                   `db:"access_level" json:"access_level,omitempty"`
	Action       string                 `db:"action" json:"action"`
	ResourceType *string                `db:"resource_type" json:"resource_type,omitempty"`
	ResourceID   *string                `db:"resource_id" json:"resource_id,omitempty"`
	Metadata     map[string]interface{} `db:"-" json:"metadata,omitempty"`
	IPAddress    *string                `db:"ip_address" json:"ip_address,omitempty"`
	StatusCode   *int                   `db:"status_code" json:"status_code,omitempty"`
	CreatedAt    time.Time              `db:"created_at" json:"created_at"`
}
