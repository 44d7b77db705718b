package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Payload is the arbitrary field map a pending request carries: the proposed
// field values for an update, or {"reason": "..."} for a delete. Stored as JSONB.
type Payload map[string]interface{}

// Value implements driver.Valuer
func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *Payload) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Payload", src)
	}
	return json.Unmarshal(raw, p)
}

// Reason returns the delete reason carried in the payload, if any
func (p Payload) Reason() string {
	if p == nil {
		return ""
	}
	if r, ok := p["reason"].(string); ok {
		return r
	}
	return ""
}

// PendingRequest is a durable record of a proposed update or delete awaiting
// moderator review. Requests are never removed; resolution only changes their
// status, preserving the moderation audit trail. Brand/cigar creations are not
// represented here: a newly created entity with status create_pending is
// itself the create queue entry, and moderation resolves it on the entity row.
type PendingRequest struct {
	ID             string        `db:"id" json:"id"`
	Kind           RequestKind   `db:"kind" json:"kind"`
	TargetType     EntityType    `db:"target_type" json:"target_type"`
	TargetID       *string       `db:"target_id" json:"target_id,omitempty"`
	SubmittedByKey string        `db:"submitted_by_key" json:"submitted_by_key"`
	SubmittedAt    time.Time     `db:"submitted_at" json:"submitted_at"`
	Status         RequestStatus `db:"status" json:"status"`
	Payload        Payload       `db:"payload" json:"payload,omitempty"`
	ModeratorNotes *string       `db:"moderator_notes" json:"moderator_notes,omitempty"`
	ResolvedAt     *time.Time    `db:"resolved_at" json:"resolved_at,omitempty"`
}

// IsResolved reports whether the request has already been approved or denied
func (r *PendingRequest) IsResolved() bool {
	return r.Status != RequestPending
}
