// Package models defines the database model types for CigarDB.
// Each type corresponds to a database table and uses struct tags for both JSON
// serialization and sqlx row scanning. Models are pure data types; business
// logic belongs in the moderation layer, query logic in the repositories layer.
package models

// EntityStatus is the lifecycle state of a Brand or Cigar record.
//
// Permitted transitions:
//
//	create_pending → approved | denied
//	approved       → deleted
//
// Records are never hard-deleted; "deleted" is terminal.
type EntityStatus string

const (
	StatusCreatePending EntityStatus = "create_pending"
	StatusApproved      EntityStatus = "approved"
	StatusDenied        EntityStatus = "denied"
	StatusDeleted       EntityStatus = "deleted"
)

// EntityType discriminates the two catalog entity kinds.
type EntityType string

const (
	EntityBrand EntityType = "brand"
	EntityCigar EntityType = "cigar"
)

// RequestKind is the operation a pending request proposes.
type RequestKind string

const (
	KindCreate RequestKind = "create"
	KindUpdate RequestKind = "update"
	KindDelete RequestKind = "delete"
)

// RequestStatus is the lifecycle state of a pending request. A request moves
// from pending to exactly one of approved or denied, never back.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDenied   RequestStatus = "denied"
)

// AccessLevel is a caller's tier. Higher levels include the privileges of
// lower ones; anything below Premium is subject to the daily quota, and only
// Moderator may resolve queued requests or write canonical data directly.
type AccessLevel int

const (
	LevelDeveloper AccessLevel = 0
	LevelPremium   AccessLevel = 10
	LevelModerator AccessLevel = 99
)

// IsModerator reports whether the level grants moderator privileges
func (l AccessLevel) IsModerator() bool {
	return l >= LevelModerator
}

// IsPremium reports whether the level is exempt from the daily quota and the
// Developer-tier pagination cap
func (l AccessLevel) IsPremium() bool {
	return l >= LevelPremium
}
