// Package moderation is the policy core of the catalog: every write funnels
// through it, and the caller's access level decides whether the write applies
// to canonical data immediately or lands in the approval queue. Moderator
// resolutions of queued work also live here. Handlers translate HTTP to these
// calls and back; this package owns the routing rules.
package moderation

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cigardb/cigardb/internal/db/models"
)

// BrandStore is the brand repository surface the policy needs.
type BrandStore interface {
	CreateBrand(ctx context.Context, brand *models.Brand) error
	GetBrandByID(ctx context.Context, brandID string) (*models.Brand, error)
	BrandNameUsable(ctx context.Context, name string) (bool, error)
	UpdateBrandFields(ctx context.Context, brand *models.Brand) error
	UpdateBrandStatus(ctx context.Context, brandID string, from, to models.EntityStatus, notes *string) (bool, error)
	ListBrandsByStatus(ctx context.Context, status models.EntityStatus) ([]*models.Brand, error)
}

// CigarStore is the cigar repository surface the policy needs.
type CigarStore interface {
	CreateCigar(ctx context.Context, cigar *models.Cigar) error
	GetCigarByID(ctx context.Context, cigarID string) (*models.Cigar, error)
	UpdateCigarFields(ctx context.Context, cigar *models.Cigar) error
	UpdateCigarStatus(ctx context.Context, cigarID string, from, to models.EntityStatus, notes *string) (bool, error)
	DenyPendingCigarsByBrand(ctx context.Context, brandName string, notes *string) (int64, error)
	ListCigarsByStatus(ctx context.Context, status models.EntityStatus) ([]*models.Cigar, error)
}

// RequestStore is the pending request repository surface the policy needs.
type RequestStore interface {
	CreateRequest(ctx context.Context, req *models.PendingRequest) error
	GetRequestByID(ctx context.Context, requestID string) (*models.PendingRequest, error)
	ListPendingRequests(ctx context.Context, targetType models.EntityType, kind models.RequestKind) ([]*models.PendingRequest, error)
	HasPendingRequestForTarget(ctx context.Context, targetID string, kind models.RequestKind) (bool, error)
	ResolveRequest(ctx context.Context, requestID string, resolution models.RequestStatus, notes *string) (bool, error)
}

// VocabSource supplies the current vocabulary value sets for validation.
type VocabSource interface {
	Get(ctx context.Context) (models.DomainSet, error)
}

// Service routes writes through the moderation policy.
type Service struct {
	brands   BrandStore
	cigars   CigarStore
	requests RequestStore
	vocab    VocabSource
	logger   *slog.Logger
}

// NewService creates a moderation service
func NewService(brands BrandStore, cigars CigarStore, requests RequestStore, vocab VocabSource, logger *slog.Logger) *Service {
	return &Service{
		brands:   brands,
		cigars:   cigars,
		requests: requests,
		vocab:    vocab,
		logger:   logger,
	}
}

// Outcome is the result of a routed write: the HTTP status to answer with,
// the client message, the created entity ID when applicable, and whether the
// write was queued for review rather than applied.
type Outcome struct {
	Status  int
	Message string
	ID      string
	Queued  bool
}

func queuedOutcome(message, id string) *Outcome {
	return &Outcome{Status: http.StatusAccepted, Message: message, ID: id, Queued: true}
}

func appliedOutcome(status int, message, id string) *Outcome {
	return &Outcome{Status: status, Message: message, ID: id}
}

func entityNoun(entityType models.EntityType) string {
	if entityType == models.EntityBrand {
		return "brand"
	}
	return "cigar"
}

// ListCreateQueueBrands returns the brands awaiting creation approval
func (s *Service) ListCreateQueueBrands(ctx context.Context) ([]*models.Brand, error) {
	return s.brands.ListBrandsByStatus(ctx, models.StatusCreatePending)
}

// ListCreateQueueCigars returns the cigars awaiting creation approval
func (s *Service) ListCreateQueueCigars(ctx context.Context) ([]*models.Cigar, error) {
	return s.cigars.ListCigarsByStatus(ctx, models.StatusCreatePending)
}

// ListRequestQueue returns the unresolved update or delete requests for one
// entity type
func (s *Service) ListRequestQueue(ctx context.Context, entityType models.EntityType, kind models.RequestKind) ([]*models.PendingRequest, error) {
	return s.requests.ListPendingRequests(ctx, entityType, kind)
}
