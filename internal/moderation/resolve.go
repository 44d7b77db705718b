package moderation

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cigardb/cigardb/internal/api/httperr"
	"github.com/cigardb/cigardb/internal/db/models"
	"github.com/cigardb/cigardb/internal/telemetry"
	"github.com/cigardb/cigardb/internal/validation"
)

const (
	msgAlreadyResolved = "The request has already been resolved."
)

func msgResolved(entityType models.EntityType, resolution string) string {
	return fmt.Sprintf("The %s has been %s.", entityNoun(entityType), resolution)
}

// ApproveCreate approves a queued creation: a guarded transition of the
// entity row from create_pending to approved. A row no longer in
// create_pending means another moderator got there first.
func (s *Service) ApproveCreate(ctx context.Context, entityType models.EntityType, targetID string) (*Outcome, error) {
	ok, err := s.transitionCreate(ctx, entityType, targetID, models.StatusApproved, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.Conflict(msgAlreadyResolved)
	}

	telemetry.ModerationResolutionsTotal.WithLabelValues(entityNoun(entityType), "create", "approved").Inc()
	s.logger.Info("creation approved", "entity", entityType, "id", targetID)
	return appliedOutcome(http.StatusOK, msgResolved(entityType, "approved"), targetID), nil
}

// DenyCreate denies a queued creation. Denying a brand cascades denial to
// every queued cigar naming that brand, so orphaned cigar submissions do not
// linger waiting on a brand that will never exist.
func (s *Service) DenyCreate(ctx context.Context, entityType models.EntityType, targetID string, notes *string) (*Outcome, error) {
	var brandName string
	if entityType == models.EntityBrand {
		brand, err := s.brands.GetBrandByID(ctx, targetID)
		if err != nil {
			return nil, httperr.Internal(err)
		}
		if brand == nil {
			return nil, httperr.NotFound("Brand not found.")
		}
		brandName = brand.Name
	}

	ok, err := s.transitionCreate(ctx, entityType, targetID, models.StatusDenied, notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.Conflict(msgAlreadyResolved)
	}

	if entityType == models.EntityBrand {
		denied, err := s.cigars.DenyPendingCigarsByBrand(ctx, brandName, notes)
		if err != nil {
			s.logger.Error("brand denial cascade failed", "brand", brandName, "error", err)
			return nil, httperr.Internal(err)
		}
		if denied > 0 {
			s.logger.Info("cascaded denial to queued cigars", "brand", brandName, "count", denied)
		}
	}

	telemetry.ModerationResolutionsTotal.WithLabelValues(entityNoun(entityType), "create", "denied").Inc()
	s.logger.Info("creation denied", "entity", entityType, "id", targetID)
	return appliedOutcome(http.StatusOK, msgResolved(entityType, "denied"), targetID), nil
}

func (s *Service) transitionCreate(ctx context.Context, entityType models.EntityType, targetID string, to models.EntityStatus, notes *string) (bool, error) {
	// Existence first, so a bad ID reads NotFound rather than Conflict.
	switch entityType {
	case models.EntityBrand:
		brand, err := s.brands.GetBrandByID(ctx, targetID)
		if err != nil {
			return false, httperr.Internal(err)
		}
		if brand == nil {
			return false, httperr.NotFound("Brand not found.")
		}
		ok, err := s.brands.UpdateBrandStatus(ctx, targetID, models.StatusCreatePending, to, notes)
		if err != nil {
			return false, httperr.Internal(err)
		}
		return ok, nil
	default:
		cigar, err := s.cigars.GetCigarByID(ctx, targetID)
		if err != nil {
			return false, httperr.Internal(err)
		}
		if cigar == nil {
			return false, httperr.NotFound("Cigar not found.")
		}
		ok, err := s.cigars.UpdateCigarStatus(ctx, targetID, models.StatusCreatePending, to, notes)
		if err != nil {
			return false, httperr.Internal(err)
		}
		return ok, nil
	}
}

// ApproveRequest approves a queued update or delete request. The resolution
// is a guarded transition on the request row; only the winner goes on to
// touch the target entity.
func (s *Service) ApproveRequest(ctx context.Context, requestID string) (*Outcome, error) {
	req, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, httperr.Internal(err)
	}
	if req == nil {
		return nil, httperr.NotFound("Request not found.")
	}

	ok, err := s.requests.ResolveRequest(ctx, requestID, models.RequestApproved, nil)
	if err != nil {
		return nil, httperr.Internal(err)
	}
	if !ok {
		return nil, httperr.Conflict(msgAlreadyResolved)
	}

	targetID := ""
	if req.TargetID != nil {
		targetID = *req.TargetID
	}

	switch req.Kind {
	case models.KindUpdate:
		if err := s.applyUpdate(ctx, req.TargetType, targetID, validation.Fields(req.Payload)); err != nil {
			return nil, err
		}
	case models.KindDelete:
		applied, err := s.deleteEntity(ctx, req.TargetType, targetID, nil)
		if err != nil {
			return nil, err
		}
		if !applied {
			return nil, httperr.Conflict(fmt.Sprintf("The %s could not be deleted; it changed state concurrently.", entityNoun(req.TargetType)))
		}
	}

	telemetry.ModerationResolutionsTotal.WithLabelValues(entityNoun(req.TargetType), string(req.Kind), "approved").Inc()
	s.logger.Info("request approved", "request", requestID, "kind", req.Kind, "target", targetID)
	return appliedOutcome(http.StatusOK, "The request has been approved.", requestID), nil
}

// DenyRequest denies a queued update or delete request, recording moderator
// notes. The target entity is never touched.
func (s *Service) DenyRequest(ctx context.Context, requestID string, notes *string) (*Outcome, error) {
	req, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, httperr.Internal(err)
	}
	if req == nil {
		return nil, httperr.NotFound("Request not found.")
	}

	ok, err := s.requests.ResolveRequest(ctx, requestID, models.RequestDenied, notes)
	if err != nil {
		return nil, httperr.Internal(err)
	}
	if !ok {
		return nil, httperr.Conflict(msgAlreadyResolved)
	}

	telemetry.ModerationResolutionsTotal.WithLabelValues(entityNoun(req.TargetType), string(req.Kind), "denied").Inc()
	s.logger.Info("request denied", "request", requestID, "kind", req.Kind)
	return appliedOutcome(http.StatusOK, "The request has been denied.", requestID), nil
}
