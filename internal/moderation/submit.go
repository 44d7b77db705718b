package moderation

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/cigardb/cigardb/internal/api/httperr"
	"github.com/cigardb/cigardb/internal/db/models"
	"github.com/cigardb/cigardb/internal/telemetry"
	"github.com/cigardb/cigardb/internal/validation"
)

const (
	msgBrandQueued  = "The brand has been created and is awaiting approval."
	msgCigarQueued  = "The cigar has been created and is awaiting approval."
	msgUpdateQueued = "The update has been submitted and is awaiting approval."
	msgDeleteQueued = "The delete request has been submitted and is awaiting approval."

	msgBrandNotUsable = "The Brand you specified was not found in the database. If you want to add a new brand and associated cigars, please create the brand first."
)

func msgProcessed(entityType models.EntityType) string {
	return fmt.Sprintf("The %s has been processed.", entityNoun(entityType))
}

// validate runs the submission through the validation gate against the
// current vocabularies. Validation failures map to the client taxonomy here
// so callers only ever see httperr values.
func (s *Service) validate(ctx context.Context, entityType models.EntityType, fields validation.Fields) error {
	domains, err := s.vocab.Get(ctx)
	if err != nil {
		return httperr.Internal(err)
	}
	if err := validation.Validate(entityType, fields, domains); err != nil {
		return httperr.InvalidValue(err.Error())
	}
	return nil
}

// SubmitCreate routes a create. Everyone's submission is validated the same
// way; the access level only decides the resulting entity status. The entity
// row itself is the queue entry for non-moderators.
func (s *Service) SubmitCreate(ctx context.Context, entityType models.EntityType, level models.AccessLevel, fields validation.Fields) (*Outcome, error) {
	if err := s.validate(ctx, entityType, fields); err != nil {
		return nil, err
	}

	status := models.StatusCreatePending
	if level.IsModerator() {
		status = models.StatusApproved
	}

	var id string
	switch entityType {
	case models.EntityBrand:
		name, _ := asString(fields["name"])
		if name == "" {
			return nil, httperr.MissingParameter("You must supply at least a name.")
		}

		brand := &models.Brand{Status: status}
		if err := applyBrandFields(brand, fields); err != nil {
			return nil, err
		}
		if err := s.brands.CreateBrand(ctx, brand); err != nil {
			return nil, httperr.Internal(err)
		}
		id = brand.ID

	case models.EntityCigar:
		brandName, _ := asString(fields["brand"])
		name, _ := asString(fields["name"])
		if brandName == "" || name == "" {
			return nil, httperr.MissingParameter("You must supply at least a brand and a name.")
		}

		usable, err := s.brands.BrandNameUsable(ctx, brandName)
		if err != nil {
			return nil, httperr.Internal(err)
		}
		if !usable {
			return nil, httperr.NotFound(msgBrandNotUsable)
		}

		cigar := &models.Cigar{Status: status}
		if err := applyCigarFields(cigar, fields); err != nil {
			return nil, err
		}
		if err := s.cigars.CreateCigar(ctx, cigar); err != nil {
			return nil, httperr.Internal(err)
		}
		id = cigar.ID
	}

	if level.IsModerator() {
		telemetry.ModerationDecisionsTotal.WithLabelValues(entityNoun(entityType), "create", "applied").Inc()
		s.logger.Info("create applied directly", "entity", entityType, "id", id)
		return appliedOutcome(http.StatusAccepted, msgProcessed(entityType), id), nil
	}

	telemetry.ModerationDecisionsTotal.WithLabelValues(entityNoun(entityType), "create", "queued").Inc()
	s.logger.Info("create queued for review", "entity", entityType, "id", id)

	message := msgBrandQueued
	if entityType == models.EntityCigar {
		message = msgCigarQueued
	}
	return queuedOutcome(message, id), nil
}

// SubmitUpdate routes an update. Moderators mutate the entity in place; other
// tiers produce a pending request carrying the proposed field values.
func (s *Service) SubmitUpdate(ctx context.Context, entityType models.EntityType, level models.AccessLevel, apiKey, targetID string, fields validation.Fields) (*Outcome, error) {
	if targetID == "" {
		return nil, httperr.MissingParameter("You must supply an ID.")
	}
	if err := s.validate(ctx, entityType, fields); err != nil {
		return nil, err
	}

	if level.IsModerator() {
		if err := s.applyUpdate(ctx, entityType, targetID, fields); err != nil {
			return nil, err
		}
		telemetry.ModerationDecisionsTotal.WithLabelValues(entityNoun(entityType), "update", "applied").Inc()
		return appliedOutcome(http.StatusOK, msgProcessed(entityType), targetID), nil
	}

	if err := s.requireApprovedTarget(ctx, entityType, targetID); err != nil {
		return nil, err
	}

	req := &models.PendingRequest{
		Kind:           models.KindUpdate,
		TargetType:     entityType,
		TargetID:       &targetID,
		SubmittedByKey: apiKey,
		Payload:        models.Payload(fields),
	}
	if err := s.requests.CreateRequest(ctx, req); err != nil {
		return nil, httperr.Internal(err)
	}

	telemetry.ModerationDecisionsTotal.WithLabelValues(entityNoun(entityType), "update", "queued").Inc()
	s.logger.Info("update queued for review", "entity", entityType, "target", targetID, "request", req.ID)
	return queuedOutcome(msgUpdateQueued, req.ID), nil
}

// SubmitDelete routes a delete. Non-moderators must give a reason and produce
// a pending request; moderators mark the entity deleted immediately.
func (s *Service) SubmitDelete(ctx context.Context, entityType models.EntityType, level models.AccessLevel, apiKey, targetID, reason string) (*Outcome, error) {
	if targetID == "" {
		return nil, httperr.MissingParameter("You must supply an ID.")
	}

	if level.IsModerator() {
		ok, err := s.deleteEntity(ctx, entityType, targetID, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, httperr.Conflict(fmt.Sprintf("The %s could not be deleted; it changed state concurrently.", entityNoun(entityType)))
		}
		telemetry.ModerationDecisionsTotal.WithLabelValues(entityNoun(entityType), "delete", "applied").Inc()
		return appliedOutcome(http.StatusOK, msgProcessed(entityType), targetID), nil
	}

	if reason == "" {
		return nil, httperr.MissingParameter("You must provide a reason.")
	}
	if err := s.requireApprovedTarget(ctx, entityType, targetID); err != nil {
		return nil, err
	}

	already, err := s.requests.HasPendingRequestForTarget(ctx, targetID, models.KindDelete)
	if err != nil {
		return nil, httperr.Internal(err)
	}
	if already {
		return nil, httperr.Conflict(fmt.Sprintf("A delete request for this %s is already awaiting review.", entityNoun(entityType)))
	}

	req := &models.PendingRequest{
		Kind:           models.KindDelete,
		TargetType:     entityType,
		TargetID:       &targetID,
		SubmittedByKey: apiKey,
		Payload:        models.Payload{"reason": reason},
	}
	if err := s.requests.CreateRequest(ctx, req); err != nil {
		return nil, httperr.Internal(err)
	}

	telemetry.ModerationDecisionsTotal.WithLabelValues(entityNoun(entityType), "delete", "queued").Inc()
	s.logger.Info("delete queued for review", "entity", entityType, "target", targetID, "request", req.ID)
	return queuedOutcome(msgDeleteQueued, req.ID), nil
}

// requireApprovedTarget verifies the target exists and is live. Anything not
// currently approved reads as absent to non-moderators.
func (s *Service) requireApprovedTarget(ctx context.Context, entityType models.EntityType, targetID string) error {
	switch entityType {
	case models.EntityBrand:
		brand, err := s.brands.GetBrandByID(ctx, targetID)
		if err != nil {
			return httperr.Internal(err)
		}
		if brand == nil || brand.Status != models.StatusApproved {
			return httperr.NotFound("Brand not found.")
		}
	case models.EntityCigar:
		cigar, err := s.cigars.GetCigarByID(ctx, targetID)
		if err != nil {
			return httperr.Internal(err)
		}
		if cigar == nil || cigar.Status != models.StatusApproved {
			return httperr.NotFound("Cigar not found.")
		}
	}
	return nil
}

// applyUpdate merges field values onto the live entity and persists it.
func (s *Service) applyUpdate(ctx context.Context, entityType models.EntityType, targetID string, fields validation.Fields) error {
	switch entityType {
	case models.EntityBrand:
		brand, err := s.brands.GetBrandByID(ctx, targetID)
		if err != nil {
			return httperr.Internal(err)
		}
		if brand == nil || brand.Status != models.StatusApproved {
			return httperr.NotFound("Brand not found.")
		}
		if err := applyBrandFields(brand, fields); err != nil {
			return err
		}
		if err := s.brands.UpdateBrandFields(ctx, brand); err != nil {
			if err == sql.ErrNoRows {
				return httperr.NotFound("Brand not found.")
			}
			return httperr.Internal(err)
		}
	case models.EntityCigar:
		cigar, err := s.cigars.GetCigarByID(ctx, targetID)
		if err != nil {
			return httperr.Internal(err)
		}
		if cigar == nil || cigar.Status != models.StatusApproved {
			return httperr.NotFound("Cigar not found.")
		}
		if err := applyCigarFields(cigar, fields); err != nil {
			return err
		}
		if err := s.cigars.UpdateCigarFields(ctx, cigar); err != nil {
			if err == sql.ErrNoRows {
				return httperr.NotFound("Cigar not found.")
			}
			return httperr.Internal(err)
		}
	}
	return nil
}

// deleteEntity marks an approved entity deleted with a guarded transition.
// Returns false when the entity was concurrently resolved away; a missing or
// non-approved entity is NotFound.
func (s *Service) deleteEntity(ctx context.Context, entityType models.EntityType, targetID string, notes *string) (bool, error) {
	if err := s.requireApprovedTarget(ctx, entityType, targetID); err != nil {
		return false, err
	}

	switch entityType {
	case models.EntityBrand:
		ok, err := s.brands.UpdateBrandStatus(ctx, targetID, models.StatusApproved, models.StatusDeleted, notes)
		if err != nil {
			return false, httperr.Internal(err)
		}
		return ok, nil
	default:
		ok, err := s.cigars.UpdateCigarStatus(ctx, targetID, models.StatusApproved, models.StatusDeleted, notes)
		if err != nil {
			return false, httperr.Internal(err)
		}
		return ok, nil
	}
}
