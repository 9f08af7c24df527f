package rsvps

import (
	"context"
	"errors"
	"fmt"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	pkgerrors "github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// flokoutResolver maps a flokout to its owning flok.
type flokoutResolver interface {
	FlokIDFor(ctx context.Context, flokoutID uuid.UUID) (uuid.UUID, error)
}

// membershipChecker answers whether a user belongs to a flok.
type membershipChecker interface {
	IsMember(ctx context.Context, flokID, userID uuid.UUID) (bool, error)
}

// Service defines RSVP operations.
type Service interface {
	Respond(ctx context.Context, flokoutID, userID uuid.UUID, response enums.RSVPResponse) (*models.RSVP, error)
	Get(ctx context.Context, flokoutID, userID uuid.UUID) (*models.RSVP, error)
	ListByFlokout(ctx context.Context, flokoutID, actorID uuid.UUID) ([]models.RSVP, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.RSVP, error)
	CountYes(ctx context.Context, flokoutID uuid.UUID) (int, error)
}

// ServiceParams bundles the RSVP service dependencies.
type ServiceParams struct {
	Repo     Repository
	Flokouts flokoutResolver
	Members  membershipChecker
}

type service struct {
	repo     Repository
	flokouts flokoutResolver
	members  membershipChecker
}

// NewService wires an RSVP service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("rsvp repository required")
	}
	if params.Flokouts == nil {
		return nil, fmt.Errorf("flokout resolver required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	return &service{repo: params.Repo, flokouts: params.Flokouts, members: params.Members}, nil
}

// Respond upserts the member's response, overwriting any earlier answer.
func (s *service) Respond(ctx context.Context, flokoutID, userID uuid.UUID, response enums.RSVPResponse) (*models.RSVP, error) {
	if !response.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid rsvp response %q", response))
	}
	if err := s.requireFlokoutMember(ctx, flokoutID, userID); err != nil {
		return nil, err
	}

	rsvp := &models.RSVP{
		FlokoutID: flokoutID,
		UserID:    userID,
		Response:  response,
	}
	if err := s.repo.Upsert(ctx, rsvp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save rsvp")
	}
	saved, err := s.repo.Get(ctx, flokoutID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload rsvp")
	}
	return saved, nil
}

func (s *service) Get(ctx context.Context, flokoutID, userID uuid.UUID) (*models.RSVP, error) {
	rsvp, err := s.repo.Get(ctx, flokoutID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rsvp not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rsvp")
	}
	return rsvp, nil
}

func (s *service) ListByFlokout(ctx context.Context, flokoutID, actorID uuid.UUID) ([]models.RSVP, error) {
	if err := s.requireFlokoutMember(ctx, flokoutID, actorID); err != nil {
		return nil, err
	}
	rsvps, err := s.repo.ListByFlokout(ctx, flokoutID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rsvps")
	}
	return rsvps, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.RSVP, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rsvps, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rsvps")
	}
	return rsvps, nil
}

// CountYes reports how many members answered yes for a flokout.
func (s *service) CountYes(ctx context.Context, flokoutID uuid.UUID) (int, error) {
	return s.repo.CountByResponse(ctx, flokoutID, enums.RSVPResponseYes)
}

func (s *service) requireFlokoutMember(ctx context.Context, flokoutID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	flokID, err := s.flokouts.FlokIDFor(ctx, flokoutID)
	if err != nil {
		return err
	}
	member, err := s.members.IsMember(ctx, flokID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !member {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this flok")
	}
	return nil
}
