package flokouts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	pkgerrors "github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// membershipChecker answers whether a user belongs to a flok.
type membershipChecker interface {
	IsMember(ctx context.Context, flokID, userID uuid.UUID) (bool, error)
}

// yesCounter reports how many members answered yes for a flokout.
type yesCounter interface {
	CountYes(ctx context.Context, flokoutID uuid.UUID) (int, error)
}

// Service defines flokout lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateFlokoutInput) (*models.Flokout, error)
	Get(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error)
	Update(ctx context.Context, input UpdateFlokoutInput) (*models.Flokout, error)
	Delete(ctx context.Context, flokoutID, actorID uuid.UUID) error
	Confirm(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error)
	Complete(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error)
	Cancel(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error)
	ListByFlok(ctx context.Context, flokID, actorID uuid.UUID) ([]models.Flokout, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.Flokout, error)
	FlokIDFor(ctx context.Context, flokoutID uuid.UUID) (uuid.UUID, error)
}

// CreateFlokoutInput captures a new flokout request. New flokouts always start
// in the poll status.
type CreateFlokoutInput struct {
	FlokID       uuid.UUID
	SpotID       *uuid.UUID
	Title        string
	Description  *string
	Date         *time.Time
	MinAttendees int
	CreatedBy    uuid.UUID
}

// UpdateFlokoutInput captures a flokout edit. Nil fields are left unchanged.
type UpdateFlokoutInput struct {
	FlokoutID    uuid.UUID
	ActorID      uuid.UUID
	Title        *string
	Description  *string
	Date         *time.Time
	SpotID       *uuid.UUID
	MinAttendees *int
}

// ServiceParams bundles the flokout service dependencies.
type ServiceParams struct {
	Repo    Repository
	Members membershipChecker
	RSVPs   yesCounter
}

type service struct {
	repo    Repository
	members membershipChecker
	rsvps   yesCounter
	now     func() time.Time
}

// NewService wires a flokout service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("flokout repository required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	if params.RSVPs == nil {
		return nil, fmt.Errorf("rsvp counter required")
	}
	return &service{
		repo:    params.Repo,
		members: params.Members,
		rsvps:   params.RSVPs,
		now:     time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateFlokoutInput) (*models.Flokout, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "flokout title required")
	}
	if input.FlokID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "flok id required")
	}
	if input.MinAttendees < 1 {
		input.MinAttendees = 1
	}
	if err := s.requireMember(ctx, input.FlokID, input.CreatedBy); err != nil {
		return nil, err
	}

	flokout := &models.Flokout{
		FlokID:       input.FlokID,
		SpotID:       input.SpotID,
		Title:        title,
		Description:  input.Description,
		Date:         input.Date,
		Status:       enums.FlokoutStatusPoll,
		MinAttendees: input.MinAttendees,
		CreatedBy:    input.CreatedBy,
	}
	if err := s.repo.Create(ctx, flokout); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create flokout")
	}
	return flokout, nil
}

func (s *service) Get(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error) {
	flokout, err := s.load(ctx, flokoutID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, flokout.FlokID, actorID); err != nil {
		return nil, err
	}
	return flokout, nil
}

func (s *service) Update(ctx context.Context, input UpdateFlokoutInput) (*models.Flokout, error) {
	flokout, err := s.loadOwned(ctx, input.FlokoutID, input.ActorID)
	if err != nil {
		return nil, err
	}
	if flokout.Status == enums.FlokoutStatusCompleted || flokout.Status == enums.FlokoutStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "flokout can no longer be edited")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "flokout title cannot be empty")
		}
		flokout.Title = title
	}
	if input.Description != nil {
		flokout.Description = input.Description
	}
	if input.Date != nil {
		flokout.Date = input.Date
	}
	if input.SpotID != nil {
		flokout.SpotID = input.SpotID
	}
	if input.MinAttendees != nil {
		if *input.MinAttendees < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min attendees must be at least 1")
		}
		flokout.MinAttendees = *input.MinAttendees
	}

	if err := s.repo.Update(ctx, flokout); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update flokout")
	}
	return flokout, nil
}

func (s *service) Delete(ctx context.Context, flokoutID, actorID uuid.UUID) error {
	flokout, err := s.loadOwned(ctx, flokoutID, actorID)
	if err != nil {
		return err
	}
	if flokout.Status != enums.FlokoutStatusPoll {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only poll flokouts can be deleted")
	}
	if err := s.repo.Delete(ctx, flokoutID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete flokout")
	}
	return nil
}

// Confirm moves a poll to confirmed once enough members have answered yes.
func (s *service) Confirm(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error) {
	flokout, err := s.loadOwned(ctx, flokoutID, actorID)
	if err != nil {
		return nil, err
	}
	if !flokout.Status.CanTransitionTo(enums.FlokoutStatusConfirmed) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot confirm a %s flokout", flokout.Status))
	}

	yes, err := s.rsvps.CountYes(ctx, flokoutID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count rsvps")
	}
	if yes < flokout.MinAttendees {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("need %d yes responses to confirm, have %d", flokout.MinAttendees, yes))
	}

	confirmedAt := s.now()
	return s.transition(ctx, flokout, enums.FlokoutStatusConfirmed, map[string]any{
		"confirmed_at": confirmedAt,
	})
}

func (s *service) Complete(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error) {
	flokout, err := s.loadOwned(ctx, flokoutID, actorID)
	if err != nil {
		return nil, err
	}
	if !flokout.Status.CanTransitionTo(enums.FlokoutStatusCompleted) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot complete a %s flokout", flokout.Status))
	}
	return s.transition(ctx, flokout, enums.FlokoutStatusCompleted, nil)
}

func (s *service) Cancel(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error) {
	flokout, err := s.loadOwned(ctx, flokoutID, actorID)
	if err != nil {
		return nil, err
	}
	if !flokout.Status.CanTransitionTo(enums.FlokoutStatusCancelled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot cancel a %s flokout", flokout.Status))
	}
	return s.transition(ctx, flokout, enums.FlokoutStatusCancelled, nil)
}

func (s *service) ListByFlok(ctx context.Context, flokID, actorID uuid.UUID) ([]models.Flokout, error) {
	if err := s.requireMember(ctx, flokID, actorID); err != nil {
		return nil, err
	}
	flokouts, err := s.repo.ListByFlok(ctx, flokID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list flokouts")
	}
	return flokouts, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Flokout, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	flokouts, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list flokouts")
	}
	return flokouts, nil
}

// FlokIDFor maps a flokout to its owning flok.
func (s *service) FlokIDFor(ctx context.Context, flokoutID uuid.UUID) (uuid.UUID, error) {
	flokout, err := s.load(ctx, flokoutID)
	if err != nil {
		return uuid.Nil, err
	}
	return flokout.FlokID, nil
}

func (s *service) transition(ctx context.Context, flokout *models.Flokout, target enums.FlokoutStatus, fields map[string]any) (*models.Flokout, error) {
	affected, err := s.repo.UpdateStatus(ctx, flokout.ID, flokout.Status, target, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update flokout status")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "flokout status changed concurrently")
	}
	return s.load(ctx, flokout.ID)
}

func (s *service) load(ctx context.Context, flokoutID uuid.UUID) (*models.Flokout, error) {
	flokout, err := s.repo.Get(ctx, flokoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "flokout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load flokout")
	}
	return flokout, nil
}

// loadOwned loads a flokout and verifies the actor created it.
func (s *service) loadOwned(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error) {
	flokout, err := s.load(ctx, flokoutID)
	if err != nil {
		return nil, err
	}
	if flokout.CreatedBy != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the flokout creator can do this")
	}
	return flokout, nil
}

func (s *service) requireMember(ctx context.Context, flokID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
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
