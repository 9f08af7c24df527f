package spots

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flokoutapp/flokout-backend/pkg/db"
	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	pkgerrors "github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

type membershipChecker interface {
	IsMember(ctx context.Context, flokID, userID uuid.UUID) (bool, error)
}

// Service defines spot catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateSpotInput) (*models.Spot, error)
	Get(ctx context.Context, spotID uuid.UUID) (*models.Spot, error)
	Update(ctx context.Context, input UpdateSpotInput) (*models.Spot, error)
	Delete(ctx context.Context, spotID, actorID uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]models.Spot, error)
	LinkToFlok(ctx context.Context, flokID, spotID, actorID uuid.UUID) error
	UnlinkFromFlok(ctx context.Context, flokID, spotID, actorID uuid.UUID) error
	ListByFlok(ctx context.Context, flokID, actorID uuid.UUID) ([]models.Spot, error)
}

// CreateSpotInput captures a new venue.
type CreateSpotInput struct {
	Name      string
	Address   *string
	Notes     *string
	CreatedBy uuid.UUID
}

// UpdateSpotInput captures a venue edit. Nil fields are left unchanged.
type UpdateSpotInput struct {
	SpotID  uuid.UUID
	ActorID uuid.UUID
	Name    *string
	Address *string
	Notes   *string
}

type service struct {
	repo    Repository
	members membershipChecker
}

// NewService wires a spot service with the provided dependencies.
func NewService(repo Repository, members membershipChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("spot repository required")
	}
	if members == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	return &service{repo: repo, members: members}, nil
}

func (s *service) Create(ctx context.Context, input CreateSpotInput) (*models.Spot, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spot name required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	spot := &models.Spot{
		Name:      name,
		Address:   input.Address,
		Notes:     input.Notes,
		CreatedBy: input.CreatedBy,
	}
	if err := s.repo.Create(ctx, spot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create spot")
	}
	return spot, nil
}

func (s *service) Get(ctx context.Context, spotID uuid.UUID) (*models.Spot, error) {
	return s.load(ctx, spotID)
}

func (s *service) Update(ctx context.Context, input UpdateSpotInput) (*models.Spot, error) {
	spot, err := s.loadOwned(ctx, input.SpotID, input.ActorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "spot name cannot be empty")
		}
		spot.Name = name
	}
	if input.Address != nil {
		spot.Address = input.Address
	}
	if input.Notes != nil {
		spot.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, spot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update spot")
	}
	return spot, nil
}

func (s *service) Delete(ctx context.Context, spotID, actorID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, spotID, actorID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, spotID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete spot")
	}
	return nil
}

func (s *service) Search(ctx context.Context, query string, limit int) ([]models.Spot, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	spots, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search spots")
	}
	return spots, nil
}

func (s *service) LinkToFlok(ctx context.Context, flokID, spotID, actorID uuid.UUID) error {
	if err := s.requireMember(ctx, flokID, actorID); err != nil {
		return err
	}
	if _, err := s.load(ctx, spotID); err != nil {
		return err
	}
	assoc := &models.FlokSpot{FlokID: flokID, SpotID: spotID}
	if err := s.repo.Link(ctx, assoc); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "spot already linked to this flok")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link spot")
	}
	return nil
}

func (s *service) UnlinkFromFlok(ctx context.Context, flokID, spotID, actorID uuid.UUID) error {
	if err := s.requireMember(ctx, flokID, actorID); err != nil {
		return err
	}
	if err := s.repo.Unlink(ctx, flokID, spotID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlink spot")
	}
	return nil
}

func (s *service) ListByFlok(ctx context.Context, flokID, actorID uuid.UUID) ([]models.Spot, error) {
	if err := s.requireMember(ctx, flokID, actorID); err != nil {
		return nil, err
	}
	spots, err := s.repo.ListByFlok(ctx, flokID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list flok spots")
	}
	return spots, nil
}

func (s *service) load(ctx context.Context, spotID uuid.UUID) (*models.Spot, error) {
	spot, err := s.repo.Get(ctx, spotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "spot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load spot")
	}
	return spot, nil
}

func (s *service) loadOwned(ctx context.Context, spotID, actorID uuid.UUID) (*models.Spot, error) {
	spot, err := s.load(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if spot.CreatedBy != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the spot creator can do this")
	}
	return spot, nil
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
