package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flokoutapp/flokout-backend/internal/expenses"
	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	pkgerrors "github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes profile reads and updates.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (*models.User, error)
	Profiles(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]expenses.Profile, error)
}

// UpdateProfileInput captures a profile edit. Nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID    uuid.UUID
	FullName  *string
	AvatarURL *string
	PushToken *string
}

type service struct {
	repo Repository
}

// NewService wires a user service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*models.User, error) {
	user, err := s.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be empty")
		}
		user.FullName = name
	}
	if input.AvatarURL != nil {
		user.AvatarURL = input.AvatarURL
	}
	if input.PushToken != nil {
		user.PushToken = input.PushToken
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return user, nil
}

// Profiles resolves display snippets for the settle-up assembler. Unknown ids
// are left out of the map rather than erroring.
func (s *service) Profiles(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]expenses.Profile, error) {
	list, err := s.repo.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profiles")
	}
	profiles := make(map[uuid.UUID]expenses.Profile, len(list))
	for _, user := range list {
		profiles[user.ID] = expenses.Profile{
			ID:        user.ID,
			FullName:  user.FullName,
			AvatarURL: user.AvatarURL,
		}
	}
	return profiles, nil
}
