package attendance

import (
	"context"
	"fmt"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	pkgerrors "github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/google/uuid"
)

// flokoutResolver maps a flokout to its owning flok.
type flokoutResolver interface {
	FlokIDFor(ctx context.Context, flokoutID uuid.UUID) (uuid.UUID, error)
}

// membershipChecker answers whether a user belongs to a flok.
type membershipChecker interface {
	IsMember(ctx context.Context, flokID, userID uuid.UUID) (bool, error)
}

// Service defines attendance operations. The attended set it maintains drives
// expense share generation.
type Service interface {
	Mark(ctx context.Context, flokoutID, userID, actorID uuid.UUID, attended bool) (*models.Attendance, error)
	MarkBulk(ctx context.Context, flokoutID, actorID uuid.UUID, userIDs []uuid.UUID, attended bool) error
	ListByFlokout(ctx context.Context, flokoutID, actorID uuid.UUID) ([]models.Attendance, error)
	ResolveAttendees(ctx context.Context, flokoutID uuid.UUID) ([]uuid.UUID, error)
	History(ctx context.Context, userID uuid.UUID) ([]models.Attendance, error)
}

// ServiceParams bundles the attendance service dependencies.
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

// NewService wires an attendance service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("attendance repository required")
	}
	if params.Flokouts == nil {
		return nil, fmt.Errorf("flokout resolver required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	return &service{repo: params.Repo, flokouts: params.Flokouts, members: params.Members}, nil
}

// Mark records whether a single member attended. Any flok member can mark
// attendance, including their own.
func (s *service) Mark(ctx context.Context, flokoutID, userID, actorID uuid.UUID, attended bool) (*models.Attendance, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	flokID, err := s.requireFlokoutMember(ctx, flokoutID, actorID)
	if err != nil {
		return nil, err
	}
	if userID != actorID {
		member, err := s.members.IsMember(ctx, flokID, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
		}
		if !member {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "target user is not a member of this flok")
		}
	}

	record := &models.Attendance{
		FlokoutID: flokoutID,
		UserID:    userID,
		Attended:  attended,
		MarkedBy:  actorID,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save attendance")
	}
	return record, nil
}

// MarkBulk records the same attended flag for a batch of members in one write.
func (s *service) MarkBulk(ctx context.Context, flokoutID, actorID uuid.UUID, userIDs []uuid.UUID, attended bool) error {
	if len(userIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one user id required")
	}
	flokID, err := s.requireFlokoutMember(ctx, flokoutID, actorID)
	if err != nil {
		return err
	}

	records := make([]models.Attendance, 0, len(userIDs))
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, userID := range userIDs {
		if userID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		member, err := s.members.IsMember(ctx, flokID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
		}
		if !member {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("user %s is not a member of this flok", userID))
		}
		records = append(records, models.Attendance{
			FlokoutID: flokoutID,
			UserID:    userID,
			Attended:  attended,
			MarkedBy:  actorID,
		})
	}

	if err := s.repo.UpsertMany(ctx, records); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save attendance batch")
	}
	return nil
}

func (s *service) ListByFlokout(ctx context.Context, flokoutID, actorID uuid.UUID) ([]models.Attendance, error) {
	if _, err := s.requireFlokoutMember(ctx, flokoutID, actorID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByFlokout(ctx, flokoutID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attendance")
	}
	return records, nil
}

// ResolveAttendees supplies the attendee set for a flokout.
func (s *service) ResolveAttendees(ctx context.Context, flokoutID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.repo.ListAttendeeIDs(ctx, flokoutID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attendees")
	}
	return ids, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]models.Attendance, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	records, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attendance history")
	}
	return records, nil
}

func (s *service) requireFlokoutMember(ctx context.Context, flokoutID, userID uuid.UUID) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	flokID, err := s.flokouts.FlokIDFor(ctx, flokoutID)
	if err != nil {
		return uuid.Nil, err
	}
	member, err := s.members.IsMember(ctx, flokID, userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !member {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this flok")
	}
	return flokID, nil
}
