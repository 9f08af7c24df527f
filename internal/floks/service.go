package floks

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/config"
	"github.com/flokoutapp/flokout-backend/pkg/db"
	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	pkgerrors "github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Unambiguous invite alphabet: no 0/O or 1/I.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines flok, membership, and invite operations.
type Service interface {
	Create(ctx context.Context, input CreateFlokInput) (*models.Flok, error)
	Get(ctx context.Context, flokID, actorID uuid.UUID) (*models.Flok, error)
	Update(ctx context.Context, input UpdateFlokInput) (*models.Flok, error)
	Deactivate(ctx context.Context, flokID, actorID uuid.UUID) error
	Reactivate(ctx context.Context, flokID, actorID uuid.UUID) error
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.Flok, error)

	Members(ctx context.Context, flokID, actorID uuid.UUID) ([]models.FlokMembership, error)
	Leave(ctx context.Context, flokID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, flokID, actorID, targetID uuid.UUID) error
	UpdateRole(ctx context.Context, flokID, actorID, targetID uuid.UUID, role enums.MemberRole) error
	IsMember(ctx context.Context, flokID, userID uuid.UUID) (bool, error)

	CreateInvite(ctx context.Context, flokID, actorID uuid.UUID) (*models.FlokInvite, error)
	JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*models.Flok, error)
	DeactivateInvite(ctx context.Context, inviteID, actorID uuid.UUID) error
}

// CreateFlokInput captures a new flok request.
type CreateFlokInput struct {
	Name        string
	Description string
	CreatedBy   uuid.UUID
}

// UpdateFlokInput captures a flok edit. Nil fields are left unchanged.
type UpdateFlokInput struct {
	FlokID      uuid.UUID
	ActorID     uuid.UUID
	Name        *string
	Description *string
}

type service struct {
	repo    Repository
	tx      txRunner
	invites config.InviteConfig
	now     func() time.Time
}

// NewService wires a flok service with the provided dependencies.
func NewService(repo Repository, tx txRunner, invites config.InviteConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("flok repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx, invites: invites, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateFlokInput) (*models.Flok, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "flok name required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	description := strings.TrimSpace(input.Description)
	flok := &models.Flok{
		Name:        name,
		Description: &description,
		Active:      true,
		CreatedBy:   input.CreatedBy,
	}

	// The creator joins as admin in the same transaction.
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateFlok(ctx, flok); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create flok")
		}
		membership := &models.FlokMembership{
			FlokID: flok.ID,
			UserID: input.CreatedBy,
			Role:   enums.MemberRoleAdmin,
		}
		if err := repo.AddMember(ctx, membership); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add creator membership")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return flok, nil
}

func (s *service) Get(ctx context.Context, flokID, actorID uuid.UUID) (*models.Flok, error) {
	if err := s.requireMember(ctx, flokID, actorID); err != nil {
		return nil, err
	}
	return s.loadFlok(ctx, flokID)
}

func (s *service) Update(ctx context.Context, input UpdateFlokInput) (*models.Flok, error) {
	if err := s.requireAdmin(ctx, input.FlokID, input.ActorID); err != nil {
		return nil, err
	}
	flok, err := s.loadFlok(ctx, input.FlokID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "flok name cannot be empty")
		}
		flok.Name = name
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		flok.Description = &description
	}

	if err := s.repo.UpdateFlok(ctx, flok); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update flok")
	}
	return flok, nil
}

func (s *service) Deactivate(ctx context.Context, flokID, actorID uuid.UUID) error {
	return s.setActive(ctx, flokID, actorID, false)
}

func (s *service) Reactivate(ctx context.Context, flokID, actorID uuid.UUID) error {
	return s.setActive(ctx, flokID, actorID, true)
}

func (s *service) setActive(ctx context.Context, flokID, actorID uuid.UUID, active bool) error {
	if err := s.requireAdmin(ctx, flokID, actorID); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, flokID, active); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set flok active")
	}
	return nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Flok, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	floks, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list floks")
	}
	return floks, nil
}

func (s *service) Members(ctx context.Context, flokID, actorID uuid.UUID) ([]models.FlokMembership, error) {
	if err := s.requireMember(ctx, flokID, actorID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, flokID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return members, nil
}

func (s *service) Leave(ctx context.Context, flokID, userID uuid.UUID) error {
	membership, err := s.membership(ctx, flokID, userID)
	if err != nil {
		return err
	}
	if membership.Role == enums.MemberRoleAdmin {
		admins, err := s.countAdmins(ctx, flokID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "last admin cannot leave the flok")
		}
	}
	if err := s.repo.RemoveMember(ctx, flokID, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove membership")
	}
	return nil
}

func (s *service) RemoveMember(ctx context.Context, flokID, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return s.Leave(ctx, flokID, actorID)
	}
	if err := s.requireAdmin(ctx, flokID, actorID); err != nil {
		return err
	}
	if _, err := s.membership(ctx, flokID, targetID); err != nil {
		return err
	}
	if err := s.repo.RemoveMember(ctx, flokID, targetID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove member")
	}
	return nil
}

func (s *service) UpdateRole(ctx context.Context, flokID, actorID, targetID uuid.UUID, role enums.MemberRole) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}
	if err := s.requireAdmin(ctx, flokID, actorID); err != nil {
		return err
	}
	membership, err := s.membership(ctx, flokID, targetID)
	if err != nil {
		return err
	}
	if membership.Role == enums.MemberRoleAdmin && role != enums.MemberRoleAdmin {
		admins, err := s.countAdmins(ctx, flokID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot demote the last admin")
		}
	}
	if err := s.repo.UpdateMemberRole(ctx, flokID, targetID, role); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	return nil
}

func (s *service) IsMember(ctx context.Context, flokID, userID uuid.UUID) (bool, error) {
	_, err := s.repo.GetMembership(ctx, flokID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) CreateInvite(ctx context.Context, flokID, actorID uuid.UUID) (*models.FlokInvite, error) {
	if err := s.requireAdmin(ctx, flokID, actorID); err != nil {
		return nil, err
	}

	code, err := generateInviteCode(s.invites.CodeLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invite code")
	}

	expiresAt := s.now().Add(s.invites.TTL)
	invite := &models.FlokInvite{
		FlokID:    flokID,
		Code:      code,
		CreatedBy: actorID,
		Active:    true,
		ExpiresAt: &expiresAt,
	}
	if err := s.repo.CreateInvite(ctx, invite); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "invite code collision, retry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invite")
	}
	return invite, nil
}

func (s *service) JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*models.Flok, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite code required")
	}

	invite, err := s.repo.GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invite")
	}
	if !invite.Active {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invite is no longer active")
	}
	if s.now().After(*invite.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invite has expired")
	}

	already, err := s.IsMember(ctx, invite.FlokID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if already {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "already a member of this flok")
	}

	membership := &models.FlokMembership{
		FlokID: invite.FlokID,
		UserID: userID,
		Role:   enums.MemberRoleMember,
	}
	if err := s.repo.AddMember(ctx, membership); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add membership")
	}
	return s.loadFlok(ctx, invite.FlokID)
}

func (s *service) DeactivateInvite(ctx context.Context, inviteID, actorID uuid.UUID) error {
	if inviteID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invite id required")
	}
	if err := s.repo.DeactivateInvite(ctx, inviteID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate invite")
	}
	return nil
}

func (s *service) loadFlok(ctx context.Context, flokID uuid.UUID) (*models.Flok, error) {
	flok, err := s.repo.GetFlok(ctx, flokID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "flok not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load flok")
	}
	return flok, nil
}

func (s *service) membership(ctx context.Context, flokID, userID uuid.UUID) (*models.FlokMembership, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	membership, err := s.repo.GetMembership(ctx, flokID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this flok")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	return membership, nil
}

func (s *service) requireMember(ctx context.Context, flokID, userID uuid.UUID) error {
	_, err := s.membership(ctx, flokID, userID)
	return err
}

func (s *service) requireAdmin(ctx context.Context, flokID, userID uuid.UUID) error {
	membership, err := s.membership(ctx, flokID, userID)
	if err != nil {
		return err
	}
	if membership.Role != enums.MemberRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}

func (s *service) countAdmins(ctx context.Context, flokID uuid.UUID) (int, error) {
	members, err := s.repo.ListMembers(ctx, flokID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	count := 0
	for _, member := range members {
		if member.Role == enums.MemberRoleAdmin {
			count++
		}
	}
	return count, nil
}

func generateInviteCode(length int) (string, error) {
	if length <= 0 {
		length = 8
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}
