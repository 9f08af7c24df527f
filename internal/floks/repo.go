package floks

import (
	"context"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for floks, memberships, and invites.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateFlok(ctx context.Context, flok *models.Flok) error
	GetFlok(ctx context.Context, id uuid.UUID) (*models.Flok, error)
	UpdateFlok(ctx context.Context, flok *models.Flok) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Flok, error)

	AddMember(ctx context.Context, membership *models.FlokMembership) error
	RemoveMember(ctx context.Context, flokID, userID uuid.UUID) error
	GetMembership(ctx context.Context, flokID, userID uuid.UUID) (*models.FlokMembership, error)
	ListMembers(ctx context.Context, flokID uuid.UUID) ([]models.FlokMembership, error)
	UpdateMemberRole(ctx context.Context, flokID, userID uuid.UUID, role enums.MemberRole) error

	CreateInvite(ctx context.Context, invite *models.FlokInvite) error
	GetInviteByCode(ctx context.Context, code string) (*models.FlokInvite, error)
	DeactivateInvite(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a flok repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateFlok(ctx context.Context, flok *models.Flok) error {
	return r.db.WithContext(ctx).Create(flok).Error
}

func (r *repository) GetFlok(ctx context.Context, id uuid.UUID) (*models.Flok, error) {
	var flok models.Flok
	if err := r.db.WithContext(ctx).First(&flok, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &flok, nil
}

func (r *repository) UpdateFlok(ctx context.Context, flok *models.Flok) error {
	return r.db.WithContext(ctx).
		Model(&models.Flok{}).
		Where("id = ?", flok.ID).
		Updates(map[string]any{
			"name":        flok.Name,
			"description": flok.Description,
		}).Error
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Flok{}).
		Where("id = ?", id).
		Update("active", active).Error
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Flok, error) {
	var floks []models.Flok
	if err := r.db.WithContext(ctx).
		Joins("JOIN flok_memberships ON flok_memberships.flok_id = floks.id").
		Where("flok_memberships.user_id = ?", userID).
		Where("floks.active = ?", true).
		Order("floks.created_at DESC").
		Find(&floks).Error; err != nil {
		return nil, err
	}
	return floks, nil
}

func (r *repository) AddMember(ctx context.Context, membership *models.FlokMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *repository) RemoveMember(ctx context.Context, flokID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("flok_id = ? AND user_id = ?", flokID, userID).
		Delete(&models.FlokMembership{}).Error
}

func (r *repository) GetMembership(ctx context.Context, flokID, userID uuid.UUID) (*models.FlokMembership, error) {
	var membership models.FlokMembership
	if err := r.db.WithContext(ctx).
		First(&membership, "flok_id = ? AND user_id = ?", flokID, userID).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *repository) ListMembers(ctx context.Context, flokID uuid.UUID) ([]models.FlokMembership, error) {
	var members []models.FlokMembership
	if err := r.db.WithContext(ctx).
		Where("flok_id = ?", flokID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) UpdateMemberRole(ctx context.Context, flokID, userID uuid.UUID, role enums.MemberRole) error {
	return r.db.WithContext(ctx).
		Model(&models.FlokMembership{}).
		Where("flok_id = ? AND user_id = ?", flokID, userID).
		Update("role", role).Error
}

func (r *repository) CreateInvite(ctx context.Context, invite *models.FlokInvite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *repository) GetInviteByCode(ctx context.Context, code string) (*models.FlokInvite, error) {
	var invite models.FlokInvite
	if err := r.db.WithContext(ctx).First(&invite, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *repository) DeactivateInvite(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.FlokInvite{}).
		Where("id = ?", id).
		Update("active", false).Error
}
