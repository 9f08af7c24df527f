package rsvps

import (
	"context"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for RSVPs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, rsvp *models.RSVP) error
	Get(ctx context.Context, flokoutID, userID uuid.UUID) (*models.RSVP, error)
	ListByFlokout(ctx context.Context, flokoutID uuid.UUID) ([]models.RSVP, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.RSVP, error)
	CountByResponse(ctx context.Context, flokoutID uuid.UUID, response enums.RSVPResponse) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an RSVP repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert inserts or overwrites the one row per (flokout, user).
func (r *repository) Upsert(ctx context.Context, rsvp *models.RSVP) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "flokout_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"response", "updated_at"}),
		}).
		Create(rsvp).Error
}

func (r *repository) Get(ctx context.Context, flokoutID, userID uuid.UUID) (*models.RSVP, error) {
	var rsvp models.RSVP
	if err := r.db.WithContext(ctx).
		First(&rsvp, "flokout_id = ? AND user_id = ?", flokoutID, userID).Error; err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *repository) ListByFlokout(ctx context.Context, flokoutID uuid.UUID) ([]models.RSVP, error) {
	var rsvps []models.RSVP
	if err := r.db.WithContext(ctx).
		Where("flokout_id = ?", flokoutID).
		Order("created_at ASC").
		Find(&rsvps).Error; err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.RSVP, error) {
	var rsvps []models.RSVP
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rsvps).Error; err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (r *repository) CountByResponse(ctx context.Context, flokoutID uuid.UUID, response enums.RSVPResponse) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RSVP{}).
		Where("flokout_id = ? AND response = ?", flokoutID, response).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
