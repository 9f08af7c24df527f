package flokouts

import (
	"context"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for flokouts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, flokout *models.Flokout) error
	Get(ctx context.Context, id uuid.UUID) (*models.Flokout, error)
	Update(ctx context.Context, flokout *models.Flokout) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByFlok(ctx context.Context, flokID uuid.UUID) ([]models.Flokout, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Flokout, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.FlokoutStatus, fields map[string]any) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a flokout repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, flokout *models.Flokout) error {
	return r.db.WithContext(ctx).Create(flokout).Error
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*models.Flokout, error) {
	var flokout models.Flokout
	if err := r.db.WithContext(ctx).First(&flokout, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &flokout, nil
}

func (r *repository) Update(ctx context.Context, flokout *models.Flokout) error {
	return r.db.WithContext(ctx).
		Model(&models.Flokout{}).
		Where("id = ?", flokout.ID).
		Updates(map[string]any{
			"title":         flokout.Title,
			"description":   flokout.Description,
			"date":          flokout.Date,
			"spot_id":       flokout.SpotID,
			"min_attendees": flokout.MinAttendees,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Flokout{}, "id = ?", id).Error
}

func (r *repository) ListByFlok(ctx context.Context, flokID uuid.UUID) ([]models.Flokout, error) {
	var flokouts []models.Flokout
	if err := r.db.WithContext(ctx).
		Where("flok_id = ?", flokID).
		Order("date ASC NULLS LAST, created_at DESC").
		Find(&flokouts).Error; err != nil {
		return nil, err
	}
	return flokouts, nil
}

// ListForUser returns flokouts belonging to any flok the user is a member of.
func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Flokout, error) {
	var flokouts []models.Flokout
	if err := r.db.WithContext(ctx).
		Table("flokouts").
		Joins("JOIN flok_memberships ON flok_memberships.flok_id = flokouts.flok_id").
		Where("flok_memberships.user_id = ?", userID).
		Order("flokouts.created_at DESC").
		Find(&flokouts).Error; err != nil {
		return nil, err
	}
	return flokouts, nil
}

// UpdateStatus performs a guarded transition. The returned count is zero when
// the row was not in the expected source status, which callers treat as a
// concurrent-transition conflict.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.FlokoutStatus, fields map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&models.Flokout{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Updates(updates)
	return result.RowsAffected, result.Error
}
