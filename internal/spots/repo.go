package spots

import (
	"context"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for spots and their flok associations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, spot *models.Spot) error
	Get(ctx context.Context, id uuid.UUID) (*models.Spot, error)
	Update(ctx context.Context, spot *models.Spot) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]models.Spot, error)
	Link(ctx context.Context, assoc *models.FlokSpot) error
	Unlink(ctx context.Context, flokID, spotID uuid.UUID) error
	ListByFlok(ctx context.Context, flokID uuid.UUID) ([]models.Spot, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a spot repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, spot *models.Spot) error {
	return r.db.WithContext(ctx).Create(spot).Error
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*models.Spot, error) {
	var spot models.Spot
	if err := r.db.WithContext(ctx).First(&spot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &spot, nil
}

func (r *repository) Update(ctx context.Context, spot *models.Spot) error {
	return r.db.WithContext(ctx).
		Model(&models.Spot{}).
		Where("id = ?", spot.ID).
		Updates(map[string]any{
			"name":    spot.Name,
			"address": spot.Address,
			"notes":   spot.Notes,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Spot{}, "id = ?", id).Error
}

func (r *repository) Search(ctx context.Context, query string, limit int) ([]models.Spot, error) {
	var spots []models.Spot
	pattern := "%" + query + "%"
	if err := r.db.WithContext(ctx).
		Where("name ILIKE ? OR address ILIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&spots).Error; err != nil {
		return nil, err
	}
	return spots, nil
}

func (r *repository) Link(ctx context.Context, assoc *models.FlokSpot) error {
	return r.db.WithContext(ctx).Create(assoc).Error
}

func (r *repository) Unlink(ctx context.Context, flokID, spotID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.FlokSpot{}, "flok_id = ? AND spot_id = ?", flokID, spotID).Error
}

func (r *repository) ListByFlok(ctx context.Context, flokID uuid.UUID) ([]models.Spot, error) {
	var spots []models.Spot
	if err := r.db.WithContext(ctx).
		Table("spots").
		Joins("JOIN flok_spots ON flok_spots.spot_id = spots.id").
		Where("flok_spots.flok_id = ?", flokID).
		Order("spots.name ASC").
		Find(&spots).Error; err != nil {
		return nil, err
	}
	return spots, nil
}
