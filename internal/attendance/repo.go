package attendance

import (
	"context"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for attendance records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, record *models.Attendance) error
	UpsertMany(ctx context.Context, records []models.Attendance) error
	ListByFlokout(ctx context.Context, flokoutID uuid.UUID) ([]models.Attendance, error)
	ListAttendeeIDs(ctx context.Context, flokoutID uuid.UUID) ([]uuid.UUID, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Attendance, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an attendance repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

var attendanceConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "flokout_id"}, {Name: "user_id"}},
	DoUpdates: clause.AssignmentColumns([]string{"attended", "marked_by", "updated_at"}),
}

func (r *repository) Upsert(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).Clauses(attendanceConflict).Create(record).Error
}

func (r *repository) UpsertMany(ctx context.Context, records []models.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(attendanceConflict).Create(&records).Error
}

func (r *repository) ListByFlokout(ctx context.Context, flokoutID uuid.UUID) ([]models.Attendance, error) {
	var records []models.Attendance
	if err := r.db.WithContext(ctx).
		Where("flokout_id = ?", flokoutID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListAttendeeIDs returns the users recorded as having actually attended.
func (r *repository) ListAttendeeIDs(ctx context.Context, flokoutID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Where("flokout_id = ? AND attended = ?", flokoutID, true).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Attendance, error) {
	var records []models.Attendance
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND attended = ?", userID, true).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
