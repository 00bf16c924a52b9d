package repository

import (
	"context"

	"github.com/haimtran/sdq-assistant/internal/model"
	"gorm.io/gorm"
)

type FingerprintRepository interface {
	Create(ctx context.Context, fp *model.UtteranceFingerprint) error
	ListByTestInstanceID(ctx context.Context, testInstanceID uint) ([]model.UtteranceFingerprint, error)
}

type fingerprintRepository struct {
	db *gorm.DB
}

func NewFingerprintRepository(db *gorm.DB) FingerprintRepository {
	return &fingerprintRepository{db: db}
}

func (r *fingerprintRepository) Create(ctx context.Context, fp *model.UtteranceFingerprint) error {
	return r.db.WithContext(ctx).Create(fp).Error
}

func (r *fingerprintRepository) ListByTestInstanceID(ctx context.Context, testInstanceID uint) ([]model.UtteranceFingerprint, error) {
	var fps []model.UtteranceFingerprint
	err := r.db.WithContext(ctx).
		Where("test_instance_id = ?", testInstanceID).
		Order("created_at ASC").
		Find(&fps).Error
	return fps, err
}
