package repository

import (
	"context"

	"github.com/haimtran/sdq-assistant/internal/model"
	"gorm.io/gorm"
)

// AnswerRepository reads the append-only answer ledger. Writes happen only
// through TestInstanceRepository.ConfirmAnswer so an entry can never land
// without the matching position advance.
type AnswerRepository interface {
	ListByTestInstanceID(ctx context.Context, testInstanceID uint) ([]model.AnswerRecord, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) ListByTestInstanceID(ctx context.Context, testInstanceID uint) ([]model.AnswerRecord, error) {
	var records []model.AnswerRecord
	err := r.db.WithContext(ctx).
		Where("test_instance_id = ?", testInstanceID).
		Order("question_index ASC").
		Find(&records).Error
	return records, err
}
