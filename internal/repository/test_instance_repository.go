package repository

import (
	"context"
	"errors"

	"github.com/haimtran/sdq-assistant/internal/model"
	"gorm.io/gorm"
)

// ErrStalePosition means the instance's position moved between hydrating a
// turn and confirming its answer: another turn for the same test got there
// first. The answer must not be appended.
var ErrStalePosition = errors.New("test position changed since the turn was read")

type TestInstanceRepository interface {
	Create(ctx context.Context, inst *model.TestInstance) error
	FindByTestID(ctx context.Context, testID string) (*model.TestInstance, error)
	// FindIncomplete returns the unsubmitted instance for the same child,
	// role and email, or nil. Starting again must resume, never duplicate.
	FindIncomplete(ctx context.Context, childID string, role model.RespondentRole, email string) (*model.TestInstance, error)
	ListByChildID(ctx context.Context, childID string) ([]model.TestInstance, error)
	SetPosition(ctx context.Context, testID string, position int) error
	SetPendingSuggestion(ctx context.Context, testID string, suggestion model.Category) error
	// ConfirmAnswer appends the ledger entry, advances the position and
	// clears the pending suggestion in one transaction. The advance is
	// guarded on the position still matching the answered question; a miss
	// returns ErrStalePosition and nothing is written, so concurrent turns
	// for the same test can never double-record a question.
	ConfirmAnswer(ctx context.Context, inst *model.TestInstance, rec *model.AnswerRecord) error
	// MarkSubmitted flips the submitted flag and reports whether this call
	// actually changed state, so submit stays idempotent.
	MarkSubmitted(ctx context.Context, testID string) (bool, error)
	SaveScores(ctx context.Context, testID string, scores *model.ScoreReport) error
}

type testInstanceRepository struct {
	db *gorm.DB
}

func NewTestInstanceRepository(db *gorm.DB) TestInstanceRepository {
	return &testInstanceRepository{db: db}
}

func (r *testInstanceRepository) Create(ctx context.Context, inst *model.TestInstance) error {
	return r.db.WithContext(ctx).Create(inst).Error
}

func (r *testInstanceRepository) FindByTestID(ctx context.Context, testID string) (*model.TestInstance, error) {
	var inst model.TestInstance
	err := r.db.WithContext(ctx).Where("test_id = ?", testID).First(&inst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &inst, err
}

func (r *testInstanceRepository) FindIncomplete(ctx context.Context, childID string, role model.RespondentRole, email string) (*model.TestInstance, error) {
	var inst model.TestInstance
	err := r.db.WithContext(ctx).
		Where("child_id = ? AND respondent_role = ? AND respondent_email = ? AND submitted = ?", childID, role, email, false).
		First(&inst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &inst, err
}

func (r *testInstanceRepository) ListByChildID(ctx context.Context, childID string) ([]model.TestInstance, error) {
	var instances []model.TestInstance
	err := r.db.WithContext(ctx).Where("child_id = ?", childID).Find(&instances).Error
	return instances, err
}

func (r *testInstanceRepository) SetPosition(ctx context.Context, testID string, position int) error {
	return r.db.WithContext(ctx).Model(&model.TestInstance{}).
		Where("test_id = ?", testID).
		Update("position", position).Error
}

func (r *testInstanceRepository) SetPendingSuggestion(ctx context.Context, testID string, suggestion model.Category) error {
	return r.db.WithContext(ctx).Model(&model.TestInstance{}).
		Where("test_id = ?", testID).
		Update("pending_suggestion", suggestion).Error
}

func (r *testInstanceRepository) ConfirmAnswer(ctx context.Context, inst *model.TestInstance, rec *model.AnswerRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.TestInstance{}).
			Where("id = ? AND position = ?", inst.ID, rec.QuestionIndex).
			Updates(map[string]interface{}{
				"position":           rec.QuestionIndex + 1,
				"pending_suggestion": model.CategoryUnresolved,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStalePosition
		}
		return tx.Create(rec).Error
	})
}

func (r *testInstanceRepository) MarkSubmitted(ctx context.Context, testID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.TestInstance{}).
		Where("test_id = ? AND submitted = ?", testID, false).
		Update("submitted", true)
	return res.RowsAffected > 0, res.Error
}

func (r *testInstanceRepository) SaveScores(ctx context.Context, testID string, scores *model.ScoreReport) error {
	return r.db.WithContext(ctx).Model(&model.TestInstance{}).
		Where("test_id = ?", testID).
		Update("scores", scores).Error
}
