package repository

import (
	"context"
	"errors"
	"time"

	"github.com/haimtran/sdq-assistant/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	// CreateIfAbsent inserts the aggregate unless one already exists for the
	// child. The unique index on child_id arbitrates concurrent submissions;
	// the return value reports whether this caller won the insert.
	CreateIfAbsent(ctx context.Context, review *model.ReviewAggregate) (bool, error)
	FindByChildID(ctx context.Context, childID string) (*model.ReviewAggregate, error)
	// RefreshPending updates score snapshots and summary in place, but only
	// while the aggregate is still pending. Reports whether a row changed.
	RefreshPending(ctx context.Context, review *model.ReviewAggregate) (bool, error)
	// MarkReviewed flips pending -> reviewed exactly once.
	MarkReviewed(ctx context.Context, childID, reviewerID, verdict string) (bool, error)
	ListByStatus(ctx context.Context, status model.ReviewStatus) ([]model.ReviewAggregate, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) CreateIfAbsent(ctx context.Context, review *model.ReviewAggregate) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "child_id"}},
			DoNothing: true,
		}).
		Create(review)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *reviewRepository) FindByChildID(ctx context.Context, childID string) (*model.ReviewAggregate, error) {
	var review model.ReviewAggregate
	err := r.db.WithContext(ctx).Where("child_id = ?", childID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &review, err
}

func (r *reviewRepository) RefreshPending(ctx context.Context, review *model.ReviewAggregate) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.ReviewAggregate{}).
		Where("child_id = ? AND status = ?", review.ChildID, model.ReviewStatusPending).
		Updates(map[string]interface{}{
			"child_test_id":     review.ChildTestID,
			"parent_test_id":    review.ParentTestID,
			"teacher_test_id":   review.TeacherTestID,
			"scores":            review.Scores,
			"generated_summary": review.GeneratedSummary,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *reviewRepository) MarkReviewed(ctx context.Context, childID, reviewerID, verdict string) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.ReviewAggregate{}).
		Where("child_id = ? AND status = ?", childID, model.ReviewStatusPending).
		Updates(map[string]interface{}{
			"status":              model.ReviewStatusReviewed,
			"psychologist_review": verdict,
			"reviewed_by":         reviewerID,
			"reviewed_at":         now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *reviewRepository) ListByStatus(ctx context.Context, status model.ReviewStatus) ([]model.ReviewAggregate, error) {
	var reviews []model.ReviewAggregate
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}
