package repository

import (
	"context"
	"errors"

	"github.com/haimtran/sdq-assistant/internal/model"
	"gorm.io/gorm"
)

type ChildRepository interface {
	Create(ctx context.Context, child *model.Child) error
	FindByChildID(ctx context.Context, childID string) (*model.Child, error)
	FindByCode(ctx context.Context, code string) (*model.Child, error)
	UpdateNameAge(ctx context.Context, childID, name string, age int) error
}

type childRepository struct {
	db *gorm.DB
}

func NewChildRepository(db *gorm.DB) ChildRepository {
	return &childRepository{db: db}
}

func (r *childRepository) Create(ctx context.Context, child *model.Child) error {
	return r.db.WithContext(ctx).Create(child).Error
}

func (r *childRepository) FindByChildID(ctx context.Context, childID string) (*model.Child, error) {
	var child model.Child
	err := r.db.WithContext(ctx).Where("child_id = ?", childID).First(&child).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &child, err
}

func (r *childRepository) FindByCode(ctx context.Context, code string) (*model.Child, error) {
	var child model.Child
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&child).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &child, err
}

// UpdateNameAge is the only mutation children allow after registration.
func (r *childRepository) UpdateNameAge(ctx context.Context, childID, name string, age int) error {
	return r.db.WithContext(ctx).Model(&model.Child{}).
		Where("child_id = ?", childID).
		Updates(map[string]interface{}{"name": name, "age": age}).Error
}
