package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rubrica/rubrica-api/internal/models"
)

// AssigneeRepository defines persistence operations for the roster.
type AssigneeRepository interface {
	List(ctx context.Context) ([]models.Assignee, error)
	ListByType(ctx context.Context, assigneeType string) ([]models.Assignee, error)
	GetByID(ctx context.Context, id string) (models.Assignee, error)
	CreateBatch(ctx context.Context, assignees []models.Assignee) error
	Delete(ctx context.Context, id string) error
}

type assigneeRepository struct {
	db *gorm.DB
}

// NewAssigneeRepository instantiates a GORM-backed repository.
func NewAssigneeRepository(db *gorm.DB) AssigneeRepository {
	return &assigneeRepository{db: db}
}

func (r *assigneeRepository) List(ctx context.Context) ([]models.Assignee, error) {
	var assignees []models.Assignee
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&assignees).Error; err != nil {
		return nil, err
	}

	return assignees, nil
}

func (r *assigneeRepository) ListByType(ctx context.Context, assigneeType string) ([]models.Assignee, error) {
	var assignees []models.Assignee
	if err := r.db.WithContext(ctx).Where("type = ?", assigneeType).Order("created_at ASC").Find(&assignees).Error; err != nil {
		return nil, err
	}

	return assignees, nil
}

func (r *assigneeRepository) GetByID(ctx context.Context, id string) (models.Assignee, error) {
	var assignee models.Assignee
	if err := r.db.WithContext(ctx).First(&assignee, "id = ?", id).Error; err != nil {
		return models.Assignee{}, err
	}

	return assignee, nil
}

func (r *assigneeRepository) CreateBatch(ctx context.Context, assignees []models.Assignee) error {
	if len(assignees) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&assignees).Error
}

func (r *assigneeRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignee{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
