package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rubrica/rubrica-api/internal/models"
)

// AssessmentRepository defines persistence operations for assessments.
// Assessments are keyed by the composite (rubric, assignee) id and are only
// removed when their rubric or assignee goes away.
type AssessmentRepository interface {
	List(ctx context.Context) ([]models.Assessment, error)
	ListByRubric(ctx context.Context, rubricID string) ([]models.Assessment, error)
	GetByID(ctx context.Context, id string) (models.Assessment, error)
	Save(ctx context.Context, assessment *models.Assessment) error
	DeleteByRubric(ctx context.Context, rubricID string) error
	DeleteByAssignee(ctx context.Context, assigneeID string) error
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates a GORM-backed repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) List(ctx context.Context) ([]models.Assessment, error) {
	var assessments []models.Assessment
	if err := r.db.WithContext(ctx).Find(&assessments).Error; err != nil {
		return nil, err
	}

	return assessments, nil
}

func (r *assessmentRepository) ListByRubric(ctx context.Context, rubricID string) ([]models.Assessment, error) {
	var assessments []models.Assessment
	if err := r.db.WithContext(ctx).Where("rubric_id = ?", rubricID).Find(&assessments).Error; err != nil {
		return nil, err
	}

	return assessments, nil
}

func (r *assessmentRepository) GetByID(ctx context.Context, id string) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.WithContext(ctx).First(&assessment, "id = ?", id).Error; err != nil {
		return models.Assessment{}, err
	}

	return assessment, nil
}

func (r *assessmentRepository) Save(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Save(assessment).Error
}

func (r *assessmentRepository) DeleteByRubric(ctx context.Context, rubricID string) error {
	return r.db.WithContext(ctx).Where("rubric_id = ?", rubricID).Delete(&models.Assessment{}).Error
}

func (r *assessmentRepository) DeleteByAssignee(ctx context.Context, assigneeID string) error {
	return r.db.WithContext(ctx).Where("assignee_id = ?", assigneeID).Delete(&models.Assessment{}).Error
}
