package service_test

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/rubrica/rubrica-api/internal/models"
	ai "github.com/rubrica/rubrica-api/pkg/ai"
)

type fakeRubricRepo struct {
	rubrics map[string]models.Rubric
	deleted []string
}

func newFakeRubricRepo(rubrics ...models.Rubric) *fakeRubricRepo {
	repo := &fakeRubricRepo{rubrics: map[string]models.Rubric{}}
	for _, rubric := range rubrics {
		repo.rubrics[rubric.ID] = rubric
	}
	return repo
}

func (r *fakeRubricRepo) List(context.Context) ([]models.Rubric, error) {
	ids := make([]string, 0, len(r.rubrics))
	for id := range r.rubrics {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rubrics := make([]models.Rubric, 0, len(ids))
	for _, id := range ids {
		rubrics = append(rubrics, r.rubrics[id])
	}
	return rubrics, nil
}

func (r *fakeRubricRepo) GetByID(_ context.Context, id string) (models.Rubric, error) {
	rubric, ok := r.rubrics[id]
	if !ok {
		return models.Rubric{}, gorm.ErrRecordNotFound
	}
	return rubric, nil
}

func (r *fakeRubricRepo) Create(_ context.Context, rubric *models.Rubric) error {
	r.rubrics[rubric.ID] = *rubric
	return nil
}

func (r *fakeRubricRepo) Update(_ context.Context, rubric *models.Rubric) error {
	r.rubrics[rubric.ID] = *rubric
	return nil
}

func (r *fakeRubricRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.rubrics[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rubrics, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeAssigneeRepo struct {
	assignees []models.Assignee
}

func newFakeAssigneeRepo(assignees ...models.Assignee) *fakeAssigneeRepo {
	return &fakeAssigneeRepo{assignees: assignees}
}

func (r *fakeAssigneeRepo) List(context.Context) ([]models.Assignee, error) {
	return append([]models.Assignee(nil), r.assignees...), nil
}

func (r *fakeAssigneeRepo) ListByType(_ context.Context, assigneeType string) ([]models.Assignee, error) {
	var matching []models.Assignee
	for _, assignee := range r.assignees {
		if assignee.Type == assigneeType {
			matching = append(matching, assignee)
		}
	}
	return matching, nil
}

func (r *fakeAssigneeRepo) GetByID(_ context.Context, id string) (models.Assignee, error) {
	for _, assignee := range r.assignees {
		if assignee.ID == id {
			return assignee, nil
		}
	}
	return models.Assignee{}, gorm.ErrRecordNotFound
}

func (r *fakeAssigneeRepo) CreateBatch(_ context.Context, assignees []models.Assignee) error {
	r.assignees = append(r.assignees, assignees...)
	return nil
}

func (r *fakeAssigneeRepo) Delete(_ context.Context, id string) error {
	for i, assignee := range r.assignees {
		if assignee.ID == id {
			r.assignees = append(r.assignees[:i], r.assignees[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeAssessmentRepo struct {
	assessments       map[string]models.Assessment
	saves             int
	deletedByRubric   []string
	deletedByAssignee []string
}

func newFakeAssessmentRepo(assessments ...models.Assessment) *fakeAssessmentRepo {
	repo := &fakeAssessmentRepo{assessments: map[string]models.Assessment{}}
	for _, assessment := range assessments {
		repo.assessments[assessment.ID] = assessment
	}
	return repo
}

func (r *fakeAssessmentRepo) List(context.Context) ([]models.Assessment, error) {
	ids := make([]string, 0, len(r.assessments))
	for id := range r.assessments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	assessments := make([]models.Assessment, 0, len(ids))
	for _, id := range ids {
		assessments = append(assessments, r.assessments[id])
	}
	return assessments, nil
}

func (r *fakeAssessmentRepo) ListByRubric(_ context.Context, rubricID string) ([]models.Assessment, error) {
	var matching []models.Assessment
	for _, assessment := range r.assessments {
		if assessment.RubricID == rubricID {
			matching = append(matching, assessment)
		}
	}
	return matching, nil
}

func (r *fakeAssessmentRepo) GetByID(_ context.Context, id string) (models.Assessment, error) {
	assessment, ok := r.assessments[id]
	if !ok {
		return models.Assessment{}, gorm.ErrRecordNotFound
	}
	return assessment, nil
}

func (r *fakeAssessmentRepo) Save(_ context.Context, assessment *models.Assessment) error {
	r.assessments[assessment.ID] = *assessment
	r.saves++
	return nil
}

func (r *fakeAssessmentRepo) DeleteByRubric(_ context.Context, rubricID string) error {
	for id, assessment := range r.assessments {
		if assessment.RubricID == rubricID {
			delete(r.assessments, id)
		}
	}
	r.deletedByRubric = append(r.deletedByRubric, rubricID)
	return nil
}

func (r *fakeAssessmentRepo) DeleteByAssignee(_ context.Context, assigneeID string) error {
	for id, assessment := range r.assessments {
		if assessment.AssigneeID == assigneeID {
			delete(r.assessments, id)
		}
	}
	r.deletedByAssignee = append(r.deletedByAssignee, assigneeID)
	return nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(context.Context) {
	f.calls++
}

type fakeDrafter struct {
	draft ai.RubricDraft
	err   error
	last  ai.DraftRequest
}

func (f *fakeDrafter) DraftRubric(_ context.Context, req ai.DraftRequest) (ai.RubricDraft, error) {
	f.last = req
	return f.draft, f.err
}

type fakeGrader struct {
	result ai.GradeResult
	err    error
	last   ai.GradeInput
}

func (f *fakeGrader) AutoGrade(_ context.Context, input ai.GradeInput) (ai.GradeResult, error) {
	f.last = input
	return f.result, f.err
}
