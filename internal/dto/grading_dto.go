package dto

import (
	"time"

	"github.com/rubrica/rubrica-api/internal/grading"
	"github.com/rubrica/rubrica-api/internal/models"
)

// GradeEntryPayload records the level picked for one criterion. Score may
// override the level's nominal score.
type GradeEntryPayload struct {
	CriterionID string  `json:"criterion_id" validate:"required"`
	LevelID     string  `json:"level_id"`
	Score       float64 `json:"score" validate:"gte=0"`
}

// GradeSaveRequest carries a full set of grade entries for an assessment.
type GradeSaveRequest struct {
	Entries        []GradeEntryPayload `json:"entries" validate:"dive"`
	Feedback       string              `json:"feedback"`
	SubmissionText string              `json:"submission_text"`
	Locked         *bool               `json:"locked"`
}

// PeerEvaluationRequest is one member's review of another member.
type PeerEvaluationRequest struct {
	Evaluator string  `json:"evaluator" validate:"required"`
	Subject   string  `json:"subject" validate:"required"`
	Score     float64 `json:"score" validate:"gte=0,lte=100"`
	Feedback  string  `json:"feedback"`
}

// AutoGradeRequest asks the AI collaborator to suggest grades for the
// submission text.
type AutoGradeRequest struct {
	SubmissionText string `json:"submission_text" validate:"required"`
}

// AssessmentResponse is the full scored state of one (rubric, assignee) pair.
type AssessmentResponse struct {
	ID              string                  `json:"id"`
	RubricID        string                  `json:"rubric_id"`
	AssigneeID      string                  `json:"assignee_id"`
	Entries         []models.GradeEntry     `json:"entries"`
	PeerEvaluations []models.PeerEvaluation `json:"peer_evaluations"`
	Breakdown       grading.ScoreBreakdown  `json:"breakdown"`
	Composite       grading.CompositeGrade  `json:"composite"`
	TotalScore      float64                 `json:"total_score"`
	SubmissionText  string                  `json:"submission_text"`
	Feedback        string                  `json:"feedback"`
	Locked          bool                    `json:"locked"`
	LastUpdated     time.Time               `json:"last_updated"`
}

// NewAssessmentResponse converts a model plus its computed grade into a DTO.
// Entries are the pruned set actually counted by the engine.
func NewAssessmentResponse(model models.Assessment, entries []models.GradeEntry, breakdown grading.ScoreBreakdown, composite grading.CompositeGrade) AssessmentResponse {
	return AssessmentResponse{
		ID:              model.ID,
		RubricID:        model.RubricID,
		AssigneeID:      model.AssigneeID,
		Entries:         entries,
		PeerEvaluations: model.PeerEvaluationList(),
		Breakdown:       breakdown,
		Composite:       composite,
		TotalScore:      model.TotalScore,
		SubmissionText:  model.SubmissionText,
		Feedback:        model.Feedback,
		Locked:          model.Locked,
		LastUpdated:     model.LastUpdated,
	}
}
