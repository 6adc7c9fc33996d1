package dto

import (
	"time"

	"github.com/rubrica/rubrica-api/internal/grading"
	"github.com/rubrica/rubrica-api/internal/models"
)

// LevelPayload describes one performance level in a rubric request.
type LevelPayload struct {
	Label       string  `json:"label" validate:"required"`
	Score       float64 `json:"score" validate:"gte=0"`
	Description string  `json:"description"`
}

// CriterionPayload describes one criterion in a rubric request. Weight is a
// multiplier and defaults to 1 when omitted.
type CriterionPayload struct {
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description"`
	Weight      *float64       `json:"weight" validate:"omitempty,gte=0"`
	Levels      []LevelPayload `json:"levels" validate:"required,min=1,dive"`
}

// RubricCreateRequest describes the payload for creating a rubric.
type RubricCreateRequest struct {
	Title             string             `json:"title" validate:"required,min=3"`
	Description       string             `json:"description"`
	Type              string             `json:"type" validate:"required,oneof=individual group"`
	AssignmentWeight  float64            `json:"assignment_weight" validate:"gte=0,lte=100"`
	PeerEvalWeight    float64            `json:"peer_eval_weight" validate:"gte=0,lte=100"`
	PassingPercentage *float64           `json:"passing_percentage" validate:"omitempty,gte=0,lte=100"`
	Criteria          []CriterionPayload `json:"criteria" validate:"dive"`
}

// RubricUpdateRequest describes the payload for editing a rubric.
type RubricUpdateRequest struct {
	Title             *string            `json:"title" validate:"omitempty,min=3"`
	Description       *string            `json:"description"`
	AssignmentWeight  *float64           `json:"assignment_weight" validate:"omitempty,gte=0,lte=100"`
	PeerEvalWeight    *float64           `json:"peer_eval_weight" validate:"omitempty,gte=0,lte=100"`
	PassingPercentage *float64           `json:"passing_percentage" validate:"omitempty,gte=0,lte=100"`
	Criteria          []CriterionPayload `json:"criteria" validate:"omitempty,dive"`
}

// RubricDraftRequest asks the AI collaborator for a candidate rubric.
type RubricDraftRequest struct {
	Title        string `json:"title" validate:"required,min=3"`
	Description  string `json:"description"`
	Type         string `json:"type" validate:"required,oneof=individual group"`
	CriteriaHint int    `json:"criteria_hint" validate:"omitempty,gte=1,lte=10"`
}

// RubricResponse is the serialized representation returned to API clients.
type RubricResponse struct {
	ID                string                   `json:"id"`
	Title             string                   `json:"title"`
	Description       string                   `json:"description"`
	Type              string                   `json:"type"`
	Criteria          []models.RubricCriterion `json:"criteria"`
	AssignmentWeight  float64                  `json:"assignment_weight"`
	PeerEvalWeight    float64                  `json:"peer_eval_weight"`
	PassingPercentage float64                  `json:"passing_percentage"`
	MaxRawScore       float64                  `json:"max_raw_score"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// NewRubricResponse converts a model into a DTO.
func NewRubricResponse(model models.Rubric) RubricResponse {
	criteria := model.CriteriaList()

	return RubricResponse{
		ID:                model.ID,
		Title:             model.Title,
		Description:       model.Description,
		Type:              model.Type,
		Criteria:          criteria,
		AssignmentWeight:  model.AssignmentWeight,
		PeerEvalWeight:    model.EffectivePeerWeight(),
		PassingPercentage: model.PassingPercentage,
		MaxRawScore:       grading.Score(criteria, nil).MaxRawScore,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// NewRubricResponseSlice converts a slice of models into DTOs.
func NewRubricResponseSlice(rubrics []models.Rubric) []RubricResponse {
	responses := make([]RubricResponse, 0, len(rubrics))
	for _, rubric := range rubrics {
		responses = append(responses, NewRubricResponse(rubric))
	}

	return responses
}
