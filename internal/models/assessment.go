package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// GradeEntry records the level picked for one criterion. Score may diverge
// from the level's nominal score when the teacher applies a manual override.
type GradeEntry struct {
	CriterionID string  `json:"criterion_id"`
	LevelID     string  `json:"level_id"`
	Score       float64 `json:"score"`
}

// PeerEvaluation is one member's 0-100 score of another member of the same
// group. Evaluator and Subject are serialized member strings.
type PeerEvaluation struct {
	ID        string  `json:"id"`
	Evaluator string  `json:"evaluator"`
	Subject   string  `json:"subject"`
	Score     float64 `json:"score"`
	Feedback  string  `json:"feedback"`
}

// Assessment links one rubric to one assignee. It is created lazily on the
// first score or evaluation write and keyed by the composite id so exactly one
// assessment exists per (rubric, assignee) pair.
type Assessment struct {
	ID              string         `gorm:"primaryKey;size:130" json:"id"`
	RubricID        string         `gorm:"size:64;index;not null" json:"rubric_id"`
	AssigneeID      string         `gorm:"size:64;index;not null" json:"assignee_id"`
	Entries         datatypes.JSON `gorm:"type:json" json:"-"`
	PeerEvaluations datatypes.JSON `gorm:"type:json" json:"-"`
	TotalScore      float64        `gorm:"not null" json:"total_score"`
	SubmissionText  string         `gorm:"type:text" json:"submission_text"`
	Feedback        string         `gorm:"type:text" json:"feedback"`
	Locked          bool           `gorm:"not null" json:"locked"`
	LastUpdated     time.Time      `json:"last_updated"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// AssessmentID builds the composite key for an assessment.
func AssessmentID(rubricID, assigneeID string) string {
	return rubricID + "_" + assigneeID
}

// SetEntries serializes the grade entries into the JSON storage column.
func (a *Assessment) SetEntries(entries []GradeEntry) {
	data, err := json.Marshal(entries)
	if err != nil {
		a.Entries = datatypes.JSON([]byte("[]"))
		return
	}
	a.Entries = datatypes.JSON(data)
}

// EntryList deserializes the stored grade entries into a Go slice.
func (a Assessment) EntryList() []GradeEntry {
	if len(a.Entries) == 0 {
		return nil
	}

	var entries []GradeEntry
	if err := json.Unmarshal(a.Entries, &entries); err != nil {
		return nil
	}

	return entries
}

// SetPeerEvaluations serializes the peer evaluations into the JSON storage column.
func (a *Assessment) SetPeerEvaluations(evaluations []PeerEvaluation) {
	data, err := json.Marshal(evaluations)
	if err != nil {
		a.PeerEvaluations = datatypes.JSON([]byte("[]"))
		return
	}
	a.PeerEvaluations = datatypes.JSON(data)
}

// PeerEvaluationList deserializes the stored peer evaluations into a Go slice.
func (a Assessment) PeerEvaluationList() []PeerEvaluation {
	if len(a.PeerEvaluations) == 0 {
		return nil
	}

	var evaluations []PeerEvaluation
	if err := json.Unmarshal(a.PeerEvaluations, &evaluations); err != nil {
		return nil
	}

	return evaluations
}
