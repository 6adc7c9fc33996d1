package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	// AssignmentTypeIndividual marks a rubric graded per student.
	AssignmentTypeIndividual = "individual"
	// AssignmentTypeGroup marks a rubric graded per group with optional peer evaluation.
	AssignmentTypeGroup = "group"
)

// RubricLevel is one performance tier of a criterion.
type RubricLevel struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// RubricCriterion is a weighted scoring dimension with discrete levels.
type RubricCriterion struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Weight      float64       `json:"weight"`
	Levels      []RubricLevel `json:"levels"`
}

// MaxLevelScore returns the highest nominal score among the criterion levels.
func (c RubricCriterion) MaxLevelScore() float64 {
	max := 0.0
	for _, level := range c.Levels {
		if level.Score > max {
			max = level.Score
		}
	}

	return max
}

// Scorable reports whether the criterion can be graded at all.
func (c RubricCriterion) Scorable() bool {
	return len(c.Levels) > 0
}

// Rubric defines the weighted criteria governing one assignment.
type Rubric struct {
	ID                string         `gorm:"primaryKey;size:64" json:"id"`
	Title             string         `gorm:"size:255;not null" json:"title"`
	Description       string         `gorm:"type:text" json:"description"`
	Type              string         `gorm:"size:16;not null" json:"type"`
	Criteria          datatypes.JSON `gorm:"type:json" json:"-"`
	AssignmentWeight  float64        `gorm:"not null" json:"assignment_weight"`
	PeerEvalWeight    float64        `gorm:"not null" json:"peer_eval_weight"`
	PassingPercentage float64        `gorm:"not null" json:"passing_percentage"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// SetCriteria serializes the criteria list into the JSON storage column.
func (r *Rubric) SetCriteria(criteria []RubricCriterion) {
	data, err := json.Marshal(criteria)
	if err != nil {
		r.Criteria = datatypes.JSON([]byte("[]"))
		return
	}
	r.Criteria = datatypes.JSON(data)
}

// CriteriaList deserializes the stored criteria into a Go slice.
func (r Rubric) CriteriaList() []RubricCriterion {
	if len(r.Criteria) == 0 {
		return nil
	}

	var criteria []RubricCriterion
	if err := json.Unmarshal(r.Criteria, &criteria); err != nil {
		return nil
	}

	return criteria
}

// EffectivePeerWeight returns the peer-evaluation share of the assignment
// grade. Individual rubrics never carry a peer component.
func (r Rubric) EffectivePeerWeight() float64 {
	if r.Type == AssignmentTypeIndividual {
		return 0
	}

	return r.PeerEvalWeight
}
