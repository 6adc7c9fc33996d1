// Package grading is the aggregation engine: pure functions that turn rubric
// definitions, grade entries, and peer evaluations into assignment and course
// grades. Every consumer (grading endpoints, CSV export, auto-grade intake)
// goes through these functions so the formulae exist exactly once.
package grading

import "github.com/rubrica/rubrica-api/internal/models"

// ScoreBreakdown is the teacher-rubric portion of a grade.
type ScoreBreakdown struct {
	RawScore    float64 `json:"raw_score"`
	MaxRawScore float64 `json:"max_raw_score"`
	// Percentage is rawScore/maxRawScore in [0,1], 0 when nothing is scorable.
	Percentage float64 `json:"percentage"`
}

// Score aggregates grade entries against the rubric criteria. Entries whose
// criterion no longer exists are skipped, and a rubric with no scorable points
// yields percentage 0 rather than a division by zero.
func Score(criteria []models.RubricCriterion, entries []models.GradeEntry) ScoreBreakdown {
	byID := make(map[string]models.RubricCriterion, len(criteria))
	maxRaw := 0.0
	for _, criterion := range criteria {
		byID[criterion.ID] = criterion
		maxRaw += criterion.MaxLevelScore() * weightOf(criterion)
	}

	raw := 0.0
	for _, entry := range entries {
		criterion, ok := byID[entry.CriterionID]
		if !ok {
			continue
		}
		raw += entry.Score * weightOf(criterion)
	}

	percentage := 0.0
	if maxRaw > 0 {
		percentage = raw / maxRaw
	}

	return ScoreBreakdown{RawScore: raw, MaxRawScore: maxRaw, Percentage: percentage}
}

// PruneStaleEntries drops entries referencing criteria that are no longer part
// of the rubric, returning the surviving entries in their original order.
func PruneStaleEntries(criteria []models.RubricCriterion, entries []models.GradeEntry) []models.GradeEntry {
	known := make(map[string]struct{}, len(criteria))
	for _, criterion := range criteria {
		known[criterion.ID] = struct{}{}
	}

	kept := make([]models.GradeEntry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := known[entry.CriterionID]; ok {
			kept = append(kept, entry)
		}
	}

	return kept
}

func weightOf(criterion models.RubricCriterion) float64 {
	if criterion.Weight < 0 {
		return 0
	}

	return criterion.Weight
}
