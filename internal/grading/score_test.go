package grading_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rubrica/rubrica-api/internal/grading"
	"github.com/rubrica/rubrica-api/internal/models"
)

func twoLevelCriterion(id string, weight, maxScore float64) models.RubricCriterion {
	return models.RubricCriterion{
		ID:     id,
		Title:  "criterion " + id,
		Weight: weight,
		Levels: []models.RubricLevel{
			{ID: id + "-low", Label: "Developing", Score: maxScore / 2},
			{ID: id + "-high", Label: "Excellent", Score: maxScore},
		},
	}
}

func TestScoreWeightedAggregation(t *testing.T) {
	criteria := []models.RubricCriterion{
		twoLevelCriterion("c1", 2, 10),
		twoLevelCriterion("c2", 1, 10),
	}
	entries := []models.GradeEntry{
		{CriterionID: "c1", LevelID: "c1-high", Score: 10},
		{CriterionID: "c2", LevelID: "c2-low", Score: 5},
	}

	breakdown := grading.Score(criteria, entries)

	require.InDelta(t, 25, breakdown.RawScore, 1e-9)
	require.InDelta(t, 30, breakdown.MaxRawScore, 1e-9)
	require.InDelta(t, 25.0/30.0, breakdown.Percentage, 1e-9)
}

func TestScoreFullMarksIsOne(t *testing.T) {
	criteria := []models.RubricCriterion{
		twoLevelCriterion("c1", 3, 4),
		twoLevelCriterion("c2", 1, 8),
	}
	entries := []models.GradeEntry{
		{CriterionID: "c1", LevelID: "c1-high", Score: 4},
		{CriterionID: "c2", LevelID: "c2-high", Score: 8},
	}

	require.InDelta(t, 1.0, grading.Score(criteria, entries).Percentage, 1e-9)
}

func TestScoreHalfMarksIsHalf(t *testing.T) {
	criteria := []models.RubricCriterion{twoLevelCriterion("c1", 1, 10)}
	entries := []models.GradeEntry{{CriterionID: "c1", LevelID: "c1-low", Score: 5}}

	require.InDelta(t, 0.5, grading.Score(criteria, entries).Percentage, 1e-9)
}

func TestScoreEmptyRubricYieldsZero(t *testing.T) {
	breakdown := grading.Score(nil, []models.GradeEntry{{CriterionID: "ghost", Score: 5}})

	require.Zero(t, breakdown.MaxRawScore)
	require.Zero(t, breakdown.Percentage)
}

func TestScoreSkipsEntriesForRemovedCriteria(t *testing.T) {
	criteria := []models.RubricCriterion{twoLevelCriterion("kept", 1, 10)}
	entries := []models.GradeEntry{
		{CriterionID: "kept", LevelID: "kept-high", Score: 10},
		{CriterionID: "removed", LevelID: "removed-high", Score: 10},
	}

	breakdown := grading.Score(criteria, entries)

	require.InDelta(t, 10, breakdown.RawScore, 1e-9)
	require.InDelta(t, 1.0, breakdown.Percentage, 1e-9)
}

func TestScoreNegativeWeightTreatedAsZero(t *testing.T) {
	criteria := []models.RubricCriterion{
		twoLevelCriterion("good", 1, 10),
		twoLevelCriterion("bad", -3, 10),
	}
	entries := []models.GradeEntry{
		{CriterionID: "good", LevelID: "good-high", Score: 10},
		{CriterionID: "bad", LevelID: "bad-high", Score: 10},
	}

	breakdown := grading.Score(criteria, entries)

	require.InDelta(t, 10, breakdown.MaxRawScore, 1e-9)
	require.InDelta(t, 10, breakdown.RawScore, 1e-9)
}

func TestPruneStaleEntries(t *testing.T) {
	criteria := []models.RubricCriterion{twoLevelCriterion("c1", 1, 10)}
	entries := []models.GradeEntry{
		{CriterionID: "old", Score: 3},
		{CriterionID: "c1", Score: 5},
		{CriterionID: "older", Score: 7},
	}

	kept := grading.PruneStaleEntries(criteria, entries)

	require.Len(t, kept, 1)
	require.Equal(t, "c1", kept[0].CriterionID)
}
