package grading_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rubrica/rubrica-api/internal/grading"
	"github.com/rubrica/rubrica-api/internal/models"
)

func TestCompositeBlendsTeacherAndPeer(t *testing.T) {
	rubric := models.Rubric{
		Type:              models.AssignmentTypeGroup,
		AssignmentWeight:  50,
		PeerEvalWeight:    30,
		PassingPercentage: 60,
	}

	grade := grading.Composite(rubric, 0.8, 50)

	require.InDelta(t, 56, grade.TeacherComponent, 1e-9)
	require.InDelta(t, 15, grade.PeerComponent, 1e-9)
	require.InDelta(t, 71, grade.AssignmentPercentage, 1e-9)
	require.InDelta(t, 35.5, grade.CourseContribution, 1e-9)
	require.True(t, grade.Passed)
}

func TestCompositeIndividualIgnoresPeerWeight(t *testing.T) {
	rubric := models.Rubric{
		Type:              models.AssignmentTypeIndividual,
		AssignmentWeight:  40,
		PeerEvalWeight:    30,
		PassingPercentage: 60,
	}

	grade := grading.Composite(rubric, 0.75, 0)

	require.InDelta(t, 75, grade.TeacherComponent, 1e-9)
	require.Zero(t, grade.PeerComponent)
	require.InDelta(t, 75, grade.AssignmentPercentage, 1e-9)
	require.InDelta(t, 30, grade.CourseContribution, 1e-9)
}

func TestCompositeFailsBelowThreshold(t *testing.T) {
	rubric := models.Rubric{
		Type:              models.AssignmentTypeIndividual,
		AssignmentWeight:  100,
		PassingPercentage: 60,
	}

	require.False(t, grading.Composite(rubric, 0.59, 0).Passed)
	require.True(t, grading.Composite(rubric, 0.6, 0).Passed)
}

func TestGradeEndToEnd(t *testing.T) {
	rubric := models.Rubric{
		ID:                "r1",
		Type:              models.AssignmentTypeGroup,
		AssignmentWeight:  50,
		PeerEvalWeight:    30,
		PassingPercentage: 60,
	}
	rubric.SetCriteria([]models.RubricCriterion{twoLevelCriterion("c1", 1, 10)})

	entries := []models.GradeEntry{{CriterionID: "c1", LevelID: "c1-high", Score: 8}}
	evaluations := []models.PeerEvaluation{
		{Subject: "S1, Ana", Score: 40},
		{Subject: "S1, Ana", Score: 60},
	}

	grade := grading.Grade(rubric, entries, evaluations, "Ana")

	require.InDelta(t, 56, grade.TeacherComponent, 1e-9)
	require.InDelta(t, 15, grade.PeerComponent, 1e-9)
	require.InDelta(t, 71, grade.AssignmentPercentage, 1e-9)
	require.InDelta(t, 35.5, grade.CourseContribution, 1e-9)
	require.True(t, grade.Passed)
}

func TestGradeMissingAssessmentDegradesToZero(t *testing.T) {
	rubric := models.Rubric{
		Type:              models.AssignmentTypeGroup,
		AssignmentWeight:  50,
		PeerEvalWeight:    30,
		PassingPercentage: 60,
	}
	rubric.SetCriteria([]models.RubricCriterion{twoLevelCriterion("c1", 1, 10)})

	grade := grading.Grade(rubric, nil, nil, "Ana")

	require.Zero(t, grade.AssignmentPercentage)
	require.Zero(t, grade.CourseContribution)
	require.False(t, grade.Passed)
}
