package grading_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rubrica/rubrica-api/internal/grading"
	"github.com/rubrica/rubrica-api/internal/models"
)

func TestPeerAverageExactSubject(t *testing.T) {
	evaluations := []models.PeerEvaluation{
		{Evaluator: "S2, Bea", Subject: "S1, Ana", Score: 80},
		{Evaluator: "S3, Cal", Subject: "S1, Ana", Score: 60},
		{Evaluator: "S1, Ana", Subject: "S2, Bea", Score: 90},
	}

	require.InDelta(t, 70, grading.PeerAverage(evaluations, "S1, Ana", 30), 1e-9)
}

func TestPeerAverageZeroWeightDefaultsToFull(t *testing.T) {
	require.InDelta(t, 100, grading.PeerAverage(nil, "S1", 0), 1e-9)
	require.InDelta(t, 100, grading.PeerAverage(nil, "S1", -5), 1e-9)
}

func TestPeerAverageNoReviewsYetIsZero(t *testing.T) {
	require.Zero(t, grading.PeerAverage(nil, "S1", 30))

	evaluations := []models.PeerEvaluation{{Subject: "S2, Bea", Score: 90}}
	require.Zero(t, grading.PeerAverage(evaluations, "S1, Ana", 30))
}

func TestPeerAverageForStudentMatchesBySubstring(t *testing.T) {
	evaluations := []models.PeerEvaluation{
		{Subject: "S1, Ana", Score: 40},
		{Subject: "S1, Ana", Score: 60},
		{Subject: "S2, Bea", Score: 100},
	}

	require.InDelta(t, 50, grading.PeerAverageForStudent(evaluations, "Ana", 30), 1e-9)
	require.InDelta(t, 50, grading.PeerAverageForStudent(evaluations, "S1", 30), 1e-9)
}

func TestPeerAverageForStudentEmptyKeyMatchesNothing(t *testing.T) {
	evaluations := []models.PeerEvaluation{{Subject: "S1, Ana", Score: 80}}

	require.Zero(t, grading.PeerAverageForStudent(evaluations, "", 30))
}

func TestPeerAverageAll(t *testing.T) {
	evaluations := []models.PeerEvaluation{
		{Subject: "S1, Ana", Score: 40},
		{Subject: "S2, Bea", Score: 80},
	}

	require.InDelta(t, 60, grading.PeerAverageAll(evaluations, 30), 1e-9)
}
