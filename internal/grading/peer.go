package grading

import (
	"strings"

	"github.com/rubrica/rubrica-api/internal/models"
)

// PeerAverage computes the mean peer score for a subject, matching evaluation
// subjects exactly.
//
// The defaults are deliberately asymmetric: an assignment that does not use
// peer evaluation (peerWeightPct == 0) gets 100 so the void component never
// drags the grade down, while a peer-weighted assignment with no reviews yet
// gets 0 because the component is unearned until someone reviews.
func PeerAverage(evaluations []models.PeerEvaluation, subject string, peerWeightPct float64) float64 {
	return peerAverageWhere(evaluations, peerWeightPct, func(evalSubject string) bool {
		return evalSubject == subject
	})
}

// PeerAverageForStudent computes the mean peer score for a student inside a
// group assessment, matching evaluations whose subject string contains the
// student key. Subjects are serialized "id, name" pairs, so containment is
// the lookup heuristic the course summary relies on.
func PeerAverageForStudent(evaluations []models.PeerEvaluation, studentKey string, peerWeightPct float64) float64 {
	return peerAverageWhere(evaluations, peerWeightPct, func(evalSubject string) bool {
		return studentKey != "" && strings.Contains(evalSubject, studentKey)
	})
}

// PeerAverageAll averages every evaluation in the assessment regardless of
// subject. It backs the assessment-level derived total, where no single
// student anchors the lookup.
func PeerAverageAll(evaluations []models.PeerEvaluation, peerWeightPct float64) float64 {
	return peerAverageWhere(evaluations, peerWeightPct, func(string) bool {
		return true
	})
}

func peerAverageWhere(evaluations []models.PeerEvaluation, peerWeightPct float64, match func(string) bool) float64 {
	if peerWeightPct <= 0 {
		return 100
	}

	sum := 0.0
	count := 0
	for _, evaluation := range evaluations {
		if match(evaluation.Subject) {
			sum += evaluation.Score
			count++
		}
	}

	if count == 0 {
		return 0
	}

	return sum / float64(count)
}
