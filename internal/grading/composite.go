package grading

import "github.com/rubrica/rubrica-api/internal/models"

// CompositeGrade blends the teacher-rubric score and the peer-evaluation
// average into one assignment grade.
//
// AssignmentPercentage is the 0-100 grade for this assignment and drives the
// pass/fail verdict and on-screen display. CourseContribution is that grade
// scaled by the assignment's share of the course and is what the course
// summary and CSV export accumulate; the two must never be conflated.
type CompositeGrade struct {
	TeacherComponent     float64 `json:"teacher_component"`
	PeerComponent        float64 `json:"peer_component"`
	AssignmentPercentage float64 `json:"assignment_percentage"`
	CourseContribution   float64 `json:"course_contribution"`
	Passed               bool    `json:"passed"`
}

// Composite combines a teacher percentage (0-1) and a peer average (0-100)
// under the rubric's weight configuration. The peer weight is forced to zero
// for individual rubrics.
func Composite(rubric models.Rubric, teacherPercentage, peerAverage float64) CompositeGrade {
	peerWeight := rubric.EffectivePeerWeight()
	teacherWeight := 100 - peerWeight

	teacher := teacherPercentage * teacherWeight
	peer := peerAverage / 100 * peerWeight
	percentage := teacher + peer

	return CompositeGrade{
		TeacherComponent:     teacher,
		PeerComponent:        peer,
		AssignmentPercentage: percentage,
		CourseContribution:   percentage * rubric.AssignmentWeight / 100,
		Passed:               percentage >= rubric.PassingPercentage,
	}
}

// Grade computes the full composite grade for one assessment. It is the single
// entry point shared by the grading endpoints, the CSV export, and the course
// summary. subjectKey identifies the student for peer lookup and is ignored
// for individual rubrics; nil entry and evaluation slices describe an
// assessment that does not exist yet and degrade to a zero grade.
func Grade(rubric models.Rubric, entries []models.GradeEntry, evaluations []models.PeerEvaluation, subjectKey string) CompositeGrade {
	criteria := rubric.CriteriaList()
	breakdown := Score(criteria, entries)
	peerAverage := PeerAverageForStudent(evaluations, subjectKey, rubric.EffectivePeerWeight())

	return Composite(rubric, breakdown.Percentage, peerAverage)
}
