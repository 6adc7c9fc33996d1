package grading

import "github.com/rubrica/rubrica-api/internal/models"

// RubricContribution is one assignment's share of a student's course grade.
type RubricContribution struct {
	RubricID             string  `json:"rubric_id"`
	RubricTitle          string  `json:"rubric_title"`
	AssignmentPercentage float64 `json:"assignment_percentage"`
	CourseContribution   float64 `json:"course_contribution"`
	// Graded is false when no assessment exists for the student yet.
	Graded bool `json:"graded"`
	Passed bool `json:"passed"`
}

// StudentSummary is the course-wide grade row for one student.
type StudentSummary struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Contributions    []RubricContribution `json:"contributions"`
	TotalCourseScore float64              `json:"total_course_score"`
}

// Summarize folds the composite grade over every rubric for every known
// student. Students are collected from individual assignees and from group
// member lists, deduplicated by id (or by name when a member has no global
// id). For each rubric the student's own assessment wins; otherwise the
// assessment of the group containing the student applies; a missing
// assessment contributes zero and stays marked ungraded.
func Summarize(assignees []models.Assignee, rubrics []models.Rubric, assessments map[string]models.Assessment) []StudentSummary {
	type student struct {
		key  string
		id   string
		name string
	}

	var students []student
	seen := make(map[string]struct{})
	add := func(id, name string) {
		key := id
		if key == "" {
			key = name
		}
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		students = append(students, student{key: key, id: id, name: name})
	}

	for _, assignee := range assignees {
		if assignee.Type == models.AssignmentTypeIndividual {
			add(assignee.ID, assignee.Name)
			continue
		}
		for _, member := range assignee.MemberList() {
			id, name := models.ParseMember(member)
			add(id, name)
		}
	}

	summaries := make([]StudentSummary, 0, len(students))
	for _, st := range students {
		summary := StudentSummary{ID: st.id, Name: st.name}
		for _, rubric := range rubrics {
			contribution := RubricContribution{RubricID: rubric.ID, RubricTitle: rubric.Title}

			assessment, ok := lookupAssessment(rubric, st.key, assignees, assessments)
			if ok {
				grade := Grade(rubric, assessment.EntryList(), assessment.PeerEvaluationList(), st.key)
				contribution.AssignmentPercentage = grade.AssignmentPercentage
				contribution.CourseContribution = grade.CourseContribution
				contribution.Passed = grade.Passed
				contribution.Graded = true
				summary.TotalCourseScore += grade.CourseContribution
			}

			summary.Contributions = append(summary.Contributions, contribution)
		}
		summaries = append(summaries, summary)
	}

	return summaries
}

// lookupAssessment finds the assessment applying to a student under a rubric:
// the individually keyed assessment first, then the assessment of the group
// the student belongs to.
func lookupAssessment(rubric models.Rubric, studentKey string, assignees []models.Assignee, assessments map[string]models.Assessment) (models.Assessment, bool) {
	if assessment, ok := assessments[models.AssessmentID(rubric.ID, studentKey)]; ok {
		return assessment, true
	}

	for _, assignee := range assignees {
		if assignee.Type != models.AssignmentTypeGroup || !assignee.HasMember(studentKey) {
			continue
		}
		if assessment, ok := assessments[models.AssessmentID(rubric.ID, assignee.ID)]; ok {
			return assessment, true
		}
	}

	return models.Assessment{}, false
}
