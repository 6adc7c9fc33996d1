// Package export flattens grading results into CSV tables for spreadsheet
// consumption. All numbers come from the grading engine; nothing is recomputed
// here.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rubrica/rubrica-api/internal/grading"
	"github.com/rubrica/rubrica-api/internal/models"
)

const (
	// StatusPassed marks an assessed grade at or above the passing threshold.
	StatusPassed = "Passed"
	// StatusFailed marks an assessed grade below the passing threshold.
	StatusFailed = "Failed"
	// StatusPending marks an assignee with no assessment yet.
	StatusPending = "Pending"
)

// AssignmentTable builds the per-assignment grade table. Individual rubrics
// produce one row per student; group rubrics produce one row per group member
// with separate teacher and peer columns, since the peer component differs
// between members of the same group.
func AssignmentTable(rubric models.Rubric, assignees []models.Assignee, assessments map[string]models.Assessment) [][]string {
	criteria := rubric.CriteriaList()
	weightLabel := formatScore(rubric.AssignmentWeight)

	if rubric.Type == models.AssignmentTypeGroup {
		return groupTable(rubric, criteria, weightLabel, assignees, assessments)
	}

	header := []string{"Student ID", "Student Name"}
	for _, criterion := range criteria {
		header = append(header, criterion.Title)
	}
	header = append(header, fmt.Sprintf("Final Grade (%s%%)", weightLabel), "Status", "Feedback")

	table := [][]string{header}
	for _, assignee := range assignees {
		if assignee.Type != models.AssignmentTypeIndividual {
			continue
		}

		row := []string{assignee.ID, assignee.Name}
		assessment, graded := assessments[models.AssessmentID(rubric.ID, assignee.ID)]
		row = append(row, criterionCells(criteria, assessment.EntryList())...)

		grade := grading.Grade(rubric, assessment.EntryList(), nil, "")
		row = append(row, formatScore(grade.CourseContribution), status(grade, graded), assessment.Feedback)
		table = append(table, row)
	}

	return table
}

func groupTable(rubric models.Rubric, criteria []models.RubricCriterion, weightLabel string, assignees []models.Assignee, assessments map[string]models.Assessment) [][]string {
	header := []string{"Group Name", "Student ID", "Student Name"}
	for _, criterion := range criteria {
		header = append(header, criterion.Title)
	}
	header = append(header,
		fmt.Sprintf("Teacher Score (%s%%)", weightLabel),
		fmt.Sprintf("Peer Score (%s%%)", weightLabel),
		fmt.Sprintf("Final Grade (%s%%)", weightLabel),
		"Status", "Feedback")

	table := [][]string{header}
	scale := rubric.AssignmentWeight / 100
	for _, assignee := range assignees {
		if assignee.Type != models.AssignmentTypeGroup {
			continue
		}

		assessment, graded := assessments[models.AssessmentID(rubric.ID, assignee.ID)]
		cells := criterionCells(criteria, assessment.EntryList())

		for _, member := range assignee.MemberList() {
			memberID, memberName := models.ParseMember(member)
			key := memberID
			if key == "" {
				key = memberName
			}

			grade := grading.Grade(rubric, assessment.EntryList(), assessment.PeerEvaluationList(), key)
			row := []string{assignee.Name, memberID, memberName}
			row = append(row, cells...)
			row = append(row,
				formatScore(grade.TeacherComponent*scale),
				formatScore(grade.PeerComponent*scale),
				formatScore(grade.CourseContribution),
				status(grade, graded),
				assessment.Feedback)
			table = append(table, row)
		}
	}

	return table
}

// CourseTable flattens course-wide summaries, one column per rubric plus the
// accumulated total. Ungraded cells read Pending instead of a misleading zero.
func CourseTable(rubrics []models.Rubric, summaries []grading.StudentSummary) [][]string {
	header := []string{"Student ID", "Student Name"}
	for _, rubric := range rubrics {
		header = append(header, fmt.Sprintf("%s (%s%%)", rubric.Title, formatScore(rubric.AssignmentWeight)))
	}
	header = append(header, "Course Total")

	table := [][]string{header}
	for _, summary := range summaries {
		row := []string{summary.ID, summary.Name}
		for _, contribution := range summary.Contributions {
			if contribution.Graded {
				row = append(row, formatScore(contribution.CourseContribution))
			} else {
				row = append(row, StatusPending)
			}
		}
		row = append(row, formatScore(summary.TotalCourseScore))
		table = append(table, row)
	}

	return table
}

// WriteCSV serializes the table; quoting and escaping follow RFC 4180 via the
// standard csv writer.
func WriteCSV(w io.Writer, table [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(table); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	return nil
}

func criterionCells(criteria []models.RubricCriterion, entries []models.GradeEntry) []string {
	scores := make(map[string]float64, len(entries))
	marked := make(map[string]bool, len(entries))
	for _, entry := range entries {
		scores[entry.CriterionID] = entry.Score
		marked[entry.CriterionID] = true
	}

	cells := make([]string, 0, len(criteria))
	for _, criterion := range criteria {
		if marked[criterion.ID] {
			cells = append(cells, formatScore(scores[criterion.ID]))
		} else {
			cells = append(cells, "")
		}
	}

	return cells
}

func status(grade grading.CompositeGrade, graded bool) string {
	if !graded {
		return StatusPending
	}
	if grade.Passed {
		return StatusPassed
	}

	return StatusFailed
}

// formatScore renders a number with one or two decimal places, the precision
// the exported spreadsheets expect.
func formatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if strings.HasSuffix(s, "0") {
		s = s[:len(s)-1]
	}

	return s
}
