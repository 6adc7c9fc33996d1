package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rubrica/rubrica-api/internal/models"
	"github.com/rubrica/rubrica-api/internal/service"
)

func newExportFixture(t *testing.T) service.ExportService {
	t.Helper()

	rubric := individualRubric()
	assessment := models.Assessment{
		ID:         models.AssessmentID(rubric.ID, "S1"),
		RubricID:   rubric.ID,
		AssigneeID: "S1",
	}
	assessment.SetEntries([]models.GradeEntry{{CriterionID: "c1", LevelID: "l2", Score: 10}})

	rubrics := newFakeRubricRepo(rubric)
	assignees := newFakeAssigneeRepo(models.Assignee{ID: "S1", Name: "Ana", Type: models.AssignmentTypeIndividual})
	assessments := newFakeAssessmentRepo(assessment)

	summaries := service.NewSummaryService(rubrics, assignees, assessments, nil, time.Minute, zerolog.Nop())

	return service.NewExportService(rubrics, assignees, assessments, summaries, zerolog.Nop())
}

func TestAssignmentCSVBuildsFileWithSluggedName(t *testing.T) {
	exports := newExportFixture(t)

	data, fileName, err := exports.AssignmentCSV(context.Background(), "r2")
	require.NoError(t, err)

	require.Equal(t, "essay_grades.csv", fileName)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Student ID,Student Name,Clarity,Final Grade (40.0%),Status,Feedback", lines[0])
	require.Equal(t, "S1,Ana,10.0,40.0,Passed,", lines[1])
}

func TestAssignmentCSVUnknownRubric(t *testing.T) {
	exports := newExportFixture(t)

	_, _, err := exports.AssignmentCSV(context.Background(), "ghost")
	require.ErrorIs(t, err, service.ErrRubricNotFound)
}

func TestCourseCSVIncludesEveryRubricColumn(t *testing.T) {
	exports := newExportFixture(t)

	data, fileName, err := exports.CourseCSV(context.Background())
	require.NoError(t, err)

	require.Equal(t, "course_summary.csv", fileName)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, "Student ID,Student Name,Essay (40.0%),Course Total", lines[0])
	require.Equal(t, "S1,Ana,40.0,40.0", lines[1])
}
