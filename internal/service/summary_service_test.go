package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rubrica/rubrica-api/internal/models"
	"github.com/rubrica/rubrica-api/internal/service"
)

func summaryFixture(t *testing.T) (service.SummaryService, *fakeAssessmentRepo, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	rubric := individualRubric()
	assessment := models.Assessment{
		ID:         models.AssessmentID(rubric.ID, "S1"),
		RubricID:   rubric.ID,
		AssigneeID: "S1",
	}
	assessment.SetEntries([]models.GradeEntry{{CriterionID: "c1", LevelID: "l2", Score: 10}})

	assessments := newFakeAssessmentRepo(assessment)
	summaries := service.NewSummaryService(
		newFakeRubricRepo(rubric),
		newFakeAssigneeRepo(models.Assignee{ID: "S1", Name: "Ana", Type: models.AssignmentTypeIndividual}),
		assessments,
		client,
		time.Minute,
		zerolog.Nop(),
	)
	return summaries, assessments, server
}

func TestCourseSummaryComputesAndCaches(t *testing.T) {
	summaries, _, server := summaryFixture(t)

	result, err := summaries.CourseSummary(context.Background())
	require.NoError(t, err)

	require.Len(t, result, 1)
	require.Equal(t, "Ana", result[0].Name)
	require.InDelta(t, 40, result[0].TotalCourseScore, 1e-9)

	require.True(t, server.Exists("rubrica:course_summary"))
}

func TestCourseSummaryServedFromCache(t *testing.T) {
	summaries, assessments, _ := summaryFixture(t)

	first, err := summaries.CourseSummary(context.Background())
	require.NoError(t, err)

	// a write bypassing the service must not surface until invalidation
	updated := assessments.assessments[models.AssessmentID("r2", "S1")]
	updated.SetEntries([]models.GradeEntry{{CriterionID: "c1", LevelID: "l1", Score: 5}})
	assessments.assessments[updated.ID] = updated

	cached, err := summaries.CourseSummary(context.Background())
	require.NoError(t, err)
	require.InDelta(t, first[0].TotalCourseScore, cached[0].TotalCourseScore, 1e-9)

	summaries.Invalidate(context.Background())

	fresh, err := summaries.CourseSummary(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 20, fresh[0].TotalCourseScore, 1e-9)
}
