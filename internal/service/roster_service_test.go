package service_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rubrica/rubrica-api/internal/dto"
	"github.com/rubrica/rubrica-api/internal/idgen"
	"github.com/rubrica/rubrica-api/internal/models"
	"github.com/rubrica/rubrica-api/internal/roster"
	"github.com/rubrica/rubrica-api/internal/service"
)

type rosterFixture struct {
	service     service.RosterService
	assignees   *fakeAssigneeRepo
	assessments *fakeAssessmentRepo
	summaries   *fakeInvalidator
}

func newRosterFixture(t *testing.T, existing ...models.Assignee) rosterFixture {
	t.Helper()

	fixture := rosterFixture{
		assignees:   newFakeAssigneeRepo(existing...),
		assessments: newFakeAssessmentRepo(),
		summaries:   &fakeInvalidator{},
	}

	fixture.service = service.NewRosterService(
		fixture.assignees,
		fixture.assessments,
		roster.NewParser(&idgen.Sequence{Prefix: "gen"}),
		validator.New(validator.WithRequiredStructEnabled()),
		fixture.summaries,
		zerolog.Nop(),
	)
	return fixture
}

func TestImportCreatesAssignees(t *testing.T) {
	fixture := newRosterFixture(t)

	result, err := fixture.service.Import(context.Background(), dto.RosterImportRequest{
		Text: "S1, Ana\nS2, Bea",
		Mode: models.AssignmentTypeIndividual,
	})
	require.NoError(t, err)

	require.Len(t, result.Created, 2)
	require.Empty(t, result.Errors)
	require.Len(t, fixture.assignees.assignees, 2)
	require.Equal(t, 1, fixture.summaries.calls)
}

func TestImportResolvesCollisionsAgainstStoredRoster(t *testing.T) {
	fixture := newRosterFixture(t, models.Assignee{ID: "S1", Name: "Ana", Type: models.AssignmentTypeIndividual})

	result, err := fixture.service.Import(context.Background(), dto.RosterImportRequest{
		Text: "S1, Impostor",
		Mode: models.AssignmentTypeIndividual,
	})
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	require.Equal(t, "S1-1", result.Created[0].ID)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "duplicate id")
}

func TestImportRejectsUnknownMode(t *testing.T) {
	fixture := newRosterFixture(t)

	_, err := fixture.service.Import(context.Background(), dto.RosterImportRequest{
		Text: "S1, Ana",
		Mode: "classroom",
	})
	require.Error(t, err)
}

func TestImportFileAcceptsPlainText(t *testing.T) {
	fixture := newRosterFixture(t)

	result, err := fixture.service.ImportFile(context.Background(), []byte("S1, Ana\nS2, Bea"), models.AssignmentTypeIndividual)
	require.NoError(t, err)
	require.Len(t, result.Created, 2)
}

func TestImportFileRejectsBinary(t *testing.T) {
	fixture := newRosterFixture(t)

	pngHeader := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	_, err := fixture.service.ImportFile(context.Background(), pngHeader, models.AssignmentTypeIndividual)
	require.ErrorIs(t, err, service.ErrUnsupportedRosterFile)
}

func TestExportCSVListsRoster(t *testing.T) {
	fixture := newRosterFixture(t, models.Assignee{ID: "S1", Name: "Ana", Type: models.AssignmentTypeIndividual})

	csvText, err := fixture.service.ExportCSV(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ID,Name\nS1,Ana\n", csvText)
}

func TestDeleteCascadesAssessments(t *testing.T) {
	fixture := newRosterFixture(t, models.Assignee{ID: "S1", Name: "Ana", Type: models.AssignmentTypeIndividual})

	require.NoError(t, fixture.service.Delete(context.Background(), "S1"))
	require.Equal(t, []string{"S1"}, fixture.assessments.deletedByAssignee)
	require.Equal(t, 1, fixture.summaries.calls)

	require.ErrorIs(t, fixture.service.Delete(context.Background(), "S1"), service.ErrAssigneeNotFound)
}
