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
	"github.com/rubrica/rubrica-api/internal/service"
	"github.com/rubrica/rubrica-api/pkg/ai"
)

type rubricFixture struct {
	service     service.RubricService
	rubrics     *fakeRubricRepo
	assessments *fakeAssessmentRepo
	summaries   *fakeInvalidator
	drafter     *fakeDrafter
}

func newRubricFixture(t *testing.T, drafter *fakeDrafter, rubrics ...models.Rubric) rubricFixture {
	t.Helper()

	fixture := rubricFixture{
		rubrics:     newFakeRubricRepo(rubrics...),
		assessments: newFakeAssessmentRepo(),
		summaries:   &fakeInvalidator{},
		drafter:     drafter,
	}

	var rubricDrafter ai.RubricDrafter
	if drafter != nil {
		rubricDrafter = drafter
	}

	fixture.service = service.NewRubricService(
		fixture.rubrics,
		fixture.assessments,
		rubricDrafter,
		&idgen.Sequence{Prefix: "id"},
		validator.New(validator.WithRequiredStructEnabled()),
		fixture.summaries,
		60,
		zerolog.Nop(),
	)
	return fixture
}

func levelPayloads() []dto.LevelPayload {
	return []dto.LevelPayload{
		{Label: "Developing", Score: 5},
		{Label: "Excellent", Score: 10},
	}
}

func TestCreateRubricAssignsIDsAndDefaults(t *testing.T) {
	fixture := newRubricFixture(t, nil)

	response, err := fixture.service.Create(context.Background(), dto.RubricCreateRequest{
		Title:            "Final Essay",
		Type:             models.AssignmentTypeIndividual,
		AssignmentWeight: 40,
		Criteria: []dto.CriterionPayload{
			{Title: "Clarity", Levels: levelPayloads()},
		},
	})
	require.NoError(t, err)

	require.NotEmpty(t, response.ID)
	require.Len(t, response.Criteria, 1)
	require.NotEmpty(t, response.Criteria[0].ID)
	require.NotEmpty(t, response.Criteria[0].Levels[0].ID)

	// omitted weight defaults to 1, omitted passing threshold to the course default
	require.InDelta(t, 1, response.Criteria[0].Weight, 1e-9)
	require.InDelta(t, 60, response.PassingPercentage, 1e-9)
	require.InDelta(t, 10, response.MaxRawScore, 1e-9)
}

func TestCreateRubricAcceptsZeroPassingThreshold(t *testing.T) {
	fixture := newRubricFixture(t, nil)

	// an explicit zero threshold is a real choice, not an omission
	zero := 0.0
	response, err := fixture.service.Create(context.Background(), dto.RubricCreateRequest{
		Title:             "Participation",
		Type:              models.AssignmentTypeIndividual,
		PassingPercentage: &zero,
		Criteria:          []dto.CriterionPayload{{Title: "Clarity", Levels: levelPayloads()}},
	})
	require.NoError(t, err)
	require.Zero(t, response.PassingPercentage)
}

func TestCreateIndividualRubricZeroesPeerWeight(t *testing.T) {
	fixture := newRubricFixture(t, nil)

	response, err := fixture.service.Create(context.Background(), dto.RubricCreateRequest{
		Title:          "Final Essay",
		Type:           models.AssignmentTypeIndividual,
		PeerEvalWeight: 30,
		Criteria:       []dto.CriterionPayload{{Title: "Clarity", Levels: levelPayloads()}},
	})
	require.NoError(t, err)
	require.Zero(t, response.PeerEvalWeight)
}

func TestCreateRubricRejectsCriterionWithoutLevels(t *testing.T) {
	fixture := newRubricFixture(t, nil)

	_, err := fixture.service.Create(context.Background(), dto.RubricCreateRequest{
		Title:    "Final Essay",
		Type:     models.AssignmentTypeIndividual,
		Criteria: []dto.CriterionPayload{{Title: "Clarity", Levels: levelPayloads()}},
	})
	require.NoError(t, err)

	_, err = fixture.service.Create(context.Background(), dto.RubricCreateRequest{
		Title:    "Broken Rubric",
		Type:     models.AssignmentTypeIndividual,
		Criteria: []dto.CriterionPayload{{Title: "Clarity"}},
	})
	require.Error(t, err)
}

func TestUpdateRubricAppliesPartialChanges(t *testing.T) {
	rubric := individualRubric()
	fixture := newRubricFixture(t, nil, rubric)

	newTitle := "Essay v2"
	newWeight := 55.0
	response, err := fixture.service.Update(context.Background(), rubric.ID, dto.RubricUpdateRequest{
		Title:            &newTitle,
		AssignmentWeight: &newWeight,
	})
	require.NoError(t, err)

	require.Equal(t, "Essay v2", response.Title)
	require.InDelta(t, 55, response.AssignmentWeight, 1e-9)
	require.Len(t, response.Criteria, 1)
	require.Equal(t, 1, fixture.summaries.calls)
}

func TestUpdateUnknownRubric(t *testing.T) {
	fixture := newRubricFixture(t, nil)

	title := "Anything"
	_, err := fixture.service.Update(context.Background(), "ghost", dto.RubricUpdateRequest{Title: &title})
	require.ErrorIs(t, err, service.ErrRubricNotFound)
}

func TestDeleteRubricCascadesAssessments(t *testing.T) {
	rubric := individualRubric()
	fixture := newRubricFixture(t, nil, rubric)

	require.NoError(t, fixture.service.Delete(context.Background(), rubric.ID))
	require.Equal(t, []string{rubric.ID}, fixture.assessments.deletedByRubric)
	require.Equal(t, 1, fixture.summaries.calls)

	require.ErrorIs(t, fixture.service.Delete(context.Background(), rubric.ID), service.ErrRubricNotFound)
}

func TestDraftEnrichesCandidateWithFreshIDs(t *testing.T) {
	drafter := &fakeDrafter{draft: ai.RubricDraft{
		Title:       "Lab Report",
		Description: "drafted",
		Criteria: []ai.DraftCriterion{
			{
				Title:  "Method",
				Weight: 0,
				Levels: []ai.DraftLevel{
					{Label: "Weak", Score: 3},
					{Label: "Strong", Score: 6},
				},
			},
		},
	}}
	fixture := newRubricFixture(t, drafter)

	response, err := fixture.service.Draft(context.Background(), dto.RubricDraftRequest{
		Title:        "Lab Report",
		Type:         models.AssignmentTypeIndividual,
		CriteriaHint: 3,
	})
	require.NoError(t, err)

	require.Equal(t, 3, drafter.last.CriteriaHint)
	require.NotEmpty(t, response.ID)
	require.Len(t, response.Criteria, 1)
	require.NotEmpty(t, response.Criteria[0].ID)
	require.NotEmpty(t, response.Criteria[0].Levels[1].ID)

	// a drafted zero weight is bumped to the neutral multiplier and the
	// assignment weight stays unset until the teacher decides it
	require.InDelta(t, 1, response.Criteria[0].Weight, 1e-9)
	require.Zero(t, response.AssignmentWeight)
}

func TestDraftWithoutDrafter(t *testing.T) {
	fixture := newRubricFixture(t, nil)

	_, err := fixture.service.Draft(context.Background(), dto.RubricDraftRequest{
		Title: "Lab Report",
		Type:  models.AssignmentTypeIndividual,
	})
	require.ErrorIs(t, err, service.ErrDrafterUnavailable)
}

func TestDraftRejectsCriterionWithoutLevels(t *testing.T) {
	drafter := &fakeDrafter{draft: ai.RubricDraft{
		Title:    "Lab Report",
		Criteria: []ai.DraftCriterion{{Title: "Method"}},
	}}
	fixture := newRubricFixture(t, drafter)

	_, err := fixture.service.Draft(context.Background(), dto.RubricDraftRequest{
		Title: "Lab Report",
		Type:  models.AssignmentTypeIndividual,
	})
	require.ErrorIs(t, err, service.ErrCriterionWithoutLevels)
}
