package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rubrica/rubrica-api/internal/dto"
	"github.com/rubrica/rubrica-api/internal/idgen"
	"github.com/rubrica/rubrica-api/internal/models"
	"github.com/rubrica/rubrica-api/internal/repository"
	"github.com/rubrica/rubrica-api/pkg/ai"
)

// ErrRubricNotFound indicates the rubric was not located.
var ErrRubricNotFound = errors.New("rubric not found")

// ErrCriterionWithoutLevels indicates a criterion that cannot be scored.
var ErrCriterionWithoutLevels = errors.New("criterion has no levels")

// ErrDrafterUnavailable indicates no AI drafting collaborator is configured.
var ErrDrafterUnavailable = errors.New("rubric drafter not configured")

// RubricService manages rubric definitions, including intake of AI-drafted
// candidates.
type RubricService interface {
	List(ctx context.Context) ([]dto.RubricResponse, error)
	Get(ctx context.Context, id string) (dto.RubricResponse, error)
	Create(ctx context.Context, payload dto.RubricCreateRequest) (dto.RubricResponse, error)
	Update(ctx context.Context, id string, payload dto.RubricUpdateRequest) (dto.RubricResponse, error)
	Delete(ctx context.Context, id string) error
	Draft(ctx context.Context, payload dto.RubricDraftRequest) (dto.RubricResponse, error)
}

type rubricService struct {
	repo           repository.RubricRepository
	assessments    repository.AssessmentRepository
	drafter        ai.RubricDrafter
	ids            idgen.Generator
	validator      *validator.Validate
	summaries      SummaryInvalidator
	defaultPassing float64
	logger         zerolog.Logger
}

// NewRubricService constructs the rubric service. drafter may be nil when no
// AI provider is configured. defaultPassing is applied when a rubric is
// created without an explicit passing percentage.
func NewRubricService(repo repository.RubricRepository, assessments repository.AssessmentRepository, drafter ai.RubricDrafter, ids idgen.Generator, validate *validator.Validate, summaries SummaryInvalidator, defaultPassing float64, logger zerolog.Logger) RubricService {
	return &rubricService{
		repo:           repo,
		assessments:    assessments,
		drafter:        drafter,
		ids:            ids,
		validator:      validate,
		summaries:      summaries,
		defaultPassing: defaultPassing,
		logger:         logger.With().Str("component", "rubric_service").Logger(),
	}
}

func (s *rubricService) List(ctx context.Context) ([]dto.RubricResponse, error) {
	rubrics, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewRubricResponseSlice(rubrics), nil
}

func (s *rubricService) Get(ctx context.Context, id string) (dto.RubricResponse, error) {
	rubric, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RubricResponse{}, ErrRubricNotFound
		}
		return dto.RubricResponse{}, err
	}

	return dto.NewRubricResponse(rubric), nil
}

func (s *rubricService) Create(ctx context.Context, payload dto.RubricCreateRequest) (dto.RubricResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RubricResponse{}, err
	}

	criteria, err := s.buildCriteria(payload.Criteria)
	if err != nil {
		return dto.RubricResponse{}, err
	}

	rubric := models.Rubric{
		ID:                s.ids.NewID(),
		Title:             payload.Title,
		Description:       payload.Description,
		Type:              payload.Type,
		AssignmentWeight:  payload.AssignmentWeight,
		PeerEvalWeight:    payload.PeerEvalWeight,
		PassingPercentage: s.defaultPassing,
	}
	if payload.PassingPercentage != nil {
		rubric.PassingPercentage = *payload.PassingPercentage
	}
	if rubric.Type == models.AssignmentTypeIndividual {
		rubric.PeerEvalWeight = 0
	}
	rubric.SetCriteria(criteria)

	if err := s.repo.Create(ctx, &rubric); err != nil {
		return dto.RubricResponse{}, err
	}

	if s.summaries != nil {
		s.summaries.Invalidate(ctx)
	}

	return dto.NewRubricResponse(rubric), nil
}

func (s *rubricService) Update(ctx context.Context, id string, payload dto.RubricUpdateRequest) (dto.RubricResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RubricResponse{}, err
	}

	rubric, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RubricResponse{}, ErrRubricNotFound
		}
		return dto.RubricResponse{}, err
	}

	if payload.Title != nil {
		rubric.Title = *payload.Title
	}
	if payload.Description != nil {
		rubric.Description = *payload.Description
	}
	if payload.AssignmentWeight != nil {
		rubric.AssignmentWeight = *payload.AssignmentWeight
	}
	if payload.PeerEvalWeight != nil && rubric.Type == models.AssignmentTypeGroup {
		rubric.PeerEvalWeight = *payload.PeerEvalWeight
	}
	if payload.PassingPercentage != nil {
		rubric.PassingPercentage = *payload.PassingPercentage
	}
	if payload.Criteria != nil {
		criteria, err := s.buildCriteria(payload.Criteria)
		if err != nil {
			return dto.RubricResponse{}, err
		}
		rubric.SetCriteria(criteria)
	}

	if err := s.repo.Update(ctx, &rubric); err != nil {
		return dto.RubricResponse{}, err
	}

	if s.summaries != nil {
		s.summaries.Invalidate(ctx)
	}

	return dto.NewRubricResponse(rubric), nil
}

func (s *rubricService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRubricNotFound
		}
		return err
	}

	// assessments live only as long as their rubric
	if err := s.assessments.DeleteByRubric(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("rubric_id", id).Msg("failed to cascade assessment deletion")
	}

	if s.summaries != nil {
		s.summaries.Invalidate(ctx)
	}

	return nil
}

// Draft asks the AI collaborator for a candidate rubric, validates its shape,
// and enriches it with fresh ids before persisting. Assignment weights stay
// zero until the teacher sets them.
func (s *rubricService) Draft(ctx context.Context, payload dto.RubricDraftRequest) (dto.RubricResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RubricResponse{}, err
	}
	if s.drafter == nil {
		return dto.RubricResponse{}, ErrDrafterUnavailable
	}

	draft, err := s.drafter.DraftRubric(ctx, ai.DraftRequest{
		AssignmentTitle: payload.Title,
		Description:     payload.Description,
		AssignmentType:  payload.Type,
		CriteriaHint:    payload.CriteriaHint,
	})
	if err != nil {
		return dto.RubricResponse{}, err
	}

	rubric, err := s.enrichDraft(draft, payload.Type)
	if err != nil {
		return dto.RubricResponse{}, err
	}

	if err := s.repo.Create(ctx, &rubric); err != nil {
		return dto.RubricResponse{}, err
	}

	if s.summaries != nil {
		s.summaries.Invalidate(ctx)
	}

	s.logger.Info().Str("rubric_id", rubric.ID).Int("criteria", len(rubric.CriteriaList())).Msg("ai rubric draft accepted")

	return dto.NewRubricResponse(rubric), nil
}

// enrichDraft assigns fresh unique ids to the rubric, each criterion, and
// each level, and rejects criteria that would not be scorable.
func (s *rubricService) enrichDraft(draft ai.RubricDraft, assignmentType string) (models.Rubric, error) {
	criteria := make([]models.RubricCriterion, 0, len(draft.Criteria))
	for _, draftCriterion := range draft.Criteria {
		if len(draftCriterion.Levels) == 0 {
			return models.Rubric{}, ErrCriterionWithoutLevels
		}

		weight := draftCriterion.Weight
		if weight <= 0 {
			weight = 1
		}

		levels := make([]models.RubricLevel, 0, len(draftCriterion.Levels))
		for _, draftLevel := range draftCriterion.Levels {
			levels = append(levels, models.RubricLevel{
				ID:          s.ids.NewID(),
				Label:       draftLevel.Label,
				Score:       draftLevel.Score,
				Description: draftLevel.Description,
			})
		}

		criteria = append(criteria, models.RubricCriterion{
			ID:          s.ids.NewID(),
			Title:       draftCriterion.Title,
			Description: draftCriterion.Description,
			Weight:      weight,
			Levels:      levels,
		})
	}

	rubric := models.Rubric{
		ID:                s.ids.NewID(),
		Title:             draft.Title,
		Description:       draft.Description,
		Type:              assignmentType,
		PassingPercentage: s.defaultPassing,
	}
	rubric.SetCriteria(criteria)

	return rubric, nil
}

func (s *rubricService) buildCriteria(payloads []dto.CriterionPayload) ([]models.RubricCriterion, error) {
	criteria := make([]models.RubricCriterion, 0, len(payloads))
	for _, payload := range payloads {
		if len(payload.Levels) == 0 {
			return nil, ErrCriterionWithoutLevels
		}

		weight := 1.0
		if payload.Weight != nil {
			weight = *payload.Weight
		}

		levels := make([]models.RubricLevel, 0, len(payload.Levels))
		for _, level := range payload.Levels {
			levels = append(levels, models.RubricLevel{
				ID:          s.ids.NewID(),
				Label:       level.Label,
				Score:       level.Score,
				Description: level.Description,
			})
		}

		criteria = append(criteria, models.RubricCriterion{
			ID:          s.ids.NewID(),
			Title:       payload.Title,
			Description: payload.Description,
			Weight:      weight,
			Levels:      levels,
		})
	}

	return criteria, nil
}
