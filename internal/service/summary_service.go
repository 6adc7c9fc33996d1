package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rubrica/rubrica-api/internal/grading"
	"github.com/rubrica/rubrica-api/internal/models"
	"github.com/rubrica/rubrica-api/internal/repository"
)

const summaryCacheKey = "rubrica:course_summary"

// SummaryInvalidator is implemented by the summary service so grading and
// roster mutations can drop the cached course summary.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context)
}

// SummaryService folds every assessment across every rubric into course-wide
// per-student totals.
type SummaryService interface {
	SummaryInvalidator
	CourseSummary(ctx context.Context) ([]grading.StudentSummary, error)
}

type summaryService struct {
	rubrics     repository.RubricRepository
	assignees   repository.AssigneeRepository
	assessments repository.AssessmentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewSummaryService builds the course summary reducer.
func NewSummaryService(rubrics repository.RubricRepository, assignees repository.AssigneeRepository, assessments repository.AssessmentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) SummaryService {
	return &summaryService{
		rubrics:     rubrics,
		assignees:   assignees,
		assessments: assessments,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "summary_service").Logger(),
	}
}

func (s *summaryService) CourseSummary(ctx context.Context) ([]grading.StudentSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, summaryCacheKey).Result(); err == nil {
			var summaries []grading.StudentSummary
			if unmarshalErr := json.Unmarshal([]byte(cached), &summaries); unmarshalErr == nil {
				s.logger.Debug().Msg("course summary cache hit")
				return summaries, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read summary cache")
		}
	}

	summaries, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(summaries)
		if err == nil {
			if err := s.cache.Set(ctx, summaryCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store summary cache")
			}
		}
	}

	return summaries, nil
}

// Invalidate drops the cached summary. Safe to call with no cache configured.
func (s *summaryService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, summaryCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate summary cache")
	}
}

func (s *summaryService) compute(ctx context.Context) ([]grading.StudentSummary, error) {
	rubrics, err := s.rubrics.List(ctx)
	if err != nil {
		return nil, err
	}

	assignees, err := s.assignees.List(ctx)
	if err != nil {
		return nil, err
	}

	assessments, err := s.assessments.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Assessment, len(assessments))
	for _, assessment := range assessments {
		byID[assessment.ID] = assessment
	}

	return grading.Summarize(assignees, rubrics, byID), nil
}
