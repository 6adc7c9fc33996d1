package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/rubrica/rubrica-api/internal/dto"
	"github.com/rubrica/rubrica-api/internal/grading"
	"github.com/rubrica/rubrica-api/internal/idgen"
	"github.com/rubrica/rubrica-api/internal/models"
	"github.com/rubrica/rubrica-api/internal/repository"
	"github.com/rubrica/rubrica-api/pkg/ai"
)

// ErrAssessmentLocked indicates a write against a locked assessment.
var ErrAssessmentLocked = errors.New("assessment is locked")

// ErrPeerEvalNotApplicable indicates a peer evaluation against a rubric that
// has no peer component.
var ErrPeerEvalNotApplicable = errors.New("rubric does not use peer evaluation")

// ErrAutoGraderUnavailable indicates no AI grading collaborator is configured.
var ErrAutoGraderUnavailable = errors.New("auto-grader not configured")

// GradingService is the single write path for assessments. Every mutation
// recomputes the derived total through the grading engine.
type GradingService interface {
	GetAssessment(ctx context.Context, rubricID, assigneeID string) (dto.AssessmentResponse, error)
	SaveGrades(ctx context.Context, rubricID, assigneeID string, payload dto.GradeSaveRequest) (dto.AssessmentResponse, error)
	SubmitPeerEvaluation(ctx context.Context, rubricID, assigneeID string, payload dto.PeerEvaluationRequest) (dto.AssessmentResponse, error)
	AutoGrade(ctx context.Context, rubricID, assigneeID string, payload dto.AutoGradeRequest) (dto.AssessmentResponse, error)
}

type gradingService struct {
	rubrics     repository.RubricRepository
	assignees   repository.AssigneeRepository
	assessments repository.AssessmentRepository
	grader      ai.AutoGrader
	ids         idgen.Generator
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	summaries   SummaryInvalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grading service. grader may be nil when no
// AI provider is configured.
func NewGradingService(rubrics repository.RubricRepository, assignees repository.AssigneeRepository, assessments repository.AssessmentRepository, grader ai.AutoGrader, ids idgen.Generator, validate *validator.Validate, summaries SummaryInvalidator, logger zerolog.Logger) GradingService {
	return &gradingService{
		rubrics:     rubrics,
		assignees:   assignees,
		assessments: assessments,
		grader:      grader,
		ids:         ids,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		summaries:   summaries,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

// GetAssessment returns the scored state for a (rubric, assignee) pair. An
// assessment that does not exist yet is reported as an empty, unlocked record
// with a zero grade rather than an error.
func (s *gradingService) GetAssessment(ctx context.Context, rubricID, assigneeID string) (dto.AssessmentResponse, error) {
	rubric, err := s.getRubric(ctx, rubricID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment, err := s.getOrBlankAssessment(ctx, rubric, assigneeID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	return s.respond(rubric, assessment), nil
}

func (s *gradingService) SaveGrades(ctx context.Context, rubricID, assigneeID string, payload dto.GradeSaveRequest) (dto.AssessmentResponse, error) {
	tracer := otel.Tracer("github.com/rubrica/rubrica-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.save")
	span.SetAttributes(
		attribute.String("grading.rubric_id", rubricID),
		attribute.String("grading.assignee_id", assigneeID),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AssessmentResponse{}, err
	}

	rubric, err := s.getRubric(ctx, rubricID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rubric_lookup_failed")
		return dto.AssessmentResponse{}, err
	}

	assessment, err := s.getOrBlankAssessment(ctx, rubric, assigneeID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	unlocking := payload.Locked != nil && !*payload.Locked
	if assessment.Locked && !unlocking {
		err := ErrAssessmentLocked
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessment_locked")
		return dto.AssessmentResponse{}, err
	}

	// One entry per criterion; when the payload repeats a criterion the
	// last occurrence wins.
	entries := make([]models.GradeEntry, 0, len(payload.Entries))
	byCriterion := make(map[string]int, len(payload.Entries))
	for _, entry := range payload.Entries {
		converted := models.GradeEntry{
			CriterionID: entry.CriterionID,
			LevelID:     entry.LevelID,
			Score:       entry.Score,
		}
		if at, seen := byCriterion[entry.CriterionID]; seen {
			entries[at] = converted
			continue
		}
		byCriterion[entry.CriterionID] = len(entries)
		entries = append(entries, converted)
	}

	assessment.SetEntries(grading.PruneStaleEntries(rubric.CriteriaList(), entries))
	assessment.Feedback = s.sanitizer.Sanitize(strings.TrimSpace(payload.Feedback))
	if payload.SubmissionText != "" {
		assessment.SubmissionText = payload.SubmissionText
	}
	if payload.Locked != nil {
		assessment.Locked = *payload.Locked
	}

	if err := s.persist(ctx, rubric, &assessment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessment_save_failed")
		return dto.AssessmentResponse{}, err
	}

	span.SetAttributes(attribute.Float64("grading.total_score", assessment.TotalScore))

	return s.respond(rubric, assessment), nil
}

// SubmitPeerEvaluation records one member's review of another. A resubmission
// replaces every prior evaluation by the same evaluator in this assessment.
func (s *gradingService) SubmitPeerEvaluation(ctx context.Context, rubricID, assigneeID string, payload dto.PeerEvaluationRequest) (dto.AssessmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	rubric, err := s.getRubric(ctx, rubricID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	if rubric.EffectivePeerWeight() <= 0 {
		return dto.AssessmentResponse{}, ErrPeerEvalNotApplicable
	}

	assessment, err := s.getOrBlankAssessment(ctx, rubric, assigneeID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	evaluations := make([]models.PeerEvaluation, 0, len(assessment.PeerEvaluationList())+1)
	for _, evaluation := range assessment.PeerEvaluationList() {
		if !strings.EqualFold(evaluation.Evaluator, payload.Evaluator) {
			evaluations = append(evaluations, evaluation)
		}
	}
	evaluations = append(evaluations, models.PeerEvaluation{
		ID:        s.ids.NewID(),
		Evaluator: payload.Evaluator,
		Subject:   payload.Subject,
		Score:     payload.Score,
		Feedback:  s.sanitizer.Sanitize(strings.TrimSpace(payload.Feedback)),
	})
	assessment.SetPeerEvaluations(evaluations)

	if err := s.persist(ctx, rubric, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	return s.respond(rubric, assessment), nil
}

// AutoGrade feeds the submission text to the AI collaborator and applies the
// ratings it can resolve. Pairs whose criterion title or level label does not
// match the rubric are skipped without surfacing an error.
func (s *gradingService) AutoGrade(ctx context.Context, rubricID, assigneeID string, payload dto.AutoGradeRequest) (dto.AssessmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}
	if s.grader == nil {
		return dto.AssessmentResponse{}, ErrAutoGraderUnavailable
	}

	rubric, err := s.getRubric(ctx, rubricID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment, err := s.getOrBlankAssessment(ctx, rubric, assigneeID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}
	if assessment.Locked {
		return dto.AssessmentResponse{}, ErrAssessmentLocked
	}

	criteria := rubric.CriteriaList()
	result, err := s.grader.AutoGrade(ctx, ai.GradeInput{
		RubricTitle:    rubric.Title,
		Criteria:       draftCriteria(criteria),
		SubmissionText: payload.SubmissionText,
	})
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	resolved := s.resolveRatings(criteria, result.Ratings)

	// keep manual entries for criteria the model did not rate
	merged := make([]models.GradeEntry, 0, len(criteria))
	replaced := make(map[string]bool, len(resolved))
	for _, entry := range resolved {
		replaced[entry.CriterionID] = true
		merged = append(merged, entry)
	}
	for _, entry := range assessment.EntryList() {
		if !replaced[entry.CriterionID] {
			merged = append(merged, entry)
		}
	}

	assessment.SetEntries(grading.PruneStaleEntries(criteria, merged))
	assessment.SubmissionText = payload.SubmissionText
	if feedback := s.sanitizer.Sanitize(strings.TrimSpace(result.Feedback)); feedback != "" {
		assessment.Feedback = feedback
	}

	if err := s.persist(ctx, rubric, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	return s.respond(rubric, assessment), nil
}

// resolveRatings maps criterion titles and level labels to ids by
// case-insensitive exact match. Unresolved pairs are dropped.
func (s *gradingService) resolveRatings(criteria []models.RubricCriterion, ratings []ai.Rating) []models.GradeEntry {
	entries := make([]models.GradeEntry, 0, len(ratings))
	for _, rating := range ratings {
		criterion, ok := findCriterion(criteria, rating.CriterionTitle)
		if !ok {
			s.logger.Debug().Str("criterion_title", rating.CriterionTitle).Msg("auto-grade rating references unknown criterion")
			continue
		}

		level, ok := findLevel(criterion.Levels, rating.LevelLabel)
		if !ok {
			s.logger.Debug().Str("criterion_title", rating.CriterionTitle).Str("level_label", rating.LevelLabel).Msg("auto-grade rating references unknown level")
			continue
		}

		entries = append(entries, models.GradeEntry{
			CriterionID: criterion.ID,
			LevelID:     level.ID,
			Score:       level.Score,
		})
	}

	return entries
}

func (s *gradingService) getRubric(ctx context.Context, rubricID string) (models.Rubric, error) {
	rubric, err := s.rubrics.GetByID(ctx, rubricID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Rubric{}, ErrRubricNotFound
		}
		return models.Rubric{}, err
	}

	return rubric, nil
}

// getOrBlankAssessment loads the assessment or builds the blank record an
// assessment-less pair presents. The blank is only persisted on the first
// actual write.
func (s *gradingService) getOrBlankAssessment(ctx context.Context, rubric models.Rubric, assigneeID string) (models.Assessment, error) {
	if _, err := s.assignees.GetByID(ctx, assigneeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assessment{}, ErrAssigneeNotFound
		}
		return models.Assessment{}, err
	}

	id := models.AssessmentID(rubric.ID, assigneeID)
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assessment{
				ID:         id,
				RubricID:   rubric.ID,
				AssigneeID: assigneeID,
			}, nil
		}
		return models.Assessment{}, err
	}

	return assessment, nil
}

// persist recomputes the derived total and saves the assessment.
func (s *gradingService) persist(ctx context.Context, rubric models.Rubric, assessment *models.Assessment) error {
	breakdown := grading.Score(rubric.CriteriaList(), assessment.EntryList())
	peerAverage := grading.PeerAverageAll(assessment.PeerEvaluationList(), rubric.EffectivePeerWeight())
	composite := grading.Composite(rubric, breakdown.Percentage, peerAverage)

	assessment.TotalScore = composite.AssignmentPercentage
	assessment.LastUpdated = s.now()

	if err := s.assessments.Save(ctx, assessment); err != nil {
		return err
	}

	if s.summaries != nil {
		s.summaries.Invalidate(ctx)
	}

	return nil
}

func (s *gradingService) respond(rubric models.Rubric, assessment models.Assessment) dto.AssessmentResponse {
	criteria := rubric.CriteriaList()
	entries := grading.PruneStaleEntries(criteria, assessment.EntryList())
	breakdown := grading.Score(criteria, entries)
	peerAverage := grading.PeerAverageAll(assessment.PeerEvaluationList(), rubric.EffectivePeerWeight())
	composite := grading.Composite(rubric, breakdown.Percentage, peerAverage)

	return dto.NewAssessmentResponse(assessment, entries, breakdown, composite)
}

func draftCriteria(criteria []models.RubricCriterion) []ai.DraftCriterion {
	converted := make([]ai.DraftCriterion, 0, len(criteria))
	for _, criterion := range criteria {
		levels := make([]ai.DraftLevel, 0, len(criterion.Levels))
		for _, level := range criterion.Levels {
			levels = append(levels, ai.DraftLevel{
				Label:       level.Label,
				Score:       level.Score,
				Description: level.Description,
			})
		}
		converted = append(converted, ai.DraftCriterion{
			Title:       criterion.Title,
			Description: criterion.Description,
			Weight:      criterion.Weight,
			Levels:      levels,
		})
	}

	return converted
}

func findCriterion(criteria []models.RubricCriterion, title string) (models.RubricCriterion, bool) {
	for _, criterion := range criteria {
		if strings.EqualFold(criterion.Title, title) {
			return criterion, true
		}
	}

	return models.RubricCriterion{}, false
}

func findLevel(levels []models.RubricLevel, label string) (models.RubricLevel, bool) {
	for _, level := range levels {
		if strings.EqualFold(level.Label, label) {
			return level, true
		}
	}

	return models.RubricLevel{}, false
}
