package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rubrica/rubrica-api/internal/export"
	"github.com/rubrica/rubrica-api/internal/models"
	"github.com/rubrica/rubrica-api/internal/repository"
)

// ExportService renders grade tables as downloadable CSV documents. The
// numbers come from the same engine calls the grading endpoints use.
type ExportService interface {
	AssignmentCSV(ctx context.Context, rubricID string) ([]byte, string, error)
	CourseCSV(ctx context.Context) ([]byte, string, error)
}

type exportService struct {
	rubrics     repository.RubricRepository
	assignees   repository.AssigneeRepository
	assessments repository.AssessmentRepository
	summaries   SummaryService
	logger      zerolog.Logger
}

// NewExportService constructs the export service.
func NewExportService(rubrics repository.RubricRepository, assignees repository.AssigneeRepository, assessments repository.AssessmentRepository, summaries SummaryService, logger zerolog.Logger) ExportService {
	return &exportService{
		rubrics:     rubrics,
		assignees:   assignees,
		assessments: assessments,
		summaries:   summaries,
		logger:      logger.With().Str("component", "export_service").Logger(),
	}
}

// AssignmentCSV builds the per-assignment table for one rubric and returns
// the CSV bytes plus a suggested file name.
func (s *exportService) AssignmentCSV(ctx context.Context, rubricID string) ([]byte, string, error) {
	rubric, err := s.rubrics.GetByID(ctx, rubricID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrRubricNotFound
		}
		return nil, "", err
	}

	assignees, err := s.assignees.ListByType(ctx, rubric.Type)
	if err != nil {
		return nil, "", err
	}

	assessments, err := s.assessments.ListByRubric(ctx, rubricID)
	if err != nil {
		return nil, "", err
	}

	byID := make(map[string]models.Assessment, len(assessments))
	for _, assessment := range assessments {
		byID[assessment.ID] = assessment
	}

	table := export.AssignmentTable(rubric, assignees, byID)

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), csvFileName(rubric.Title), nil
}

// CourseCSV builds the course-wide summary table across all rubrics.
func (s *exportService) CourseCSV(ctx context.Context) ([]byte, string, error) {
	rubrics, err := s.rubrics.List(ctx)
	if err != nil {
		return nil, "", err
	}

	summaries, err := s.summaries.CourseSummary(ctx)
	if err != nil {
		return nil, "", err
	}

	table := export.CourseTable(rubrics, summaries)

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), "course_summary.csv", nil
}

func csvFileName(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, slug)
	if slug == "" {
		slug = "assignment"
	}

	return fmt.Sprintf("%s_grades.csv", slug)
}
