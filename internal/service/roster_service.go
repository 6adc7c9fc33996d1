package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rubrica/rubrica-api/internal/dto"
	"github.com/rubrica/rubrica-api/internal/repository"
	"github.com/rubrica/rubrica-api/internal/roster"
)

// ErrAssigneeNotFound indicates the roster entry was not located.
var ErrAssigneeNotFound = errors.New("assignee not found")

// ErrUnsupportedRosterFile indicates an uploaded roster file is not plain text.
var ErrUnsupportedRosterFile = errors.New("roster file must be plain text or csv")

// RosterService imports and manages the student/group roster.
type RosterService interface {
	List(ctx context.Context) ([]dto.AssigneeResponse, error)
	Import(ctx context.Context, payload dto.RosterImportRequest) (dto.RosterImportResponse, error)
	ImportFile(ctx context.Context, data []byte, mode string) (dto.RosterImportResponse, error)
	ExportCSV(ctx context.Context) (string, error)
	Delete(ctx context.Context, id string) error
}

type rosterService struct {
	repo        repository.AssigneeRepository
	assessments repository.AssessmentRepository
	parser      *roster.Parser
	validator   *validator.Validate
	summaries   SummaryInvalidator
	logger      zerolog.Logger
}

// NewRosterService constructs the roster service.
func NewRosterService(repo repository.AssigneeRepository, assessments repository.AssessmentRepository, parser *roster.Parser, validate *validator.Validate, summaries SummaryInvalidator, logger zerolog.Logger) RosterService {
	return &rosterService{
		repo:        repo,
		assessments: assessments,
		parser:      parser,
		validator:   validate,
		summaries:   summaries,
		logger:      logger.With().Str("component", "roster_service").Logger(),
	}
}

func (s *rosterService) List(ctx context.Context) ([]dto.AssigneeResponse, error) {
	assignees, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewAssigneeResponseSlice(assignees), nil
}

func (s *rosterService) Import(ctx context.Context, payload dto.RosterImportRequest) (dto.RosterImportResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RosterImportResponse{}, err
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return dto.RosterImportResponse{}, err
	}

	taken := make(map[string]struct{}, len(existing))
	for _, assignee := range existing {
		taken[assignee.ID] = struct{}{}
	}

	result := s.parser.Parse(payload.Text, payload.Mode, taken)
	if err := s.repo.CreateBatch(ctx, result.Created); err != nil {
		return dto.RosterImportResponse{}, err
	}

	if len(result.Created) > 0 && s.summaries != nil {
		s.summaries.Invalidate(ctx)
	}

	s.logger.Info().Int("created", len(result.Created)).Int("problems", len(result.Errors)).Msg("roster imported")

	return dto.RosterImportResponse{
		Created: dto.NewAssigneeResponseSlice(result.Created),
		Errors:  result.Errors,
	}, nil
}

// ImportFile accepts an uploaded roster file. Only UTF-8 text makes it to the
// parser; binary formats need external extraction before import.
func (s *rosterService) ImportFile(ctx context.Context, data []byte, mode string) (dto.RosterImportResponse, error) {
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "text/") {
		return dto.RosterImportResponse{}, ErrUnsupportedRosterFile
	}

	return s.Import(ctx, dto.RosterImportRequest{Text: string(data), Mode: mode})
}

func (s *rosterService) ExportCSV(ctx context.Context) (string, error) {
	assignees, err := s.repo.List(ctx)
	if err != nil {
		return "", err
	}

	return roster.ExportCSV(assignees), nil
}

func (s *rosterService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return err
	}

	// assessments live only as long as their assignee
	if err := s.assessments.DeleteByAssignee(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("assignee_id", id).Msg("failed to cascade assessment deletion")
	}

	if s.summaries != nil {
		s.summaries.Invalidate(ctx)
	}

	return nil
}
