package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rubrica",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI collaborator requests",
	}, []string{"model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rubrica",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of AI collaborator failures",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI client.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIClient implements RubricDrafter and AutoGrader against the OpenAI
// chat completion API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a new client using the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/rubrica/rubrica-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIClient{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// DraftRubric asks the model for a rubric-shaped document and validates it
// against the draft schema before returning.
func (c *OpenAIClient) DraftRubric(parent context.Context, req DraftRequest) (RubricDraft, error) {
	content, err := c.complete(parent, "draft_rubric", drafterSystemPrompt(), buildDraftPrompt(req))
	if err != nil {
		return RubricDraft{}, err
	}

	draft, err := ParseRubricDraft([]byte(content))
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "draft_rubric").Inc()
		return RubricDraft{}, err
	}

	return draft, nil
}

// AutoGrade asks the model to rate a submission against the rubric criteria.
func (c *OpenAIClient) AutoGrade(parent context.Context, input GradeInput) (GradeResult, error) {
	content, err := c.complete(parent, "auto_grade", graderSystemPrompt(), buildGradePrompt(input))
	if err != nil {
		return GradeResult{}, err
	}

	var result GradeResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "auto_grade").Inc()
		return GradeResult{}, fmt.Errorf("parse auto-grade json: %w", err)
	}

	return result, nil
}

func (c *OpenAIClient) complete(parent context.Context, operation, system, user string) (string, error) {
	ctx, span := c.tracer.Start(parent, "openai."+operation, trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(c.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func drafterSystemPrompt() string {
	return "You are a curriculum designer. Respond with a JSON object of shape " +
		`{"title", "description", "criteria": [{"title", "description", "weight", "levels": [{"label", "score", "description"}]}]}. ` +
		"Weights are multipliers (default 1), level scores are raw points with the best level first."
}

func buildDraftPrompt(req DraftRequest) string {
	builder := strings.Builder{}
	builder.WriteString("# Assignment\n")
	builder.WriteString(req.AssignmentTitle)
	builder.WriteString("\n\n## Description\n")
	builder.WriteString(req.Description)
	builder.WriteString("\n\n## Assignment Type\n")
	builder.WriteString(req.AssignmentType)
	if req.CriteriaHint > 0 {
		builder.WriteString(fmt.Sprintf("\n\nUse about %d criteria.", req.CriteriaHint))
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func graderSystemPrompt() string {
	return "You are a grading assistant. Pick exactly one level per criterion from the provided rubric. Respond with a JSON object " +
		`{"ratings": [{"criterionTitle", "levelLabel", "explanation"}], "feedback"}. ` +
		"Use the criterion titles and level labels verbatim."
}

func buildGradePrompt(input GradeInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Rubric\n")
	builder.WriteString(input.RubricTitle)
	for _, criterion := range input.Criteria {
		builder.WriteString("\n\n## ")
		builder.WriteString(criterion.Title)
		builder.WriteString("\n")
		builder.WriteString(criterion.Description)
		for _, level := range criterion.Levels {
			builder.WriteString(fmt.Sprintf("\n- %s (%.1f points): %s", level.Label, level.Score, level.Description))
		}
	}
	builder.WriteString("\n\n# Submission\n")
	builder.WriteString(input.SubmissionText)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}
