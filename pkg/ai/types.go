// Package ai holds the provider abstraction for the two LLM collaborators:
// drafting candidate rubrics and suggesting per-criterion grades. The package
// only produces candidate documents; id enrichment and rating resolution stay
// with the caller.
package ai

import "context"

// DraftRequest describes the assignment a rubric should be drafted for.
type DraftRequest struct {
	AssignmentTitle string
	Description     string
	AssignmentType  string
	CriteriaHint    int
}

// DraftLevel is one performance tier in a drafted criterion.
type DraftLevel struct {
	Label       string  `json:"label"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// DraftCriterion is one weighted criterion in a drafted rubric.
type DraftCriterion struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Weight      float64      `json:"weight"`
	Levels      []DraftLevel `json:"levels"`
}

// RubricDraft is the rubric-shaped document returned by the drafting
// collaborator. It carries no ids; those are assigned during enrichment.
type RubricDraft struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Criteria    []DraftCriterion `json:"criteria"`
}

// RubricDrafter generates a candidate rubric for an assignment.
type RubricDrafter interface {
	DraftRubric(ctx context.Context, req DraftRequest) (RubricDraft, error)
}

// GradeInput carries the rubric and submission text to auto-grade.
type GradeInput struct {
	RubricTitle    string
	Criteria       []DraftCriterion
	SubmissionText string
}

// Rating pairs a criterion title with the level label the model picked.
type Rating struct {
	CriterionTitle string `json:"criterionTitle"`
	LevelLabel     string `json:"levelLabel"`
	Explanation    string `json:"explanation,omitempty"`
}

// GradeResult is the structured auto-grade suggestion returned by the model.
type GradeResult struct {
	Ratings  []Rating `json:"ratings"`
	Feedback string   `json:"feedback"`
}

// AutoGrader suggests per-criterion ratings for a submission.
type AutoGrader interface {
	AutoGrade(ctx context.Context, input GradeInput) (GradeResult, error)
}
