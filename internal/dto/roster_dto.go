package dto

import (
	"time"

	"github.com/rubrica/rubrica-api/internal/models"
)

// RosterImportRequest carries pasted roster text and the assignment type it
// is imported for.
type RosterImportRequest struct {
	Text string `json:"text" validate:"required"`
	Mode string `json:"mode" validate:"required,oneof=individual group"`
}

// AssigneeResponse is the serialized representation of a roster entry.
type AssigneeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Members   []string  `json:"members,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RosterImportResponse reports the created assignees alongside per-line
// problems. Errors are advisory; the import itself already succeeded for
// every listed assignee.
type RosterImportResponse struct {
	Created []AssigneeResponse `json:"created"`
	Errors  []string           `json:"errors"`
}

// NewAssigneeResponse converts a model into a DTO.
func NewAssigneeResponse(model models.Assignee) AssigneeResponse {
	return AssigneeResponse{
		ID:        model.ID,
		Name:      model.Name,
		Type:      model.Type,
		Members:   model.MemberList(),
		CreatedAt: model.CreatedAt,
	}
}

// NewAssigneeResponseSlice converts a slice of models into DTOs.
func NewAssigneeResponseSlice(assignees []models.Assignee) []AssigneeResponse {
	responses := make([]AssigneeResponse, 0, len(assignees))
	for _, assignee := range assignees {
		responses = append(responses, NewAssigneeResponse(assignee))
	}

	return responses
}
