package roster

import (
	"encoding/csv"
	"strings"

	"github.com/rubrica/rubrica-api/internal/models"
)

// ExportCSV renders an individual roster as CSV text. Feeding the output back
// through Parse reproduces an equivalent roster, which is what keeps exported
// class lists re-importable.
func ExportCSV(assignees []models.Assignee) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	_ = writer.Write([]string{"ID", "Name"})
	for _, assignee := range assignees {
		_ = writer.Write([]string{assignee.ID, assignee.Name})
	}
	writer.Flush()

	return sb.String()
}
