// Package roster turns free-form pasted text into structured assignee
// records. Parsing never fails as a whole: every malformed line becomes an
// error string and every valid line still contributes to the result.
package roster

import (
	"fmt"
	"strings"

	"github.com/rubrica/rubrica-api/internal/idgen"
	"github.com/rubrica/rubrica-api/internal/models"
)

// Result holds the parsed assignees plus one message per problem line.
// Messages are 1-indexed by source line.
type Result struct {
	Created []models.Assignee `json:"created"`
	Errors  []string          `json:"errors"`
}

// Parser converts pasted roster text into assignees.
type Parser struct {
	ids idgen.Generator
}

// NewParser builds a parser around the given id generator.
func NewParser(ids idgen.Generator) *Parser {
	return &Parser{ids: ids}
}

type columnMap struct {
	id         int
	name       int
	groupID    int
	groupName  int
	memberID   int
	memberName int
}

func defaultColumns() columnMap {
	return columnMap{id: 0, name: 1, groupID: 0, groupName: 1, memberID: 2, memberName: 3}
}

// Parse processes the raw text line by line. mode is the assignment type the
// roster is imported for; existing holds ids already taken in the roster so
// collisions can be resolved by suffixing.
func (p *Parser) Parse(raw, mode string, existing map[string]struct{}) Result {
	result := Result{Created: []models.Assignee{}, Errors: []string{}}

	taken := make(map[string]struct{}, len(existing))
	for id := range existing {
		taken[id] = struct{}{}
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	columns := defaultColumns()
	headerLine := -1
	if len(lines) > 0 && isHeader(lines[0]) && !(mode == models.AssignmentTypeGroup && strings.Contains(lines[0], ":")) {
		columns = mapColumns(lines[0], mode)
		headerLine = 0
	}

	// flat group-mode rows accumulate into one assignee per group key
	groupIndex := map[string]int{}

	for i, line := range lines {
		if i == headerLine {
			continue
		}
		lineNo := i + 1
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if mode == models.AssignmentTypeGroup && strings.Contains(line, ":") {
			p.parseGroupSpec(line, lineNo, taken, &result)
			continue
		}

		fields := splitFields(line)
		if mode == models.AssignmentTypeIndividual {
			p.parseIndividualRow(fields, columns, lineNo, taken, &result)
			continue
		}
		p.parseGroupRow(fields, columns, lineNo, taken, groupIndex, &result)
	}

	return result
}

// parseGroupSpec handles the "GroupSpec: Member1; Member2" override format.
// When the member list has no semicolons, commas are the fallback separator;
// a comma-separated list of "id, name" pairs is then mis-split into bare
// names, which is a known limitation of the source format.
func (p *Parser) parseGroupSpec(line string, lineNo int, taken map[string]struct{}, result *Result) {
	specPart, memberPart, _ := strings.Cut(line, ":")

	groupID := ""
	groupName := strings.TrimSpace(specPart)
	if idx := strings.Index(specPart, ","); idx >= 0 {
		groupID = strings.TrimSpace(specPart[:idx])
		groupName = strings.TrimSpace(specPart[idx+1:])
	}
	if groupName == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("line %d: missing group name", lineNo))
		return
	}

	separator := ";"
	if !strings.Contains(memberPart, ";") && strings.Contains(memberPart, ",") {
		separator = ","
	}

	var members []string
	for _, member := range strings.Split(memberPart, separator) {
		member = strings.TrimSpace(member)
		if member != "" {
			members = append(members, member)
		}
	}

	group := models.Assignee{
		ID:   p.claimID(groupID, lineNo, taken, result),
		Name: groupName,
		Type: models.AssignmentTypeGroup,
	}
	group.SetMembers(members)
	result.Created = append(result.Created, group)
}

func (p *Parser) parseIndividualRow(fields []string, columns columnMap, lineNo int, taken map[string]struct{}, result *Result) {
	id := fieldAt(fields, columns.id)
	name := fieldAt(fields, columns.name)

	// a single bare value is a name, not an id
	if len(fields) == 1 && name == "" {
		name = fields[0]
		id = ""
	}
	if name == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("line %d: missing student name", lineNo))
		return
	}

	result.Created = append(result.Created, models.Assignee{
		ID:   p.claimID(id, lineNo, taken, result),
		Name: name,
		Type: models.AssignmentTypeIndividual,
	})
}

func (p *Parser) parseGroupRow(fields []string, columns columnMap, lineNo int, taken map[string]struct{}, groupIndex map[string]int, result *Result) {
	groupID := fieldAt(fields, columns.groupID)
	groupName := fieldAt(fields, columns.groupName)
	memberID := fieldAt(fields, columns.memberID)
	memberName := fieldAt(fields, columns.memberName)

	if groupName == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("line %d: missing group name", lineNo))
		return
	}

	key := groupID
	if key == "" {
		key = groupName
	}

	idx, ok := groupIndex[key]
	if !ok {
		group := models.Assignee{
			ID:   p.claimID(groupID, lineNo, taken, result),
			Name: groupName,
			Type: models.AssignmentTypeGroup,
		}
		group.SetMembers(nil)
		result.Created = append(result.Created, group)
		idx = len(result.Created) - 1
		groupIndex[key] = idx
	}

	if memberName != "" {
		group := &result.Created[idx]
		group.SetMembers(append(group.MemberList(), models.FormatMember(memberID, memberName)))
	}
}

// claimID resolves the requested id against everything already taken. An
// empty request gets a generated token; a collision is suffixed -1, -2, ...
// and reported as a non-fatal warning naming the line and the new id.
func (p *Parser) claimID(requested string, lineNo int, taken map[string]struct{}, result *Result) string {
	if requested == "" {
		id := p.ids.NewID()
		for {
			if _, ok := taken[id]; !ok {
				break
			}
			id = p.ids.NewID()
		}
		taken[id] = struct{}{}
		return id
	}

	if _, ok := taken[requested]; !ok {
		taken[requested] = struct{}{}
		return requested
	}

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", requested, n)
		if _, ok := taken[candidate]; ok {
			continue
		}
		result.Errors = append(result.Errors, fmt.Sprintf("line %d: duplicate id %q renamed to %q", lineNo, requested, candidate))
		taken[candidate] = struct{}{}
		return candidate
	}
}

func isHeader(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "id") || strings.Contains(lower, "name") || strings.Contains(lower, "group")
}

func mapColumns(header, mode string) columnMap {
	columns := defaultColumns()
	tokens := splitFields(header)

	if mode == models.AssignmentTypeIndividual {
		for i, token := range tokens {
			lower := strings.ToLower(token)
			switch {
			case strings.Contains(lower, "id"):
				columns.id = i
			case strings.Contains(lower, "name"):
				columns.name = i
			}
		}
		return columns
	}

	for i, token := range tokens {
		lower := strings.ToLower(token)
		switch {
		case strings.Contains(lower, "group") && strings.Contains(lower, "id"):
			columns.groupID = i
		case strings.Contains(lower, "group"):
			columns.groupName = i
		case strings.Contains(lower, "id"):
			columns.memberID = i
		case strings.Contains(lower, "name"):
			columns.memberName = i
		}
	}
	return columns
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

func fieldAt(fields []string, index int) string {
	if index < 0 || index >= len(fields) {
		return ""
	}
	return fields[index]
}
