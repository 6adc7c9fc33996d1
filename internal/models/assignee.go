package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Assignee is a student or group that can be assessed. Individuals and groups
// share one id space; group members are serialized pair strings, not entities.
type Assignee struct {
	ID        string         `gorm:"primaryKey;size:64" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Type      string         `gorm:"size:16;not null" json:"type"`
	Members   datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SetMembers serializes the member strings into the JSON storage column.
func (a *Assignee) SetMembers(members []string) {
	data, err := json.Marshal(members)
	if err != nil {
		a.Members = datatypes.JSON([]byte("[]"))
		return
	}
	a.Members = datatypes.JSON(data)
}

// MemberList deserializes the stored member strings into a Go slice.
func (a Assignee) MemberList() []string {
	if len(a.Members) == 0 {
		return nil
	}

	var members []string
	if err := json.Unmarshal(a.Members, &members); err != nil {
		return nil
	}

	return members
}

// FormatMember builds the serialized member string, "id, name" when an id is
// known and the bare name otherwise.
func FormatMember(id, name string) string {
	if id == "" {
		return name
	}

	return id + ", " + name
}

// ParseMember splits a member string into its id and name parts. A string
// without a comma is a bare name with no global id.
func ParseMember(member string) (id, name string) {
	idx := strings.Index(member, ",")
	if idx < 0 {
		return "", strings.TrimSpace(member)
	}

	return strings.TrimSpace(member[:idx]), strings.TrimSpace(member[idx+1:])
}

// HasMember reports whether the group contains the student identified by the
// given id-or-name key.
func (a Assignee) HasMember(key string) bool {
	for _, member := range a.MemberList() {
		id, name := ParseMember(member)
		if (id != "" && id == key) || (id == "" && name == key) {
			return true
		}
	}

	return false
}
