package student

import (
	"strings"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is a child linked to the family account viewing the portal.
// Students are seeded at store initialization and may be added by staff.
type Student struct {
	// ID is the school-assigned identifier.
	ID string `json:"id"`

	// Name is the display name shown in the header.
	Name string `json:"name"`

	// Grade is a free-form grade label, e.g. "10th Grade".
	Grade string `json:"grade"`

	// Avatar is an optional image reference.
	Avatar string `json:"avatar,omitempty"`
}

// Validate checks the invariants of a Student.
func (s Student) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return shared.ErrInvalidStudentID
	}
	if strings.TrimSpace(s.Name) == "" {
		return shared.ErrInvalidStudentName
	}
	return nil
}

// Label returns "Name • Grade" as rendered in the home header.
func (s Student) Label() string {
	if s.Grade == "" {
		return s.Name
	}
	return s.Name + " • " + s.Grade
}

// ══════════════════════════════════════════════════════════════════════════════
// COLLECTION HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// Find returns the first student with the given id.
func Find(students []Student, id string) (Student, bool) {
	for _, s := range students {
		if s.ID == id {
			return s, true
		}
	}
	return Student{}, false
}

// SeedStudents returns the students the store starts with.
func SeedStudents() []Student {
	return []Student{
		{ID: "1", Name: "Alex Johnson", Grade: "10th Grade"},
		{ID: "2", Name: "Emma Johnson", Grade: "8th Grade"},
	}
}
