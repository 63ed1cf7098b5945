// Package subjects manages the subject catalogue shared across
// departments.
package subjects

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no subject matches the given id.
	ErrNotFound = errors.New("subject not found")
	// ErrDuplicateCode is returned when a subject code already exists.
	ErrDuplicateCode = errors.New("subject code already exists")
	// ErrBadSemester is returned for semesters outside 1..8.
	ErrBadSemester = errors.New("semester must be between 1 and 8")
)

// Subject is one course offering. Departments lists the short codes
// whose cohorts take it; codes are stored uppercase.
type Subject struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Semester    int       `json:"semester"`
	Departments []string  `json:"departments"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
