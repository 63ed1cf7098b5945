// Package students manages the student roster: single and bulk
// creation, department-scoped reads, and the provider accounts backing
// each student login.
package students

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when no student matches the given id.
var ErrNotFound = errors.New("student not found")

// Batch is the sub-group split of a department/semester cohort.
type Batch string

const (
	BatchB1   Batch = "b1"
	BatchB2   Batch = "b2"
	BatchBoth Batch = "both"
)

// ParseBatch normalizes and validates a batch string.
func ParseBatch(s string) (Batch, bool) {
	switch Batch(strings.ToLower(strings.TrimSpace(s))) {
	case BatchB1:
		return BatchB1, true
	case BatchB2:
		return BatchB2, true
	case BatchBoth:
		return BatchBoth, true
	}
	return "", false
}

// Covers reports whether a session scoped to sessionBatch applies to a
// student in studentBatch. A "both" on either side matches everything.
func Covers(sessionBatch, studentBatch Batch) bool {
	return sessionBatch == BatchBoth || studentBatch == BatchBoth || sessionBatch == studentBatch
}

// Student is one enrolled person.
type Student struct {
	ID             string    `json:"id"`
	IdentityID     string    `json:"identityId"`
	RegisterNumber string    `json:"registerNumber"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Department     string    `json:"department"`
	Semester       int       `json:"semester"`
	Batch          Batch     `json:"batch"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	ImagePublicID  string    `json:"imagePublicId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
