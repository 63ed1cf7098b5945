// Package attendance owns class sessions, per-student attendance
// records, and the report/statistics aggregations built on them.
package attendance

import (
	"errors"
	"strings"
	"time"

	"rollbook/internal/students"
)

var (
	// ErrSessionNotFound is returned when no session matches the id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRecordNotFound is returned when no record matches the id.
	ErrRecordNotFound = errors.New("attendance record not found")
	// ErrDuplicateSession rejects a second session for the same
	// (date, slot, subject, semester, department, lecturer) tuple.
	ErrDuplicateSession = errors.New("session already exists for this slot")
	// ErrBadStatus rejects statuses outside present/absent/leave.
	ErrBadStatus = errors.New("status must be one of: present, absent, leave")
)

// Status is a student's standing for one session.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
)

// ParseStatus normalizes and validates a status string.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPresent:
		return StatusPresent, true
	case StatusAbsent:
		return StatusAbsent, true
	case StatusLeave:
		return StatusLeave, true
	}
	return "", false
}

// Session is one scheduled, dated, time-boxed class meeting.
// Subject and lecturer display fields are populated on reads.
type Session struct {
	ID            string         `json:"id"`
	Date          time.Time      `json:"date"`
	TimeSlot      string         `json:"timeSlot"`
	SubjectID     string         `json:"subjectId"`
	LecturerID    string         `json:"lecturerId"`
	Semester      int            `json:"semester"`
	Department    string         `json:"department"`
	Batch         students.Batch `json:"batch"`
	DurationHours float64        `json:"durationHours"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`

	SubjectCode   string `json:"subjectCode,omitempty"`
	SubjectName   string `json:"subjectName,omitempty"`
	LecturerName  string `json:"lecturerName,omitempty"`
	LecturerEmail string `json:"lecturerEmail,omitempty"`
}

// AppliesTo reports whether the session counts toward the held hours
// of a student in the given batch.
func (s Session) AppliesTo(batch students.Batch) bool {
	return students.Covers(s.Batch, batch)
}

// Record is one student's status for one session. Unique per
// (session, student); writes are upserts on that pair.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	StudentID string    `json:"studentId"`
	Status    Status    `json:"status"`
	Hours     float64   `json:"hours"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordWithStudent is a record joined with its student, for
// session-scoped views.
type RecordWithStudent struct {
	Record
	Student students.Student `json:"student"`
}

// RecordWithSession is a record joined with its session, for
// student-scoped views.
type RecordWithSession struct {
	Record
	Session Session `json:"session"`
}
