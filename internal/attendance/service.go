package attendance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rollbook/internal/authz"
	"rollbook/internal/students"
	"rollbook/internal/timeslot"
)

// Validation errors surfaced as 400s by the HTTP layer.
var (
	ErrBadDate       = errors.New("date must be YYYY-MM-DD")
	ErrBadBatch      = errors.New("batch must be one of: b1, b2, both")
	ErrBadDepartment = errors.New("unknown department code")
	ErrNoRecords     = errors.New("at least one record required")
)

// DateLayout is the wire format for session dates.
const DateLayout = "2006-01-02"

// CreateSessionInput carries the fields accepted by session creation.
type CreateSessionInput struct {
	Date       string `json:"date" binding:"required"`
	TimeSlot   string `json:"timeSlot" binding:"required"`
	SubjectID  string `json:"subjectId" binding:"required"`
	LecturerID string `json:"lecturerId" binding:"required"`
	Semester   int    `json:"semester" binding:"required"`
	Department string `json:"department" binding:"required"`
	Batch      string `json:"batch" binding:"required"`
}

// MarkEntry is one (student, status) pair of a bulk mark.
type MarkEntry struct {
	StudentID string `json:"studentId" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// MarkInput is the bulk mark request body.
type MarkInput struct {
	SessionID string      `json:"sessionId" binding:"required"`
	Records   []MarkEntry `json:"records" binding:"required"`
}

// SessionDetail is a session with its records and the students
// expected to attend it.
type SessionDetail struct {
	Session          Session             `json:"session"`
	Records          []RecordWithStudent `json:"records"`
	EligibleStudents []students.Student  `json:"eligibleStudents"`
}

// Service coordinates sessions and attendance marking.
type Service struct {
	repo         *Repository
	studentsRepo *students.Repository
	log          zerolog.Logger
}

// NewService creates a service.
func NewService(repo *Repository, studentsRepo *students.Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, studentsRepo: studentsRepo, log: log}
}

func (s *Service) buildSession(in CreateSessionInput) (Session, error) {
	date, err := time.Parse(DateLayout, in.Date)
	if err != nil {
		return Session{}, ErrBadDate
	}
	batch, ok := students.ParseBatch(in.Batch)
	if !ok {
		return Session{}, ErrBadBatch
	}
	dept := strings.ToLower(strings.TrimSpace(in.Department))
	if dept == "" || !authz.ValidDepartment(dept) {
		return Session{}, ErrBadDepartment
	}
	return Session{
		Date:          date,
		TimeSlot:      strings.TrimSpace(in.TimeSlot),
		SubjectID:     in.SubjectID,
		LecturerID:    in.LecturerID,
		Semester:      in.Semester,
		Department:    dept,
		Batch:         batch,
		DurationHours: timeslot.Hours(in.TimeSlot),
	}, nil
}

// CreateSession stores a new session after the duplicate-slot check.
func (s *Service) CreateSession(ctx context.Context, in CreateSessionInput) (Session, error) {
	sess, err := s.buildSession(in)
	if err != nil {
		return Session{}, err
	}
	exists, err := s.repo.SessionExists(ctx, sess)
	if err != nil {
		return Session{}, err
	}
	if exists {
		return Session{}, ErrDuplicateSession
	}
	created, err := s.repo.InsertSession(ctx, sess)
	if err != nil {
		return Session{}, err
	}
	s.log.Info().Str("session", created.ID).Str("slot", created.TimeSlot).
		Float64("hours", created.DurationHours).Msg("session created")
	return created, nil
}

// ListSessions passes the filter through to storage.
func (s *Service) ListSessions(ctx context.Context, f SessionFilter) ([]Session, error) {
	return s.repo.ListSessions(ctx, f.normalized())
}

// GetSessionDetail returns a session together with its records and
// the cohort students whose batch it covers.
func (s *Service) GetSessionDetail(ctx context.Context, id string) (SessionDetail, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return SessionDetail{}, err
	}
	records, err := s.repo.RecordsBySession(ctx, id)
	if err != nil {
		return SessionDetail{}, err
	}
	cohort, err := s.studentsRepo.ListForCohort(ctx, sess.Department, sess.Semester)
	if err != nil {
		return SessionDetail{}, err
	}
	eligible := make([]students.Student, 0, len(cohort))
	for _, st := range cohort {
		if sess.AppliesTo(st.Batch) {
			eligible = append(eligible, st)
		}
	}
	if records == nil {
		records = []RecordWithStudent{}
	}
	return SessionDetail{Session: sess, Records: records, EligibleStudents: eligible}, nil
}

// UpdateSession corrects session metadata, re-deriving the duration
// from the (possibly changed) slot.
func (s *Service) UpdateSession(ctx context.Context, id string, in CreateSessionInput) (Session, error) {
	sess, err := s.buildSession(in)
	if err != nil {
		return Session{}, err
	}
	sess.ID = id
	return s.repo.UpdateSession(ctx, sess)
}

// DeleteSession removes the session and all its records atomically.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if err := s.repo.DeleteSessionCascade(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("session", id).Msg("session and records deleted")
	return nil
}

// Mark applies a bulk of (student, status) upserts for one session.
// Present students are credited the session duration, everyone else 0.
func (s *Service) Mark(ctx context.Context, in MarkInput) (int, error) {
	if len(in.Records) == 0 {
		return 0, ErrNoRecords
	}
	sess, err := s.repo.GetSession(ctx, in.SessionID)
	if err != nil {
		return 0, err
	}

	recs := make([]Record, 0, len(in.Records))
	for _, e := range in.Records {
		status, ok := ParseStatus(e.Status)
		if !ok {
			return 0, ErrBadStatus
		}
		recs = append(recs, Record{
			SessionID: sess.ID,
			StudentID: e.StudentID,
			Status:    status,
			Hours:     creditedHours(status, sess.DurationHours),
		})
	}
	if err := s.repo.UpsertRecords(ctx, recs); err != nil {
		return 0, err
	}
	s.log.Info().Str("session", sess.ID).Int("records", len(recs)).Msg("attendance marked")
	return len(recs), nil
}

// UpdateRecord upserts a single student's status for a session.
func (s *Service) UpdateRecord(ctx context.Context, sessionID, studentID, rawStatus string) (Record, error) {
	status, ok := ParseStatus(rawStatus)
	if !ok {
		return Record{}, ErrBadStatus
	}
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		SessionID: sess.ID,
		StudentID: studentID,
		Status:    status,
		Hours:     creditedHours(status, sess.DurationHours),
	}
	return s.repo.UpsertRecord(ctx, rec)
}

// DeleteRecord removes one attendance record.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	return s.repo.DeleteRecord(ctx, id)
}

// StudentHistory returns a student's full attendance, newest first.
func (s *Service) StudentHistory(ctx context.Context, studentID string, from, to *time.Time) ([]RecordWithSession, error) {
	recs, err := s.repo.RecordsByStudent(ctx, studentID, from, to)
	if recs == nil && err == nil {
		recs = []RecordWithSession{}
	}
	return recs, err
}

// SessionRecords returns all records of one session.
func (s *Service) SessionRecords(ctx context.Context, sessionID string) ([]RecordWithStudent, error) {
	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	recs, err := s.repo.RecordsBySession(ctx, sessionID)
	if recs == nil && err == nil {
		recs = []RecordWithStudent{}
	}
	return recs, err
}

// creditedHours is the hours a record earns: the full session duration
// when present, zero otherwise.
func creditedHours(status Status, duration float64) float64 {
	if status == StatusPresent {
		return duration
	}
	return 0
}
