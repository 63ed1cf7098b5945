package attendance

import (
	"context"
	"math"
	"strings"
	"time"

	"rollbook/internal/students"
)

// Percentage returns attended/held as a percentage rounded to two
// decimal places, and 0 when nothing was held.
func Percentage(attended, held float64) float64 {
	if held == 0 {
		return 0
	}
	return math.Round(attended/held*10000) / 100
}

// ShortageThreshold is the policy floor consuming UIs flag against.
// The API reports percentages; the flagging itself is presentation.
const ShortageThreshold = 75.0

// StudentSubjectReport totals one student's attendance within a set of
// sessions, usually one subject.
type StudentSubjectReport struct {
	TotalHours    float64  `json:"totalHours"`
	AttendedHours float64  `json:"attendedHours"`
	AbsentHours   float64  `json:"absentHours"`
	Percentage    float64  `json:"percentage"`
	Records       []Record `json:"records"`
}

// ClassStudentReport is one student's standing inside a class report.
type ClassStudentReport struct {
	Student       students.Student `json:"student"`
	HeldHours     float64          `json:"heldHours"`
	AttendedHours float64          `json:"attendedHours"`
	Percentage    float64          `json:"percentage"`
}

// ClassSubjectReport groups a class report by subject.
type ClassSubjectReport struct {
	SubjectID   string               `json:"subjectId"`
	SubjectCode string               `json:"subjectCode"`
	SubjectName string               `json:"subjectName"`
	Semester    int                  `json:"semester"`
	TotalHours  float64              `json:"totalHours"`
	Students    []ClassStudentReport `json:"students"`
}

// OverallSubjectReport is one row of a student's across-subjects view.
type OverallSubjectReport struct {
	SubjectID     string  `json:"subjectId"`
	SubjectCode   string  `json:"subjectCode"`
	SubjectName   string  `json:"subjectName"`
	TotalHours    float64 `json:"totalHours"`
	AttendedHours float64 `json:"attendedHours"`
	AbsentHours   float64 `json:"absentHours"`
	Percentage    float64 `json:"percentage"`
}

// SessionMark is one session row of a per-student history.
type SessionMark struct {
	SessionID string         `json:"sessionId"`
	Date      time.Time      `json:"date"`
	TimeSlot  string         `json:"timeSlot"`
	Status    Status         `json:"status"`
	Duration  float64        `json:"duration"`
	Batch     students.Batch `json:"batch"`
}

// StudentSessionHistory is a cohort student's full session history for
// one subject.
type StudentSessionHistory struct {
	StudentID      string         `json:"studentId"`
	Name           string         `json:"name"`
	RegisterNumber string         `json:"registerNumber"`
	Batch          students.Batch `json:"batch"`
	Sessions       []SessionMark  `json:"sessions"`
}

// BuildStudentSubjectTotals computes held and attended hours for one
// student. A session is held for the student only when its batch
// covers the student's batch; records for sessions outside that set do
// not count.
func BuildStudentSubjectTotals(sessions []Session, recs []Record, batch students.Batch) (held, attended float64) {
	applicable := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		if s.AppliesTo(batch) {
			applicable[s.ID] = true
			held += s.DurationHours
		}
	}
	for _, rec := range recs {
		if applicable[rec.SessionID] {
			attended += rec.Hours
		}
	}
	return held, attended
}

// BuildClassReport shapes sessions and their records into per-subject,
// per-student percentages. Held hours are batch-aware per student.
func BuildClassReport(sessions []Session, records []RecordWithStudent) []ClassSubjectReport {
	type group struct {
		report   ClassSubjectReport
		sessions []Session
		students map[string]*ClassStudentReport
		order    []string
	}
	groups := map[string]*group{}
	var subjectOrder []string

	for _, s := range sessions {
		g, ok := groups[s.SubjectID]
		if !ok {
			g = &group{
				report: ClassSubjectReport{
					SubjectID:   s.SubjectID,
					SubjectCode: s.SubjectCode,
					SubjectName: s.SubjectName,
					Semester:    s.Semester,
				},
				students: map[string]*ClassStudentReport{},
			}
			groups[s.SubjectID] = g
			subjectOrder = append(subjectOrder, s.SubjectID)
		}
		g.sessions = append(g.sessions, s)
		g.report.TotalHours += s.DurationHours
	}

	sessionSubject := make(map[string]string, len(sessions))
	for _, s := range sessions {
		sessionSubject[s.ID] = s.SubjectID
	}

	for _, rec := range records {
		subjID, ok := sessionSubject[rec.SessionID]
		if !ok {
			continue
		}
		g := groups[subjID]
		entry, ok := g.students[rec.Student.ID]
		if !ok {
			entry = &ClassStudentReport{Student: rec.Student}
			g.students[rec.Student.ID] = entry
			g.order = append(g.order, rec.Student.ID)
		}
		entry.AttendedHours += rec.Hours
	}

	out := make([]ClassSubjectReport, 0, len(groups))
	for _, subjID := range subjectOrder {
		g := groups[subjID]
		for _, studentID := range g.order {
			entry := g.students[studentID]
			for _, s := range g.sessions {
				if s.AppliesTo(entry.Student.Batch) {
					entry.HeldHours += s.DurationHours
				}
			}
			entry.Percentage = Percentage(entry.AttendedHours, entry.HeldHours)
			g.report.Students = append(g.report.Students, *entry)
		}
		if g.report.Students == nil {
			g.report.Students = []ClassStudentReport{}
		}
		out = append(out, g.report)
	}
	return out
}

// BuildOverallReport groups a student's records by subject and totals
// the hours per subject.
func BuildOverallReport(recs []RecordWithSession, batch students.Batch) []OverallSubjectReport {
	byID := map[string]*OverallSubjectReport{}
	var order []string
	for _, rec := range recs {
		if !rec.Session.AppliesTo(batch) {
			continue
		}
		rep, ok := byID[rec.Session.SubjectID]
		if !ok {
			rep = &OverallSubjectReport{
				SubjectID:   rec.Session.SubjectID,
				SubjectCode: rec.Session.SubjectCode,
				SubjectName: rec.Session.SubjectName,
			}
			byID[rec.Session.SubjectID] = rep
			order = append(order, rec.Session.SubjectID)
		}
		rep.TotalHours += rec.Session.DurationHours
		rep.AttendedHours += rec.Hours
	}

	out := make([]OverallSubjectReport, 0, len(order))
	for _, id := range order {
		rep := byID[id]
		rep.AbsentHours = rep.TotalHours - rep.AttendedHours
		rep.Percentage = Percentage(rep.AttendedHours, rep.TotalHours)
		out = append(out, *rep)
	}
	return out
}

// BuildSubjectHistories produces per-student session histories for a
// cohort. Absent rows are synthesized for sessions with no record.
func BuildSubjectHistories(sessions []Session, cohort []students.Student, records []RecordWithStudent) []StudentSessionHistory {
	type key struct{ student, session string }
	recBy := make(map[key]RecordWithStudent, len(records))
	for _, rec := range records {
		recBy[key{rec.Student.ID, rec.SessionID}] = rec
	}

	out := make([]StudentSessionHistory, 0, len(cohort))
	for _, st := range cohort {
		hist := StudentSessionHistory{
			StudentID:      st.ID,
			Name:           st.Name,
			RegisterNumber: st.RegisterNumber,
			Batch:          st.Batch,
			Sessions:       []SessionMark{},
		}
		for _, s := range sessions {
			if !s.AppliesTo(st.Batch) {
				continue
			}
			mark := SessionMark{
				SessionID: s.ID,
				Date:      s.Date,
				TimeSlot:  s.TimeSlot,
				Status:    StatusAbsent,
				Duration:  s.DurationHours,
				Batch:     s.Batch,
			}
			if rec, ok := recBy[key{st.ID, s.ID}]; ok {
				mark.Status = rec.Status
				if rec.Hours > 0 {
					mark.Duration = rec.Hours
				}
			}
			hist.Sessions = append(hist.Sessions, mark)
		}
		out = append(out, hist)
	}
	return out
}

// MonthWindow returns the first and last instant of a month in the
// given year; the current year when year is zero.
func MonthWindow(month, year int) (time.Time, time.Time) {
	if year == 0 {
		year = time.Now().Year()
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, 0).Add(-time.Second)
	return first, last
}

// StudentSubjectReport totals one student's attendance for a subject
// within an optional date window.
func (s *Service) StudentSubjectReport(ctx context.Context, st students.Student, subjectID string, from, to *time.Time) (StudentSubjectReport, error) {
	sessions, err := s.repo.ListSessions(ctx, SessionFilter{SubjectID: subjectID, From: from, To: to})
	if err != nil {
		return StudentSubjectReport{}, err
	}
	ids := make([]string, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}
	withStudents, err := s.repo.RecordsBySessionIDs(ctx, ids, st.ID)
	if err != nil {
		return StudentSubjectReport{}, err
	}
	recs := make([]Record, len(withStudents))
	for i, rec := range withStudents {
		recs[i] = rec.Record
	}

	held, attended := BuildStudentSubjectTotals(sessions, recs, st.Batch)
	return StudentSubjectReport{
		TotalHours:    held,
		AttendedHours: attended,
		AbsentHours:   held - attended,
		Percentage:    Percentage(attended, held),
		Records:       recs,
	}, nil
}

// ClassSubjectReport builds the class-level percentages for sessions
// matching the filter.
func (s *Service) ClassSubjectReport(ctx context.Context, f SessionFilter) ([]ClassSubjectReport, error) {
	sessions, err := s.repo.ListSessions(ctx, f.normalized())
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return []ClassSubjectReport{}, nil
	}
	ids := make([]string, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}
	records, err := s.repo.RecordsBySessionIDs(ctx, ids, "")
	if err != nil {
		return nil, err
	}
	return BuildClassReport(sessions, records), nil
}

// OverallStudentReport totals a student's attendance per subject.
func (s *Service) OverallStudentReport(ctx context.Context, st students.Student, from, to *time.Time) ([]OverallSubjectReport, error) {
	recs, err := s.repo.RecordsByStudent(ctx, st.ID, from, to)
	if err != nil {
		return nil, err
	}
	return BuildOverallReport(recs, st.Batch), nil
}

// SubjectHistories is the staff statistics view: every cohort
// student's session-by-session history for one subject.
func (s *Service) SubjectHistories(ctx context.Context, department string, semester int, subjectID string) ([]StudentSessionHistory, error) {
	department = strings.ToLower(strings.TrimSpace(department))
	sessions, err := s.repo.ListSessions(ctx, SessionFilter{
		SubjectID:  subjectID,
		Semester:   semester,
		Department: department,
	}.normalized())
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return []StudentSessionHistory{}, nil
	}
	cohort, err := s.studentsRepo.ListForCohort(ctx, department, semester)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}
	records, err := s.repo.RecordsBySessionIDs(ctx, ids, "")
	if err != nil {
		return nil, err
	}
	return BuildSubjectHistories(sessions, cohort, records), nil
}

// MySubjectHistory is the student statistics view: the caller's own
// session history for one subject.
func (s *Service) MySubjectHistory(ctx context.Context, st students.Student, subjectID string) (StudentSessionHistory, error) {
	sessions, err := s.repo.ListSessions(ctx, SessionFilter{SubjectID: subjectID})
	if err != nil {
		return StudentSessionHistory{}, err
	}
	ids := make([]string, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}
	records, err := s.repo.RecordsBySessionIDs(ctx, ids, st.ID)
	if err != nil {
		return StudentSessionHistory{}, err
	}
	histories := BuildSubjectHistories(sessions, []students.Student{st}, records)
	return histories[0], nil
}
