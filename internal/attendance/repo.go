package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rollbook/internal/students"
)

const sessionCols = `s.id, s.session_date, s.time_slot, s.subject_id, s.lecturer_id, s.semester,
	s.department, s.batch, s.duration_hours, s.created_at, s.updated_at,
	sub.code, sub.name, u.name, u.email`

const sessionJoin = ` FROM sessions s
	JOIN subjects sub ON sub.id = s.subject_id
	JOIN users u ON u.id = s.lecturer_id`

// Repository persists sessions and attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanSession(row interface{ Scan(...any) error }) (Session, error) {
	var s Session
	var batch string
	err := row.Scan(&s.ID, &s.Date, &s.TimeSlot, &s.SubjectID, &s.LecturerID, &s.Semester,
		&s.Department, &batch, &s.DurationHours, &s.CreatedAt, &s.UpdatedAt,
		&s.SubjectCode, &s.SubjectName, &s.LecturerName, &s.LecturerEmail)
	if err != nil {
		return Session{}, err
	}
	s.Batch = students.Batch(batch)
	return s, nil
}

// SessionExists checks for an existing session on the identifying
// tuple. The invariant is enforced here, not by a unique index.
func (r *Repository) SessionExists(ctx context.Context, s Session) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM sessions
			WHERE session_date = $1 AND time_slot = $2 AND subject_id = $3
			  AND semester = $4 AND department = $5 AND lecturer_id = $6
		)
	`, s.Date, s.TimeSlot, s.SubjectID, s.Semester, s.Department, s.LecturerID).Scan(&exists)
	return exists, err
}

// InsertSession writes a new session.
func (r *Repository) InsertSession(ctx context.Context, s Session) (Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO sessions (id, session_date, time_slot, subject_id, lecturer_id, semester, department, batch, duration_hours)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at
	`, s.ID, s.Date, s.TimeSlot, s.SubjectID, s.LecturerID, s.Semester, s.Department, string(s.Batch), s.DurationHours)
	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return Session{}, err
	}
	return s, nil
}

// GetSession returns a session with subject and lecturer display
// fields populated.
func (r *Repository) GetSession(ctx context.Context, id string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionCols+sessionJoin+` WHERE s.id = $1`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	return s, err
}

// SessionFilter bounds a session listing. Zero values mean no filter.
type SessionFilter struct {
	Date       *time.Time
	SubjectID  string
	LecturerID string
	Semester   int
	Department string
	From       *time.Time
	To         *time.Time
}

// normalized folds the department to the lowercase form sessions are
// stored in, so an uppercase query value still matches.
func (f SessionFilter) normalized() SessionFilter {
	f.Department = strings.ToLower(strings.TrimSpace(f.Department))
	return f
}

// ListSessions returns sessions matching the filter, ordered by date
// then slot.
func (r *Repository) ListSessions(ctx context.Context, f SessionFilter) ([]Session, error) {
	query := `SELECT ` + sessionCols + sessionJoin
	args := []any{}
	clauses := []string{}
	add := func(clause string, val any) {
		args = append(args, val)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if f.Date != nil {
		add("s.session_date = $%d", *f.Date)
	}
	if f.SubjectID != "" {
		add("s.subject_id = $%d", f.SubjectID)
	}
	if f.LecturerID != "" {
		add("s.lecturer_id = $%d", f.LecturerID)
	}
	if f.Semester > 0 {
		add("s.semester = $%d", f.Semester)
	}
	if f.Department != "" {
		add("s.department = $%d", f.Department)
	}
	if f.From != nil {
		add("s.session_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("s.session_date <= $%d", *f.To)
	}
	for i, cl := range clauses {
		if i == 0 {
			query += " WHERE " + cl
		} else {
			query += " AND " + cl
		}
	}
	query += " ORDER BY s.session_date, s.time_slot"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// UpdateSession overwrites session metadata.
func (r *Repository) UpdateSession(ctx context.Context, s Session) (Session, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET session_date = $2, time_slot = $3, subject_id = $4, lecturer_id = $5,
		    semester = $6, department = $7, batch = $8, duration_hours = $9, updated_at = NOW()
		WHERE id = $1
	`, s.ID, s.Date, s.TimeSlot, s.SubjectID, s.LecturerID, s.Semester, s.Department, string(s.Batch), s.DurationHours)
	if err != nil {
		return Session{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Session{}, ErrSessionNotFound
	}
	return r.GetSession(ctx, s.ID)
}

// DeleteSessionCascade removes a session and all of its attendance
// records in one transaction, so a failure leaves no orphans.
func (r *Repository) DeleteSessionCascade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_records WHERE session_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return tx.Commit()
}

const upsertRecordSQL = `
	INSERT INTO attendance_records (id, session_id, student_id, status, hours)
	VALUES ($1,$2,$3,$4,$5)
	ON CONFLICT (session_id, student_id) DO UPDATE
	SET status = EXCLUDED.status, hours = EXCLUDED.hours, updated_at = NOW()
	RETURNING id, created_at, updated_at`

// UpsertRecord creates or overwrites one (session, student) record.
func (r *Repository) UpsertRecord(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, upsertRecordSQL,
		rec.ID, rec.SessionID, rec.StudentID, string(rec.Status), rec.Hours)
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// UpsertRecords applies a batch of upserts in one transaction.
func (r *Repository) UpsertRecords(ctx context.Context, recs []Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertRecordSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		var id string
		var createdAt, updatedAt time.Time
		if err := stmt.QueryRowContext(ctx, rec.ID, rec.SessionID, rec.StudentID, string(rec.Status), rec.Hours).
			Scan(&id, &createdAt, &updatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const recordStudentCols = `r.id, r.session_id, r.student_id, r.status, r.hours, r.created_at, r.updated_at,
	st.id, st.identity_id, st.register_number, st.name, st.email, st.phone,
	st.department, st.semester, st.batch, st.image_url, st.image_public_id, st.created_at, st.updated_at`

func scanRecordWithStudent(row interface{ Scan(...any) error }) (RecordWithStudent, error) {
	var rec RecordWithStudent
	var status, batch string
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &status, &rec.Hours, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.Student.ID, &rec.Student.IdentityID, &rec.Student.RegisterNumber, &rec.Student.Name,
		&rec.Student.Email, &rec.Student.Phone, &rec.Student.Department, &rec.Student.Semester,
		&batch, &rec.Student.ImageURL, &rec.Student.ImagePublicID, &rec.Student.CreatedAt, &rec.Student.UpdatedAt)
	if err != nil {
		return RecordWithStudent{}, err
	}
	rec.Status = Status(status)
	rec.Student.Batch = students.Batch(batch)
	return rec, nil
}

// RecordsBySession returns a session's records joined with students.
func (r *Repository) RecordsBySession(ctx context.Context, sessionID string) ([]RecordWithStudent, error) {
	return r.recordsWithStudents(ctx, `
		SELECT `+recordStudentCols+`
		FROM attendance_records r
		JOIN students st ON st.id = r.student_id
		WHERE r.session_id = $1
		ORDER BY st.register_number
	`, sessionID)
}

// RecordsBySessionIDs returns all records for the given sessions,
// optionally restricted to one student.
func (r *Repository) RecordsBySessionIDs(ctx context.Context, sessionIDs []string, studentID string) ([]RecordWithStudent, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + recordStudentCols + `
		FROM attendance_records r
		JOIN students st ON st.id = r.student_id
		WHERE r.session_id = ANY($1)`
	args := []any{pq.Array(sessionIDs)}
	if studentID != "" {
		query += ` AND r.student_id = $2`
		args = append(args, studentID)
	}
	query += ` ORDER BY st.register_number`
	return r.recordsWithStudents(ctx, query, args...)
}

func (r *Repository) recordsWithStudents(ctx context.Context, query string, args ...any) ([]RecordWithStudent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []RecordWithStudent
	for rows.Next() {
		rec, err := scanRecordWithStudent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// RecordsByStudent returns a student's records joined with their
// sessions, optionally bounded by a date window, newest session first.
func (r *Repository) RecordsByStudent(ctx context.Context, studentID string, from, to *time.Time) ([]RecordWithSession, error) {
	query := `
		SELECT r.id, r.session_id, r.student_id, r.status, r.hours, r.created_at, r.updated_at,
		       ` + sessionCols + sessionJoin + `
		JOIN attendance_records r ON r.session_id = s.id
		WHERE r.student_id = $1`
	args := []any{studentID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND s.session_date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND s.session_date <= $%d", len(args))
	}
	query += ` ORDER BY s.session_date DESC, s.time_slot DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []RecordWithSession
	for rows.Next() {
		var rec RecordWithSession
		var status string
		var batch string
		err := rows.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &status, &rec.Hours, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.Session.ID, &rec.Session.Date, &rec.Session.TimeSlot, &rec.Session.SubjectID, &rec.Session.LecturerID,
			&rec.Session.Semester, &rec.Session.Department, &batch, &rec.Session.DurationHours,
			&rec.Session.CreatedAt, &rec.Session.UpdatedAt,
			&rec.Session.SubjectCode, &rec.Session.SubjectName, &rec.Session.LecturerName, &rec.Session.LecturerEmail)
		if err != nil {
			return nil, err
		}
		rec.Status = Status(status)
		rec.Session.Batch = students.Batch(batch)
		res = append(res, rec)
	}
	return res, rows.Err()
}

// GetRecord returns one record by id.
func (r *Repository) GetRecord(ctx context.Context, id string) (Record, error) {
	var rec Record
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, student_id, status, hours, created_at, updated_at
		FROM attendance_records WHERE id = $1
	`, id).Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &status, &rec.Hours, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, err
	}
	rec.Status = Status(status)
	return rec, nil
}

// DeleteRecord removes one record.
func (r *Repository) DeleteRecord(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
