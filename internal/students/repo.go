package students

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const studentCols = `id, identity_id, register_number, name, email, phone, department, semester, batch, image_url, image_public_id, created_at, updated_at`

// Repository persists students in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanStudent(row interface{ Scan(...any) error }) (Student, error) {
	var st Student
	var batch string
	err := row.Scan(&st.ID, &st.IdentityID, &st.RegisterNumber, &st.Name, &st.Email, &st.Phone,
		&st.Department, &st.Semester, &batch, &st.ImageURL, &st.ImagePublicID, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return Student{}, err
	}
	st.Batch = Batch(batch)
	return st, nil
}

// Insert writes a new student.
func (r *Repository) Insert(ctx context.Context, st Student) (Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, identity_id, register_number, name, email, phone, department, semester, batch, image_url, image_public_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at
	`, st.ID, st.IdentityID, st.RegisterNumber, st.Name, st.Email, st.Phone,
		st.Department, st.Semester, string(st.Batch), st.ImageURL, st.ImagePublicID)
	if err := row.Scan(&st.CreatedAt, &st.UpdatedAt); err != nil {
		return Student{}, err
	}
	return st, nil
}

// List returns students, optionally restricted to one department,
// newest first.
func (r *Repository) List(ctx context.Context, department string) ([]Student, error) {
	query := `SELECT ` + studentCols + ` FROM students`
	args := []any{}
	if department != "" {
		query += ` WHERE department = $1`
		args = append(args, department)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListForCohort returns students of a department and semester, register
// number order.
func (r *Repository) ListForCohort(ctx context.Context, department string, semester int) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+studentCols+` FROM students
		WHERE department = $1 AND semester = $2
		ORDER BY register_number
	`, department, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// GetByID returns a student by internal id.
func (r *Repository) GetByID(ctx context.Context, id string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE id = $1`, id)
	st, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return st, err
}

// GetByIdentityID returns a student by provider account id.
func (r *Repository) GetByIdentityID(ctx context.Context, identityID string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE identity_id = $1`, identityID)
	st, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return st, err
}

// SearchByRegisterNumber returns students whose register number
// contains the query, case-insensitive. An empty result is not an
// error.
func (r *Repository) SearchByRegisterNumber(ctx context.Context, registerNumber string) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+studentCols+` FROM students
		WHERE register_number ILIKE '%' || $1 || '%'
		ORDER BY register_number
	`, registerNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Update overwrites mutable fields.
func (r *Repository) Update(ctx context.Context, st Student) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE students
		SET register_number = $2, name = $3, email = $4, phone = $5, department = $6,
		    semester = $7, batch = $8, image_url = $9, image_public_id = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING `+studentCols,
		st.ID, st.RegisterNumber, st.Name, st.Email, st.Phone, st.Department,
		st.Semester, string(st.Batch), st.ImageURL, st.ImagePublicID)
	updated, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return updated, err
}

// Delete removes a student row.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func collect(rows *sql.Rows) ([]Student, error) {
	var res []Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		res = append(res, st)
	}
	return res, rows.Err()
}
