package subjects

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const subjectCols = `id, code, name, semester, departments, created_at, updated_at`

// Repository persists subjects in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanSubject(row interface{ Scan(...any) error }) (Subject, error) {
	var sub Subject
	var depts pq.StringArray
	err := row.Scan(&sub.ID, &sub.Code, &sub.Name, &sub.Semester, &depts, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return Subject{}, err
	}
	sub.Departments = []string(depts)
	return sub, nil
}

// CodeExists reports whether a subject with code is already stored.
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM subjects WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

// Insert writes a new subject.
func (r *Repository) Insert(ctx context.Context, sub Subject) (Subject, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO subjects (id, code, name, semester, departments)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at
	`, sub.ID, sub.Code, sub.Name, sub.Semester, pq.Array(sub.Departments))
	if err := row.Scan(&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return Subject{}, err
	}
	return sub, nil
}

// List returns subjects, optionally filtered by department membership
// and semester, ordered by semester then code.
func (r *Repository) List(ctx context.Context, department string, semester int) ([]Subject, error) {
	query := `SELECT ` + subjectCols + ` FROM subjects`
	args := []any{}
	clauses := []string{}
	if department != "" {
		args = append(args, department)
		clauses = append(clauses, `$1 = ANY(departments)`)
	}
	if semester > 0 {
		args = append(args, semester)
		if len(args) == 1 {
			clauses = append(clauses, `semester = $1`)
		} else {
			clauses = append(clauses, `semester = $2`)
		}
	}
	for i, cl := range clauses {
		if i == 0 {
			query += ` WHERE ` + cl
		} else {
			query += ` AND ` + cl
		}
	}
	query += ` ORDER BY semester, code`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Subject
	for rows.Next() {
		sub, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, sub)
	}
	return res, rows.Err()
}

// GetByID returns a subject by id.
func (r *Repository) GetByID(ctx context.Context, id string) (Subject, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+subjectCols+` FROM subjects WHERE id = $1`, id)
	sub, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Subject{}, ErrNotFound
	}
	return sub, err
}

// Update overwrites mutable fields.
func (r *Repository) Update(ctx context.Context, sub Subject) (Subject, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE subjects
		SET code = $2, name = $3, semester = $4, departments = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+subjectCols, sub.ID, sub.Code, sub.Name, sub.Semester, pq.Array(sub.Departments))
	updated, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Subject{}, ErrNotFound
	}
	return updated, err
}

// Delete removes a subject row.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
