package students

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"rollbook/internal/authz"
	"rollbook/internal/identity"
	"rollbook/internal/queue"
)

// Validation errors surfaced as 400s by the HTTP layer.
var (
	ErrBadBatch      = errors.New("batch must be one of: b1, b2, both")
	ErrBadDepartment = errors.New("unknown department code")
	ErrBadSemester   = errors.New("semester must be between 1 and 8")
)

// CreateInput carries the fields accepted by the add-student operation.
type CreateInput struct {
	RegisterNumber string `json:"registerNumber" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	Department     string `json:"department" binding:"required"`
	Semester       int    `json:"semester" binding:"required"`
	Batch          string `json:"batch" binding:"required"`
	ImageURL       string `json:"imageUrl"`
	ImagePublicID  string `json:"imagePublicId"`
}

// UpdateInput carries the fields accepted by the update operation.
type UpdateInput struct {
	RegisterNumber *string `json:"registerNumber"`
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	Department     *string `json:"department"`
	Semester       *int    `json:"semester"`
	Batch          *string `json:"batch"`
	ImageURL       *string `json:"imageUrl"`
	ImagePublicID  *string `json:"imagePublicId"`
}

// BulkRowResult reports the outcome of one row of a bulk add. The
// batch as a whole succeeds even when individual rows fail.
type BulkRowResult struct {
	Row            int    `json:"row"`
	RegisterNumber string `json:"registerNumber"`
	OK             bool   `json:"ok"`
	Error          string `json:"error,omitempty"`
	ID             string `json:"id,omitempty"`
}

// Service owns student lifecycle including provider provisioning and
// bulk imports.
type Service struct {
	repo *Repository
	idp  *identity.Client
	q    queue.Queue
	log  zerolog.Logger
}

// NewService creates a service.
func NewService(repo *Repository, idp *identity.Client, q queue.Queue, log zerolog.Logger) *Service {
	return &Service{repo: repo, idp: idp, q: q, log: log}
}

func (s *Service) validate(in CreateInput) (Student, error) {
	batch, ok := ParseBatch(in.Batch)
	if !ok {
		return Student{}, ErrBadBatch
	}
	dept := strings.ToLower(strings.TrimSpace(in.Department))
	if dept == "" || !authz.ValidDepartment(dept) {
		return Student{}, ErrBadDepartment
	}
	if in.Semester < 1 || in.Semester > 8 {
		return Student{}, ErrBadSemester
	}
	return Student{
		RegisterNumber: strings.TrimSpace(in.RegisterNumber),
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          in.Phone,
		Department:     dept,
		Semester:       in.Semester,
		Batch:          batch,
		ImageURL:       in.ImageURL,
		ImagePublicID:  in.ImagePublicID,
	}, nil
}

// Create provisions a provider account for the student and stores the
// roster record.
func (s *Service) Create(ctx context.Context, in CreateInput) (Student, error) {
	st, err := s.validate(in)
	if err != nil {
		return Student{}, err
	}

	account, err := s.idp.CreateAccount(ctx, st.Email, st.Name, string(authz.RoleStudent), st.Department)
	if err != nil {
		return Student{}, fmt.Errorf("provision identity account: %w", err)
	}
	st.IdentityID = account.ID

	created, err := s.repo.Insert(ctx, st)
	if err != nil {
		return Student{}, err
	}
	s.log.Info().Str("student", created.ID).Str("register", created.RegisterNumber).Msg("student created")
	return created, nil
}

// List returns students visible inside the given scope.
func (s *Service) List(ctx context.Context, scope authz.StudentScope) ([]Student, error) {
	if scope.All {
		return s.repo.List(ctx, "")
	}
	return s.repo.List(ctx, scope.Department)
}

// Resolve loads a student by internal id or provider account id.
func (s *Service) Resolve(ctx context.Context, id string) (Student, error) {
	if identity.IsProviderID(id) {
		return s.repo.GetByIdentityID(ctx, id)
	}
	return s.repo.GetByID(ctx, id)
}

// Search matches by register number; a miss yields an empty list.
func (s *Service) Search(ctx context.Context, registerNumber string) ([]Student, error) {
	registerNumber = strings.TrimSpace(registerNumber)
	if registerNumber == "" {
		return []Student{}, nil
	}
	res, err := s.repo.SearchByRegisterNumber(ctx, registerNumber)
	if res == nil && err == nil {
		res = []Student{}
	}
	return res, err
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, target Student, in UpdateInput) (Student, error) {
	if in.RegisterNumber != nil {
		target.RegisterNumber = strings.TrimSpace(*in.RegisterNumber)
	}
	if in.Name != nil {
		target.Name = *in.Name
	}
	if in.Email != nil {
		target.Email = strings.ToLower(*in.Email)
	}
	if in.Phone != nil {
		target.Phone = *in.Phone
	}
	if in.Department != nil {
		dept := strings.ToLower(strings.TrimSpace(*in.Department))
		if !authz.ValidDepartment(dept) || dept == "" {
			return Student{}, ErrBadDepartment
		}
		target.Department = dept
	}
	if in.Semester != nil {
		if *in.Semester < 1 || *in.Semester > 8 {
			return Student{}, ErrBadSemester
		}
		target.Semester = *in.Semester
	}
	if in.Batch != nil {
		batch, ok := ParseBatch(*in.Batch)
		if !ok {
			return Student{}, ErrBadBatch
		}
		target.Batch = batch
	}
	if in.ImageURL != nil {
		target.ImageURL = *in.ImageURL
	}
	if in.ImagePublicID != nil {
		target.ImagePublicID = *in.ImagePublicID
	}
	return s.repo.Update(ctx, target)
}

// Delete removes the roster row and enqueues provider/image cleanup.
func (s *Service) Delete(ctx context.Context, target Student) error {
	if err := s.repo.Delete(ctx, target.ID); err != nil {
		return err
	}
	if target.IdentityID != "" {
		if err := s.q.Publish(ctx, queue.NewCleanup(queue.TypeDeleteIdentity, target.IdentityID)); err != nil {
			s.log.Warn().Err(err).Str("ref", target.IdentityID).Msg("identity cleanup enqueue failed")
		}
	}
	if target.ImagePublicID != "" {
		if err := s.q.Publish(ctx, queue.NewCleanup(queue.TypeDeleteImage, target.ImagePublicID)); err != nil {
			s.log.Warn().Err(err).Str("ref", target.ImagePublicID).Msg("image cleanup enqueue failed")
		}
	}
	s.log.Info().Str("student", target.ID).Msg("student deleted")
	return nil
}

// BulkAdd creates many students, reporting per-row success or failure.
func (s *Service) BulkAdd(ctx context.Context, rows []CreateInput) []BulkRowResult {
	results := make([]BulkRowResult, 0, len(rows))
	for i, in := range rows {
		res := BulkRowResult{Row: i + 1, RegisterNumber: strings.TrimSpace(in.RegisterNumber)}
		created, err := s.Create(ctx, in)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.OK = true
			res.ID = created.ID
		}
		results = append(results, res)
	}
	return results
}

// ParseXLSX reads roster rows from the first sheet, skipping the
// header row. Expected columns: register number, name, email, phone,
// department, semester, batch. Rows are returned unvalidated so the
// caller can authorize them before BulkAdd.
func (s *Service) ParseXLSX(file io.Reader) ([]CreateInput, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close spreadsheet failed")
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	var inputs []CreateInput
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		inputs = append(inputs, CreateInput{
			RegisterNumber: cell(row, 0),
			Name:           cell(row, 1),
			Email:          cell(row, 2),
			Phone:          cell(row, 3),
			Department:     cell(row, 4),
			Semester:       atoiCell(cell(row, 5)),
			Batch:          cell(row, 6),
		})
	}
	s.log.Info().Int("rows", len(inputs)).Str("sheet", sheet).Msg("parsed student spreadsheet")
	return inputs, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func atoiCell(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
