package subjects

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// CreateInput carries the fields accepted by the add-subject operation.
type CreateInput struct {
	Code        string   `json:"code" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Semester    int      `json:"semester" binding:"required"`
	Departments []string `json:"departments" binding:"required"`
}

// Service validates and stores subjects.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a service.
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func normalize(in CreateInput) (Subject, error) {
	if in.Semester < 1 || in.Semester > 8 {
		return Subject{}, ErrBadSemester
	}
	depts := make([]string, 0, len(in.Departments))
	for _, d := range in.Departments {
		if d = strings.ToUpper(strings.TrimSpace(d)); d != "" {
			depts = append(depts, d)
		}
	}
	return Subject{
		Code:        strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:        strings.TrimSpace(in.Name),
		Semester:    in.Semester,
		Departments: depts,
	}, nil
}

// Create stores a subject; duplicate codes are rejected.
func (s *Service) Create(ctx context.Context, in CreateInput) (Subject, error) {
	sub, err := normalize(in)
	if err != nil {
		return Subject{}, err
	}
	exists, err := s.repo.CodeExists(ctx, sub.Code)
	if err != nil {
		return Subject{}, err
	}
	if exists {
		return Subject{}, ErrDuplicateCode
	}
	created, err := s.repo.Insert(ctx, sub)
	if err != nil {
		return Subject{}, err
	}
	s.log.Info().Str("subject", created.ID).Str("code", created.Code).Msg("subject created")
	return created, nil
}

// List filters by department and semester; zero values mean no filter.
func (s *Service) List(ctx context.Context, department string, semester int) ([]Subject, error) {
	return s.repo.List(ctx, strings.ToUpper(strings.TrimSpace(department)), semester)
}

// Get returns one subject.
func (s *Service) Get(ctx context.Context, id string) (Subject, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces a subject's fields with the given input.
func (s *Service) Update(ctx context.Context, id string, in CreateInput) (Subject, error) {
	sub, err := normalize(in)
	if err != nil {
		return Subject{}, err
	}
	sub.ID = id
	return s.repo.Update(ctx, sub)
}

// Delete removes a subject.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
