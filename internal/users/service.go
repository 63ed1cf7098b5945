package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"rollbook/internal/authz"
	"rollbook/internal/identity"
	"rollbook/internal/queue"
)

// Validation errors surfaced as 400s by the HTTP layer.
var (
	ErrBadRole       = errors.New("role must be one of: admin, hod, staff, student")
	ErrBadDepartment = errors.New("unknown department code")
	ErrSelfDelete    = errors.New("you cannot delete your own account")
)

// CreateInput carries the fields accepted by the add-user operation.
type CreateInput struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone"`
	Role          string `json:"role" binding:"required"`
	Department    string `json:"department"`
	ImageURL      string `json:"imageUrl"`
	ImagePublicID string `json:"imagePublicId"`
}

// UpdateInput carries the fields accepted by the update-user operation.
// Pointer fields distinguish absent from empty.
type UpdateInput struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Role          *string `json:"role"`
	Department    *string `json:"department"`
	ImageURL      *string `json:"imageUrl"`
	ImagePublicID *string `json:"imagePublicId"`
}

// Service owns user lifecycle: provider provisioning, local mirroring
// and best-effort external cleanup.
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

// Resolve loads a user by internal id or provider account id. The
// prefix decides explicitly which lookup runs.
func (s *Service) Resolve(ctx context.Context, id string) (User, error) {
	if identity.IsProviderID(id) {
		return s.repo.GetByIdentityID(ctx, id)
	}
	return s.repo.GetByID(ctx, id)
}

// Create provisions a provider account and mirrors it locally.
func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	role, ok := authz.ParseRole(in.Role)
	if !ok {
		return User{}, ErrBadRole
	}
	dept := strings.ToLower(strings.TrimSpace(in.Department))
	if !authz.ValidDepartment(dept) {
		return User{}, ErrBadDepartment
	}

	account, err := s.idp.CreateAccount(ctx, strings.ToLower(in.Email), in.Name, string(role), dept)
	if err != nil {
		return User{}, fmt.Errorf("provision identity account: %w", err)
	}

	u := User{
		IdentityID:    account.ID,
		Name:          in.Name,
		Email:         strings.ToLower(in.Email),
		Phone:         in.Phone,
		Role:          role,
		Department:    dept,
		ImageURL:      in.ImageURL,
		ImagePublicID: in.ImagePublicID,
	}
	created, err := s.repo.Insert(ctx, u)
	if err != nil {
		return User{}, err
	}
	s.log.Info().Str("user", created.ID).Str("role", string(role)).Msg("user created")
	return created, nil
}

// List returns every user.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update and pushes role/department changes
// back to the provider.
func (s *Service) Update(ctx context.Context, target User, in UpdateInput) (User, error) {
	if in.Name != nil {
		target.Name = *in.Name
	}
	if in.Email != nil {
		target.Email = strings.ToLower(*in.Email)
	}
	if in.Phone != nil {
		target.Phone = *in.Phone
	}
	if in.Role != nil {
		role, ok := authz.ParseRole(*in.Role)
		if !ok {
			return User{}, ErrBadRole
		}
		target.Role = role
	}
	if in.Department != nil {
		dept := strings.ToLower(strings.TrimSpace(*in.Department))
		if !authz.ValidDepartment(dept) {
			return User{}, ErrBadDepartment
		}
		target.Department = dept
	}
	if in.ImageURL != nil {
		target.ImageURL = *in.ImageURL
	}
	if in.ImagePublicID != nil {
		target.ImagePublicID = *in.ImagePublicID
	}

	if err := s.idp.UpdateMetadata(ctx, target.IdentityID, string(target.Role), target.Department); err != nil {
		s.log.Warn().Err(err).Str("user", target.ID).Msg("identity metadata update failed")
	}
	return s.repo.Update(ctx, target)
}

// Delete removes the local row and enqueues provider/image cleanup.
// Cleanup failures never fail the deletion.
func (s *Service) Delete(ctx context.Context, target User) error {
	if err := s.repo.Delete(ctx, target.ID); err != nil {
		return err
	}
	s.enqueueCleanup(ctx, target.IdentityID, target.ImagePublicID)
	s.log.Info().Str("user", target.ID).Msg("user deleted")
	return nil
}

func (s *Service) enqueueCleanup(ctx context.Context, identityID, imagePublicID string) {
	if identityID != "" {
		if err := s.q.Publish(ctx, queue.NewCleanup(queue.TypeDeleteIdentity, identityID)); err != nil {
			s.log.Warn().Err(err).Str("ref", identityID).Msg("identity cleanup enqueue failed")
		}
	}
	if imagePublicID != "" {
		if err := s.q.Publish(ctx, queue.NewCleanup(queue.TypeDeleteImage, imagePublicID)); err != nil {
			s.log.Warn().Err(err).Str("ref", imagePublicID).Msg("image cleanup enqueue failed")
		}
	}
}

// Sync mirrors the provider account behind claims into the users table
// if it is not there yet and returns the local record.
func (s *Service) Sync(ctx context.Context, account identity.Account) (User, error) {
	existing, err := s.repo.GetByIdentityID(ctx, account.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	role, ok := authz.ParseRole(account.Role)
	if !ok {
		role = authz.RoleStudent
	}
	u := User{
		IdentityID: account.ID,
		Name:       account.Name,
		Email:      strings.ToLower(account.Email),
		Role:       role,
		Department: strings.ToLower(account.Department),
		ImageURL:   account.ImageURL,
	}
	created, err := s.repo.Insert(ctx, u)
	if err != nil {
		return User{}, err
	}
	s.log.Info().Str("user", created.ID).Msg("user synced from identity provider")
	return created, nil
}
