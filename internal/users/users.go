// Package users mirrors identity-provider accounts for staff, HODs and
// admins into the local database and keeps both sides in sync.
package users

import (
	"errors"
	"time"

	"rollbook/internal/authz"
)

// ErrNotFound is returned when no user matches the given id.
var ErrNotFound = errors.New("user not found")

// User is a mirrored principal record.
type User struct {
	ID            string     `json:"id"`
	IdentityID    string     `json:"identityId"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	Role          authz.Role `json:"role"`
	Department    string     `json:"department,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	ImagePublicID string     `json:"imagePublicId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
