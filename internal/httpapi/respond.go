package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rollbook/internal/attendance"
	"rollbook/internal/authz"
	"rollbook/internal/identity"
	"rollbook/internal/students"
	"rollbook/internal/subjects"
	"rollbook/internal/users"
)

var badRequestErrs = []error{
	users.ErrBadRole,
	users.ErrBadDepartment,
	users.ErrSelfDelete,
	students.ErrBadBatch,
	students.ErrBadDepartment,
	students.ErrBadSemester,
	subjects.ErrDuplicateCode,
	subjects.ErrBadSemester,
	attendance.ErrDuplicateSession,
	attendance.ErrBadDate,
	attendance.ErrBadBatch,
	attendance.ErrBadDepartment,
	attendance.ErrBadStatus,
	attendance.ErrNoRecords,
}

var notFoundErrs = []error{
	users.ErrNotFound,
	students.ErrNotFound,
	subjects.ErrNotFound,
	attendance.ErrSessionNotFound,
	attendance.ErrRecordNotFound,
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func failBinding(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
}

func forbidden(c *gin.Context) {
	fail(c, http.StatusForbidden, "not authorized for this action")
}

// failErr maps domain sentinel errors to their status. Anything
// unrecognized is a 500 with the detail kept out of the body.
func (s *Server) failErr(c *gin.Context, err error) {
	for _, known := range badRequestErrs {
		if errors.Is(err, known) {
			fail(c, http.StatusBadRequest, known.Error())
			return
		}
	}
	for _, known := range notFoundErrs {
		if errors.Is(err, known) {
			fail(c, http.StatusNotFound, known.Error())
			return
		}
	}
	s.deps.Log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	fail(c, http.StatusInternalServerError, "Internal Server Error")
}

// isSelf reports whether the resolved student row belongs to the
// caller. Token subjects are users-table uuids while student rows
// carry their own, so self access matches on the shared provider
// account id.
func isSelf(actor authz.Actor, st students.Student) bool {
	if actor.IdentityID != "" && actor.IdentityID == st.IdentityID {
		return true
	}
	return actor.ID == st.ID
}

// uuidID accepts a well-formed internal uuid, failing the request
// with a 400 otherwise. Postgres would reject the value anyway; this
// keeps the syntax error out of the 500 class.
func uuidID(c *gin.Context, raw string) (string, bool) {
	if _, err := uuid.Parse(raw); err != nil {
		fail(c, http.StatusBadRequest, "malformed id")
		return "", false
	}
	return raw, true
}

// principalID accepts an internal uuid or a provider account id, for
// the routes that resolve either.
func principalID(c *gin.Context, raw string) (string, bool) {
	if identity.IsProviderID(raw) {
		return raw, true
	}
	return uuidID(c, raw)
}

// dateQuery parses an optional YYYY-MM-DD query parameter. The bool is
// false when the value is present but malformed; a 400 has then been
// written already.
func dateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(attendance.DateLayout, raw)
	if err != nil {
		fail(c, http.StatusBadRequest, name+" must be YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
