package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rollbook/internal/attendance"
	"rollbook/internal/auth"
	"rollbook/internal/authz"
)

func (s *Server) canManageSessions(c *gin.Context) bool {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return false
	}
	if !authz.CanManageSessions(actor) {
		forbidden(c)
		return false
	}
	return true
}

func (s *Server) createSession(c *gin.Context) {
	if !s.canManageSessions(c) {
		return
	}
	var in attendance.CreateSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	if _, ok := uuidID(c, in.SubjectID); !ok {
		return
	}
	if _, ok := uuidID(c, in.LecturerID); !ok {
		return
	}
	created, err := s.deps.Attendance.CreateSession(c.Request.Context(), in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) listSessions(c *gin.Context) {
	var f attendance.SessionFilter
	date, ok := dateQuery(c, "date")
	if !ok {
		return
	}
	f.Date = date
	from, ok := dateQuery(c, "startDate")
	if !ok {
		return
	}
	f.From = from
	to, ok := dateQuery(c, "endDate")
	if !ok {
		return
	}
	f.To = to
	if v := c.Query("subjectId"); v != "" {
		if f.SubjectID, ok = uuidID(c, v); !ok {
			return
		}
	}
	if v := c.Query("lecturerId"); v != "" {
		if f.LecturerID, ok = uuidID(c, v); !ok {
			return
		}
	}
	f.Department = strings.ToLower(c.Query("department"))
	if v := c.Query("semester"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			fail(c, http.StatusBadRequest, "semester must be a number")
			return
		}
		f.Semester = parsed
	}

	sessions, err := s.deps.Attendance.ListSessions(c.Request.Context(), f)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if sessions == nil {
		sessions = []attendance.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) getSession(c *gin.Context) {
	id, ok := uuidID(c, c.Param("id"))
	if !ok {
		return
	}
	detail, err := s.deps.Attendance.GetSessionDetail(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) updateSession(c *gin.Context) {
	if !s.canManageSessions(c) {
		return
	}
	id, ok := uuidID(c, c.Param("id"))
	if !ok {
		return
	}
	var in attendance.CreateSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	if _, ok := uuidID(c, in.SubjectID); !ok {
		return
	}
	if _, ok := uuidID(c, in.LecturerID); !ok {
		return
	}
	updated, err := s.deps.Attendance.UpdateSession(c.Request.Context(), id, in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteSession(c *gin.Context) {
	if !s.canManageSessions(c) {
		return
	}
	id, ok := uuidID(c, c.Param("id"))
	if !ok {
		return
	}
	if err := s.deps.Attendance.DeleteSession(c.Request.Context(), id); err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session and its records deleted"})
}
