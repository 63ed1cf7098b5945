package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rollbook/internal/auth"
	"rollbook/internal/subjects"
)

// subjectWiseStats is the staff view: every cohort student's
// session-by-session history for one subject.
func (s *Server) subjectWiseStats(c *gin.Context) {
	if !s.canManageSessions(c) {
		return
	}
	department, subjectID := strings.ToLower(c.Query("department")), c.Query("subjectId")
	rawSemester := c.Query("semester")
	if department == "" || subjectID == "" || rawSemester == "" {
		fail(c, http.StatusBadRequest, "department, semester and subjectId query parameters required")
		return
	}
	subjectID, ok := uuidID(c, subjectID)
	if !ok {
		return
	}
	semester, err := strconv.Atoi(rawSemester)
	if err != nil {
		fail(c, http.StatusBadRequest, "semester must be a number")
		return
	}
	histories, err := s.deps.Attendance.SubjectHistories(c.Request.Context(), department, semester, subjectID)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, histories)
}

// resolveSelf maps the token to an id the student roster can resolve.
// The token subject is a users-table uuid, which never appears in the
// students table, so the shared provider account id is preferred.
func (s *Server) resolveSelf(c *gin.Context) (string, bool) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	if claims.IdentityID != "" {
		return claims.IdentityID, true
	}
	return claims.Subject, true
}

func (s *Server) mySubjectWiseStats(c *gin.Context) {
	selfID, ok := s.resolveSelf(c)
	if !ok {
		return
	}
	subjectID := c.Query("subjectId")
	if subjectID == "" {
		fail(c, http.StatusBadRequest, "subjectId query parameter required")
		return
	}
	subjectID, ok = uuidID(c, subjectID)
	if !ok {
		return
	}
	st, err := s.deps.Students.Resolve(c.Request.Context(), selfID)
	if err != nil {
		s.failErr(c, err)
		return
	}
	history, err := s.deps.Attendance.MySubjectHistory(c.Request.Context(), st, subjectID)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// mySubjects lists the subjects of the caller's own cohort.
func (s *Server) mySubjects(c *gin.Context) {
	selfID, ok := s.resolveSelf(c)
	if !ok {
		return
	}
	st, err := s.deps.Students.Resolve(c.Request.Context(), selfID)
	if err != nil {
		s.failErr(c, err)
		return
	}
	list, err := s.deps.Subjects.List(c.Request.Context(), st.Department, st.Semester)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if list == nil {
		list = []subjects.Subject{}
	}
	c.JSON(http.StatusOK, list)
}
