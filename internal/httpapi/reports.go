package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"rollbook/internal/attendance"
	"rollbook/internal/auth"
	"rollbook/internal/authz"
)

// reportWindow resolves the optional date window: an explicit
// startDate/endDate pair wins, otherwise month=N selects the Nth month
// of the current year.
func reportWindow(c *gin.Context) (from, to *time.Time, ok bool) {
	from, ok = dateQuery(c, "startDate")
	if !ok {
		return nil, nil, false
	}
	to, ok = dateQuery(c, "endDate")
	if !ok {
		return nil, nil, false
	}
	if from != nil || to != nil {
		return from, to, true
	}
	if v := c.Query("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			fail(c, http.StatusBadRequest, "month must be between 1 and 12")
			return nil, nil, false
		}
		first, last := attendance.MonthWindow(month, 0)
		return &first, &last, true
	}
	return nil, nil, true
}

func (s *Server) studentSubjectReport(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	studentID, subjectID := c.Query("studentId"), c.Query("subjectId")
	if studentID == "" || subjectID == "" {
		fail(c, http.StatusBadRequest, "studentId and subjectId query parameters required")
		return
	}
	if studentID, ok = principalID(c, studentID); !ok {
		return
	}
	if subjectID, ok = uuidID(c, subjectID); !ok {
		return
	}
	st, err := s.deps.Students.Resolve(c.Request.Context(), studentID)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if !isSelf(actor, st) && !authz.CanManageSessions(actor) {
		forbidden(c)
		return
	}
	from, to, ok := reportWindow(c)
	if !ok {
		return
	}
	report, err := s.deps.Attendance.StudentSubjectReport(c.Request.Context(), st, subjectID, from, to)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) classSubjectReport(c *gin.Context) {
	if !s.canManageSessions(c) {
		return
	}
	var f attendance.SessionFilter
	if v := c.Query("subjectId"); v != "" {
		id, ok := uuidID(c, v)
		if !ok {
			return
		}
		f.SubjectID = id
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
	from, to, ok := reportWindow(c)
	if !ok {
		return
	}
	f.From, f.To = from, to

	reports, err := s.deps.Attendance.ClassSubjectReport(c.Request.Context(), f)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (s *Server) studentOverallReport(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	studentID := c.Query("studentId")
	if studentID == "" {
		fail(c, http.StatusBadRequest, "studentId query parameter required")
		return
	}
	if studentID, ok = principalID(c, studentID); !ok {
		return
	}
	st, err := s.deps.Students.Resolve(c.Request.Context(), studentID)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if !isSelf(actor, st) && !authz.CanManageSessions(actor) {
		forbidden(c)
		return
	}
	from, to, ok := reportWindow(c)
	if !ok {
		return
	}
	report, err := s.deps.Attendance.OverallStudentReport(c.Request.Context(), st, from, to)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": st, "subjects": report})
}
