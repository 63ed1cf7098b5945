package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rollbook/internal/attendance"
	"rollbook/internal/auth"
	"rollbook/internal/authz"
)

func (s *Server) markRecords(c *gin.Context) {
	if !s.canManageSessions(c) {
		return
	}
	var in attendance.MarkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	if _, ok := uuidID(c, in.SessionID); !ok {
		return
	}
	for _, entry := range in.Records {
		if _, ok := uuidID(c, entry.StudentID); !ok {
			return
		}
	}
	count, err := s.deps.Attendance.Mark(c.Request.Context(), in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	recordsMarked.Add(float64(count))
	c.JSON(http.StatusOK, gin.H{"message": "attendance marked", "count": count})
}

func (s *Server) recordsByStudent(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := principalID(c, c.Param("studentId"))
	if !ok {
		return
	}
	st, err := s.deps.Students.Resolve(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if !isSelf(actor, st) && !authz.CanManageSessions(actor) {
		forbidden(c)
		return
	}
	from, ok := dateQuery(c, "startDate")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "endDate")
	if !ok {
		return
	}
	recs, err := s.deps.Attendance.StudentHistory(c.Request.Context(), st.ID, from, to)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) recordsBySession(c *gin.Context) {
	if !s.canManageSessions(c) {
		return
	}
	id, ok := uuidID(c, c.Param("sessionId"))
	if !ok {
		return
	}
	recs, err := s.deps.Attendance.SessionRecords(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

type updateRecordRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	StudentID string `json:"studentId" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

func (s *Server) updateRecord(c *gin.Context) {
	if !s.canManageSessions(c) {
		return
	}
	var req updateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	if _, ok := uuidID(c, req.SessionID); !ok {
		return
	}
	if _, ok := uuidID(c, req.StudentID); !ok {
		return
	}
	rec, err := s.deps.Attendance.UpdateRecord(c.Request.Context(), req.SessionID, req.StudentID, req.Status)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteRecord(c *gin.Context) {
	if !s.canManageSessions(c) {
		return
	}
	id, ok := uuidID(c, c.Param("id"))
	if !ok {
		return
	}
	if err := s.deps.Attendance.DeleteRecord(c.Request.Context(), id); err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "record deleted"})
}
