package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rollbook/internal/auth"
	"rollbook/internal/authz"
	"rollbook/internal/subjects"
)

func (s *Server) canEditSubjects(c *gin.Context) bool {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return false
	}
	if actor.Role != authz.RoleAdmin && actor.Role != authz.RoleHOD {
		forbidden(c)
		return false
	}
	return true
}

func (s *Server) addSubject(c *gin.Context) {
	if !s.canEditSubjects(c) {
		return
	}
	var in subjects.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	created, err := s.deps.Subjects.Create(c.Request.Context(), in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getSubjects(c *gin.Context) {
	semester := 0
	if v := c.Query("semester"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			fail(c, http.StatusBadRequest, "semester must be a number")
			return
		}
		semester = parsed
	}
	list, err := s.deps.Subjects.List(c.Request.Context(), c.Query("department"), semester)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if list == nil {
		list = []subjects.Subject{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getSubject(c *gin.Context) {
	id, ok := uuidID(c, c.Param("id"))
	if !ok {
		return
	}
	subject, err := s.deps.Subjects.Get(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, subject)
}

func (s *Server) updateSubject(c *gin.Context) {
	if !s.canEditSubjects(c) {
		return
	}
	id, ok := uuidID(c, c.Param("id"))
	if !ok {
		return
	}
	var in subjects.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	updated, err := s.deps.Subjects.Update(c.Request.Context(), id, in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteSubject(c *gin.Context) {
	if !s.canEditSubjects(c) {
		return
	}
	id, ok := uuidID(c, c.Param("id"))
	if !ok {
		return
	}
	if err := s.deps.Subjects.Delete(c.Request.Context(), id); err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subject deleted"})
}
