package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rollbook/internal/auth"
	"rollbook/internal/authz"
	"rollbook/internal/students"
)

func (s *Server) addStudent(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	var in students.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	if !authz.CanWriteStudents(actor, in.Department) {
		forbidden(c)
		return
	}
	created, err := s.deps.Students.Create(c.Request.Context(), in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getStudents(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	scope, ok := authz.ReadScopeForStudents(actor)
	if !ok {
		forbidden(c)
		return
	}
	list, err := s.deps.Students.List(c.Request.Context(), scope)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if list == nil {
		list = []students.Student{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getStudent(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := principalID(c, c.Param("id"))
	if !ok {
		return
	}
	st, err := s.deps.Students.Resolve(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if !isSelf(actor, st) && !authz.CanReadStudents(actor, st.Department) {
		forbidden(c)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) updateStudent(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := principalID(c, c.Param("id"))
	if !ok {
		return
	}
	target, err := s.deps.Students.Resolve(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if !authz.CanWriteStudents(actor, target.Department) {
		forbidden(c)
		return
	}
	var in students.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	if in.Department != nil && !authz.CanWriteStudents(actor, *in.Department) {
		forbidden(c)
		return
	}
	updated, err := s.deps.Students.Update(c.Request.Context(), target, in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteStudent(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := principalID(c, c.Param("id"))
	if !ok {
		return
	}
	target, err := s.deps.Students.Resolve(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if !authz.CanWriteStudents(actor, target.Department) {
		forbidden(c)
		return
	}
	if err := s.deps.Students.Delete(c.Request.Context(), target); err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student deleted"})
}

// searchStudents matches register numbers by substring. A missing or
// empty query yields an empty list, not an error.
func (s *Server) searchStudents(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	scope, ok := authz.ReadScopeForStudents(actor)
	if !ok {
		forbidden(c)
		return
	}
	found, err := s.deps.Students.Search(c.Request.Context(), c.Query("registerNumber"))
	if err != nil {
		s.failErr(c, err)
		return
	}
	if !scope.All {
		visible := make([]students.Student, 0, len(found))
		for _, st := range found {
			if strings.EqualFold(st.Department, scope.Department) {
				visible = append(visible, st)
			}
		}
		found = visible
	}
	c.JSON(http.StatusOK, found)
}

// studentHistory returns a student's records joined with their
// sessions, newest first. Students may read their own history.
func (s *Server) studentHistory(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id := c.Query("studentId")
	if id == "" {
		fail(c, http.StatusBadRequest, "studentId query parameter required")
		return
	}
	id, ok = principalID(c, id)
	if !ok {
		return
	}
	st, err := s.deps.Students.Resolve(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if !isSelf(actor, st) && !authz.CanReadStudents(actor, st.Department) {
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
	history, err := s.deps.Attendance.StudentHistory(c.Request.Context(), st.ID, from, to)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": st, "records": history})
}

// bulkAddStudents accepts either a JSON array of students or a
// multipart form with an .xlsx file. Each row succeeds or fails on its
// own and the whole batch reports per-row results.
func (s *Server) bulkAddStudents(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	if !authz.CanWriteStudents(actor, actor.Department) {
		forbidden(c)
		return
	}

	var rows []students.CreateInput
	if strings.Contains(c.ContentType(), "multipart/form-data") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			fail(c, http.StatusBadRequest, "file field required")
			return
		}
		defer file.Close()
		rows, err = s.deps.Students.ParseXLSX(file)
		if err != nil {
			fail(c, http.StatusBadRequest, "could not read spreadsheet")
			return
		}
	} else {
		if err := c.ShouldBindJSON(&rows); err != nil {
			failBinding(c, err)
			return
		}
	}
	if len(rows) == 0 {
		fail(c, http.StatusBadRequest, "at least one student required")
		return
	}
	// The batch gate above only checks the caller's own department;
	// each row still has to land somewhere the caller may write.
	for _, row := range rows {
		if !authz.CanWriteStudents(actor, row.Department) {
			forbidden(c)
			return
		}
	}
	results := s.deps.Students.BulkAdd(c.Request.Context(), rows)

	imported := 0
	for _, row := range results {
		if row.OK {
			imported++
		}
	}
	studentsImported.Add(float64(imported))
	c.JSON(http.StatusOK, gin.H{"results": results, "imported": imported, "total": len(results)})
}
