// Package httpapi registers the REST surface over the domain services.
package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rollbook/internal/attendance"
	"rollbook/internal/auth"
	"rollbook/internal/cloudinary"
	"rollbook/internal/identity"
	"rollbook/internal/students"
	"rollbook/internal/subjects"
	"rollbook/internal/users"
)

// Deps collects everything the handlers need.
type Deps struct {
	Users      *users.Service
	UsersRepo  *users.Repository
	Students   *students.Service
	Subjects   *subjects.Service
	Attendance *attendance.Service
	Identity   *identity.Client
	CDN        *cloudinary.Client // nil when not configured

	JWTSigningKey string
	JWTIssuer     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	Log zerolog.Logger
}

// Server holds handler state.
type Server struct {
	deps Deps
}

// New creates a server.
func New(deps Deps) *Server {
	return &Server{deps: deps}
}

// Register mounts every route on the engine. Global middleware is the
// caller's concern; everything under /api and /protected requires a
// bearer token.
func (s *Server) Register(r *gin.Engine) {
	r.POST("/api/auth/token", s.exchangeToken)

	authed := r.Group("/", auth.RequireAuth(s.deps.JWTSigningKey, s.deps.JWTIssuer))
	authed.GET("/protected", s.protected)
	authed.POST("/api/uploads", s.uploadImage)

	u := authed.Group("/api/users")
	u.POST("/adduser", s.addUser)
	u.GET("/getusers", s.getUsers)
	u.GET("/getuser/:id", s.getUser)
	u.PUT("/updateuser/:id", s.updateUser)
	u.DELETE("/deleteuser/:id", s.deleteUser)
	u.POST("/sync", s.syncUser)

	st := authed.Group("/api/students")
	st.POST("/addstudent", s.addStudent)
	st.GET("/getstudents", s.getStudents)
	st.GET("/getstudent/:id", s.getStudent)
	st.PUT("/updatestudent/:id", s.updateStudent)
	st.DELETE("/deletestudent/:id", s.deleteStudent)
	st.GET("/search", s.searchStudents)
	st.GET("/student-history", s.studentHistory)
	st.POST("/bulk-add", s.bulkAddStudents)

	sub := authed.Group("/api/subjects")
	sub.POST("/addsubject", s.addSubject)
	sub.GET("/getsubjects", s.getSubjects)
	sub.GET("/getsubject/:id", s.getSubject)
	sub.PUT("/updatesubject/:id", s.updateSubject)
	sub.DELETE("/deletesubject/:id", s.deleteSubject)

	sess := authed.Group("/api/attendance/sessions")
	sess.POST("", s.createSession)
	sess.GET("", s.listSessions)
	sess.GET("/:id", s.getSession)
	sess.PUT("/:id", s.updateSession)
	sess.DELETE("/:id", s.deleteSession)

	rec := authed.Group("/api/attendance/records")
	rec.POST("", s.markRecords)
	rec.GET("/student/:studentId", s.recordsByStudent)
	rec.GET("/session/:sessionId", s.recordsBySession)
	rec.PUT("", s.updateRecord)
	rec.DELETE("/:id", s.deleteRecord)

	rep := authed.Group("/api/attendance/reports")
	rep.GET("/student-subject", s.studentSubjectReport)
	rep.GET("/class-subject", s.classSubjectReport)
	rep.GET("/student-overall", s.studentOverallReport)

	stats := authed.Group("/api/statistics")
	stats.GET("/subject-wise", s.subjectWiseStats)
	stats.GET("/my-subject-wise", s.mySubjectWiseStats)
	stats.GET("/my-subjects", s.mySubjects)
}
