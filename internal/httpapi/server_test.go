package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rollbook/internal/attendance"
	"rollbook/internal/auth"
	"rollbook/internal/subjects"
	"rollbook/internal/users"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "rollbook"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	srv := New(Deps{
		JWTSigningKey: testKey,
		JWTIssuer:     testIssuer,
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Log:           zerolog.Nop(),
	})
	srv.Register(r)
	return r
}

func bearer(t *testing.T, userID, role, dept string) string {
	t.Helper()
	pair, err := auth.Issue(userID, role, dept, "user_abc", testIssuer, testKey, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + pair.AccessToken
}

func TestRoutesRequireAuth(t *testing.T) {
	r := testRouter(t)
	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/protected"},
		{http.MethodGet, "/api/users/getusers"},
		{http.MethodGet, "/api/students/getstudents"},
		{http.MethodGet, "/api/subjects/getsubjects"},
		{http.MethodGet, "/api/attendance/sessions"},
		{http.MethodGet, "/api/statistics/my-subjects"},
	}
	for _, p := range paths {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status %d, want 401", p.method, p.path, w.Code)
		}
	}
}

func TestProtectedEchoesPrincipal(t *testing.T) {
	r := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", bearer(t, "u1", "staff", "cs"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"userId":"u1"`) {
		t.Errorf("body %s missing principal", w.Body.String())
	}
}

func TestSessionWritesForbiddenForStudents(t *testing.T) {
	r := testRouter(t)
	body := strings.NewReader(`{"date":"2026-08-20","timeSlot":"09:00-10:00","subjectId":"x","lecturerId":"y","semester":5,"department":"cs","batch":"both"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/attendance/sessions", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "u1", "student", "cs"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("student creating session: status %d, want 403", w.Code)
	}
}

func TestStudentListForbiddenForStaff(t *testing.T) {
	r := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/students/getstudents", nil)
	req.Header.Set("Authorization", bearer(t, "u1", "staff", "cs"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("staff listing students: status %d, want 403", w.Code)
	}
}

func TestSubjectWritesForbiddenForStaff(t *testing.T) {
	r := testRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/subjects/addsubject",
		strings.NewReader(`{"code":"CS1","name":"Intro","semester":1,"departments":["CS"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "u1", "staff", "cs"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("staff adding subject: status %d, want 403", w.Code)
	}
}

func TestFailErrMapping(t *testing.T) {
	srv := New(Deps{Log: zerolog.Nop()})
	cases := []struct {
		err  error
		want int
	}{
		{attendance.ErrDuplicateSession, http.StatusBadRequest},
		{attendance.ErrBadStatus, http.StatusBadRequest},
		{users.ErrSelfDelete, http.StatusBadRequest},
		{subjects.ErrDuplicateCode, http.StatusBadRequest},
		{users.ErrNotFound, http.StatusNotFound},
		{attendance.ErrSessionNotFound, http.StatusNotFound},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
		srv.failErr(c, tc.err)
		if w.Code != tc.want {
			t.Errorf("failErr(%v) = %d, want %d", tc.err, w.Code, tc.want)
		}
	}
}

func TestReportWindowMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/r?month=3", nil)
	from, to, ok := reportWindow(c)
	if !ok || from == nil || to == nil {
		t.Fatalf("month window not resolved: %v %v %v", from, to, ok)
	}
	if from.Month() != time.March || to.Month() != time.March {
		t.Errorf("window = %v..%v, want March", from, to)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/r?month=13", nil)
	if _, _, ok := reportWindow(c); ok {
		t.Error("month=13 accepted")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("month=13 status %d, want 400", w.Code)
	}

	// Explicit dates win over month.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/r?month=3&startDate=2026-01-05", nil)
	from, to, ok = reportWindow(c)
	if !ok || from == nil || to != nil {
		t.Fatalf("explicit window not honored: %v %v %v", from, to, ok)
	}
	if from.Month() != time.January {
		t.Errorf("from = %v, want January", from)
	}
}
