package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rollbook/internal/auth"
	"rollbook/internal/authz"
	"rollbook/internal/students"
)

func TestIsSelfMatchesOnProviderAccount(t *testing.T) {
	// Token subjects are users-table uuids; student rows have their
	// own. The shared provider account id is what ties them together.
	st := students.Student{ID: "st-uuid", IdentityID: "user_77"}
	cases := []struct {
		name  string
		actor authz.Actor
		want  bool
	}{
		{"provider id match", authz.Actor{ID: "usr-uuid", IdentityID: "user_77", Role: authz.RoleStudent}, true},
		{"internal id match", authz.Actor{ID: "st-uuid", Role: authz.RoleStudent}, true},
		{"different principal", authz.Actor{ID: "usr-other", IdentityID: "user_99", Role: authz.RoleStudent}, false},
		{"no identity, different id", authz.Actor{ID: "usr-other", Role: authz.RoleStudent}, false},
	}
	for _, c := range cases {
		if got := isSelf(c.actor, st); got != c.want {
			t.Errorf("%s: isSelf = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestResolveSelfUsesProviderAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(Deps{JWTSigningKey: testKey, JWTIssuer: testIssuer, Log: zerolog.Nop()})
	r := gin.New()
	r.GET("/whoami", auth.RequireAuth(testKey, testIssuer), func(c *gin.Context) {
		id, ok := srv.resolveSelf(c)
		if !ok {
			return
		}
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", bearer(t, "users-table-uuid", "student", "cs"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	// bearer signs with provider account user_abc; the roster can only
	// resolve that, never the users-table uuid.
	if w.Body.String() != "user_abc" {
		t.Errorf("resolveSelf = %q, want user_abc", w.Body.String())
	}
}

func TestActorCarriesProviderAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/actor", auth.RequireAuth(testKey, testIssuer), func(c *gin.Context) {
		actor, ok := auth.ActorFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, actor.IdentityID)
	})

	req := httptest.NewRequest(http.MethodGet, "/actor", nil)
	req.Header.Set("Authorization", bearer(t, "u1", "student", "cs"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "user_abc" {
		t.Errorf("actor identity = %q, want user_abc", w.Body.String())
	}
}

func TestBulkAddRejectsForeignDepartmentRow(t *testing.T) {
	r := testRouter(t)
	body := `[{"registerNumber":"R001","name":"Anu","email":"anu@college.edu","department":"me","semester":5,"batch":"b1"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/students/bulk-add", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "hod1", "hod", "cs"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("cs hod bulk-adding into me: status %d, want 403", w.Code)
	}
}

func TestMalformedIDsRejected(t *testing.T) {
	r := testRouter(t)
	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/attendance/sessions/abc"},
		{http.MethodDelete, "/api/attendance/records/abc"},
		{http.MethodGet, "/api/attendance/records/session/abc"},
		{http.MethodGet, "/api/subjects/getsubject/abc"},
		{http.MethodGet, "/api/users/getuser/abc"},
		{http.MethodGet, "/api/attendance/reports/class-subject?subjectId=abc"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		req.Header.Set("Authorization", bearer(t, "u1", "staff", "cs"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s %s: status %d, want 400", p.method, p.path, w.Code)
		}
	}
}
