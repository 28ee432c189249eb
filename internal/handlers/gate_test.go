package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/types"
)

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/admin/profile", "/staff/profile", "/student/profile", "/admin/students/filter"} {
		rec := api.do(t, http.MethodGet, path, nil, nil)
		wantStatus(t, rec, http.StatusUnauthorized)

		var body ErrorResponse
		decodeBody(t, rec, &body)
		if body.Data.Status != http.StatusUnauthorized || body.Data.Path != path {
			t.Fatalf("%s: error data = %+v", path, body.Data)
		}
	}
}

func TestGarbageTokenIsUnauthorized(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/student/profile", nil, &http.Cookie{Name: auth.TokenCookieName, Value: "not.a.jwt"})
	wantStatus(t, rec, http.StatusUnauthorized)
}

func TestExpiredTokenIsUnauthorized(t *testing.T) {
	api := newTestAPI(t)
	registerStudentAccount(t, api, "late@example.com", "pw")
	user, err := api.store.Users().GetActiveByEmail(t.Context(), "late@example.com")
	if err != nil {
		t.Fatalf("GetActiveByEmail() error = %v", err)
	}

	past := api.tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	token, err := past.Issue(user.ID, types.RoleStudent)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	rec := api.do(t, http.MethodGet, "/student/profile", nil, &http.Cookie{Name: auth.TokenCookieName, Value: token})
	wantStatus(t, rec, http.StatusUnauthorized)
}

func TestRoleMismatchIsForbidden(t *testing.T) {
	api := newTestAPI(t)
	registerStudentAccount(t, api, "s@example.com", "pw")
	cookie := api.login(t, "s@example.com", "pw")

	for _, path := range []string{"/admin/profile", "/staff/profile"} {
		rec := api.do(t, http.MethodGet, path, nil, cookie)
		wantStatus(t, rec, http.StatusForbidden)
	}
	rec := api.do(t, http.MethodGet, "/student/profile", nil, cookie)
	wantStatus(t, rec, http.StatusOK)
}

func TestBearerHeaderAccepted(t *testing.T) {
	api := newTestAPI(t)
	registerStudentAccount(t, api, "b@example.com", "pw")
	cookie := api.login(t, "b@example.com", "pw")

	req := httptest.NewRequest(http.MethodGet, "/student/profile", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	wantStatus(t, rec, http.StatusOK)
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	h := RequireRole(types.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler reached without identity")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/profile", nil))
	wantStatus(t, rec, http.StatusUnauthorized)
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	writeError(rec, req, apperr.Internal("failed to load account", errors.New("pq: password authentication failed")))

	wantStatus(t, rec, http.StatusInternalServerError)
	if strings.Contains(rec.Body.String(), "pq:") {
		t.Fatalf("body leaks cause: %s", rec.Body.String())
	}
}

func TestWriteErrorWrapsPlainErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("boom"))
	wantStatus(t, rec, http.StatusInternalServerError)
}
