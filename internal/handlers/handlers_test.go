package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/internal/services"
	"github.com/techmaa/portal/internal/store/storetest"
	"golang.org/x/crypto/bcrypt"
)

type outbox struct {
	mu    sync.Mutex
	to    []string
	codes []string
}

func (o *outbox) Send(_ context.Context, to, _, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.to = append(o.to, to)
	for _, field := range strings.Fields(body) {
		field = strings.TrimSuffix(field, ".")
		if len(field) == 6 && strings.Trim(field, "0123456789") == "" {
			o.codes = append(o.codes, field)
		}
	}
	return nil
}

func (o *outbox) lastCode(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.codes) == 0 {
		t.Fatalf("no code sent")
	}
	return o.codes[len(o.codes)-1]
}

type testAPI struct {
	router http.Handler
	store  *storetest.Store
	tokens *auth.TokenService
	outbox *outbox
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	st := storetest.New()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens := auth.NewTokenService("handler-secret", time.Hour)
	otp := auth.NewOTPStore(auth.NewMemoryCache(), auth.DefaultOTPTTL)
	box := &outbox{}

	authService := services.NewAuthService(st.Users(), hasher, tokens, otp, box)
	adminService := services.NewAdminService(st.Users(), st.Admins(), st.Students(), hasher, services.NewExporter(nil))
	staffService := services.NewStaffService(st.Users(), st.Staff(), st.Students(), st.Courses(), hasher)
	studentService := services.NewStudentService(st.Users(), st.Students(), st.Courses(), hasher)
	courseService := services.NewCourseService(st.Courses())

	r := chi.NewRouter()
	r.Get("/healthz", Healthz)
	r.Route("/auth", func(r chi.Router) {
		AuthRouter(r, NewAuthHandler(authService, adminService, staffService, studentService, tokens))
	})
	r.Route("/admin", func(r chi.Router) {
		AdminRouter(r, NewAdminHandler(adminService, staffService, studentService, courseService), tokens)
	})
	r.Route("/staff", func(r chi.Router) {
		StaffRouter(r, NewStaffHandler(staffService), tokens)
	})
	r.Route("/student", func(r chi.Router) {
		StudentRouter(r, NewStudentHandler(studentService), tokens)
	})

	return &testAPI{router: r, store: st, tokens: tokens, outbox: box}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// login signs in by email and returns the session cookie.
func (a *testAPI) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/login/password", map[string]string{
		"email": email, "password": password,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.TokenCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", auth.TokenCookieName)
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body = %s", rec.Code, want, rec.Body.String())
	}
}

func registerStudentAccount(t *testing.T, a *testAPI, email, password string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/register-student", map[string]any{
		"email":      email,
		"name":       "Student " + email,
		"password":   password,
		"department": "CS",
	}, nil)
	wantStatus(t, rec, http.StatusCreated)
}
