package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/internal/services"
)

// AuthHandler provides the public registration, login and logout endpoints.
type AuthHandler struct {
	authService    *services.AuthService
	adminService   *services.AdminService
	staffService   *services.StaffService
	studentService *services.StudentService
	tokens         *auth.TokenService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(
	authService *services.AuthService,
	adminService *services.AdminService,
	staffService *services.StaffService,
	studentService *services.StudentService,
	tokens *auth.TokenService,
) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		adminService:   adminService,
		staffService:   staffService,
		studentService: studentService,
		tokens:         tokens,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, h *AuthHandler) {
	r.Post("/register-admin", h.RegisterAdmin)
	r.Post("/register-staff", h.RegisterStaff)
	r.Post("/register-student", h.RegisterStudent)
	r.Post("/login/password", h.LoginPassword)
	r.Post("/login/generate-otp", h.GenerateOTP)
	r.Post("/login/verify-otp", h.VerifyOTP)
	r.Post("/logout-user", h.Logout)
}

func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req RegisterAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	admin, err := h.adminService.Register(r.Context(), services.RegisterAdminInput{
		Credentials: req.credentials(),
		Gender:      req.Gender,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func (h *AuthHandler) RegisterStaff(w http.ResponseWriter, r *http.Request) {
	registerStaff(w, r, h.staffService)
}

func (h *AuthHandler) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	registerStudent(w, r, h.studentService)
}

// LoginPassword authenticates by email (preferred) or phone and sets the
// session cookie.
func (h *AuthHandler) LoginPassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Phone, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeSession(w, result)
}

// GenerateOTP sends a fresh login code to the account's email address.
func (h *AuthHandler) GenerateOTP(w http.ResponseWriter, r *http.Request) {
	var req GenerateOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.authService.RequestOTP(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "OTP sent to " + req.Email})
}

// VerifyOTP exchanges a valid login code for a session.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.authService.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeSession(w, result)
}

// Logout clears the session cookie. Issued tokens stay valid until expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.tokens.ExpiredCookie())
	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, result services.LoginResult) {
	http.SetCookie(w, h.tokens.Cookie(result.Token))
	writeJSON(w, http.StatusOK, AuthResponse{Token: result.Token, User: result.User})
}

func registerStaff(w http.ResponseWriter, r *http.Request, svc *services.StaffService) {
	var req RegisterStaffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	staff, err := svc.Register(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, staff)
}

func registerStudent(w http.ResponseWriter, r *http.Request, svc *services.StudentService) {
	var req RegisterStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	student, err := svc.Register(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, student)
}
