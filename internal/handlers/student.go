package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/internal/services"
	"github.com/techmaa/portal/types"
)

type StudentHandler struct {
	studentService *services.StudentService
}

func NewStudentHandler(studentService *services.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// StudentRouter registers student routes behind authentication and the
// STUDENT role check.
func StudentRouter(r chi.Router, h *StudentHandler, tokens *auth.TokenService) {
	r.Use(Authenticate(tokens), RequireRole(types.RoleStudent))

	r.Get("/profile", h.Profile)
	r.Patch("/profile/update", h.UpdateProfile)
	r.Delete("/delete", h.Delete)
}

func (h *StudentHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	student, err := h.studentService.Profile(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req StudentUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	student, err := h.studentService.Update(r.Context(), id.UserID, services.StudentUpdate{
		Name:         req.Name,
		Address:      req.Address,
		Age:          req.Age,
		Department:   req.Department,
		Gender:       req.Gender,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		CourseID:     req.CourseID,
		Password:     req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.studentService.Delete(r.Context(), id.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "student account deleted"})
}
