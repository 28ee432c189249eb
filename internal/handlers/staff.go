package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/internal/services"
	"github.com/techmaa/portal/types"
)

type StaffHandler struct {
	staffService *services.StaffService
}

func NewStaffHandler(staffService *services.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// StaffRouter registers staff routes behind authentication and the STAFF
// role check.
func StaffRouter(r chi.Router, h *StaffHandler, tokens *auth.TokenService) {
	r.Use(Authenticate(tokens), RequireRole(types.RoleStaff))

	r.Get("/profile", h.Profile)
	r.Patch("/profile/update", h.UpdateProfile)
	r.Delete("/delete", h.Delete)
	r.Patch("/student/{rollNo}/marks", h.RecordMarks)
}

func (h *StaffHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	staff, err := h.staffService.Profile(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

func (h *StaffHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req StaffUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	staff, err := h.staffService.Update(r.Context(), id.UserID, services.StaffUpdate{
		Name:       req.Name,
		Address:    req.Address,
		Age:        req.Age,
		Department: req.Department,
		StaffRole:  req.StaffRole,
		Gender:     req.Gender,
		CourseID:   req.CourseID,
		Password:   req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.staffService.Delete(r.Context(), id.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "staff account deleted"})
}

// RecordMarks sets the marks of the student identified by roll number.
func (h *StaffHandler) RecordMarks(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req MarksRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	student, err := h.staffService.RecordMarks(r.Context(), id.UserID, chi.URLParam(r, "rollNo"), *req.Marks)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}
