package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/internal/directory"
	"github.com/techmaa/portal/internal/services"
	"github.com/techmaa/portal/types"
)

// AdminHandler serves the administrator routes, including the student
// directory and course management.
type AdminHandler struct {
	adminService   *services.AdminService
	staffService   *services.StaffService
	studentService *services.StudentService
	courseService  *services.CourseService
}

func NewAdminHandler(
	adminService *services.AdminService,
	staffService *services.StaffService,
	studentService *services.StudentService,
	courseService *services.CourseService,
) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		staffService:   staffService,
		studentService: studentService,
		courseService:  courseService,
	}
}

// AdminRouter registers admin routes behind authentication and the ADMIN
// role check.
func AdminRouter(r chi.Router, h *AdminHandler, tokens *auth.TokenService) {
	r.Use(Authenticate(tokens), RequireRole(types.RoleAdmin))

	r.Post("/register-student", h.RegisterStudent)
	r.Post("/register-staff", h.RegisterStaff)
	r.Get("/profile", h.Profile)
	r.Patch("/profile/update", h.UpdateProfile)
	r.Delete("/delete", h.Delete)
	r.Get("/students/filter", h.FilterStudents)
	r.Get("/students/filter/export/excel", h.ExportStudents)
	r.Get("/student/{rollNo}", h.StudentByRollNo)
	r.Get("/courses", h.ListCourses)
	r.Post("/courses", h.CreateCourse)
}

func (h *AdminHandler) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	if !h.activeCaller(w, r) {
		return
	}
	registerStudent(w, r, h.studentService)
}

func (h *AdminHandler) RegisterStaff(w http.ResponseWriter, r *http.Request) {
	if !h.activeCaller(w, r) {
		return
	}
	registerStaff(w, r, h.staffService)
}

// activeCaller writes an error and returns false unless the token's admin
// account is still active.
func (h *AdminHandler) activeCaller(w http.ResponseWriter, r *http.Request) bool {
	id, err := identity(r)
	if err == nil {
		_, err = h.adminService.Profile(r.Context(), id.UserID)
	}
	if err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}

func (h *AdminHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	admin, err := h.adminService.Profile(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req AdminUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	admin, err := h.adminService.Update(r.Context(), id.UserID, services.AdminUpdate{
		Name:     req.Name,
		Gender:   req.Gender,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.adminService.Delete(r.Context(), id.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "admin account deleted"})
}

// FilterStudents lists active students matching the query filters.
func (h *AdminHandler) FilterStudents(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	criteria, err := parseCriteria(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	students, err := h.adminService.SearchStudents(r.Context(), id.UserID, criteria)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if students == nil {
		students = []types.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

// ExportStudents streams the filtered directory as an .xlsx attachment.
func (h *AdminHandler) ExportStudents(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	criteria, err := parseCriteria(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	export, err := h.adminService.ExportStudents(r.Context(), id.UserID, criteria)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", services.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	if export.Location != "" {
		w.Header().Set("X-Export-Location", export.Location)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

func (h *AdminHandler) StudentByRollNo(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	student, err := h.adminService.StudentByRollNo(r.Context(), id.UserID, chi.URLParam(r, "rollNo"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *AdminHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	if !h.activeCaller(w, r) {
		return
	}
	courses, err := h.courseService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if courses == nil {
		courses = []types.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *AdminHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	if !h.activeCaller(w, r) {
		return
	}
	var req CourseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	course, err := h.courseService.Create(r.Context(), req.Title, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

// parseCriteria reads the directory filters from the query string.
func parseCriteria(r *http.Request) (directory.Criteria, error) {
	q := r.URL.Query()
	c := directory.Criteria{
		Keyword:    q.Get("keyword"),
		Email:      q.Get("email"),
		Phone:      q.Get("phone"),
		Name:       q.Get("name"),
		CourseName: q.Get("course_name"),
		Department: q.Get("department"),
		Gender:     q.Get("gender"),
		RollNo:     q.Get("roll_no"),
		SortBy:     q.Get("sort_by"),
		SortDir:    q.Get("sort_dir"),
	}

	if raw := strings.TrimSpace(q.Get("marks")); raw != "" {
		marks, err := strconv.ParseFloat(raw, 64)
		if err == nil && marks < 0 {
			return directory.Criteria{}, apperr.Invalid("invalid query parameter", map[string]string{
				"marks": "must be at least 0",
			})
		}
		if err != nil {
			return directory.Criteria{}, apperr.Invalid("invalid query parameter", map[string]string{
				"marks": "must be a number",
			})
		}
		c.Marks = &marks
	}
	return c, nil
}
