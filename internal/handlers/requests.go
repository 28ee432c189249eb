package handlers

import (
	"github.com/techmaa/portal/internal/services"
	"github.com/techmaa/portal/types"
)

type credentialFields struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,mobile"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

func (c credentialFields) credentials() services.Credentials {
	return services.Credentials{Email: c.Email, Phone: c.Phone, Name: c.Name, Password: c.Password}
}

// RegisterAdminRequest is the body of POST /auth/register-admin.
type RegisterAdminRequest struct {
	credentialFields
	Gender types.Gender `json:"gender"`
}

// RegisterStaffRequest is the body of the staff registration routes.
type RegisterStaffRequest struct {
	credentialFields
	Department types.Department `json:"department"`
	StaffRole  types.StaffRole  `json:"staff_role"`
	Address    string           `json:"address" validate:"max=255"`
	Age        *int             `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender     types.Gender     `json:"gender"`
	CourseID   int64            `json:"course_id" validate:"gte=0"`
}

// RegisterStudentRequest is the body of the student registration routes.
type RegisterStudentRequest struct {
	credentialFields
	Department   types.Department `json:"department"`
	Address      string           `json:"address" validate:"max=255"`
	Age          *int             `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender       types.Gender     `json:"gender"`
	AcademicYear *int             `json:"academic_year" validate:"omitempty,gte=1"`
	Semester     *int             `json:"semester" validate:"omitempty,gte=1"`
	CourseID     int64            `json:"course_id" validate:"gte=0"`
}

// PasswordLoginRequest authenticates by email or phone plus password.
type PasswordLoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required"`
}

// GenerateOTPRequest asks for a login code to be sent to Email.
type GenerateOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest exchanges a login code for a session.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type AdminUpdateRequest struct {
	Name     *string       `json:"name" validate:"omitempty,max=100"`
	Gender   *types.Gender `json:"gender"`
	Password *string       `json:"password"`
}

type StaffUpdateRequest struct {
	Name       *string           `json:"name" validate:"omitempty,max=100"`
	Address    *string           `json:"address" validate:"omitempty,max=255"`
	Age        *int              `json:"age" validate:"omitempty,gte=0,lte=150"`
	Department *types.Department `json:"department"`
	StaffRole  *types.StaffRole  `json:"staff_role"`
	Gender     *types.Gender     `json:"gender"`
	CourseID   *int64            `json:"course_id" validate:"omitempty,gt=0"`
	Password   *string           `json:"password"`
}

type StudentUpdateRequest struct {
	Name         *string           `json:"name" validate:"omitempty,max=100"`
	Address      *string           `json:"address" validate:"omitempty,max=255"`
	Age          *int              `json:"age" validate:"omitempty,gte=0,lte=150"`
	Department   *types.Department `json:"department"`
	Gender       *types.Gender     `json:"gender"`
	AcademicYear *int              `json:"academic_year" validate:"omitempty,gte=1"`
	Semester     *int              `json:"semester" validate:"omitempty,gte=1"`
	CourseID     *int64            `json:"course_id" validate:"omitempty,gt=0"`
	Password     *string           `json:"password"`
}

// MarksRequest records a student's marks.
type MarksRequest struct {
	Marks *float64 `json:"marks" validate:"required,gte=0"`
}

// CourseRequest creates a course.
type CourseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// AuthResponse is returned by successful logins.
type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

func (r RegisterStaffRequest) input() services.RegisterStaffInput {
	return services.RegisterStaffInput{
		Credentials: r.credentials(),
		Department:  r.Department,
		StaffRole:   r.StaffRole,
		Address:     r.Address,
		Age:         r.Age,
		Gender:      r.Gender,
		CourseID:    r.CourseID,
	}
}

func (r RegisterStudentRequest) input() services.RegisterStudentInput {
	return services.RegisterStudentInput{
		Credentials:  r.credentials(),
		Department:   r.Department,
		Address:      r.Address,
		Age:          r.Age,
		Gender:       r.Gender,
		AcademicYear: r.AcademicYear,
		Semester:     r.Semester,
		CourseID:     r.CourseID,
	}
}
