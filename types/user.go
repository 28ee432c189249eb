package types

import "time"

// User is the base account record shared by every role.
// Role-specific attributes live in Admin, Staff and Student, which embed it.
type User struct {
	// ID is the unique identifier of the account.
	ID int64 `json:"id" db:"id"`

	// Email is the account's email address. Either Email or Phone is set.
	Email string `json:"email,omitempty" db:"email"`

	// Phone is the account's mobile number.
	Phone string `json:"phone,omitempty" db:"phone"`

	// Name is the account holder's full name.
	Name string `json:"name" db:"name"`

	// PasswordHash stores the salted hash of the account password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Role decides which route group the account may use.
	Role Role `json:"role" db:"role"`

	// IsDeleted marks a soft-deleted account. Deleted accounts cannot log in
	// and release their email and phone for reuse.
	IsDeleted bool `json:"-" db:"is_deleted"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Admin is an administrator account.
type Admin struct {
	User

	// AdminID is the public identifier, e.g. AD000001.
	AdminID string `json:"admin_id" db:"admin_id"`

	Gender Gender `json:"gender,omitempty" db:"gender"`
}

// Staff is a faculty or support staff account.
type Staff struct {
	User

	// StaffID is the public identifier, e.g. STAFF000001.
	StaffID string `json:"staff_id" db:"staff_id"`

	Department Department `json:"department,omitempty" db:"department"`
	StaffRole  StaffRole  `json:"staff_role,omitempty" db:"staff_role"`
	Address    string     `json:"address,omitempty" db:"address"`
	Age        *int       `json:"age,omitempty" db:"age"`
	Gender     Gender     `json:"gender,omitempty" db:"gender"`

	// Course is the course the staff member is assigned to.
	Course *Course `json:"course,omitempty" db:"-"`
}

// Student is an enrolled student account.
type Student struct {
	User

	// RollNo is the public identifier, e.g. STU000001.
	RollNo string `json:"roll_no" db:"roll_no"`

	Department   Department `json:"department,omitempty" db:"department"`
	Address      string     `json:"address,omitempty" db:"address"`
	Age          *int       `json:"age,omitempty" db:"age"`
	Gender       Gender     `json:"gender,omitempty" db:"gender"`
	AcademicYear *int       `json:"academic_year,omitempty" db:"academic_year"`
	Semester     *int       `json:"semester,omitempty" db:"semester"`

	// Marks is the student's aggregate mark. New students start at zero.
	Marks float64 `json:"marks" db:"marks"`

	// Course is the course the student is enrolled in, if any.
	Course *Course `json:"course,omitempty" db:"-"`
}

// CourseTitle returns the enrolled course title or an empty string.
func (s Student) CourseTitle() string {
	if s.Course == nil {
		return ""
	}
	return s.Course.Title
}
