package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when an enumerated value cannot be parsed.
var ErrUnknownValue = errors.New("unknown value")

// Role is the authorization role of an account.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStaff   Role = "STAFF"
	RoleStudent Role = "STUDENT"
)

// Gender of an admin, staff member or student.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Department groups staff and students by discipline.
type Department string

const (
	DepartmentScience     Department = "SCIENCE"
	DepartmentCommerce    Department = "COMMERCE"
	DepartmentArts        Department = "ARTS"
	DepartmentEngineering Department = "ENGINEERING"
	DepartmentCS          Department = "CS"
	DepartmentEE          Department = "EE"
)

// StaffRole is the position a staff member holds.
type StaffRole string

const (
	StaffRoleProfessor      StaffRole = "PROFESSOR"
	StaffRoleLecturer       StaffRole = "LECTURER"
	StaffRoleLabAssistant   StaffRole = "LAB_ASSISTANT"
	StaffRoleAdministrative StaffRole = "ADMINISTRATIVE"
)

var (
	roles       = []Role{RoleAdmin, RoleStaff, RoleStudent}
	genders     = []Gender{GenderMale, GenderFemale, GenderOther}
	departments = []Department{
		DepartmentScience,
		DepartmentCommerce,
		DepartmentArts,
		DepartmentEngineering,
		DepartmentCS,
		DepartmentEE,
	}
	staffRoles = []StaffRole{
		StaffRoleProfessor,
		StaffRoleLecturer,
		StaffRoleLabAssistant,
		StaffRoleAdministrative,
	}
)

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	return parseEnum("role", s, roles)
}

// ParseGender parses a gender case-insensitively.
func ParseGender(s string) (Gender, error) {
	return parseEnum("gender", s, genders)
}

// ParseDepartment parses a department case-insensitively.
func ParseDepartment(s string) (Department, error) {
	return parseEnum("department", s, departments)
}

// ParseStaffRole parses a staff role case-insensitively.
func ParseStaffRole(s string) (StaffRole, error) {
	return parseEnum("staff role", s, staffRoles)
}

// UnmarshalText accepts any letter case. An empty value leaves the field
// unset.
func (g *Gender) UnmarshalText(text []byte) error {
	if isBlank(text) {
		*g = ""
		return nil
	}
	v, err := ParseGender(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

func (d *Department) UnmarshalText(text []byte) error {
	if isBlank(text) {
		*d = ""
		return nil
	}
	v, err := ParseDepartment(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (r *StaffRole) UnmarshalText(text []byte) error {
	if isBlank(text) {
		*r = ""
		return nil
	}
	v, err := ParseStaffRole(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func isBlank(text []byte) bool {
	return strings.TrimSpace(string(text)) == ""
}

func parseEnum[T ~string](kind, s string, values []T) (T, error) {
	needle := strings.ToUpper(strings.TrimSpace(s))
	for _, v := range values {
		if string(v) == needle {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q", ErrUnknownValue, kind, s)
}

// Public identifier prefixes.
const (
	AdminIDPrefix   = "AD"
	StaffIDPrefix   = "STAFF"
	StudentIDPrefix = "STU"
)

// FormatAdminID derives the public admin identifier from the account ID.
func FormatAdminID(id int64) string {
	return fmt.Sprintf("%s%06d", AdminIDPrefix, id)
}

// FormatStaffID derives the public staff identifier from the account ID.
func FormatStaffID(id int64) string {
	return fmt.Sprintf("%s%06d", StaffIDPrefix, id)
}

// FormatRollNo derives a student's roll number from the account ID.
func FormatRollNo(id int64) string {
	return fmt.Sprintf("%s%06d", StudentIDPrefix, id)
}
