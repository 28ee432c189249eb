package services

import (
	"context"

	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/types"
)

// RegisterStaffInput is the payload for creating a staff account. CourseID
// must name an active course.
type RegisterStaffInput struct {
	Credentials
	Department types.Department
	StaffRole  types.StaffRole
	Address    string
	Age        *int
	Gender     types.Gender
	CourseID   int64
}

// StaffUpdate patches a staff profile. Nil or blank fields are left
// unchanged.
type StaffUpdate struct {
	Name       *string
	Address    *string
	Age        *int
	Department *types.Department
	StaffRole  *types.StaffRole
	Gender     *types.Gender
	CourseID   *int64
	Password   *string
}

// StaffService encapsulates staff use-cases.
type StaffService struct {
	accounts
	staff    StaffRepository
	students StudentRepository
	courses  CourseRepository
}

func NewStaffService(users UserRepository, staff StaffRepository, students StudentRepository, courses CourseRepository, hasher auth.PasswordHasher) *StaffService {
	return &StaffService{
		accounts: accounts{users: users, hasher: hasher},
		staff:    staff,
		students: students,
		courses:  courses,
	}
}

func (s *StaffService) Register(ctx context.Context, in RegisterStaffInput) (types.Staff, error) {
	user, err := s.prepare(ctx, in.Credentials, types.RoleStaff)
	if err != nil {
		return types.Staff{}, err
	}
	if in.CourseID <= 0 {
		return types.Staff{}, apperr.NotFound("course not found")
	}
	course, err := courseRef(ctx, s.courses, in.CourseID)
	if err != nil {
		return types.Staff{}, err
	}

	staff, err := s.staff.Create(ctx, types.Staff{
		User:       user,
		Department: in.Department,
		StaffRole:  in.StaffRole,
		Address:    in.Address,
		Age:        in.Age,
		Gender:     in.Gender,
		Course:     course,
	})
	if err := created(types.RoleStaff, err); err != nil {
		return types.Staff{}, err
	}
	return staff, nil
}

func (s *StaffService) Profile(ctx context.Context, id int64) (types.Staff, error) {
	staff, err := s.staff.GetActiveByUserID(ctx, id)
	if err != nil {
		return types.Staff{}, lookupError(err, msgAccountGone)
	}
	return staff, nil
}

func (s *StaffService) Update(ctx context.Context, id int64, in StaffUpdate) (types.Staff, error) {
	staff, err := s.Profile(ctx, id)
	if err != nil {
		return types.Staff{}, err
	}
	if err := s.applyCommon(&staff.User, in.Name, in.Password); err != nil {
		return types.Staff{}, err
	}
	if v, ok := nonBlank(in.Address); ok {
		staff.Address = v
	}
	if in.Age != nil {
		staff.Age = in.Age
	}
	if in.Department != nil && *in.Department != "" {
		staff.Department = *in.Department
	}
	if in.StaffRole != nil && *in.StaffRole != "" {
		staff.StaffRole = *in.StaffRole
	}
	if in.Gender != nil && *in.Gender != "" {
		staff.Gender = *in.Gender
	}
	if in.CourseID != nil {
		course, err := courseRef(ctx, s.courses, *in.CourseID)
		if err != nil {
			return types.Staff{}, err
		}
		if course != nil {
			staff.Course = course
		}
	}

	updated, err := s.staff.Update(ctx, staff)
	if err != nil {
		return types.Staff{}, lookupError(err, msgAccountGone)
	}
	return updated, nil
}

func (s *StaffService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Profile(ctx, id); err != nil {
		return err
	}
	return s.softDelete(ctx, id)
}

// RecordMarks sets a student's aggregate mark.
func (s *StaffService) RecordMarks(ctx context.Context, id int64, rollNo string, marks float64) (types.Student, error) {
	if _, err := s.Profile(ctx, id); err != nil {
		return types.Student{}, err
	}
	if marks < 0 {
		return types.Student{}, apperr.Invalid("marks must not be negative", map[string]string{"marks": "min"})
	}
	student, err := s.students.GetActiveByRollNo(ctx, rollNo)
	if err != nil {
		return types.Student{}, lookupError(err, "student not found")
	}
	student.Marks = marks
	updated, err := s.students.Update(ctx, student)
	if err != nil {
		return types.Student{}, lookupError(err, "student not found")
	}
	return updated, nil
}
