package services

import (
	"context"

	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/types"
)

// RegisterStudentInput is the payload for enrolling a student. CourseID is
// optional; when set it must name an active course.
type RegisterStudentInput struct {
	Credentials
	Department   types.Department
	Address      string
	Age          *int
	Gender       types.Gender
	AcademicYear *int
	Semester     *int
	CourseID     int64
}

// StudentUpdate patches a student profile. Nil or blank fields are left
// unchanged. Marks are recorded by staff, not here.
type StudentUpdate struct {
	Name         *string
	Address      *string
	Age          *int
	Department   *types.Department
	Gender       *types.Gender
	AcademicYear *int
	Semester     *int
	CourseID     *int64
	Password     *string
}

// StudentService encapsulates student use-cases.
type StudentService struct {
	accounts
	students StudentRepository
	courses  CourseRepository
}

func NewStudentService(users UserRepository, students StudentRepository, courses CourseRepository, hasher auth.PasswordHasher) *StudentService {
	return &StudentService{
		accounts: accounts{users: users, hasher: hasher},
		students: students,
		courses:  courses,
	}
}

func (s *StudentService) Register(ctx context.Context, in RegisterStudentInput) (types.Student, error) {
	user, err := s.prepare(ctx, in.Credentials, types.RoleStudent)
	if err != nil {
		return types.Student{}, err
	}
	course, err := courseRef(ctx, s.courses, in.CourseID)
	if err != nil {
		return types.Student{}, err
	}

	student, err := s.students.Create(ctx, types.Student{
		User:         user,
		Department:   in.Department,
		Address:      in.Address,
		Age:          in.Age,
		Gender:       in.Gender,
		AcademicYear: in.AcademicYear,
		Semester:     in.Semester,
		Course:       course,
	})
	if err := created(types.RoleStudent, err); err != nil {
		return types.Student{}, err
	}
	return student, nil
}

func (s *StudentService) Profile(ctx context.Context, id int64) (types.Student, error) {
	student, err := s.students.GetActiveByUserID(ctx, id)
	if err != nil {
		return types.Student{}, lookupError(err, msgAccountGone)
	}
	return student, nil
}

func (s *StudentService) Update(ctx context.Context, id int64, in StudentUpdate) (types.Student, error) {
	student, err := s.Profile(ctx, id)
	if err != nil {
		return types.Student{}, err
	}
	if err := s.applyCommon(&student.User, in.Name, in.Password); err != nil {
		return types.Student{}, err
	}
	if v, ok := nonBlank(in.Address); ok {
		student.Address = v
	}
	if in.Age != nil {
		student.Age = in.Age
	}
	if in.Department != nil && *in.Department != "" {
		student.Department = *in.Department
	}
	if in.Gender != nil && *in.Gender != "" {
		student.Gender = *in.Gender
	}
	if in.AcademicYear != nil {
		student.AcademicYear = in.AcademicYear
	}
	if in.Semester != nil {
		student.Semester = in.Semester
	}
	if in.CourseID != nil {
		course, err := courseRef(ctx, s.courses, *in.CourseID)
		if err != nil {
			return types.Student{}, err
		}
		if course != nil {
			student.Course = course
		}
	}

	updated, err := s.students.Update(ctx, student)
	if err != nil {
		return types.Student{}, lookupError(err, msgAccountGone)
	}
	return updated, nil
}

func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Profile(ctx, id); err != nil {
		return err
	}
	return s.softDelete(ctx, id)
}
