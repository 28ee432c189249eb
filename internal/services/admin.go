package services

import (
	"context"

	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/internal/directory"
	"github.com/techmaa/portal/types"
)

// RegisterAdminInput is the payload for creating an administrator.
type RegisterAdminInput struct {
	Credentials
	Gender types.Gender
}

// AdminUpdate patches an administrator profile. Nil or blank fields are
// left unchanged.
type AdminUpdate struct {
	Name     *string
	Gender   *types.Gender
	Password *string
}

// AdminService encapsulates administrator use-cases, including the student
// directory.
type AdminService struct {
	accounts
	admins   AdminRepository
	students StudentRepository
	exporter *Exporter
}

func NewAdminService(users UserRepository, admins AdminRepository, students StudentRepository, hasher auth.PasswordHasher, exporter *Exporter) *AdminService {
	return &AdminService{
		accounts: accounts{users: users, hasher: hasher},
		admins:   admins,
		students: students,
		exporter: exporter,
	}
}

func (s *AdminService) Register(ctx context.Context, in RegisterAdminInput) (types.Admin, error) {
	user, err := s.prepare(ctx, in.Credentials, types.RoleAdmin)
	if err != nil {
		return types.Admin{}, err
	}
	admin, err := s.admins.Create(ctx, types.Admin{User: user, Gender: in.Gender})
	if err := created(types.RoleAdmin, err); err != nil {
		return types.Admin{}, err
	}
	return admin, nil
}

func (s *AdminService) Profile(ctx context.Context, id int64) (types.Admin, error) {
	admin, err := s.admins.GetActiveByUserID(ctx, id)
	if err != nil {
		return types.Admin{}, lookupError(err, msgAccountGone)
	}
	return admin, nil
}

func (s *AdminService) Update(ctx context.Context, id int64, in AdminUpdate) (types.Admin, error) {
	admin, err := s.Profile(ctx, id)
	if err != nil {
		return types.Admin{}, err
	}
	if err := s.applyCommon(&admin.User, in.Name, in.Password); err != nil {
		return types.Admin{}, err
	}
	if in.Gender != nil && *in.Gender != "" {
		admin.Gender = *in.Gender
	}
	updated, err := s.admins.Update(ctx, admin)
	if err != nil {
		return types.Admin{}, lookupError(err, msgAccountGone)
	}
	return updated, nil
}

func (s *AdminService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Profile(ctx, id); err != nil {
		return err
	}
	return s.softDelete(ctx, id)
}

// SearchStudents returns active students matching every supplied filter.
func (s *AdminService) SearchStudents(ctx context.Context, id int64, c directory.Criteria) ([]types.Student, error) {
	if _, err := s.Profile(ctx, id); err != nil {
		return nil, err
	}
	return searchStudents(ctx, s.students, c)
}

func (s *AdminService) StudentByRollNo(ctx context.Context, id int64, rollNo string) (types.Student, error) {
	if _, err := s.Profile(ctx, id); err != nil {
		return types.Student{}, err
	}
	student, err := s.students.GetActiveByRollNo(ctx, rollNo)
	if err != nil {
		return types.Student{}, lookupError(err, "student not found")
	}
	return student, nil
}

// ExportStudents renders the filtered directory as a spreadsheet.
func (s *AdminService) ExportStudents(ctx context.Context, id int64, c directory.Criteria) (Export, error) {
	students, err := s.SearchStudents(ctx, id, c)
	if err != nil {
		return Export{}, err
	}
	if s.exporter == nil {
		return Export{}, apperr.Internal("export not configured", nil)
	}
	return s.exporter.Students(ctx, students)
}

func searchStudents(ctx context.Context, repo StudentRepository, c directory.Criteria) ([]types.Student, error) {
	preds, err := directory.BuildFilter(c)
	if err != nil {
		return nil, err
	}
	order, err := directory.ParseSort(c.SortBy, c.SortDir)
	if err != nil {
		return nil, err
	}
	students, err := repo.Search(ctx, preds, order)
	if err != nil {
		return nil, apperr.Internal("failed to search students", err)
	}
	return students, nil
}
