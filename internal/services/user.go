package services

import (
	"context"
	"errors"
	"strings"

	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/internal/directory"
	"github.com/techmaa/portal/internal/metrics"
	"github.com/techmaa/portal/internal/store"
	"github.com/techmaa/portal/types"
)

// UserRepository defines persistence operations on base accounts.
type UserRepository interface {
	GetActiveByID(ctx context.Context, id int64) (types.User, error)
	GetActiveByEmail(ctx context.Context, email string) (types.User, error)
	GetActiveByPhone(ctx context.Context, phone string) (types.User, error)
	ExistsActiveByEmail(ctx context.Context, email string) (bool, error)
	ExistsActiveByPhone(ctx context.Context, phone string) (bool, error)
	SoftDelete(ctx context.Context, id int64) error
}

// AdminRepository defines persistence operations for administrators.
type AdminRepository interface {
	Create(ctx context.Context, admin types.Admin) (types.Admin, error)
	GetActiveByUserID(ctx context.Context, id int64) (types.Admin, error)
	Update(ctx context.Context, admin types.Admin) (types.Admin, error)
}

// StaffRepository defines persistence operations for staff.
type StaffRepository interface {
	Create(ctx context.Context, staff types.Staff) (types.Staff, error)
	GetActiveByUserID(ctx context.Context, id int64) (types.Staff, error)
	Update(ctx context.Context, staff types.Staff) (types.Staff, error)
}

// StudentRepository defines persistence operations for students.
type StudentRepository interface {
	Create(ctx context.Context, student types.Student) (types.Student, error)
	GetActiveByUserID(ctx context.Context, id int64) (types.Student, error)
	GetActiveByRollNo(ctx context.Context, rollNo string) (types.Student, error)
	Update(ctx context.Context, student types.Student) (types.Student, error)
	Search(ctx context.Context, preds []directory.Predicate, order directory.Sort) ([]types.Student, error)
}

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	Create(ctx context.Context, course types.Course) (types.Course, error)
	GetActiveByID(ctx context.Context, id int64) (types.Course, error)
	List(ctx context.Context) ([]types.Course, error)
}

const msgAccountGone = "user account no longer exists"

// Credentials are the identity fields every registration carries.
type Credentials struct {
	Email    string
	Phone    string
	Name     string
	Password string
}

// accounts holds the registration and lifecycle steps shared by every role.
type accounts struct {
	users  UserRepository
	hasher auth.PasswordHasher
}

// prepare validates contacts, checks uniqueness among active accounts and
// returns the base record with a hashed password. It writes nothing.
func (a accounts) prepare(ctx context.Context, c Credentials, role types.Role) (types.User, error) {
	email := normalizeEmail(c.Email)
	phone := strings.TrimSpace(c.Phone)
	if email == "" && phone == "" {
		return types.User{}, apperr.InvalidCredentials("email or phone is required")
	}
	if strings.TrimSpace(c.Password) == "" {
		return types.User{}, apperr.Invalid("password is required", map[string]string{"password": "required"})
	}

	if email != "" {
		exists, err := a.users.ExistsActiveByEmail(ctx, email)
		if err != nil {
			return types.User{}, apperr.Internal("failed to check email", err)
		}
		if exists {
			return types.User{}, apperr.AlreadyExists("email already registered")
		}
	}
	if phone != "" {
		exists, err := a.users.ExistsActiveByPhone(ctx, phone)
		if err != nil {
			return types.User{}, apperr.Internal("failed to check phone", err)
		}
		if exists {
			return types.User{}, apperr.AlreadyExists("phone already registered")
		}
	}

	hash, err := a.hasher.Hash(c.Password)
	if err != nil {
		return types.User{}, apperr.Internal("failed to hash password", err)
	}
	return types.User{
		Email:        email,
		Phone:        phone,
		Name:         strings.TrimSpace(c.Name),
		PasswordHash: hash,
		Role:         role,
	}, nil
}

// created maps the outcome of a repository Create call.
func created(role types.Role, err error) error {
	if err == nil {
		metrics.Registrations.WithLabelValues(string(role)).Inc()
		return nil
	}
	if errors.Is(err, store.ErrConflict) {
		return apperr.AlreadyExists("email or phone already registered")
	}
	return apperr.Internal("failed to create account", err)
}

// applyCommon patches the base fields every role can change.
func (a accounts) applyCommon(u *types.User, name, password *string) error {
	if v, ok := nonBlank(name); ok {
		u.Name = v
	}
	if password != nil && strings.TrimSpace(*password) != "" {
		hash, err := a.hasher.Hash(*password)
		if err != nil {
			return apperr.Internal("failed to hash password", err)
		}
		u.PasswordHash = hash
	}
	return nil
}

func (a accounts) softDelete(ctx context.Context, id int64) error {
	if err := a.users.SoftDelete(ctx, id); err != nil {
		return lookupError(err, msgAccountGone)
	}
	return nil
}

// normalizeEmail is the single form in which emails are stored and looked up.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// lookupError maps a repository read or update error.
func lookupError(err error, notFound string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(notFound)
	}
	if errors.Is(err, store.ErrConflict) {
		return apperr.AlreadyExists("conflicting update")
	}
	return apperr.Internal("storage failure", err)
}

func nonBlank(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}

// courseRef resolves an optional course reference. A zero id means none.
func courseRef(ctx context.Context, courses CourseRepository, id int64) (*types.Course, error) {
	if id <= 0 {
		return nil, nil
	}
	course, err := courses.GetActiveByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course not found")
	}
	return &course, nil
}
