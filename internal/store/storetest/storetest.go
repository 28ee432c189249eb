// Package storetest provides an in-memory implementation of the account
// repositories for service and handler tests.
package storetest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/techmaa/portal/internal/directory"
	"github.com/techmaa/portal/internal/store"
	"github.com/techmaa/portal/types"
)

// Store holds every table in memory. The repository views returned by
// Users, Admins, Staff, Students and Courses share its state.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]types.User
	admins   map[int64]types.Admin
	staff    map[int64]types.Staff
	students map[int64]types.Student
	courses  map[int64]types.Course

	// FailExtensionInsert makes the next role-record insert fail after the
	// base row was written, so rollback can be observed.
	FailExtensionInsert error

	// HideExisting makes the ExistsActiveBy* lookups report false, so a
	// duplicate reaches Create and the write-time uniqueness check.
	HideExisting bool
}

func New() *Store {
	return &Store{
		nextID:   1,
		users:    make(map[int64]types.User),
		admins:   make(map[int64]types.Admin),
		staff:    make(map[int64]types.Staff),
		students: make(map[int64]types.Student),
		courses:  make(map[int64]types.Course),
	}
}

// SetNextID sets the ID assigned to the next created account or course.
func (s *Store) SetNextID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = id
}

// UserCount returns the number of base rows, deleted ones included.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// RawUser returns the base row regardless of its deleted flag.
func (s *Store) RawUser(id int64) (types.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) Users() *Users       { return &Users{s} }
func (s *Store) Admins() *Admins     { return &Admins{s} }
func (s *Store) Staff() *Staff       { return &Staff{s} }
func (s *Store) Students() *Students { return &Students{s} }
func (s *Store) Courses() *Courses   { return &Courses{s} }

// insertUser must be called with s.mu held.
func (s *Store) insertUser(u *types.User) error {
	for _, existing := range s.users {
		if existing.IsDeleted {
			continue
		}
		if u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
			return store.ErrConflict
		}
		if u.Phone != "" && existing.Phone == u.Phone {
			return store.ErrConflict
		}
	}
	now := time.Now()
	u.ID = s.takeID()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.IsDeleted = false
	s.users[u.ID] = *u
	return nil
}

// rollbackInsert undoes insertUser when the role record cannot be written.
func (s *Store) rollbackInsert(id int64) error {
	err := s.FailExtensionInsert
	if err == nil {
		return nil
	}
	s.FailExtensionInsert = nil
	delete(s.users, id)
	return err
}

func (s *Store) takeID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) activeUser(id int64) (types.User, error) {
	u, ok := s.users[id]
	if !ok || u.IsDeleted {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) updateUser(u *types.User) error {
	current, err := s.activeUser(u.ID)
	if err != nil {
		return err
	}
	current.Name = u.Name
	current.PasswordHash = u.PasswordHash
	current.UpdatedAt = time.Now()
	s.users[u.ID] = current
	*u = current
	return nil
}

func (s *Store) resolveCourse(c *types.Course) *types.Course {
	if c == nil {
		return nil
	}
	course, ok := s.courses[c.ID]
	if !ok {
		return c
	}
	return &course
}

// Users is the in-memory base account repository.
type Users struct{ s *Store }

func (r *Users) GetActiveByID(_ context.Context, id int64) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.activeUser(id)
}

func (r *Users) GetActiveByEmail(_ context.Context, email string) (types.User, error) {
	return r.find(func(u types.User) bool { return email != "" && strings.EqualFold(u.Email, email) })
}

func (r *Users) GetActiveByPhone(_ context.Context, phone string) (types.User, error) {
	return r.find(func(u types.User) bool { return phone != "" && u.Phone == phone })
}

func (r *Users) ExistsActiveByEmail(ctx context.Context, email string) (bool, error) {
	if r.hidden() {
		return false, nil
	}
	_, err := r.GetActiveByEmail(ctx, email)
	return existsResult(err)
}

func (r *Users) ExistsActiveByPhone(ctx context.Context, phone string) (bool, error) {
	if r.hidden() {
		return false, nil
	}
	_, err := r.GetActiveByPhone(ctx, phone)
	return existsResult(err)
}

func (r *Users) hidden() bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.HideExisting
}

func (r *Users) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, err := r.s.activeUser(id)
	if err != nil {
		return err
	}
	u.IsDeleted = true
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return nil
}

func (r *Users) find(match func(types.User) bool) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if !u.IsDeleted && match(u) {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func existsResult(err error) (bool, error) {
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Admins is the in-memory admin repository.
type Admins struct{ s *Store }

func (r *Admins) Create(_ context.Context, admin types.Admin) (types.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	admin.Role = types.RoleAdmin
	if err := r.s.insertUser(&admin.User); err != nil {
		return types.Admin{}, err
	}
	if err := r.s.rollbackInsert(admin.ID); err != nil {
		return types.Admin{}, err
	}
	admin.AdminID = types.FormatAdminID(admin.ID)
	r.s.admins[admin.ID] = admin
	return admin, nil
}

func (r *Admins) GetActiveByUserID(_ context.Context, id int64) (types.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, err := r.s.activeUser(id)
	if err != nil {
		return types.Admin{}, err
	}
	admin, ok := r.s.admins[id]
	if !ok {
		return types.Admin{}, store.ErrNotFound
	}
	admin.User = u
	return admin, nil
}

func (r *Admins) Update(_ context.Context, admin types.Admin) (types.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.updateUser(&admin.User); err != nil {
		return types.Admin{}, err
	}
	r.s.admins[admin.ID] = admin
	return admin, nil
}

// Staff is the in-memory staff repository.
type Staff struct{ s *Store }

func (r *Staff) Create(_ context.Context, staff types.Staff) (types.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	staff.Role = types.RoleStaff
	if err := r.s.insertUser(&staff.User); err != nil {
		return types.Staff{}, err
	}
	if err := r.s.rollbackInsert(staff.ID); err != nil {
		return types.Staff{}, err
	}
	staff.StaffID = types.FormatStaffID(staff.ID)
	staff.Course = r.s.resolveCourse(staff.Course)
	r.s.staff[staff.ID] = staff
	return staff, nil
}

func (r *Staff) GetActiveByUserID(_ context.Context, id int64) (types.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, err := r.s.activeUser(id)
	if err != nil {
		return types.Staff{}, err
	}
	staff, ok := r.s.staff[id]
	if !ok {
		return types.Staff{}, store.ErrNotFound
	}
	staff.User = u
	staff.Course = r.s.resolveCourse(staff.Course)
	return staff, nil
}

func (r *Staff) Update(_ context.Context, staff types.Staff) (types.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.updateUser(&staff.User); err != nil {
		return types.Staff{}, err
	}
	staff.Course = r.s.resolveCourse(staff.Course)
	r.s.staff[staff.ID] = staff
	return staff, nil
}

// Students is the in-memory student repository.
type Students struct{ s *Store }

func (r *Students) Create(_ context.Context, student types.Student) (types.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	student.Role = types.RoleStudent
	if err := r.s.insertUser(&student.User); err != nil {
		return types.Student{}, err
	}
	if err := r.s.rollbackInsert(student.ID); err != nil {
		return types.Student{}, err
	}
	student.RollNo = types.FormatRollNo(student.ID)
	student.Course = r.s.resolveCourse(student.Course)
	r.s.students[student.ID] = student
	return student, nil
}

func (r *Students) GetActiveByUserID(_ context.Context, id int64) (types.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.student(id)
}

func (r *Students) GetActiveByRollNo(_ context.Context, rollNo string) (types.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, student := range r.s.students {
		if student.RollNo == rollNo {
			return r.s.student(id)
		}
	}
	return types.Student{}, store.ErrNotFound
}

func (r *Students) Update(_ context.Context, student types.Student) (types.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.updateUser(&student.User); err != nil {
		return types.Student{}, err
	}
	student.Course = r.s.resolveCourse(student.Course)
	r.s.students[student.ID] = student
	return student, nil
}

func (r *Students) Search(_ context.Context, preds []directory.Predicate, order directory.Sort) ([]types.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]types.Student, 0)
	for id, student := range r.s.students {
		student.User = r.s.users[id]
		student.Course = r.s.resolveCourse(student.Course)
		if directory.Match(preds, student) {
			result = append(result, student)
		}
	}
	directory.SortStudents(result, order)
	return result, nil
}

func (s *Store) student(id int64) (types.Student, error) {
	u, err := s.activeUser(id)
	if err != nil {
		return types.Student{}, err
	}
	student, ok := s.students[id]
	if !ok {
		return types.Student{}, store.ErrNotFound
	}
	student.User = u
	student.Course = s.resolveCourse(student.Course)
	return student, nil
}

// Courses is the in-memory course repository.
type Courses struct{ s *Store }

func (r *Courses) Create(_ context.Context, course types.Course) (types.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.courses {
		if !existing.IsDeleted && strings.EqualFold(existing.Title, course.Title) {
			return types.Course{}, store.ErrConflict
		}
	}
	now := time.Now()
	course.ID = r.s.takeID()
	course.CreatedAt = now
	course.UpdatedAt = now
	r.s.courses[course.ID] = course
	return course, nil
}

func (r *Courses) GetActiveByID(_ context.Context, id int64) (types.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	course, ok := r.s.courses[id]
	if !ok || course.IsDeleted {
		return types.Course{}, store.ErrNotFound
	}
	return course, nil
}

func (r *Courses) List(_ context.Context) ([]types.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	courses := make([]types.Course, 0, len(r.s.courses))
	for _, course := range r.s.courses {
		if !course.IsDeleted {
			courses = append(courses, course)
		}
	}
	slices.SortFunc(courses, func(a, b types.Course) int {
		if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return courses, nil
}
