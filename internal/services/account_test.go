package services

import (
	"context"
	"errors"
	"testing"

	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/types"
)

func TestRegisterStudentAssignsRollNo(t *testing.T) {
	f := newFixture(t)
	f.store.SetNextID(42)

	student, err := f.students.Register(context.Background(), RegisterStudentInput{
		Credentials: Credentials{Email: "s@x.io", Name: "Sam", Password: "pw"},
		Department:  types.DepartmentCS,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if student.ID != 42 || student.RollNo != "STU000042" {
		t.Fatalf("student = id %d roll %q, want 42 STU000042", student.ID, student.RollNo)
	}
	if student.Role != types.RoleStudent || student.Marks != 0 {
		t.Fatalf("student = %+v", student)
	}
	if student.PasswordHash == "pw" {
		t.Fatalf("password stored in plaintext")
	}
}

func TestRegisterAdminAndStaffIdentifiers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.admins.Register(ctx, RegisterAdminInput{
		Credentials: Credentials{Phone: "9876543210", Name: "Ada", Password: "pw"},
	})
	if err != nil {
		t.Fatalf("admins.Register() error = %v", err)
	}
	if admin.AdminID != types.FormatAdminID(admin.ID) {
		t.Fatalf("AdminID = %q", admin.AdminID)
	}

	course, err := f.courses.Create(ctx, "Physics", "")
	if err != nil {
		t.Fatalf("courses.Create() error = %v", err)
	}
	staff, err := f.staff.Register(ctx, RegisterStaffInput{
		Credentials: Credentials{Email: "t@x.io", Name: "Tess", Password: "pw"},
		StaffRole:   types.StaffRoleLecturer,
		CourseID:    course.ID,
	})
	if err != nil {
		t.Fatalf("staff.Register() error = %v", err)
	}
	if staff.StaffID != types.FormatStaffID(staff.ID) {
		t.Fatalf("StaffID = %q", staff.StaffID)
	}
	if staff.Course == nil || staff.Course.Title != "Physics" {
		t.Fatalf("staff.Course = %+v", staff.Course)
	}
}

func TestRegisterStaffRequiresExistingCourse(t *testing.T) {
	f := newFixture(t)
	_, err := f.staff.Register(context.Background(), RegisterStaffInput{
		Credentials: Credentials{Email: "t@x.io", Name: "Tess", Password: "pw"},
		CourseID:    77,
	})
	wantKind(t, err, apperr.KindNotFound)

	_, err = f.staff.Register(context.Background(), RegisterStaffInput{
		Credentials: Credentials{Email: "t@x.io", Name: "Tess", Password: "pw"},
	})
	wantKind(t, err, apperr.KindNotFound)
	if f.store.UserCount() != 0 {
		t.Fatalf("UserCount() = %d, want 0", f.store.UserCount())
	}
}

func TestRegisterRejectsMissingContacts(t *testing.T) {
	f := newFixture(t)
	_, err := f.students.Register(context.Background(), RegisterStudentInput{
		Credentials: Credentials{Email: "  ", Phone: "", Name: "Nobody", Password: "pw"},
	})
	wantKind(t, err, apperr.KindInvalidCredentials)
	if f.store.UserCount() != 0 {
		t.Fatalf("UserCount() = %d, want 0", f.store.UserCount())
	}
}

func TestRegisterConflictsAcrossRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.students.Register(ctx, RegisterStudentInput{
		Credentials: Credentials{Email: "dup@x.io", Phone: "9000000001", Name: "A", Password: "pw"},
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := f.admins.Register(ctx, RegisterAdminInput{
		Credentials: Credentials{Email: "dup@x.io", Name: "B", Password: "pw"},
	})
	wantKind(t, err, apperr.KindAlreadyExists)

	_, err = f.students.Register(ctx, RegisterStudentInput{
		Credentials: Credentials{Email: "other@x.io", Phone: "9000000001", Name: "C", Password: "pw"},
	})
	wantKind(t, err, apperr.KindAlreadyExists)
}

func TestRegisterAfterSoftDeleteReusesContacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.students.Register(ctx, RegisterStudentInput{
		Credentials: Credentials{Email: "again@x.io", Name: "First", Password: "pw"},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := f.students.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	raw, ok := f.store.RawUser(first.ID)
	if !ok || !raw.IsDeleted {
		t.Fatalf("RawUser() = %+v, %v; want retained and deleted", raw, ok)
	}

	second, err := f.students.Register(ctx, RegisterStudentInput{
		Credentials: Credentials{Email: "again@x.io", Name: "Second", Password: "pw"},
	})
	if err != nil {
		t.Fatalf("Register() after delete error = %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("second.ID = first.ID = %d", first.ID)
	}
}

func TestRegisterRollsBackWhenRoleRecordFails(t *testing.T) {
	f := newFixture(t)
	f.store.FailExtensionInsert = errors.New("disk full")

	_, err := f.students.Register(context.Background(), RegisterStudentInput{
		Credentials: Credentials{Email: "s@x.io", Name: "Sam", Password: "pw"},
	})
	wantKind(t, err, apperr.KindInternal)
	if f.store.UserCount() != 0 {
		t.Fatalf("UserCount() = %d, want 0 after rollback", f.store.UserCount())
	}
}

func TestStudentPartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	student, err := f.students.Register(ctx, RegisterStudentInput{
		Credentials: Credentials{Email: "s@x.io", Name: "Sam", Password: "pw"},
		Address:     "1 Road",
		Age:         intPtr(19),
		Department:  types.DepartmentEE,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	updated, err := f.students.Update(ctx, student.ID, StudentUpdate{
		Address: strPtr("2 Avenue"),
		Name:    strPtr("   "),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Address != "2 Avenue" {
		t.Fatalf("Address = %q, want 2 Avenue", updated.Address)
	}
	if updated.Name != "Sam" || updated.Department != types.DepartmentEE || updated.Age == nil || *updated.Age != 19 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
	if updated.PasswordHash != student.PasswordHash {
		t.Fatalf("password hash changed without a new password")
	}
}

func TestUpdatePasswordRehashes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.admins.Register(ctx, RegisterAdminInput{
		Credentials: Credentials{Email: "a@x.io", Name: "Ada", Password: "old"},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := f.admins.Update(ctx, admin.ID, AdminUpdate{Password: strPtr("new")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, err := f.auth.Login(ctx, "a@x.io", "", "old"); apperr.KindOf(err) != apperr.KindInvalidCredentials {
		t.Fatalf("Login(old) error = %v, want InvalidCredentials", err)
	}
	if _, err := f.auth.Login(ctx, "a@x.io", "", "new"); err != nil {
		t.Fatalf("Login(new) error = %v", err)
	}
}

func TestDeletedAccountIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	staffCourse, _ := f.courses.Create(ctx, "Maths", "")
	staff, err := f.staff.Register(ctx, RegisterStaffInput{
		Credentials: Credentials{Email: "t@x.io", Name: "Tess", Password: "pw"},
		CourseID:    staffCourse.ID,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := f.staff.Delete(ctx, staff.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err = f.staff.Profile(ctx, staff.ID)
	wantKind(t, err, apperr.KindNotFound)
	_, err = f.staff.Update(ctx, staff.ID, StaffUpdate{Name: strPtr("X")})
	wantKind(t, err, apperr.KindNotFound)
	wantKind(t, f.staff.Delete(ctx, staff.ID), apperr.KindNotFound)
}

func TestStaffRecordMarks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course, _ := f.courses.Create(ctx, "Biology", "")
	staff, err := f.staff.Register(ctx, RegisterStaffInput{
		Credentials: Credentials{Email: "t@x.io", Name: "Tess", Password: "pw"},
		CourseID:    course.ID,
	})
	if err != nil {
		t.Fatalf("Register(staff) error = %v", err)
	}
	student, err := f.students.Register(ctx, RegisterStudentInput{
		Credentials: Credentials{Email: "s@x.io", Name: "Sam", Password: "pw"},
		CourseID:    course.ID,
	})
	if err != nil {
		t.Fatalf("Register(student) error = %v", err)
	}

	updated, err := f.staff.RecordMarks(ctx, staff.ID, student.RollNo, 88.5)
	if err != nil {
		t.Fatalf("RecordMarks() error = %v", err)
	}
	if updated.Marks != 88.5 || updated.Course == nil || updated.Course.Title != "Biology" {
		t.Fatalf("updated = %+v", updated)
	}

	_, err = f.staff.RecordMarks(ctx, staff.ID, "STU999999", 10)
	wantKind(t, err, apperr.KindNotFound)
	_, err = f.staff.RecordMarks(ctx, staff.ID, student.RollNo, -1)
	wantKind(t, err, apperr.KindBadRequest)
}

func TestCourses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.courses.Create(ctx, "  ", ""); apperr.KindOf(err) != apperr.KindBadRequest {
		t.Fatalf("Create(blank) error = %v, want BadRequest", err)
	}
	if _, err := f.courses.Create(ctx, "Zoology", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.courses.Create(ctx, "Algebra", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := f.courses.Create(ctx, "algebra", "")
	wantKind(t, err, apperr.KindAlreadyExists)

	list, err := f.courses.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Title != "Algebra" {
		t.Fatalf("List() = %+v", list)
	}
	_, err = f.courses.Get(ctx, 12345)
	wantKind(t, err, apperr.KindNotFound)
}

func TestRegisterEmailIgnoresCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.students.Register(ctx, RegisterStudentInput{
		Credentials: Credentials{Email: " Alice@Example.com ", Name: "Alice", Password: "pw"},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if first.Email != "alice@example.com" {
		t.Fatalf("Email = %q, want alice@example.com", first.Email)
	}

	_, err = f.admins.Register(ctx, RegisterAdminInput{
		Credentials: Credentials{Email: "alice@example.com", Name: "Other", Password: "pw"},
	})
	wantKind(t, err, apperr.KindAlreadyExists)
	if f.store.UserCount() != 1 {
		t.Fatalf("UserCount() = %d, want 1", f.store.UserCount())
	}
}

func TestRegisterConflictAtWriteTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.students.Register(ctx, RegisterStudentInput{
		Credentials: Credentials{Email: "race@x.io", Phone: "9000000002", Name: "A", Password: "pw"},
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Both registrations pass the existence check; the second loses at insert.
	f.store.HideExisting = true
	tests := []Credentials{
		{Email: "RACE@x.io", Name: "B", Password: "pw"},
		{Phone: "9000000002", Name: "C", Password: "pw"},
	}
	for _, c := range tests {
		_, err := f.admins.Register(ctx, RegisterAdminInput{Credentials: c})
		wantKind(t, err, apperr.KindAlreadyExists)
	}
	if f.store.UserCount() != 1 {
		t.Fatalf("UserCount() = %d, want 1 after rejected inserts", f.store.UserCount())
	}
}
