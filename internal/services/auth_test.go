package services

import (
	"context"
	"errors"
	"testing"

	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/types"
)

func registerStudent(t *testing.T, f *fixture, email, phone, password string) types.Student {
	t.Helper()
	s, err := f.students.Register(context.Background(), RegisterStudentInput{
		Credentials: Credentials{Email: email, Phone: phone, Name: "Student", Password: password},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return s
}

func TestLoginByEmailAndPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := registerStudent(t, f, "s@x.io", "9123456789", "pw")

	res, err := f.auth.Login(ctx, "s@x.io", "", "pw")
	if err != nil {
		t.Fatalf("Login(email) error = %v", err)
	}
	if res.User.ID != s.ID {
		t.Fatalf("Login(email) user = %d, want %d", res.User.ID, s.ID)
	}
	id, err := f.tokens.ExtractSubject(res.Token)
	if err != nil || id != s.ID {
		t.Fatalf("ExtractSubject() = %d, %v; want %d", id, err, s.ID)
	}
	role, err := f.tokens.ExtractRole(res.Token)
	if err != nil || role != types.RoleStudent {
		t.Fatalf("ExtractRole() = %q, %v", role, err)
	}

	if _, err := f.auth.Login(ctx, "", "9123456789", "pw"); err != nil {
		t.Fatalf("Login(phone) error = %v", err)
	}
}

func TestLoginPrefersEmail(t *testing.T) {
	f := newFixture(t)
	registerStudent(t, f, "s@x.io", "9123456789", "pw")

	// The phone is valid but the email is unknown, so the lookup by email wins.
	_, err := f.auth.Login(context.Background(), "ghost@x.io", "9123456789", "pw")
	wantKind(t, err, apperr.KindNotFound)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := registerStudent(t, f, "s@x.io", "", "pw")

	_, err := f.auth.Login(ctx, "", "", "pw")
	wantKind(t, err, apperr.KindInvalidCredentials)

	_, err = f.auth.Login(ctx, "s@x.io", "", "wrong")
	wantKind(t, err, apperr.KindInvalidCredentials)

	_, err = f.auth.Login(ctx, "missing@x.io", "", "pw")
	wantKind(t, err, apperr.KindNotFound)

	if err := f.students.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err = f.auth.Login(ctx, "s@x.io", "", "pw")
	wantKind(t, err, apperr.KindNotFound)
}

func TestOTPFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := registerStudent(t, f, "s@x.io", "", "pw")

	if err := f.auth.RequestOTP(ctx, "s@x.io"); err != nil {
		t.Fatalf("RequestOTP() error = %v", err)
	}
	if got := f.notifier.sent[0]; got.to != "s@x.io" || got.subject != otpSubject {
		t.Fatalf("sent = %+v", got)
	}
	code := f.notifier.lastCode(t)

	res, err := f.auth.VerifyOTP(ctx, "s@x.io", code)
	if err != nil {
		t.Fatalf("VerifyOTP() error = %v", err)
	}
	if res.User.ID != s.ID || !f.tokens.Verify(res.Token) {
		t.Fatalf("VerifyOTP() = %+v", res)
	}

	// A verified code can be used again until it expires.
	if _, err := f.auth.VerifyOTP(ctx, "s@x.io", code); err != nil {
		t.Fatalf("VerifyOTP(repeat) error = %v", err)
	}
}

func TestOTPFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registerStudent(t, f, "s@x.io", "", "pw")

	wantKind(t, f.auth.RequestOTP(ctx, "ghost@x.io"), apperr.KindNotFound)
	if len(f.notifier.sent) != 0 {
		t.Fatalf("sent %d messages for unknown email", len(f.notifier.sent))
	}

	_, err := f.auth.VerifyOTP(ctx, "s@x.io", "123456")
	wantKind(t, err, apperr.KindInvalidCredentials)

	_, err = f.auth.VerifyOTP(ctx, "ghost@x.io", "123456")
	wantKind(t, err, apperr.KindNotFound)

	if err := f.auth.RequestOTP(ctx, "s@x.io"); err != nil {
		t.Fatalf("RequestOTP() error = %v", err)
	}
	code := f.notifier.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "999999"
	}
	_, err = f.auth.VerifyOTP(ctx, "s@x.io", wrong)
	wantKind(t, err, apperr.KindInvalidCredentials)
}

func TestOTPReissueInvalidatesPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registerStudent(t, f, "s@x.io", "", "pw")

	var first, second string
	for i := 0; i < 10 && first == second; i++ {
		if err := f.auth.RequestOTP(ctx, "s@x.io"); err != nil {
			t.Fatalf("RequestOTP() error = %v", err)
		}
		first = f.notifier.lastCode(t)
		if err := f.auth.RequestOTP(ctx, "s@x.io"); err != nil {
			t.Fatalf("RequestOTP() error = %v", err)
		}
		second = f.notifier.lastCode(t)
	}

	_, err := f.auth.VerifyOTP(ctx, "s@x.io", first)
	wantKind(t, err, apperr.KindInvalidCredentials)
	if _, err := f.auth.VerifyOTP(ctx, "s@x.io", second); err != nil {
		t.Fatalf("VerifyOTP(second) error = %v", err)
	}
}

func TestRequestOTPTransportFailure(t *testing.T) {
	f := newFixture(t)
	registerStudent(t, f, "s@x.io", "", "pw")
	f.notifier.err = errors.New("smtp down")

	wantKind(t, f.auth.RequestOTP(context.Background(), "s@x.io"), apperr.KindInternal)
}

func TestOTPEmailIgnoresCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := registerStudent(t, f, "Alice@example.com", "", "pw")

	if err := f.auth.RequestOTP(ctx, "ALICE@example.com"); err != nil {
		t.Fatalf("RequestOTP() error = %v", err)
	}
	code := f.notifier.lastCode(t)

	res, err := f.auth.VerifyOTP(ctx, "alice@example.com", code)
	if err != nil {
		t.Fatalf("VerifyOTP() error = %v", err)
	}
	if res.User.ID != s.ID {
		t.Fatalf("VerifyOTP() user = %d, want %d", res.User.ID, s.ID)
	}

	res, err = f.auth.Login(ctx, "alice@EXAMPLE.com", "", "pw")
	if err != nil || res.User.ID != s.ID {
		t.Fatalf("Login() = %+v, %v", res, err)
	}
}
