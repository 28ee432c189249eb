package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/techmaa/portal/types"
)

func TestTokenIssueAndExtract(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue(42, types.RoleStaff)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if !svc.Verify(token) {
		t.Fatalf("Verify() = false, want true")
	}
	id, err := svc.ExtractSubject(token)
	if err != nil || id != 42 {
		t.Fatalf("ExtractSubject() = %d, %v; want 42", id, err)
	}
	role, err := svc.ExtractRole(token)
	if err != nil || role != types.RoleStaff {
		t.Fatalf("ExtractRole() = %q, %v; want STAFF", role, err)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Issuer != TokenIssuer {
		t.Fatalf("Issuer = %q, want %q", claims.Issuer, TokenIssuer)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("exp - iat = %v, want 1h", got)
	}
}

func TestTokenExpiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	svc := NewTokenService("test-secret", time.Minute).WithClock(func() time.Time { return issuedAt })

	token, err := svc.Issue(7, types.RoleStudent)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	later := svc.WithClock(func() time.Time { return issuedAt.Add(30 * time.Second) })
	if !later.Verify(token) {
		t.Fatalf("Verify() before expiry = false, want true")
	}

	expired := svc.WithClock(func() time.Time { return issuedAt.Add(2 * time.Minute) })
	if expired.Verify(token) {
		t.Fatalf("Verify() after expiry = true, want false")
	}
	if _, err := expired.ExtractSubject(token); err == nil {
		t.Fatalf("ExtractSubject() after expiry error = nil, want error")
	}
}

func TestTokenRejectsTampering(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	token, err := svc.Issue(1, types.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other := NewTokenService("another-secret", time.Hour)
	if other.Verify(token) {
		t.Fatalf("Verify() with other secret = true, want false")
	}

	tests := map[string]string{
		"empty":     "",
		"garbage":   "not.a.jwt",
		"truncated": token[:len(token)-4],
		"spaces":    "   ",
	}
	for name, input := range tests {
		if svc.Verify(input) {
			t.Fatalf("Verify(%s) = true, want false", name)
		}
	}
}

func TestTokenRejectsWrongAlgorithmAndIssuer(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	now := time.Now()

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: types.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString(none) error = %v", err)
	}
	if svc.Verify(unsigned) {
		t.Fatalf("Verify(alg=none) = true, want false")
	}

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: types.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	if svc.Verify(signed) {
		t.Fatalf("Verify(wrong issuer) = true, want false")
	}
}

func TestTokenCookies(t *testing.T) {
	svc := NewTokenService("test-secret", 24*time.Hour)

	rec := httptest.NewRecorder()
	http.SetCookie(rec, svc.Cookie("abc"))
	header := rec.Header().Get("Set-Cookie")
	for _, want := range []string{"ACCESS_TOKEN=abc", "Path=/", "Max-Age=86400", "HttpOnly", "SameSite=Lax"} {
		if !strings.Contains(header, want) {
			t.Fatalf("Set-Cookie = %q, missing %q", header, want)
		}
	}

	rec = httptest.NewRecorder()
	http.SetCookie(rec, svc.ExpiredCookie())
	header = rec.Header().Get("Set-Cookie")
	for _, want := range []string{"ACCESS_TOKEN=", "Path=/", "Max-Age=0", "HttpOnly"} {
		if !strings.Contains(header, want) {
			t.Fatalf("Set-Cookie = %q, missing %q", header, want)
		}
	}
}
