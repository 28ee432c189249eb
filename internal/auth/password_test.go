package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("s3cret!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if digest == "s3cret!" || !strings.HasPrefix(digest, "$2") {
		t.Fatalf("Hash() = %q, want bcrypt digest", digest)
	}
	if !h.Verify("s3cret!", digest) {
		t.Fatalf("Verify(correct) = false, want true")
	}
	if h.Verify("S3cret!", digest) {
		t.Fatalf("Verify(wrong) = true, want false")
	}
	if h.Verify("s3cret!", "not-a-digest") {
		t.Fatalf("Verify(malformed digest) = true, want false")
	}
}

func TestBcryptHasherSalts(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	a, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	b, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if a == b {
		t.Fatalf("Hash() produced identical digests for the same input")
	}
}

func TestBcryptHasherRejectsEmpty(t *testing.T) {
	if _, err := NewBcryptHasher(0).Hash(""); err == nil {
		t.Fatalf("Hash(\"\") error = nil, want error")
	}
}
