package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDepartment(t *testing.T) {
	tests := []struct {
		in      string
		want    Department
		wantErr bool
	}{
		{in: "cs", want: DepartmentCS},
		{in: " Engineering ", want: DepartmentEngineering},
		{in: "ARTS", want: DepartmentArts},
		{in: "physics", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDepartment(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownValue) {
				t.Fatalf("ParseDepartment(%q) error = %v, want ErrUnknownValue", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDepartment(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseDepartment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRoleAndGender(t *testing.T) {
	if r, err := ParseRole("student"); err != nil || r != RoleStudent {
		t.Fatalf("ParseRole(student) = %q, %v", r, err)
	}
	if g, err := ParseGender("Female"); err != nil || g != GenderFemale {
		t.Fatalf("ParseGender(Female) = %q, %v", g, err)
	}
	if _, err := ParseStaffRole("janitor"); err == nil {
		t.Fatalf("ParseStaffRole(janitor) error = nil, want error")
	}
}

func TestEnumJSONDecoding(t *testing.T) {
	var payload struct {
		Gender     Gender     `json:"gender"`
		Department Department `json:"department"`
		StaffRole  StaffRole  `json:"staff_role"`
	}
	if err := json.Unmarshal([]byte(`{"gender":"male","department":"ee","staff_role":"lab_assistant"}`), &payload); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if payload.Gender != GenderMale || payload.Department != DepartmentEE || payload.StaffRole != StaffRoleLabAssistant {
		t.Fatalf("decoded = %+v", payload)
	}

	if err := json.Unmarshal([]byte(`{"gender":"unknown"}`), &payload); err == nil {
		t.Fatalf("Unmarshal() error = nil, want error")
	}
}

func TestPublicIdentifiers(t *testing.T) {
	if got := FormatRollNo(42); got != "STU000042" {
		t.Fatalf("FormatRollNo(42) = %q, want STU000042", got)
	}
	if got := FormatAdminID(7); got != "AD000007" {
		t.Fatalf("FormatAdminID(7) = %q, want AD000007", got)
	}
	if got := FormatStaffID(1234567); got != "STAFF1234567" {
		t.Fatalf("FormatStaffID(1234567) = %q, want STAFF1234567", got)
	}
}

func TestEnumJSONDecodingBlank(t *testing.T) {
	payload := struct {
		Gender Gender `json:"gender"`
	}{Gender: GenderMale}
	if err := json.Unmarshal([]byte(`{"gender":""}`), &payload); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if payload.Gender != "" {
		t.Fatalf("Gender = %q, want empty", payload.Gender)
	}
}
