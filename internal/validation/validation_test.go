package validation

import (
	"errors"
	"testing"

	"SchoolManager/internal/apperr"
)

type sample struct {
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobileNumber" validate:"omitempty,mobile"`
	AcademicYear string `json:"academicYear" validate:"omitempty,academicyear"`
	Department   string `json:"department" validate:"omitempty,department"`
	Role         string `json:"role" validate:"omitempty,objectid"`
	Capacity     int    `json:"capacity" validate:"omitempty,min=1,max=100"`
}

func TestValidatePasses(t *testing.T) {
	v := New()
	err := v.Validate(&sample{
		Email:        "a@x.com",
		MobileNumber: "+919876543210",
		AcademicYear: "2024-2025",
		Department:   "Computer Science & Engineering",
		Role:         "65f0c0ffee0000000000aaaa",
		Capacity:     40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateReportsJSONField(t *testing.T) {
	v := New()
	cases := []struct {
		in    sample
		field string
	}{
		{sample{}, "email"},
		{sample{Email: "a@x.com", MobileNumber: "12ab"}, "mobileNumber"},
		{sample{Email: "a@x.com", AcademicYear: "2024-2026"}, "academicYear"},
		{sample{Email: "a@x.com", AcademicYear: "24-25"}, "academicYear"},
		{sample{Email: "a@x.com", Department: "CS101"}, "department"},
		{sample{Email: "a@x.com", Role: "admin"}, "role"},
		{sample{Email: "a@x.com", Capacity: 101}, "capacity"},
	}
	for _, tc := range cases {
		in := tc.in
		err := v.Validate(&in)
		var ae *apperr.Error
		if !errors.As(err, &ae) || ae.Kind != apperr.KindValidation {
			t.Fatalf("expected validation error for %+v, got %v", tc.in, err)
		}
		if ae.Field != tc.field {
			t.Fatalf("expected field %s, got %s (%s)", tc.field, ae.Field, ae.Message)
		}
	}
}

func TestIsAcademicYear(t *testing.T) {
	if !IsAcademicYear("2024-2025") {
		t.Fatalf("expected 2024-2025 to be valid")
	}
	for _, bad := range []string{"2024-2024", "2024/2025", "2024-25", ""} {
		if IsAcademicYear(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}
