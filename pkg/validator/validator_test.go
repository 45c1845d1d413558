package validator_test

import (
	"errors"
	"testing"

	pkgvalidator "github.com/ghuser/catalog/pkg/validator"
)

type sampleStruct struct {
	ID       string `json:"id" validate:"required,uuid"`
	Name     string `json:"name" validate:"required,notblank,max=10"`
	TaxType  string `json:"taxType" validate:"omitempty,oneof=Percentage Fixed"`
	Internal string `validate:"omitempty,min=2"`
}

func valid() sampleStruct {
	return sampleStruct{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Shoes"}
}

func TestValidate_valid(t *testing.T) {
	s := valid()
	if err := pkgvalidator.Validate(&s); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*sampleStruct)
		field  string
		want   string
	}{
		{"required", func(s *sampleStruct) { s.ID = "" }, "id", "This field is required"},
		{"uuid", func(s *sampleStruct) { s.ID = "abc" }, "id", "Must be a valid UUID"},
		{"blank", func(s *sampleStruct) { s.Name = "   " }, "name", "Must not be blank"},
		{"max", func(s *sampleStruct) { s.Name = "a very long name" }, "name", "Maximum length is 10"},
		{"oneof", func(s *sampleStruct) { s.TaxType = "Compound" }, "taxType", "Must be one of Percentage Fixed"},
		{"untagged field uses Go name", func(s *sampleStruct) { s.Internal = "x" }, "Internal", "Minimum length is 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			errs := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&s))
			if errs[tt.field] != tt.want {
				t.Errorf("field %q: got %q, want %q (all: %v)", tt.field, errs[tt.field], tt.want, errs)
			}
		})
	}
}

func TestFormatValidationErrors_nonValidationError(t *testing.T) {
	if errs := pkgvalidator.FormatValidationErrors(errors.New("boom")); len(errs) != 0 {
		t.Errorf("expected empty map, got %v", errs)
	}
}
