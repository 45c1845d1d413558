package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghuser/catalog/pkg/validator"
	"github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// validateInput runs the struct's validate tags and reports the failing
// fields as a domain ValidationError.
func validateInput(in any) error {
	err := validator.Validate(in)
	if err == nil {
		return nil
	}
	fields := validator.FormatValidationErrors(err)
	if len(fields) == 0 {
		return fmt.Errorf("validate %T: %w", in, err)
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return &domain.ValidationError{
		Reason: strings.Join(names, ", ") + " required",
		Fields: fields,
	}
}

func requireImage(imageRef string) error {
	if imageRef == "" {
		return domain.NewValidationError("image is required")
	}
	return nil
}

// patchText applies the name and description of p, normalizing the name.
func patchText(p Patch, name, description *string) error {
	if p.Name != nil {
		n, err := models.NormalizeName(*p.Name)
		if err != nil {
			return err
		}
		*name = n
	}
	if p.Description != nil {
		if *p.Description == "" {
			return domain.NewValidationError("description must not be empty")
		}
		*description = *p.Description
	}
	return nil
}
