// Package services contains stateless domain rules for the catalog bounded
// context. They operate purely on domain types and have no infrastructure
// dependencies.
package services

import (
	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// ResolveTax computes the effective tax settings of a new entity from the
// explicitly supplied values and the settings of its closest parent (nil when
// the entity has none).
//
// Explicit applicability wins over the parent's. When the result is not
// applicable, explicit tax values are discarded. Otherwise tax and taxType
// fall back to the parent's and then to 0 and Percentage.
func ResolveTax(applicability *bool, tax *decimal.Decimal, taxType *string, parent *models.TaxSettings) (models.TaxSettings, error) {
	explicitTax, explicitType, err := validateExplicit(tax, taxType)
	if err != nil {
		return models.TaxSettings{}, err
	}

	applicable := false
	switch {
	case applicability != nil:
		applicable = *applicability
	case parent != nil:
		applicable = parent.Applicable
	}
	if !applicable {
		return models.NoTax(), nil
	}

	resolvedTax := decimal.Zero
	switch {
	case explicitTax != nil:
		resolvedTax = *explicitTax
	case parent != nil && parent.Tax != nil:
		resolvedTax = *parent.Tax
	}

	resolvedType := models.TaxTypePercentage
	switch {
	case explicitType != nil:
		resolvedType = *explicitType
	case parent != nil && parent.Type != nil:
		resolvedType = *parent.Type
	}

	return models.ApplicableTax(resolvedTax, resolvedType), nil
}

// ApplyTaxPatch applies an edit to existing tax settings. Edits never consult
// a parent.
//
//   - applicability false clears tax and taxType, whatever else was sent.
//   - applicability true sets tax to the supplied value or 0, and taxType to
//     the supplied value, the current one, or Percentage.
//   - without applicability, tax and taxType update an applicable record and
//     are rejected on a non-applicable one.
func ApplyTaxPatch(current models.TaxSettings, applicability *bool, tax *decimal.Decimal, taxType *string) (models.TaxSettings, error) {
	explicitTax, explicitType, err := validateExplicit(tax, taxType)
	if err != nil {
		return models.TaxSettings{}, err
	}

	if applicability != nil {
		if !*applicability {
			return models.NoTax(), nil
		}
		newTax := decimal.Zero
		if explicitTax != nil {
			newTax = *explicitTax
		}
		newType := models.TaxTypePercentage
		switch {
		case explicitType != nil:
			newType = *explicitType
		case current.Type != nil:
			newType = *current.Type
		}
		return models.ApplicableTax(newTax, newType), nil
	}

	if explicitTax == nil && explicitType == nil {
		return current, nil
	}
	if !current.Applicable {
		return models.TaxSettings{}, domain.NewValidationError("tax cannot be changed while taxApplicability is false")
	}

	next := models.ApplicableTax(decimal.Zero, models.TaxTypePercentage)
	if current.Tax != nil {
		*next.Tax = *current.Tax
	}
	if current.Type != nil {
		*next.Type = *current.Type
	}
	if explicitTax != nil {
		*next.Tax = *explicitTax
	}
	if explicitType != nil {
		*next.Type = *explicitType
	}
	return next, nil
}

// ValidateExplicitTax rejects a negative or unstorable tax or an unknown
// taxType before any parent lookup happens.
func ValidateExplicitTax(tax *decimal.Decimal, taxType *string) error {
	_, _, err := validateExplicit(tax, taxType)
	return err
}

func validateExplicit(tax *decimal.Decimal, taxType *string) (*decimal.Decimal, *models.TaxType, error) {
	if tax != nil {
		checked, err := CheckAmount("tax", *tax)
		if err != nil {
			return nil, nil, err
		}
		if checked.IsNegative() {
			return nil, nil, domain.NewValidationError("tax can't be negative")
		}
		tax = &checked
	}
	var tt *models.TaxType
	if taxType != nil {
		parsed, err := models.ParseTaxType(*taxType)
		if err != nil {
			return nil, nil, err
		}
		tt = &parsed
	}
	return tax, tt, nil
}
