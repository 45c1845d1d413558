package models

import (
	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/services/catalog/domain"
)

// TaxType selects how Tax is applied to an amount.
type TaxType string

const (
	TaxTypePercentage TaxType = "Percentage"
	TaxTypeFixed      TaxType = "Fixed"
)

// ParseTaxType accepts either tax type in any casing.
func ParseTaxType(raw string) (TaxType, error) {
	n, err := NormalizeName(raw)
	if err != nil {
		return "", domain.NewValidationError("taxType must not be empty")
	}
	switch TaxType(n) {
	case TaxTypePercentage, TaxTypeFixed:
		return TaxType(n), nil
	default:
		return "", domain.NewValidationError("taxType must be one of Percentage, Fixed")
	}
}

// TaxSettings is shared by every catalog entity. Tax and Type are set if and
// only if Applicable is true.
type TaxSettings struct {
	Applicable bool             `json:"taxApplicability"`
	Tax        *decimal.Decimal `json:"tax,omitempty"`
	Type       *TaxType         `json:"taxType,omitempty"`
}

// NoTax returns settings with tax disabled.
func NoTax() TaxSettings {
	return TaxSettings{}
}

// ApplicableTax returns enabled settings with the given tax and type.
func ApplicableTax(tax decimal.Decimal, t TaxType) TaxSettings {
	return TaxSettings{Applicable: true, Tax: &tax, Type: &t}
}

// Valid reports whether the presence invariant holds.
func (s TaxSettings) Valid() bool {
	if s.Applicable {
		return s.Tax != nil && s.Type != nil
	}
	return s.Tax == nil && s.Type == nil
}
