package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/services/catalog/domain"
)

// Money and tax columns are NUMERIC(12,2).
const (
	AmountScale         = 2
	AmountIntegerDigits = 10
)

// CheckAmount rejects a value the catalog cannot store exactly: more than
// AmountIntegerDigits digits before the point or more than AmountScale after
// it. Only the coefficient's digits and the exponent are inspected, so an
// oversized exponent is refused without being expanded. Zero is returned as
// decimal.Zero whatever its exponent.
func CheckAmount(field string, d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsZero() {
		return decimal.Zero, nil
	}
	coef := d.Coefficient()
	digits := strings.TrimLeft(coef.String(), "-")
	exp := int64(d.Exponent())

	if int64(len(digits))+exp > AmountIntegerDigits {
		return decimal.Decimal{}, &domain.ValidationError{
			Reason: field + " is too large",
			Fields: map[string]string{field: "Must be less than 10000000000"},
		}
	}
	significant := strings.TrimRight(digits, "0")
	if exp+int64(len(digits)-len(significant)) < -AmountScale {
		return decimal.Decimal{}, &domain.ValidationError{
			Reason: field + " can have at most 2 decimal places",
			Fields: map[string]string{field: "At most 2 decimal places"},
		}
	}
	return d, nil
}

// ComputeTotal returns baseAmount - discount. Both must fit CheckAmount and
// not be negative, and the total must be strictly positive.
func ComputeTotal(baseAmount, discount decimal.Decimal) (decimal.Decimal, error) {
	baseAmount, err := CheckAmount("baseAmount", baseAmount)
	if err != nil {
		return decimal.Decimal{}, err
	}
	discount, err = CheckAmount("discount", discount)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if baseAmount.IsNegative() {
		return decimal.Decimal{}, domain.NewValidationError("baseAmount can't be negative")
	}
	if discount.IsNegative() {
		return decimal.Decimal{}, domain.NewValidationError("discount can't be negative")
	}
	total := baseAmount.Sub(discount)
	if !total.IsPositive() {
		return decimal.Decimal{}, domain.NewValidationError("totalAmount must be greater than 0")
	}
	return total, nil
}
