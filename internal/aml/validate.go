package aml

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateCase rejects malformed input before the case enters the graph.
// Errors name the offending field and wrap ErrInvalidCase.
func ValidateCase(tx *Transaction, customer *Customer) error {
	if tx == nil {
		return fmt.Errorf("%w: transaction is required", ErrInvalidCase)
	}
	if customer == nil {
		return fmt.Errorf("%w: customer is required", ErrInvalidCase)
	}

	if err := validate.Struct(tx); err != nil {
		return fmt.Errorf("%w: transaction: %s", ErrInvalidCase, firstFieldError(err))
	}
	if err := validate.Struct(customer); err != nil {
		return fmt.Errorf("%w: customer: %s", ErrInvalidCase, firstFieldError(err))
	}

	if !tx.Amount.IsPositive() {
		return fmt.Errorf("%w: transaction.amount must be positive", ErrInvalidCase)
	}
	if tx.Timestamp.IsZero() {
		return fmt.Errorf("%w: transaction.timestamp is required", ErrInvalidCase)
	}
	for _, cc := range append([]string{tx.OriginCountry, tx.DestinationCountry}, tx.IntermediateCountries...) {
		if len(cc) != 2 || cc != strings.ToUpper(cc) {
			return fmt.Errorf("%w: transaction country code %q must be a two-letter ISO code", ErrInvalidCase, cc)
		}
	}
	for i, p := range tx.Parties {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: transaction.parties[%d] is empty", ErrInvalidCase, i)
		}
	}
	for i, h := range customer.TransactionHistory {
		if h.Amount.IsNegative() {
			return fmt.Errorf("%w: customer.transaction_history[%d].amount must be non-negative", ErrInvalidCase, i)
		}
	}

	return nil
}

func firstFieldError(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed %s validation", strings.ToLower(fe.Field()), fe.Tag())
	}
	return err.Error()
}
