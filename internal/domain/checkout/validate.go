package checkout

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError reports a form that cannot advance to the next checkout
// step. It is a client-side failure and is never sent to a collaborator.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// emailShape is deliberately loose: one non-empty local part, an @, one
// non-empty domain part.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)

var cvvShape = regexp.MustCompile(`^[0-9]{1,3}$`)

// ValidateShipping checks that every shipping field is non-empty after
// trimming whitespace and that the email has a local@domain shape.
func ValidateShipping(s ShippingInfo) error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"firstName", s.FirstName},
		{"lastName", s.LastName},
		{"email", s.Email},
		{"phone", s.Phone},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"zipCode", s.ZipCode},
		{"country", s.Country},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Message: fmt.Sprintf("missing shipping fields: %s", strings.Join(missing, ", ")),
		}
	}

	if !emailShape.MatchString(strings.TrimSpace(s.Email)) {
		return &ValidationError{Message: "invalid email address"}
	}
	return nil
}

// ValidatePayment checks that every payment field is non-empty and the CVV
// is numeric with at most three digits.
func ValidatePayment(p PaymentInfo) error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"cardNumber", p.CardNumber},
		{"expiryDate", p.ExpiryDate},
		{"cvv", p.CVV},
		{"nameOnCard", p.NameOnCard},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Message: fmt.Sprintf("missing payment fields: %s", strings.Join(missing, ", ")),
		}
	}

	if !cvvShape.MatchString(p.CVV) {
		return &ValidationError{Message: "cvv must be numeric with at most 3 digits"}
	}
	return nil
}
