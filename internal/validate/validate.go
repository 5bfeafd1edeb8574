// Package validate holds the field rules enforced locally before any request
// leaves the dashboard. A payload that fails these rules is never sent to the
// backend.
package validate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Webzensify/uber-web/pkg/xerrors"
)

var (
	phoneRe   = regexp.MustCompile(`^[0-9]{10}$`)
	otpRe     = regexp.MustCompile(`^[0-9]{6}$`)
	aadhaarRe = regexp.MustCompile(`^[0-9]{12}$`)
	nameRe    = regexp.MustCompile(`^[a-zA-Z ]+$`)
	emailRe   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// Indian vehicle registration plates, e.g. "KA 01AB1234" or "MH-12 9876".
	plateRe = regexp.MustCompile(`^[A-Z]{2}[ -][0-9]{1,2}(?:[A-Z])?(?:[A-Z]*)?[0-9]{4}$`)
)

func PhoneNumber(s string) error {
	if !phoneRe.MatchString(s) {
		return xerrors.ErrInvalidPhoneNumber
	}
	return nil
}

func OTP(s string) error {
	if !otpRe.MatchString(s) {
		return xerrors.ErrInvalidOTP
	}
	return nil
}

func Aadhaar(s string) error {
	if !aadhaarRe.MatchString(s) {
		return xerrors.ErrInvalidAadhaar
	}
	return nil
}

func PersonName(s string) error {
	if strings.TrimSpace(s) == "" {
		return xerrors.ErrNameRequired
	}
	if !nameRe.MatchString(s) {
		return xerrors.ErrInvalidName
	}
	return nil
}

func Email(s string) error {
	if s == "" {
		return xerrors.ErrEmailRequired
	}
	if !emailRe.MatchString(s) {
		return xerrors.ErrInvalidEmailFormat
	}
	return nil
}

// OptionalEmail accepts an empty string but rejects a malformed one.
func OptionalEmail(s string) error {
	if s == "" {
		return nil
	}
	return Email(s)
}

func Plate(s string) error {
	if !plateRe.MatchString(s) {
		return xerrors.ErrInvalidPlate
	}
	return nil
}

// Required reports missing as the given sentinel so callers keep one error
// per field.
func Required(s string, missing error) error {
	if strings.TrimSpace(s) == "" {
		return missing
	}
	return nil
}

// FieldErrors maps form field names to the inline message shown next to
// them. It satisfies error so a whole failed form can travel up one return
// path; handlers type-assert to get the per-field breakdown back.
type FieldErrors map[string]string

func (fe FieldErrors) Ok() bool { return len(fe) == 0 }

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// Check records err under field when err is non-nil.
func (fe FieldErrors) Check(field string, err error) {
	if err != nil {
		fe[field] = err.Error()
	}
}
