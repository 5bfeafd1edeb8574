package xerrors

import "errors"

// Generic
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Field validation. These are shown inline next to the offending field and
// never travel to the backend.
var (
	ErrInvalidPhoneNumber = errors.New("phone number must be exactly 10 digits")
	ErrInvalidOTP         = errors.New("OTP must be exactly 6 digits")
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidName        = errors.New("name must contain only letters")
	ErrAddressRequired    = errors.New("address is required")
	ErrInvalidAadhaar     = errors.New("Aadhaar number must be exactly 12 digits")
	ErrLicenseRequired    = errors.New("license number is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrInvalidPlate       = errors.New("invalid number plate")
	ErrInvalidSeats       = errors.New("seats must be at least 1")
	ErrInvalidYear        = errors.New("year must be valid")
	ErrModelRequired      = errors.New("model is required")
	ErrBrandRequired      = errors.New("brand is required")
	ErrTypeRequired       = errors.New("type is required")
	ErrDescRequired       = errors.New("description is required")
	ErrReasonRequired     = errors.New("cancellation reason is required")
)

// Auth flow
var (
	ErrNoActiveAttempt = errors.New("no active authentication attempt")
	ErrStaleAttempt    = errors.New("authentication attempt superseded")
	ErrOTPNotSent      = errors.New("request an OTP before verifying")
)
