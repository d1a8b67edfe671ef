package account

import (
	"regexp"
	"strings"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
)

// Validation patterns
var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// Indian mobile numbers: ten digits starting 6-9.
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	panPattern   = regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`)
	// Bank account numbers: 9-18 digits.
	accountNumberPattern = regexp.MustCompile(`^\d{9,18}$`)
	// IFSC: four letters, a literal zero, six alphanumerics.
	ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// ValidateEmail checks email format.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperrors.NewValidationError("email", email, "invalid email format")
	}
	return nil
}

// ValidatePhone checks for a valid Indian mobile number.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return apperrors.NewValidationError("phone", phone, "must be 10 digits starting with 6-9")
	}
	return nil
}

// ValidatePAN checks PAN format.
func ValidatePAN(pan string) error {
	if !panPattern.MatchString(strings.ToUpper(pan)) {
		return apperrors.NewValidationError("pan", pan, "invalid PAN format")
	}
	return nil
}

// ValidatePassword checks minimum password strength.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.NewValidationError("password", "", "must be at least 6 characters")
	}
	return nil
}

// ValidateBankAccount checks a bank account before linking.
func ValidateBankAccount(b models.BankAccount) error {
	if strings.TrimSpace(b.HolderName) == "" {
		return apperrors.NewValidationError("holder_name", b.HolderName, "holder name required")
	}
	if !accountNumberPattern.MatchString(b.AccountNumber) {
		return apperrors.NewValidationError("account_number", b.AccountNumber, "must be 9-18 digits")
	}
	if !ifscPattern.MatchString(strings.ToUpper(b.IFSC)) {
		return apperrors.NewValidationError("ifsc", b.IFSC, "invalid IFSC format")
	}
	return nil
}

// ValidateRegistration checks a full registration request.
func ValidateRegistration(req RegistrationRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name", req.Name, "name required")
	}
	if err := ValidateEmail(req.Email); err != nil {
		return err
	}
	if err := ValidatePhone(req.Phone); err != nil {
		return err
	}
	if err := ValidatePAN(req.PAN); err != nil {
		return err
	}
	return ValidatePassword(req.Password)
}
