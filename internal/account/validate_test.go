package account

import (
	"testing"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"rahul@example.com", true},
		{"priya.sharma+broker@mail.co.in", true},
		{"no-at-sign.example.com", false},
		{"missing@tld", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if tt.valid && err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", tt.email, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", tt.email)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"9876543210", true},
		{"6000000000", true},
		{"5876543210", false}, // must start 6-9
		{"98765", false},
		{"98765432101", false},
		{"98765abcde", false},
	}

	for _, tt := range tests {
		err := ValidatePhone(tt.phone)
		if tt.valid && err != nil {
			t.Errorf("ValidatePhone(%q) = %v, want nil", tt.phone, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidatePhone(%q) = nil, want error", tt.phone)
		}
	}
}

func TestValidatePAN(t *testing.T) {
	tests := []struct {
		pan   string
		valid bool
	}{
		{"ABCDE1234F", true},
		{"abcde1234f", true}, // case-insensitive
		{"ABCD1234EF", false},
		{"ABCDE12345", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidatePAN(tt.pan)
		if tt.valid && err != nil {
			t.Errorf("ValidatePAN(%q) = %v, want nil", tt.pan, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidatePAN(%q) = nil, want error", tt.pan)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("secret"); err != nil {
		t.Errorf("6-char password rejected: %v", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Error("5-char password accepted")
	}
}

func TestValidateBankAccount(t *testing.T) {
	valid := models.BankAccount{
		HolderName:    "Rahul Verma",
		AccountNumber: "123456789012",
		IFSC:          "HDFC0001234",
		BankName:      "HDFC Bank",
	}
	if err := ValidateBankAccount(valid); err != nil {
		t.Fatalf("valid bank account rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*models.BankAccount)
	}{
		{"empty holder", func(b *models.BankAccount) { b.HolderName = "  " }},
		{"short account number", func(b *models.BankAccount) { b.AccountNumber = "12345678" }},
		{"long account number", func(b *models.BankAccount) { b.AccountNumber = "1234567890123456789" }},
		{"bad ifsc fifth char", func(b *models.BankAccount) { b.IFSC = "HDFC1001234" }},
		{"short ifsc", func(b *models.BankAccount) { b.IFSC = "HDFC000123" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			err := ValidateBankAccount(b)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !apperrors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("error %v does not wrap ErrInvalidInput", err)
			}
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	valid := RegistrationRequest{
		Name:     "Priya Sharma",
		Email:    "priya@example.com",
		Phone:    "9876543210",
		PAN:      "ABCDE1234F",
		Password: "topsecret",
	}
	if err := ValidateRegistration(valid); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		field  string
		mutate func(*RegistrationRequest)
	}{
		{"blank name", "name", func(r *RegistrationRequest) { r.Name = "" }},
		{"bad email", "email", func(r *RegistrationRequest) { r.Email = "not-an-email" }},
		{"bad phone", "phone", func(r *RegistrationRequest) { r.Phone = "12345" }},
		{"bad pan", "pan", func(r *RegistrationRequest) { r.PAN = "12345ABCDE" }},
		{"short password", "password", func(r *RegistrationRequest) { r.Password = "abc" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := ValidateRegistration(req)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var verr *apperrors.ValidationError
			if !apperrors.As(err, &verr) {
				t.Fatalf("error %v is not a ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}
